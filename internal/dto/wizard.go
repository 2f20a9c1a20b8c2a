package dto

import (
	"time"

	"github.com/moondec/syllabus/internal/model"
)

// ── 向导模块请求 ──

// SelectCandidateRequest 选择候选课程
type SelectCandidateRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// UpdateFieldRequest 编辑字段
type UpdateFieldRequest struct {
	Key   string `json:"key"   binding:"required"`
	Value string `json:"value"`
}

// ToggleSymbolRequest 切换成果符号
type ToggleSymbolRequest struct {
	Category string `json:"category" binding:"required,oneof=W U K w u k"`
	Symbol   string `json:"symbol"   binding:"required"`
}

// SetLanguageRequest 设置导出语言
type SetLanguageRequest struct {
	Language string `json:"language" binding:"required,oneof=pl en"`
}

// GenerateFieldRequest 生成单个字段
type GenerateFieldRequest struct {
	Field string `json:"field" binding:"required"`
}

// GenerateFieldsRequest 批量生成
type GenerateFieldsRequest struct {
	Fields []string `json:"fields" binding:"required,min=1,max=20,dive,required"`
}

// ExportRequest 导出
type ExportRequest struct {
	Format string `json:"format" binding:"omitempty,oneof=docx pdf xlsx"`
}

// ── 向导模块响应 ──

// CandidateSummary 候选课程卡片
type CandidateSummary struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	FieldOfStudy string `json:"field_of_study"`
	Semester     string `json:"semester"`
	ECTS         string `json:"ects"`
}

// CandidateGroup 按培养层次分组的候选
type CandidateGroup struct {
	Level      string             `json:"level"`
	Candidates []CandidateSummary `json:"candidates"`
}

// ExportResponse 导出结果
type ExportResponse struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name,omitempty"`
	Format      string `json:"format"`
	ArchiveID   uint64 `json:"archive_id,omitempty"`
}

// WizardSessionResponse 向导会话快照
type WizardSessionResponse struct {
	ID              string                `json:"id"`
	Step            string                `json:"step"`
	Language        model.Language        `json:"language"`
	Error           string                `json:"error,omitempty"`
	Uploading       bool                  `json:"uploading"`
	Exporting       bool                  `json:"exporting"`
	Generating      []string              `json:"generating"`
	CandidateCount  int                   `json:"candidate_count"`
	Groups          []CandidateGroup      `json:"groups,omitempty"`
	EmptyExtraction bool                  `json:"empty_extraction"`
	CanGoBack       bool                  `json:"can_go_back"`
	Active          *model.SyllabusRecord `json:"active,omitempty"`
	Download        *ExportResponse       `json:"download,omitempty"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// FieldGenerationResult 单个字段的生成结果
type FieldGenerationResult struct {
	Field string `json:"field"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// GenerateFieldsResponse 批量生成结果（按请求顺序）
type GenerateFieldsResponse struct {
	Results []FieldGenerationResult `json:"results"`
	Session *WizardSessionResponse  `json:"session"`
}
