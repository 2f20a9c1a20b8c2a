package dto

import (
	"time"

	"github.com/moondec/syllabus/internal/model"
)

// ArchiveSummary 归档列表项
type ArchiveSummary struct {
	ID           uint64    `json:"id"`
	SubjectName  string    `json:"subject_name"`
	FieldOfStudy string    `json:"field_of_study"`
	Level        string    `json:"level"`
	Semester     string    `json:"semester"`
	Language     string    `json:"language"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ArchiveDetail 归档详情
type ArchiveDetail struct {
	ID           uint64                `json:"id"`
	SubjectName  string                `json:"subject_name"`
	FieldOfStudy string                `json:"field_of_study"`
	Semester     string                `json:"semester"`
	LegalBasis   string                `json:"legal_basis"`
	Data         *model.SyllabusRecord `json:"data"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// ArchiveExportRequest 归档记录重新导出
type ArchiveExportRequest struct {
	Format string `json:"format" binding:"omitempty,oneof=docx pdf xlsx"`
}
