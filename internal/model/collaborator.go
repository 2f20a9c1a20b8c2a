package model

// GenerationRequest 文本生成服务请求体
type GenerationRequest struct {
	SubjectName    string            `json:"subject_name"`
	FieldType      string            `json:"field_type"`
	ContextInfo    GenerationContext `json:"context_info"`
	ProviderConfig *ProviderConfig   `json:"provider_config,omitempty"`
	Language       Language          `json:"language"`
	FieldValue     string            `json:"field_value,omitempty"`
}

// GenerationContext 生成上下文，只包含白名单字段
type GenerationContext struct {
	Tresci        string          `json:"tresci,omitempty"`
	Kierunek      string          `json:"kierunek,omitempty"`
	Poziom        string          `json:"poziom,omitempty"`
	CelPrzedmiotu string          `json:"cel_przedmiotu,omitempty"`
	SymbolsInfo   []OutcomeOption `json:"symbols_info,omitempty"`
}

// RenderedDocument 渲染结果：二进制内容或后续下载地址，二者其一
type RenderedDocument struct {
	Content     []byte
	ContentType string
	FileName    string
	URL         string
}

// IsBinary 是否为直接返回的二进制内容
func (d *RenderedDocument) IsBinary() bool { return d != nil && len(d.Content) > 0 }
