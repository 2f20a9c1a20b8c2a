package handler

import "github.com/moondec/syllabus/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Wizard   *WizardHandler
	Archive  *ArchiveHandler
	Settings *SettingsHandler
	Download *DownloadHandler
	Field    *FieldHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, maxUploadBytes int64) *Handler {
	return &Handler{
		Wizard:   NewWizardHandler(svc.Wizard, maxUploadBytes),
		Archive:  NewArchiveHandler(svc.Archive, svc.Export),
		Settings: NewSettingsHandler(svc.Providers),
		Download: NewDownloadHandler(svc.Export),
		Field:    NewFieldHandler(),
	}
}
