package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moondec/syllabus/internal/dto"
	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/service"
	"github.com/moondec/syllabus/pkg/response"
)

// SettingsHandler 提供方配置 HTTP 处理器
type SettingsHandler struct {
	providers service.ProviderConfigService
}

// NewSettingsHandler 创建 SettingsHandler
func NewSettingsHandler(providers service.ProviderConfigService) *SettingsHandler {
	return &SettingsHandler{providers: providers}
}

// GetProvider 当前配置，API Key 脱敏
// GET /api/v1/settings/provider
func (h *SettingsHandler) GetProvider(c *gin.Context) {
	response.OK(c, toProviderResponse(h.providers.Current()))
}

// UpdateProvider 整体替换配置；不校验字段内容
// apiKey 为脱敏占位符时保留原 Key，便于前端回传 GET 结果
// PUT /api/v1/settings/provider
func (h *SettingsHandler) UpdateProvider(c *gin.Context) {
	var req dto.ProviderSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Nieprawidłowe parametry: "+err.Error())
		return
	}

	cfg := model.ProviderConfig{
		EndpointURL: strings.TrimSpace(req.EndpointURL),
		Model:       strings.TrimSpace(req.Model),
		APIKey:      strings.TrimSpace(req.APIKey),
	}
	if cfg.APIKey == model.RedactedKey {
		cfg.APIKey = h.providers.Current().APIKey
	}

	saved := h.providers.Save(c.Request.Context(), cfg)
	response.OK(c, toProviderResponse(saved))
}

func toProviderResponse(cfg model.ProviderConfig) dto.ProviderSettingsResponse {
	r := cfg.Redacted()
	return dto.ProviderSettingsResponse{
		EndpointURL: r.EndpointURL,
		Model:       r.Model,
		APIKey:      r.APIKey,
		HasAPIKey:   cfg.HasCredential(),
	}
}
