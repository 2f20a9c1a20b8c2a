package dto

// ProviderSettingsRequest 保存提供方配置；不做字段校验
type ProviderSettingsRequest struct {
	EndpointURL string `json:"endpointUrl"`
	Model       string `json:"model"`
	APIKey      string `json:"apiKey"`
}

// ProviderSettingsResponse 提供方配置（API Key 脱敏）
type ProviderSettingsResponse struct {
	EndpointURL string `json:"endpointUrl"`
	Model       string `json:"model"`
	APIKey      string `json:"apiKey"`
	HasAPIKey   bool   `json:"has_api_key"`
}
