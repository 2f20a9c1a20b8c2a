package model

// Language 导出语言
type Language string

const (
	LanguageNative     Language = "pl"
	LanguageTranslated Language = "en"
)

// ParseLanguage 解析语言代码，未知值返回 false
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LanguageNative:
		return LanguageNative, true
	case LanguageTranslated:
		return LanguageTranslated, true
	}
	return "", false
}

const (
	DefaultProviderEndpoint = "https://llm.hpc.pcss.pl/v1"
	DefaultProviderModel    = "bielik_11b"
)

// ProviderConfig 文本生成提供方配置（进程级）
// 持久化格式与前端存储一致：{endpointUrl, model, apiKey}
type ProviderConfig struct {
	EndpointURL string `json:"endpointUrl"`
	Model       string `json:"model"`
	APIKey      string `json:"apiKey"`
}

// DefaultProviderConfig 内置默认值
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{EndpointURL: DefaultProviderEndpoint, Model: DefaultProviderModel}
}

// HasCredential 是否配置了 API Key
func (c ProviderConfig) HasCredential() bool { return c.APIKey != "" }

// RedactedKey 接口输出中替代 API Key 的占位符
const RedactedKey = "••••"

// Redacted 隐藏 API Key 后的副本，用于日志与接口输出
func (c ProviderConfig) Redacted() ProviderConfig {
	if c.APIKey != "" {
		c.APIKey = RedactedKey
	}
	return c
}
