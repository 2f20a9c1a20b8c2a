package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Services  ServicesConfig  `mapstructure:"services"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Settings  SettingsConfig  `mapstructure:"settings"`
	Wizard    WizardConfig    `mapstructure:"wizard"`
	Downloads DownloadsConfig `mapstructure:"downloads"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	SFTP      SFTPConfig      `mapstructure:"sftp"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port        int        `mapstructure:"port"`
	BaseURL     string     `mapstructure:"base_url"`
	MaxUploadMB int64      `mapstructure:"max_upload_mb"`
	CORS        CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置（归档存储）
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServicesConfig 外部协作服务（抽取 / 生成 / 渲染）
type ServicesConfig struct {
	IngestionURL      string        `mapstructure:"ingestion_url"`
	RenderingURL      string        `mapstructure:"rendering_url"`
	TextGenerationURL string        `mapstructure:"text_generation_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
}

// LLMConfig 文本生成配置
// mode=remote 走 Text Generation Service；mode=direct 直连 OpenAI 兼容端点
type LLMConfig struct {
	Mode            string  `mapstructure:"mode"`
	DefaultEndpoint string  `mapstructure:"default_endpoint"`
	DefaultModel    string  `mapstructure:"default_model"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`
}

// SettingsConfig 提供方配置的持久化位置
type SettingsConfig struct {
	Backend string `mapstructure:"backend"` // file | redis
	Dir     string `mapstructure:"dir"`
	Key     string `mapstructure:"key"`
}

// WizardConfig 向导会话配置
type WizardConfig struct {
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	MaxSessions int           `mapstructure:"max_sessions"`
	// 生成接口限流（需要 Redis；limit<=0 关闭）
	GenerateRateLimit  int           `mapstructure:"generate_rate_limit"`
	GenerateRateWindow time.Duration `mapstructure:"generate_rate_window"`
}

// DownloadsConfig 导出文件下载链接配置
type DownloadsConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// ArchiveConfig 归档配置
type ArchiveConfig struct {
	LegalBasis string `mapstructure:"legal_basis"`
}

// SFTPConfig 导出文件发布到 SFTP（可选）
type SFTPConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	User                  string `mapstructure:"user"`
	Password              string `mapstructure:"password"`
	RemoteDir             string `mapstructure:"remote_dir"`
	KnownHostsFile        string `mapstructure:"known_hosts_file"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecure_ignore_host_key"`
}

// MetricsConfig Prometheus 指标
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "syllabus")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Europe/Warsaw")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("services.ingestion_url", "http://localhost:8001/api/process-document")
	v.SetDefault("services.rendering_url", "http://localhost:8001/api/generate-syllabus")
	v.SetDefault("services.text_generation_url", "http://localhost:8001/api/generate-field")
	v.SetDefault("services.timeout", "120s")
	v.SetDefault("services.retry_attempts", 3)

	v.SetDefault("llm.mode", "remote")
	v.SetDefault("llm.default_endpoint", "https://llm.hpc.pcss.pl/v1")
	v.SetDefault("llm.default_model", "bielik_11b")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 800)

	v.SetDefault("settings.backend", "file")
	v.SetDefault("settings.dir", "./data")
	v.SetDefault("settings.key", "syllabus.provider_config")

	v.SetDefault("wizard.session_ttl", "2h")
	v.SetDefault("wizard.max_sessions", 1000)
	v.SetDefault("wizard.generate_rate_limit", 30)
	v.SetDefault("wizard.generate_rate_window", "1m")

	v.SetDefault("downloads.ttl", "15m")

	v.SetDefault("archive.legal_basis", "Uchwała nr 27/2025 Senatu Uniwersytetu Przyrodniczego w Poznaniu z dnia 26 marca 2025 roku")

	v.SetDefault("sftp.enabled", false)
	v.SetDefault("sftp.port", 22)
	v.SetDefault("sftp.remote_dir", "/sylabusy")

	v.SetDefault("metrics.enabled", true)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SYLLABUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Downloads.Secret == "" {
		return fmt.Errorf("配置校验失败: downloads.secret 不能为空")
	}
	if len(c.Downloads.Secret) < 16 {
		return fmt.Errorf("配置校验失败: downloads.secret 长度不能少于 16 字符")
	}
	switch c.LLM.Mode {
	case "remote", "direct":
	default:
		return fmt.Errorf("配置校验失败: llm.mode 只能是 remote 或 direct，实际=%q", c.LLM.Mode)
	}
	switch c.Settings.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("配置校验失败: settings.backend 只能是 file 或 redis，实际=%q", c.Settings.Backend)
	}
	if c.SFTP.Enabled && (c.SFTP.Host == "" || c.SFTP.User == "") {
		return fmt.Errorf("配置校验失败: 启用 sftp 时 sftp.host 与 sftp.user 不能为空")
	}
	return nil
}
