package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef-secret"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
downloads:
  secret: "`+testSecret+`"
wizard:
  session_ttl: 30m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("文件值未生效: port=%d", cfg.Server.Port)
	}
	if cfg.Wizard.SessionTTL != 30*time.Minute || cfg.Wizard.MaxSessions != 1000 {
		t.Errorf("wizard 配置错误: %+v", cfg.Wizard)
	}
	if cfg.Services.Timeout != 120*time.Second || cfg.Services.RetryAttempts != 3 {
		t.Errorf("services 默认值错误: %+v", cfg.Services)
	}
	if cfg.LLM.Mode != "remote" || cfg.LLM.DefaultModel != "bielik_11b" {
		t.Errorf("llm 默认值错误: %+v", cfg.LLM)
	}
	if cfg.Downloads.TTL != 15*time.Minute {
		t.Errorf("downloads.ttl 默认值错误: %v", cfg.Downloads.TTL)
	}
	if !strings.Contains(cfg.Archive.LegalBasis, "Senatu") {
		t.Errorf("legal_basis 默认值错误: %q", cfg.Archive.LegalBasis)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
downloads:
  secret: "`+testSecret+`"
llm:
  mode: remote
`)
	t.Setenv("SYLLABUS_LLM_MODE", "direct")
	t.Setenv("SYLLABUS_SERVER_PORT", "8100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if cfg.LLM.Mode != "direct" || cfg.Server.Port != 8100 {
		t.Errorf("环境变量应覆盖文件: mode=%s port=%d", cfg.LLM.Mode, cfg.Server.Port)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8000\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "downloads.secret") {
		t.Errorf("缺少 secret 应失败，实际: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: 8000},
			Downloads: DownloadsConfig{Secret: testSecret},
			LLM:       LLMConfig{Mode: "remote"},
			Settings:  SettingsConfig{Backend: "file"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"合法", func(*Config) {}, ""},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"secret 过短", func(c *Config) { c.Downloads.Secret = "short" }, "16"},
		{"未知 llm.mode", func(c *Config) { c.LLM.Mode = "local" }, "llm.mode"},
		{"未知 settings.backend", func(c *Config) { c.Settings.Backend = "s3" }, "settings.backend"},
		{"sftp 缺少 host", func(c *Config) { c.SFTP.Enabled = true }, "sftp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("期望通过，实际: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("期望包含 %q 的错误，实际: %v", tt.want, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "syllabus", SSLMode: "disable", Timezone: "Europe/Warsaw"}
	want := "host=db port=5432 user=u password=p dbname=syllabus sslmode=disable TimeZone=Europe/Warsaw"
	if got := c.DSN(); got != want {
		t.Errorf("DSN = %q，期望 %q", got, want)
	}
}
