package sftp

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/moondec/syllabus/config"
)

func TestNewUploader_Defaults(t *testing.T) {
	u := NewUploader(config.SFTPConfig{Host: "h", User: "u"}, zap.NewNop())
	if u.cfg.Port != 22 {
		t.Errorf("期望默认端口 22，实际=%d", u.cfg.Port)
	}
	if u.cfg.RemoteDir != "/" {
		t.Errorf("期望默认目录 /，实际=%s", u.cfg.RemoteDir)
	}
}

func TestUpload_MissingConfig(t *testing.T) {
	u := NewUploader(config.SFTPConfig{}, zap.NewNop())
	if err := u.Upload(context.Background(), "a.docx", []byte("x")); err == nil {
		t.Fatal("缺少 host/user 应返回错误")
	}
}

func TestUpload_CanceledContext(t *testing.T) {
	u := NewUploader(config.SFTPConfig{Host: "192.0.2.1", User: "u", InsecureIgnoreHostKey: true}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := u.Upload(ctx, "a.docx", []byte("x")); err == nil {
		t.Fatal("已取消的上下文应返回错误")
	}
}

func TestUpload_RequiresHostKeyPolicy(t *testing.T) {
	u := NewUploader(config.SFTPConfig{Host: "192.0.2.1", User: "u"}, zap.NewNop())
	err := u.Upload(context.Background(), "a.docx", []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "known_hosts") {
		t.Fatalf("未配置主机指纹校验应拒绝连接，实际: %v", err)
	}
}

func TestUpload_MissingKnownHostsFile(t *testing.T) {
	u := NewUploader(config.SFTPConfig{Host: "192.0.2.1", User: "u", KnownHostsFile: "/nonexistent/known_hosts"}, zap.NewNop())
	if err := u.Upload(context.Background(), "a.docx", []byte("x")); err == nil {
		t.Fatal("known_hosts 文件不存在应返回错误")
	}
}
