package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/moondec/syllabus/config"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(&config.DownloadsConfig{
		Secret: "test-secret-key-for-unit-testing-2026",
		TTL:    ttl,
	})
}

func TestGenerateAndParseDownloadToken(t *testing.T) {
	m := newTestManager(time.Minute)

	token, err := m.GenerateDownloadToken("dl-1", "sylabus.docx")
	if err != nil {
		t.Fatalf("GenerateDownloadToken 失败: %v", err)
	}

	claims, err := m.ParseDownloadToken(token)
	if err != nil {
		t.Fatalf("ParseDownloadToken 失败: %v", err)
	}
	if claims.DownloadID != "dl-1" {
		t.Errorf("期望 DownloadID=dl-1，实际=%s", claims.DownloadID)
	}
	if claims.FileName != "sylabus.docx" {
		t.Errorf("期望 FileName=sylabus.docx，实际=%s", claims.FileName)
	}
}

func TestParseDownloadToken_Expired(t *testing.T) {
	m := newTestManager(-time.Minute)
	// 负 TTL 被归一为默认值，因此直接构造过期管理器
	m.ttl = -time.Minute

	token, err := m.GenerateDownloadToken("dl-1", "a.docx")
	if err != nil {
		t.Fatalf("GenerateDownloadToken 失败: %v", err)
	}
	if _, err := m.ParseDownloadToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际=%v", err)
	}
}

func TestParseDownloadToken_WrongSecret(t *testing.T) {
	m1 := newTestManager(time.Minute)
	m2 := NewManager(&config.DownloadsConfig{Secret: "another-secret-key-0123456789", TTL: time.Minute})

	token, _ := m1.GenerateDownloadToken("dl-1", "a.docx")
	if _, err := m2.ParseDownloadToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}

func TestParseDownloadToken_Garbage(t *testing.T) {
	m := newTestManager(time.Minute)
	if _, err := m.ParseDownloadToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m := newTestManager(0)
	if m.TTL() != 15*time.Minute {
		t.Errorf("期望默认 TTL=15m，实际=%v", m.TTL())
	}
}
