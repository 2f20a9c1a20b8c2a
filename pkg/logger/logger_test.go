package logger

import (
	"testing"

	"github.com/moondec/syllabus/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format=%s 不应出错: %v", format, err)
		}
		if l == nil {
			t.Fatalf("format=%s logger 不应为 nil", format)
		}
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Fatal("无效日志级别应返回错误")
	}
}
