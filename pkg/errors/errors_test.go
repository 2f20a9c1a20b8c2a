package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserMessage_ServiceErrorVerbatim(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewServiceError("textgen", 400, "Nieznane pole"))
	if got := UserMessage(err, "fallback"); got != "Nieznane pole" {
		t.Errorf("期望原文消息, 实际=%q", got)
	}
}

func TestUserMessage_TransportGeneric(t *testing.T) {
	err := NewTransportError("ingestion", errors.New("dial tcp: refused"))
	if got := UserMessage(err, "fallback"); got != ConnectionMessage {
		t.Errorf("期望连接错误文案, 实际=%q", got)
	}
	if !IsTransport(err) {
		t.Error("IsTransport 应返回 true")
	}
}

func TestUserMessage_Fallback(t *testing.T) {
	if got := UserMessage(errors.New("boom"), "coś poszło nie tak"); got != "coś poszło nie tak" {
		t.Errorf("期望 fallback, 实际=%q", got)
	}
	if got := UserMessage(errors.New("boom"), ""); got != "boom" {
		t.Errorf("无 fallback 时应返回原始错误, 实际=%q", got)
	}
	if got := UserMessage(nil, "x"); got != "" {
		t.Errorf("nil 错误应返回空串, 实际=%q", got)
	}
}

func TestServiceError_EmptyMessageFallsBack(t *testing.T) {
	err := NewServiceError("rendering", 500, "")
	if got := UserMessage(err, "fb"); got != "fb" {
		t.Errorf("空消息的 ServiceError 应使用 fallback, 实际=%q", got)
	}
}
