package errors

import (
	"errors"
	"fmt"
)

// ═══════════════════════════════════════════════════════════
// 协作服务错误分类
//
//   ServiceError       — 协作服务显式返回 {"error": "..."}，原文展示
//   TransportError     — 不可达 / 超时 / 响应格式错误，统一展示连接错误
//   ErrMissingCredential — 缺少 API Key，由生成网关改写为设置指引
//
// 抽取结果为空不是错误，由向导状态表达。
// ═══════════════════════════════════════════════════════════

// ErrMissingCredential 文本生成缺少凭据
var ErrMissingCredential = errors.New("brak klucza API")

// ConnectionMessage 传输类错误对用户展示的通用文案
const ConnectionMessage = "Błąd połączenia z serwerem. Sprawdź połączenie i spróbuj ponownie."

// ServiceError 协作服务返回的结构化错误，Message 原样展示给用户
type ServiceError struct {
	Service string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

// TransportError 网络层或解码层失败
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewServiceError 创建 ServiceError
func NewServiceError(service string, status int, message string) error {
	return &ServiceError{Service: service, Status: status, Message: message}
}

// NewTransportError 创建 TransportError
func NewTransportError(service string, err error) error {
	return &TransportError{Service: service, Err: err}
}

// IsTransport 判断是否为传输类错误
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// UserMessage 将错误映射为可展示给用户的单条消息
// ServiceError 原文；TransportError 通用连接错误；其余使用 fallback
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if IsTransport(err) {
		return ConnectionMessage
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
