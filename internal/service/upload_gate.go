package service

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFile 上传文件类型不在支持范围内
var ErrUnsupportedFile = errors.New("unsupported upload file type")

// UnsupportedFileMessage 拒绝上传时展示给用户的提示
const UnsupportedFileMessage = "Nieobsługiwany format pliku. Wgraj plik .pdf, .docx lub .doc."

// 客户端侧的类型筛选，仅用于尽早提示，不构成安全边界
var (
	allowedExtensions = map[string]bool{".pdf": true, ".docx": true, ".doc": true}
	allowedMIMETypes  = map[string]bool{
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	}
)

// CheckUpload 按扩展名或 MIME 类型判断是否接受
func CheckUpload(fileName, contentType string) error {
	if allowedExtensions[strings.ToLower(filepath.Ext(fileName))] {
		return nil
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && allowedMIMETypes[strings.ToLower(mt)] {
		return nil
	}
	return ErrUnsupportedFile
}
