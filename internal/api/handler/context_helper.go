package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/moondec/syllabus/internal/service"
	"github.com/moondec/syllabus/pkg/response"
)

// MustGetSession 按路径参数 :id 取向导会话。
// 会话不存在时写入 404 响应，调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context, wizard service.WizardService) (*service.WizardSession, bool) {
	sess, err := wizard.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.NotFound(c, 20001, "Sesja nie istnieje lub wygasła")
		} else {
			response.InternalError(c)
		}
		return nil, false
	}
	return sess, true
}

// MustGetUintParam 解析正整数路径参数（归档 ID）
func MustGetUintParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "Nieprawidłowy identyfikator")
		return 0, false
	}
	return id, true
}
