package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/moondec/syllabus/internal/service"
	"github.com/moondec/syllabus/pkg/jwt"
	"github.com/moondec/syllabus/pkg/response"
)

// DownloadHandler 导出文件下载处理器（签名链接，无需会话）
type DownloadHandler struct {
	exportSvc service.ExportService
}

// NewDownloadHandler 创建 DownloadHandler
func NewDownloadHandler(exportSvc service.ExportService) *DownloadHandler {
	return &DownloadHandler{exportSvc: exportSvc}
}

// Download 按签名令牌取回导出文件
// GET /api/v1/downloads/:token
func (h *DownloadHandler) Download(c *gin.Context) {
	f, err := h.exportSvc.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.handleDownloadError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.PathEscape(f.FileName)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, f.ContentType, f.Content)
}

func (h *DownloadHandler) handleDownloadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		response.Error(c, http.StatusGone, 22004, err.Error())
	case errors.Is(err, jwt.ErrTokenInvalid):
		response.NotFound(c, 22005, err.Error())
	case errors.Is(err, service.ErrDownloadNotFound):
		response.NotFound(c, 22006, err.Error())
	default:
		response.InternalError(c)
	}
}
