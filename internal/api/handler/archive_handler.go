package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/moondec/syllabus/internal/dto"
	"github.com/moondec/syllabus/internal/service"
	apperrors "github.com/moondec/syllabus/pkg/errors"
	"github.com/moondec/syllabus/pkg/response"
)

// ArchiveHandler 归档模块 HTTP 处理器
type ArchiveHandler struct {
	archiveSvc service.ArchiveService
	exportSvc  service.ExportService
}

// NewArchiveHandler 创建 ArchiveHandler
func NewArchiveHandler(archiveSvc service.ArchiveService, exportSvc service.ExportService) *ArchiveHandler {
	return &ArchiveHandler{archiveSvc: archiveSvc, exportSvc: exportSvc}
}

// List 归档列表，q 按名称 / 方向模糊过滤
// GET /api/v1/archive?q=
func (h *ArchiveHandler) List(c *gin.Context) {
	list, err := h.archiveSvc.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleArchiveError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// Get 归档详情
// GET /api/v1/archive/:id
func (h *ArchiveHandler) Get(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.archiveSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleArchiveError(c, err)
		return
	}
	response.OK(c, detail)
}

// Delete 删除归档
// DELETE /api/v1/archive/:id
func (h *ArchiveHandler) Delete(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.archiveSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleArchiveError(c, err)
		return
	}
	response.OK(c, nil)
}

// Export 不经过向导直接重新导出归档记录
// POST /api/v1/archive/:id/export
func (h *ArchiveHandler) Export(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}
	var req dto.ArchiveExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "Nieprawidłowe parametry: "+err.Error())
			return
		}
	}
	result, err := h.exportSvc.ExportArchived(c.Request.Context(), id, req.Format)
	if err != nil {
		h.handleArchiveError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *ArchiveHandler) handleArchiveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSyllabusNotFound):
		response.NotFound(c, 23001, err.Error())
	case errors.Is(err, service.ErrUnsupportedFormat):
		response.BadRequest(c, 22001, err.Error())
	case errors.Is(err, service.ErrEmptyDocument):
		response.BadGateway(c, 22003, err.Error())
	case isCollaboratorError(err):
		response.BadGateway(c, 23002, service.ExportMessage(err))
	default:
		response.InternalError(c)
	}
}

// isCollaboratorError 渲染 / 传输层失败
func isCollaboratorError(err error) bool {
	var se *apperrors.ServiceError
	return errors.As(err, &se) || apperrors.IsTransport(err)
}
