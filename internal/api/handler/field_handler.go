package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/pkg/response"
)

// FieldHandler 字段目录（只读，静态）
type FieldHandler struct{}

// NewFieldHandler 创建 FieldHandler
func NewFieldHandler() *FieldHandler { return &FieldHandler{} }

// List 编辑表单字段目录，顺序即展示顺序
// GET /api/v1/fields
func (h *FieldHandler) List(c *gin.Context) {
	fields := model.FieldCatalog()
	response.OKList(c, fields, len(fields))
}
