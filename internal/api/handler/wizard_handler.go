package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moondec/syllabus/internal/api/middleware"
	"github.com/moondec/syllabus/internal/dto"
	"github.com/moondec/syllabus/internal/service"
	apperrors "github.com/moondec/syllabus/pkg/errors"
	"github.com/moondec/syllabus/pkg/response"
)

// WizardHandler 向导模块 HTTP 处理器
//
// 所有会话动作成功时返回最新会话快照；挂在步骤上的错误（StepError）
// 以错误码 + 快照一并返回，前端据此原样展示错误文本。
type WizardHandler struct {
	wizard         service.WizardService
	maxUploadBytes int64
}

// NewWizardHandler 创建 WizardHandler
func NewWizardHandler(wizard service.WizardService, maxUploadBytes int64) *WizardHandler {
	return &WizardHandler{wizard: wizard, maxUploadBytes: maxUploadBytes}
}

// ── 会话生命周期 ──

// Create 新建向导会话
// POST /api/v1/wizard/sessions
func (h *WizardHandler) Create(c *gin.Context) {
	sess, err := h.wizard.Create()
	if err != nil {
		h.handleWizardError(c, nil, err)
		return
	}
	response.Created(c, sess.Snapshot())
}

// Get 获取会话快照
// GET /api/v1/wizard/sessions/:id
func (h *WizardHandler) Get(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	response.OK(c, sess.Snapshot())
}

// Discard 丢弃会话
// DELETE /api/v1/wizard/sessions/:id
func (h *WizardHandler) Discard(c *gin.Context) {
	if err := h.wizard.Discard(c.Param("id")); err != nil {
		h.handleWizardError(c, nil, err)
		return
	}
	response.OK(c, nil)
}

// ── Upload / Disambiguate ──

// Upload 上传课程文档
// POST /api/v1/wizard/sessions/:id/upload (multipart: file)
func (h *WizardHandler) Upload(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Plik lub żądanie jest zbyt duże")
			return
		}
		response.BadRequest(c, 10001, "Brak pliku w żądaniu")
		return
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Plik lub żądanie jest zbyt duże")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "Nie można odczytać pliku")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, 10001, "Nie można odczytać pliku")
		return
	}

	if err := sess.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), content); err != nil {
		h.handleWizardError(c, sess, err)
		return
	}
	response.OK(c, sess.Snapshot())
}

// Select 选择候选课程
// POST /api/v1/wizard/sessions/:id/select
func (h *WizardHandler) Select(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	var req dto.SelectCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Nieprawidłowe parametry: "+err.Error())
		return
	}
	if err := sess.SelectCandidate(*req.Index); err != nil {
		h.handleWizardError(c, sess, err)
		return
	}
	response.OK(c, sess.Snapshot())
}

// Manual 手动填写（空白记录）
// POST /api/v1/wizard/sessions/:id/manual
func (h *WizardHandler) Manual(c *gin.Context) {
	h.simple(c, (*service.WizardSession).EnterManually)
}

// Back 返回候选列表
// POST /api/v1/wizard/sessions/:id/back
func (h *WizardHandler) Back(c *gin.Context) {
	h.simple(c, (*service.WizardSession).Back)
}

// Restart 重新开始
// POST /api/v1/wizard/sessions/:id/restart
func (h *WizardHandler) Restart(c *gin.Context) {
	h.simple(c, (*service.WizardSession).StartOver)
}

func (h *WizardHandler) simple(c *gin.Context, action func(*service.WizardSession) error) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	if err := action(sess); err != nil {
		h.handleWizardError(c, sess, err)
		return
	}
	response.OK(c, sess.Snapshot())
}

// ── Edit ──

// UpdateField 编辑单个字段
// PATCH /api/v1/wizard/sessions/:id/fields
func (h *WizardHandler) UpdateField(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	var req dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Nieprawidłowe parametry: "+err.Error())
		return
	}
	if err := sess.UpdateField(req.Key, req.Value); err != nil {
		h.handleWizardError(c, sess, err)
		return
	}
	response.OK(c, sess.Snapshot())
}

// ToggleSymbol 勾选 / 取消成果符号
// POST /api/v1/wizard/sessions/:id/symbols/toggle
func (h *WizardHandler) ToggleSymbol(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	var req dto.ToggleSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Nieprawidłowe parametry: "+err.Error())
		return
	}
	if err := sess.ToggleSymbol(req.Category, req.Symbol); err != nil {
		h.handleWizardError(c, sess, err)
		return
	}
	response.OK(c, sess.Snapshot())
}

// SetLanguage 设置导出语言
// PUT /api/v1/wizard/sessions/:id/language
func (h *WizardHandler) SetLanguage(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	var req dto.SetLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Nieprawidłowe parametry: "+err.Error())
		return
	}
	if err := sess.SetLanguage(req.Language); err != nil {
		h.handleWizardError(c, sess, err)
		return
	}
	response.OK(c, sess.Snapshot())
}

// ── 文本生成 ──

// Generate 生成单个字段
// POST /api/v1/wizard/sessions/:id/generate
func (h *WizardHandler) Generate(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	var req dto.GenerateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Nieprawidłowe parametry: "+err.Error())
		return
	}
	text, err := sess.GenerateField(c.Request.Context(), req.Field)
	if err != nil {
		h.handleWizardError(c, sess, err)
		return
	}
	response.OK(c, dto.GenerateFieldsResponse{
		Results: []dto.FieldGenerationResult{{Field: req.Field, Text: text}},
		Session: sess.Snapshot(),
	})
}

// GenerateBatch 并发生成多个字段，单个失败写入对应结果
// POST /api/v1/wizard/sessions/:id/generate/batch
func (h *WizardHandler) GenerateBatch(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	var req dto.GenerateFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Nieprawidłowe parametry: "+err.Error())
		return
	}
	results := sess.GenerateFields(c.Request.Context(), req.Fields)
	response.OK(c, dto.GenerateFieldsResponse{Results: results, Session: sess.Snapshot()})
}

// ── Export / Archive ──

// Export 导出当前记录
// POST /api/v1/wizard/sessions/:id/export
func (h *WizardHandler) Export(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "Nieprawidłowe parametry: "+err.Error())
			return
		}
	}
	if err := sess.Export(c.Request.Context(), req.Format); err != nil {
		h.handleWizardError(c, sess, err)
		return
	}
	response.OK(c, sess.Snapshot())
}

// OpenArchived 从归档打开记录进入编辑
// POST /api/v1/wizard/sessions/:id/open/:archive_id
func (h *WizardHandler) OpenArchived(c *gin.Context) {
	sess, ok := MustGetSession(c, h.wizard)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "archive_id")
	if !ok {
		return
	}
	if err := sess.OpenArchived(c.Request.Context(), id); err != nil {
		h.handleWizardError(c, sess, err)
		return
	}
	response.OK(c, sess.Snapshot())
}

// ═══════════════════════════════════════════════════════════
// 错误映射
// ═══════════════════════════════════════════════════════════

func (h *WizardHandler) handleWizardError(c *gin.Context, sess *service.WizardSession, err error) {
	var stepErr *service.StepError
	if errors.As(err, &stepErr) {
		status, code := stepErrorStatus(stepErr)
		response.ErrorWithData(c, status, code, stepErr.Message, snapshotOf(sess))
		return
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 20001, "Sesja nie istnieje lub wygasła")
	case errors.Is(err, service.ErrTooManySessions):
		response.TooManyRequests(c, 20002, "Zbyt wiele aktywnych sesji, spróbuj ponownie później")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 20003, err.Error())
	case errors.Is(err, service.ErrActionInProgress):
		response.Conflict(c, 20004, err.Error())
	case errors.Is(err, service.ErrCandidateIndex):
		response.BadRequest(c, 20005, err.Error())
	case errors.Is(err, service.ErrFieldNotEditable):
		response.BadRequest(c, 20006, err.Error())
	case errors.Is(err, service.ErrUnknownCategory):
		response.BadRequest(c, 20007, err.Error())
	case errors.Is(err, service.ErrInvalidLanguage):
		response.BadRequest(c, 20008, err.Error())
	case errors.Is(err, service.ErrStaleResult):
		response.ErrorWithData(c, http.StatusConflict, 20009, err.Error(), snapshotOf(sess))
	case errors.Is(err, service.ErrFieldNotGeneratable):
		response.BadRequest(c, 21001, err.Error())
	case errors.Is(err, service.ErrFieldBusy):
		response.Conflict(c, 21002, err.Error())
	case errors.Is(err, service.ErrSyllabusNotFound):
		response.NotFound(c, 23001, err.Error())
	default:
		response.InternalError(c)
	}
}

// stepErrorStatus 步骤错误按操作归类；上传类型、导出格式与缺少 API Key 属于客户端问题
func stepErrorStatus(e *service.StepError) (int, int) {
	switch {
	case errors.Is(e, service.ErrUnsupportedFile):
		return http.StatusBadRequest, 20010
	case errors.Is(e, service.ErrUnsupportedFormat):
		return http.StatusBadRequest, 22001
	case errors.Is(e, apperrors.ErrMissingCredential):
		return http.StatusBadRequest, 21004
	}
	switch e.Op {
	case "upload":
		return http.StatusBadGateway, 20011
	case "generate":
		return http.StatusBadGateway, 21003
	case "export":
		return http.StatusBadGateway, 22002
	case "open":
		return http.StatusBadGateway, 23003
	default:
		return http.StatusInternalServerError, 50000
	}
}

func snapshotOf(sess *service.WizardSession) *dto.WizardSessionResponse {
	if sess == nil {
		return nil
	}
	return sess.Snapshot()
}
