package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/moondec/syllabus/internal/dto"
	"github.com/moondec/syllabus/internal/model"
	apperrors "github.com/moondec/syllabus/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// 向导会话状态机
//
//   Upload ──(1 条)──────────────▶ Edit
//   Upload ──(0 条 / 多条)───────▶ Disambiguate
//   Disambiguate ──(选择 / 手动)─▶ Edit
//   Edit ──(返回，仅多条候选)────▶ Disambiguate
//   Edit ──(导出成功)────────────▶ Done
//   Done ──(重新开始)────────────▶ Upload
//
// 错误只挂在当前步骤上，不改变步骤；每个合法动作开始前先清除旧错误。
// 协作服务调用期间不持有会话锁；返回时若会话已重置或当前记录已更换，
// 结果被丢弃。
// ═══════════════════════════════════════════════════════════

// Step 向导步骤
type Step string

const (
	StepUpload       Step = "upload"
	StepDisambiguate Step = "disambiguate"
	StepEdit         Step = "edit"
	StepDone         Step = "done"
)

// ── 向导模块业务错误 ──

var (
	ErrInvalidTransition = errors.New("ta operacja nie jest dostępna na bieżącym etapie")
	ErrActionInProgress  = errors.New("operacja jest już w toku")
	ErrCandidateIndex    = errors.New("nieprawidłowy numer przedmiotu")
	ErrFieldNotEditable  = errors.New("to pole nie jest edytowalne")
	ErrUnknownCategory   = errors.New("nieznana kategoria efektów")
	ErrInvalidLanguage   = errors.New("nieobsługiwany język")
	ErrStaleResult       = errors.New("sesja została zmieniona; wynik operacji odrzucono")
)

const (
	uploadFallbackMessage = "Wystąpił błąd podczas analizy pliku"
	exportFallbackMessage = "Wystąpił błąd podczas generowania dokumentu"
	openFallbackMessage   = "Nie udało się otworzyć sylabusa z archiwum"

	unsupportedFormatMessage = "Nieobsługiwany format dokumentu. Wybierz docx, pdf lub xlsx."

	batchGenerateLimit = 4

	// MaxBatchFields 与 dto.GenerateFieldsRequest 的 max 校验保持一致
	MaxBatchFields = 20

	responseSlack = 15 * time.Second
)

// RequestTimeout 单个 HTTP 请求最长耗时：批量生成按并发上限分轮，每轮至多一次协作超时
func RequestTimeout(serviceTimeout time.Duration) time.Duration {
	rounds := (MaxBatchFields + batchGenerateLimit - 1) / batchGenerateLimit
	return time.Duration(rounds)*serviceTimeout + responseSlack
}

// StepError 挂在会话上的用户可见错误
type StepError struct {
	Op      string
	Message string
	Err     error
}

func (e *StepError) Error() string { return e.Message }

func (e *StepError) Unwrap() error { return e.Err }

// DocumentIngestor 文档抽取协作方：一个文件进，零到多条记录出
type DocumentIngestor interface {
	Extract(ctx context.Context, fileName string, content []byte) ([]*model.SyllabusRecord, error)
}

// sessionDeps 会话使用的协作方，由 WizardService 注入
type sessionDeps struct {
	ingestor  DocumentIngestor
	gateway   *GenerationGateway
	exporter  ExportService
	archive   ArchiveService
	providers ProviderConfigService
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// WizardSession 单个向导会话
type WizardSession struct {
	id   string
	deps *sessionDeps

	mu         sync.Mutex
	step       Step
	candidates []*model.SyllabusRecord
	groups     []SubjectGroup
	active     *model.SyllabusRecord
	activeSeq  uint64
	epoch      uint64
	language   model.Language
	errMsg     string
	uploading  bool
	exporting  bool
	generating *FieldFlags
	download   *dto.ExportResponse
	updatedAt  time.Time
}

func newWizardSession(id string, deps *sessionDeps) *WizardSession {
	return &WizardSession{
		id:         id,
		deps:       deps,
		step:       StepUpload,
		language:   model.LanguageNative,
		generating: NewFieldFlags(),
		updatedAt:  deps.now(),
	}
}

// ID 会话 ID
func (s *WizardSession) ID() string { return s.id }

// LastActivity 最近一次状态变化时间
func (s *WizardSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// busy 有协作调用在进行时会话不应被回收
func (s *WizardSession) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading || s.exporting || len(s.generating.Snapshot()) > 0
}

// detached 协作调用不随 HTTP 请求取消，只受配置的超时约束
func (s *WizardSession) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if s.deps.timeout > 0 {
		return context.WithTimeout(base, s.deps.timeout)
	}
	return context.WithCancel(base)
}

// touch 调用方须持有锁
func (s *WizardSession) touch() { s.updatedAt = s.deps.now() }

// fail 记录用户可见错误，调用方须持有锁
func (s *WizardSession) fail(op string, err error, fallback string) error {
	msg := apperrors.UserMessage(err, fallback)
	var se *StepError
	if errors.As(err, &se) {
		msg = se.Message
	}
	s.errMsg = msg
	s.touch()
	return &StepError{Op: op, Message: msg, Err: err}
}

// ────────────────────── Upload ──────────────────────

// Upload 上传文档并按抽取结果进入下一步
func (s *WizardSession) Upload(ctx context.Context, fileName, contentType string, content []byte) error {
	s.mu.Lock()
	if s.step != StepUpload {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	if s.uploading {
		s.mu.Unlock()
		return ErrActionInProgress
	}
	s.errMsg = ""
	if err := CheckUpload(fileName, contentType); err != nil {
		defer s.mu.Unlock()
		return s.fail("upload", err, UnsupportedFileMessage)
	}
	s.uploading = true
	epoch := s.epoch
	s.touch()
	s.mu.Unlock()

	cctx, cancel := s.detached(ctx)
	defer cancel()
	records, err := s.deps.ingestor.Extract(cctx, fileName, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = false
	if epoch != s.epoch {
		return ErrStaleResult
	}

	if err != nil {
		s.deps.logger.Warn("文档抽取失败", zap.String("session", s.id), zap.String("file", fileName), zap.Error(err))
		return s.fail("upload", err, uploadFallbackMessage)
	}

	s.candidates = records
	s.groups = GroupSubjects(records)
	s.download = nil
	if len(records) == 1 {
		s.setActive(records[0].Clone())
		s.step = StepEdit
	} else {
		s.setActive(nil)
		s.step = StepDisambiguate
	}
	s.touch()

	s.deps.logger.Info("文档抽取完成",
		zap.String("session", s.id),
		zap.String("file", fileName),
		zap.Int("candidates", len(records)),
		zap.String("step", string(s.step)),
	)
	return nil
}

// setActive 更换当前记录，使进行中的生成结果失效；调用方须持有锁
func (s *WizardSession) setActive(rec *model.SyllabusRecord) {
	s.active = rec
	s.activeSeq++
	s.generating = NewFieldFlags()
}

// ────────────────────── Disambiguate ──────────────────────

// SelectCandidate 选择候选进入编辑，编辑的是独立副本
func (s *WizardSession) SelectCandidate(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepDisambiguate {
		return ErrInvalidTransition
	}
	if index < 0 || index >= len(s.candidates) {
		return ErrCandidateIndex
	}
	s.errMsg = ""
	s.setActive(s.candidates[index].Clone())
	s.step = StepEdit
	s.touch()
	return nil
}

// EnterManually 抽取结果为空时手动录入空白记录
func (s *WizardSession) EnterManually() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepDisambiguate || len(s.candidates) != 0 {
		return ErrInvalidTransition
	}
	s.errMsg = ""
	s.setActive(model.BlankRecord())
	s.step = StepEdit
	s.touch()
	return nil
}

// Back 返回候选列表，丢弃当前编辑
func (s *WizardSession) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepEdit || len(s.candidates) <= 1 {
		return ErrInvalidTransition
	}
	if s.exporting {
		return ErrActionInProgress
	}
	s.errMsg = ""
	s.setActive(nil)
	s.step = StepDisambiguate
	s.touch()
	return nil
}

// ────────────────────── Edit ──────────────────────

// UpdateField 直接编辑字段；生成中的字段暂不可编辑
func (s *WizardSession) UpdateField(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepEdit {
		return ErrInvalidTransition
	}
	if !model.IsEditable(key) {
		return fmt.Errorf("%w: %s", ErrFieldNotEditable, key)
	}
	if s.generating.IsActive(key) {
		return fmt.Errorf("%w: %s", ErrFieldBusy, key)
	}
	s.errMsg = ""
	s.active.Set(key, value)
	s.touch()
	return nil
}

// ToggleSymbol 切换某类别下的成果符号
func (s *WizardSession) ToggleSymbol(category, symbol string) error {
	cat, ok := model.ParseOutcomeCategory(category)
	if !ok {
		return ErrUnknownCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepEdit {
		return ErrInvalidTransition
	}
	s.errMsg = ""
	key := model.SymbolField(cat)
	s.active.Set(key, ToggleSymbol(s.active.Get(key), symbol))
	s.touch()
	return nil
}

// SetLanguage 设置导出语言
func (s *WizardSession) SetLanguage(lang string) error {
	l, ok := model.ParseLanguage(lang)
	if !ok {
		return ErrInvalidLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exporting {
		return ErrActionInProgress
	}
	s.errMsg = ""
	s.language = l
	s.touch()
	return nil
}

// ────────────────────── Generate ──────────────────────

type generationTicket struct {
	record *model.SyllabusRecord
	seq    uint64
	epoch  uint64
	flags  *FieldFlags
	lang   model.Language
}

func (s *WizardSession) beginGenerate(field string) (*generationTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepEdit {
		return nil, ErrInvalidTransition
	}
	if !model.IsGeneratable(field) {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotGeneratable, field)
	}
	if err := s.generating.Acquire(field); err != nil {
		return nil, err
	}
	s.errMsg = ""
	s.touch()
	return &generationTicket{
		record: s.active.Clone(),
		seq:    s.activeSeq,
		epoch:  s.epoch,
		flags:  s.generating,
		lang:   s.language,
	}, nil
}

// GenerateField 为当前记录的某个字段生成文本，成功时整体替换字段值
// 不同字段可并发；同一字段重复触发返回 ErrFieldBusy
func (s *WizardSession) GenerateField(ctx context.Context, field string) (string, error) {
	t, err := s.beginGenerate(field)
	if err != nil {
		return "", err
	}
	released := false
	defer func() {
		if !released {
			t.flags.Release(field)
		}
	}()

	cfg := s.deps.providers.Current()
	cctx, cancel := s.detached(ctx)
	text, genErr := s.deps.gateway.Generate(cctx, field, t.record, cfg, t.lang)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	t.flags.Release(field)
	released = true

	if t.epoch != s.epoch || t.seq != s.activeSeq {
		s.deps.logger.Debug("丢弃过期的生成结果", zap.String("session", s.id), zap.String("field", field))
		return "", ErrStaleResult
	}
	if genErr != nil {
		return "", s.fail("generate", genErr, generationFallbackMessage)
	}
	s.active.Set(field, text)
	s.touch()
	return text, nil
}

// GenerateFields 并发生成多个字段，单个失败不影响其他字段；结果按请求顺序返回
func (s *WizardSession) GenerateFields(ctx context.Context, fields []string) []dto.FieldGenerationResult {
	if len(fields) > MaxBatchFields {
		fields = fields[:MaxBatchFields]
	}
	results := make([]dto.FieldGenerationResult, len(fields))

	var g errgroup.Group
	g.SetLimit(batchGenerateLimit)
	for i, field := range fields {
		g.Go(func() error {
			text, err := s.GenerateField(ctx, field)
			results[i] = dto.FieldGenerationResult{Field: field, Text: text}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ────────────────────── Export ──────────────────────

// Export 将当前记录交给渲染；成功进入 Done，失败留在 Edit 并记录错误
func (s *WizardSession) Export(ctx context.Context, format string) error {
	s.mu.Lock()
	if s.step != StepEdit {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	if s.exporting {
		s.mu.Unlock()
		return ErrActionInProgress
	}
	s.errMsg = ""
	s.exporting = true
	rec := s.active.Clone()
	lang := s.language
	epoch, seq := s.epoch, s.activeSeq
	s.touch()
	s.mu.Unlock()

	cctx, cancel := s.detached(ctx)
	defer cancel()
	result, err := s.deps.exporter.Export(cctx, rec, lang, format)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.exporting = false
	if epoch != s.epoch || seq != s.activeSeq {
		return ErrStaleResult
	}
	if err != nil {
		s.deps.logger.Warn("导出失败", zap.String("session", s.id), zap.Error(err))
		if errors.Is(err, ErrUnsupportedFormat) {
			return s.fail("export", err, unsupportedFormatMessage)
		}
		return s.fail("export", err, exportFallbackMessage)
	}

	if result.ArchiveID != 0 {
		s.active.Set(model.FieldID, strconv.FormatUint(result.ArchiveID, 10))
	}
	s.download = result
	s.step = StepDone
	s.touch()
	return nil
}

// ────────────────────── Done ──────────────────────

// StartOver 回到上传步骤，清空候选、当前记录与错误
// 之后到达的协作结果一律丢弃
func (s *WizardSession) StartOver() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepDone {
		return ErrInvalidTransition
	}
	s.reset()
	return nil
}

// reset 调用方须持有锁
func (s *WizardSession) reset() {
	s.epoch++
	s.step = StepUpload
	s.candidates = nil
	s.groups = nil
	s.setActive(nil)
	s.errMsg = ""
	s.download = nil
	s.touch()
}

// ────────────────────── Archive ──────────────────────

// OpenArchived 从归档打开记录直接进入编辑；相当于一次新的开始
func (s *WizardSession) OpenArchived(ctx context.Context, id uint64) error {
	s.mu.Lock()
	if s.uploading || s.exporting {
		s.mu.Unlock()
		return ErrActionInProgress
	}
	s.errMsg = ""
	epoch := s.epoch
	s.mu.Unlock()

	cctx, cancel := s.detached(ctx)
	defer cancel()
	rec, lang, err := s.deps.archive.LoadForEditing(cctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return ErrStaleResult
	}
	if err != nil {
		if errors.Is(err, ErrSyllabusNotFound) {
			return err
		}
		return s.fail("open", err, openFallbackMessage)
	}

	s.reset()
	s.setActive(rec)
	s.language = lang
	s.step = StepEdit
	return nil
}

// ────────────────────── Snapshot ──────────────────────

// Snapshot 当前状态的只读视图
func (s *WizardSession) Snapshot() *dto.WizardSessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := &dto.WizardSessionResponse{
		ID:             s.id,
		Step:           string(s.step),
		Language:       s.language,
		Error:          s.errMsg,
		Uploading:      s.uploading,
		Exporting:      s.exporting,
		Generating:     s.generating.Snapshot(),
		CandidateCount: len(s.candidates),
		CanGoBack:      s.step == StepEdit && len(s.candidates) > 1,
		Active:         s.active.Clone(),
		Download:       s.download,
		UpdatedAt:      s.updatedAt,
	}
	if s.step == StepDisambiguate {
		resp.EmptyExtraction = len(s.candidates) == 0
		resp.Groups = toCandidateGroups(s.groups)
	}
	return resp
}

// emptySubjectName 无名称候选的展示文本
const emptySubjectName = "Przedmiot bez nazwy"

func toCandidateGroups(groups []SubjectGroup) []dto.CandidateGroup {
	out := make([]dto.CandidateGroup, 0, len(groups))
	for _, g := range groups {
		cg := dto.CandidateGroup{Level: g.Level, Candidates: make([]dto.CandidateSummary, 0, len(g.Members))}
		for _, m := range g.Members {
			name := m.Record.SubjectName()
			if name == "" {
				name = emptySubjectName
			}
			cg.Candidates = append(cg.Candidates, dto.CandidateSummary{
				Index:        m.Index,
				Name:         name,
				FieldOfStudy: m.Record.Get(model.FieldFieldOfStudy),
				Semester:     m.Record.Get(model.FieldSemester),
				ECTS:         m.Record.Get(model.FieldECTS),
			})
		}
		out = append(out, cg)
	}
	return out
}
