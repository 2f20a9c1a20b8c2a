package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/moondec/syllabus/internal/model"
	apperrors "github.com/moondec/syllabus/pkg/errors"
	"github.com/moondec/syllabus/pkg/metrics"
)

var (
	ErrFieldNotGeneratable = errors.New("to pole nie obsługuje generowania AI")
	ErrFieldBusy           = errors.New("generowanie tego pola już trwa")
)

const (
	// MissingCredentialMessage 缺少凭据时给用户的操作指引
	MissingCredentialMessage = "Brak klucza API do modelu LLM. Otwórz Ustawienia i wprowadź klucz API, a następnie spróbuj ponownie."
	generationFallbackMessage = "Wystąpił błąd podczas generowania tekstu."
)

// TextGenerator 文本生成协作方（远程服务或直连 LLM）
type TextGenerator interface {
	GenerateField(ctx context.Context, req model.GenerationRequest) (string, error)
}

// GenerationGateway AI 字段生成网关
// 负责组装上下文、调用生成方、将失败映射为用户可读消息
type GenerationGateway struct {
	generator TextGenerator
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewGenerationGateway 创建生成网关；m 可为 nil
func NewGenerationGateway(generator TextGenerator, logger *zap.Logger, m *metrics.Metrics) *GenerationGateway {
	return &GenerationGateway{generator: generator, logger: logger, metrics: m}
}

// Generate 为记录的某个字段生成文本
// 提供方配置由调用方显式传入，网关本身不读取任何全局状态
func (g *GenerationGateway) Generate(
	ctx context.Context,
	fieldKey string,
	record *model.SyllabusRecord,
	cfg model.ProviderConfig,
	lang model.Language,
) (string, error) {
	if !model.IsGeneratable(fieldKey) {
		return "", ErrFieldNotGeneratable
	}

	req := BuildGenerationRequest(fieldKey, record, cfg, lang)

	start := time.Now()
	text, err := g.generator.GenerateField(ctx, req)
	g.metrics.ObserveCollaborator("text_generation", err, time.Since(start))
	g.metrics.IncGeneration(fieldKey, err)

	if err != nil {
		g.logger.Warn("字段生成失败",
			zap.String("field", fieldKey),
			zap.String("subject", req.SubjectName),
			zap.Error(err),
		)
		return "", &StepError{Op: "generate", Message: GenerationMessage(err), Err: err}
	}

	g.logger.Debug("字段生成完成", zap.String("field", fieldKey), zap.Int("length", len(text)))
	return text, nil
}

// GenerationMessage 生成失败的用户消息
func GenerationMessage(err error) string {
	if errors.Is(err, apperrors.ErrMissingCredential) {
		return MissingCredentialMessage
	}
	return apperrors.UserMessage(err, generationFallbackMessage)
}

// BuildGenerationRequest 组装请求体
// 上下文只取白名单字段；参考提示字段（ref_*）永不发送
func BuildGenerationRequest(
	fieldKey string,
	record *model.SyllabusRecord,
	cfg model.ProviderConfig,
	lang model.Language,
) model.GenerationRequest {
	if lang == "" {
		lang = model.LanguageNative
	}
	cfgCopy := cfg
	req := model.GenerationRequest{
		SubjectName: record.SubjectName(),
		FieldType:   fieldKey,
		ContextInfo: model.GenerationContext{
			Tresci:        record.Get(model.FieldContent),
			Kierunek:      record.Get(model.FieldFieldOfStudy),
			Poziom:        record.Get(model.FieldLevel),
			CelPrzedmiotu: record.Get(model.FieldObjectives),
		},
		ProviderConfig: &cfgCopy,
		Language:       lang,
		FieldValue:     record.Get(fieldKey),
	}

	if fd, ok := model.LookupField(fieldKey); ok && fd.Category != "" {
		req.ContextInfo.SymbolsInfo = ResolveSymbols(record, fd.Category)
	}
	return req
}

// ResolveSymbols 按目录顺序返回当前选中的符号及其描述
func ResolveSymbols(record *model.SyllabusRecord, cat model.OutcomeCategory) []model.OutcomeOption {
	selected := DecodeSymbols(record.Get(model.SymbolField(cat)))
	if len(selected) == 0 {
		return nil
	}
	var out []model.OutcomeOption
	for _, opt := range record.AvailableOutcomes.Options(cat) {
		if selected.Contains(opt.Symbol) {
			out = append(out, model.OutcomeOption{Symbol: opt.Symbol, Description: opt.Description})
		}
	}
	return out
}

// ── 按字段的进行中标记 ──

// FieldFlags 每个字段独立的生成进行中标记
// 不同字段可并发生成；同一字段同一时刻只允许一个请求
type FieldFlags struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewFieldFlags 创建标记集合
func NewFieldFlags() *FieldFlags {
	return &FieldFlags{active: make(map[string]struct{})}
}

// Acquire 标记字段进行中；已在进行中返回 ErrFieldBusy
func (f *FieldFlags) Acquire(field string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.active[field]; busy {
		return fmt.Errorf("%w: %s", ErrFieldBusy, field)
	}
	f.active[field] = struct{}{}
	return nil
}

// Release 清除标记
func (f *FieldFlags) Release(field string) {
	f.mu.Lock()
	delete(f.active, field)
	f.mu.Unlock()
}

// IsActive 字段是否在生成中
func (f *FieldFlags) IsActive(field string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[field]
	return ok
}

// Snapshot 进行中的字段（排序后）
func (f *FieldFlags) Snapshot() []string {
	f.mu.Lock()
	out := make([]string, 0, len(f.active))
	for k := range f.active {
		out = append(out, k)
	}
	f.mu.Unlock()
	sort.Strings(out)
	return out
}
