package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/moondec/syllabus/internal/model"
	apperrors "github.com/moondec/syllabus/pkg/errors"
)

func generationRecord() *model.SyllabusRecord {
	rec := model.NewSyllabusRecord(map[string]string{
		model.FieldSubjectName:  "Chemia ogólna",
		model.FieldFieldOfStudy: "Biotechnologia",
		model.FieldLevel:        "I stopnia",
		model.FieldContent:      "Budowa atomu",
		model.FieldObjectives:   "Zapoznanie z podstawami",
		model.FieldOutcomesW:    "K_W02, K_W01",
		model.FieldRefOutcomes:  "nie wysyłać",
		model.FieldKnowledge:    "stary tekst",
	})
	rec.AvailableOutcomes = model.OutcomeCatalog{
		model.CategoryKnowledge: {
			{Symbol: "K_W01", Description: "zna pojęcia", Verification: "egzamin"},
			{Symbol: "K_W02", Description: "zna metody"},
			{Symbol: "K_W03", Description: "niewybrany"},
		},
	}
	return rec
}

func TestBuildGenerationRequest_ContextAllowList(t *testing.T) {
	cfg := model.ProviderConfig{EndpointURL: "e", Model: "m", APIKey: "k"}
	req := BuildGenerationRequest(model.FieldKnowledge, generationRecord(), cfg, "")

	if req.SubjectName != "Chemia ogólna" || req.FieldType != model.FieldKnowledge {
		t.Errorf("请求头部错误: %+v", req)
	}
	if req.Language != model.LanguageNative {
		t.Errorf("空语言应默认 pl，实际=%q", req.Language)
	}
	ctx := req.ContextInfo
	if ctx.Tresci != "Budowa atomu" || ctx.Kierunek != "Biotechnologia" || ctx.Poziom != "I stopnia" || ctx.CelPrzedmiotu != "Zapoznanie z podstawami" {
		t.Errorf("上下文字段错误: %+v", ctx)
	}
	if req.FieldValue != "stary tekst" {
		t.Errorf("应携带当前字段值，实际=%q", req.FieldValue)
	}
	if req.ProviderConfig == nil || *req.ProviderConfig != cfg {
		t.Errorf("提供方配置应显式传入，实际=%+v", req.ProviderConfig)
	}

	// 目录顺序，而非选择顺序；描述外的字段不发送
	if len(ctx.SymbolsInfo) != 2 || ctx.SymbolsInfo[0].Symbol != "K_W01" || ctx.SymbolsInfo[1].Symbol != "K_W02" {
		t.Fatalf("符号信息错误: %+v", ctx.SymbolsInfo)
	}
	if ctx.SymbolsInfo[0].Verification != "" {
		t.Error("符号信息不应包含 verification")
	}
}

func TestBuildGenerationRequest_NoSymbolsForPlainField(t *testing.T) {
	req := BuildGenerationRequest(model.FieldObjectives, generationRecord(), model.ProviderConfig{}, model.LanguageTranslated)
	if req.ContextInfo.SymbolsInfo != nil {
		t.Errorf("非成果字段不应携带符号信息: %+v", req.ContextInfo.SymbolsInfo)
	}
	if req.Language != model.LanguageTranslated {
		t.Errorf("期望 en，实际=%q", req.Language)
	}
}

func TestGenerationGateway_RejectsNonGeneratable(t *testing.T) {
	gw := NewGenerationGateway(newMockGenerator(), zap.NewNop(), nil)
	_, err := gw.Generate(context.Background(), model.FieldSubjectName, generationRecord(), model.ProviderConfig{}, "")
	if !errors.Is(err, ErrFieldNotGeneratable) {
		t.Errorf("期望 ErrFieldNotGeneratable，实际: %v", err)
	}
}

func TestGenerationGateway_ErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"缺少凭据", apperrors.ErrMissingCredential, MissingCredentialMessage},
		{"服务端校验", apperrors.NewServiceError("text_generation", 400, "Pole nieobsługiwane"), "Pole nieobsługiwane"},
		{"连接失败", apperrors.NewTransportError("text_generation", errors.New("dial tcp")), apperrors.ConnectionMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newMockGenerator()
			gen.errs[model.FieldObjectives] = tt.err
			gw := NewGenerationGateway(gen, zap.NewNop(), nil)

			_, err := gw.Generate(context.Background(), model.FieldObjectives, generationRecord(), model.ProviderConfig{}, "")
			var se *StepError
			if !errors.As(err, &se) {
				t.Fatalf("期望 StepError，实际: %v", err)
			}
			if se.Message != tt.want {
				t.Errorf("期望消息 %q，实际=%q", tt.want, se.Message)
			}
			if !errors.Is(err, tt.err) {
				t.Error("StepError 应保留原始错误")
			}
		})
	}
}

func TestFieldFlags_PerFieldExclusion(t *testing.T) {
	f := NewFieldFlags()
	if err := f.Acquire("a"); err != nil {
		t.Fatalf("首次获取失败: %v", err)
	}
	if err := f.Acquire("a"); !errors.Is(err, ErrFieldBusy) {
		t.Errorf("同一字段应返回 ErrFieldBusy，实际: %v", err)
	}
	if err := f.Acquire("b"); err != nil {
		t.Errorf("不同字段应可并发: %v", err)
	}
	if got := f.Snapshot(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("快照错误: %v", got)
	}
	f.Release("a")
	if f.IsActive("a") || !f.IsActive("b") {
		t.Error("释放后状态错误")
	}
}

func TestFieldFlags_ConcurrentAcquire(t *testing.T) {
	f := NewFieldFlags()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.Acquire("x") == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("同一字段只应有 1 个获取成功，实际=%d", wins)
	}
}
