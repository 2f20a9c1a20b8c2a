package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/repository"
)

// ── Mock SyllabusRepository ──

type mockSyllabusRepo struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Syllabus
	nextID uint64
	err    error // 非 nil 时所有操作返回该错误
}

func newMockSyllabusRepo() *mockSyllabusRepo {
	return &mockSyllabusRepo{rows: make(map[uint64]*model.Syllabus), nextID: 1}
}

func (m *mockSyllabusRepo) List(_ context.Context, query string) ([]model.Syllabus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var result []model.Syllabus
	for _, s := range m.rows {
		if q != "" &&
			!strings.Contains(strings.ToLower(s.SubjectName), q) &&
			!strings.Contains(strings.ToLower(s.FieldOfStudy), q) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *mockSyllabusRepo) GetByID(_ context.Context, id uint64) (*model.Syllabus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.rows[id]; ok {
		cp := *s
		cp.Data = model.RecordJSON{SyllabusRecord: s.Data.Clone()}
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSyllabusRepo) Create(_ context.Context, s *model.Syllabus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *mockSyllabusRepo) Update(_ context.Context, s *model.Syllabus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	old, ok := m.rows[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	cp.CreatedAt = old.CreatedAt
	cp.UpdatedAt = time.Now()
	m.rows[s.ID] = &cp
	return nil
}

func (m *mockSyllabusRepo) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

// ── Mock SettingsRepository ──

type mockSettingsRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{data: make(map[string][]byte)}
}

func (m *mockSettingsRepo) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	b, ok := m.data[key]
	if !ok {
		return nil, repository.ErrSettingsNotFound
	}
	return b, nil
}

func (m *mockSettingsRepo) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// ── Mock 协作方 ──

// mockIngestor 返回预设记录；gate 非 nil 时阻塞到 gate 关闭
type mockIngestor struct {
	records []*model.SyllabusRecord
	err     error
	gate    chan struct{}
	calls   int
	mu      sync.Mutex
}

func (m *mockIngestor) Extract(ctx context.Context, _ string, _ []byte) ([]*model.SyllabusRecord, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*model.SyllabusRecord, len(m.records))
	for i, r := range m.records {
		out[i] = r.Clone()
	}
	return out, nil
}

// mockGenerator 按字段返回文本；gates 中有该字段时阻塞到 gate 关闭
type mockGenerator struct {
	mu       sync.Mutex
	texts    map[string]string
	errs     map[string]error
	gates    map[string]chan struct{}
	requests []model.GenerationRequest
}

func newMockGenerator() *mockGenerator {
	return &mockGenerator{
		texts: make(map[string]string),
		errs:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (m *mockGenerator) GenerateField(ctx context.Context, req model.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	gate := m.gates[req.FieldType]
	text, err := m.texts[req.FieldType], m.errs[req.FieldType]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if text == "" {
		text = "wygenerowano: " + req.FieldType
	}
	return text, nil
}

func (m *mockGenerator) lastRequest() model.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

// mockRenderer 返回二进制或下载地址
type mockRenderer struct {
	mu      sync.Mutex
	doc     *model.RenderedDocument
	err     error
	gate    chan struct{}
	formats []string
	langs   []model.Language
}

func (m *mockRenderer) Render(ctx context.Context, rec *model.SyllabusRecord, lang model.Language, format string) (*model.RenderedDocument, error) {
	m.mu.Lock()
	m.formats = append(m.formats, format)
	m.langs = append(m.langs, lang)
	m.mu.Unlock()
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.doc != nil {
		d := *m.doc
		return &d, nil
	}
	return &model.RenderedDocument{Content: []byte("PK-" + rec.SubjectName()), FileName: "Sylabus." + format}, nil
}

// mockPublisher 记录投递的文件名
type mockPublisher struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (m *mockPublisher) Upload(_ context.Context, fileName string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, fileName)
	return m.err
}

var errMockBackend = errors.New("mock backend failure")
