package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moondec/syllabus/internal/dto"
	"github.com/moondec/syllabus/pkg/metrics"
)

// ── 会话注册表错误 ──

var (
	ErrSessionNotFound = errors.New("sesja nie istnieje lub wygasła")
	ErrTooManySessions = errors.New("zbyt wiele aktywnych sesji, spróbuj ponownie później")
)

const sweepInterval = time.Minute

// WizardService 向导会话注册表
//
// 会话只存在于内存；空闲超过 TTL 且没有进行中调用的会话由后台清理。
type WizardService interface {
	Create() (*WizardSession, error)
	Get(id string) (*WizardSession, error)
	Discard(id string) error
	Count() int
	// Stop 停止后台清理
	Stop()
}

// WizardDeps WizardService 依赖
type WizardDeps struct {
	Ingestor    DocumentIngestor
	Gateway     *GenerationGateway
	Exporter    ExportService
	Archive     ArchiveService
	Providers   ProviderConfigService
	Timeout     time.Duration
	SessionTTL  time.Duration
	MaxSessions int
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

type wizardService struct {
	deps        *sessionDeps
	ttl         time.Duration
	maxSessions int
	metrics     *metrics.Metrics
	logger      *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*WizardSession

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWizardService 创建注册表并启动后台清理
func NewWizardService(d WizardDeps) WizardService {
	s := newWizardService(d, time.Now)
	go s.sweepLoop(sweepInterval)
	return s
}

func newWizardService(d WizardDeps, now func() time.Time) *wizardService {
	return &wizardService{
		deps: &sessionDeps{
			ingestor:  d.Ingestor,
			gateway:   d.Gateway,
			exporter:  d.Exporter,
			archive:   d.Archive,
			providers: d.Providers,
			timeout:   d.Timeout,
			logger:    d.Logger,
			now:       now,
		},
		ttl:         d.SessionTTL,
		maxSessions: d.MaxSessions,
		metrics:     d.Metrics,
		logger:      d.Logger,
		sessions:    make(map[string]*WizardSession),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (s *wizardService) Create() (*WizardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return nil, ErrTooManySessions
	}
	sess := newWizardSession(uuid.New().String(), s.deps)
	s.sessions[sess.ID()] = sess
	s.metrics.SetActiveSessions(len(s.sessions))

	s.logger.Debug("会话已创建", zap.String("session", sess.ID()))
	return sess, nil
}

func (s *wizardService) Get(id string) (*WizardSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *wizardService) Discard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.metrics.SetActiveSessions(len(s.sessions))
	return nil
}

func (s *wizardService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *wizardService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

func (s *wizardService) sweepLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.logger.Info("清理过期会话", zap.Int("removed", n))
			}
		}
	}
}

// sweep 移除空闲超时的会话，返回移除数量
func (s *wizardService) sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.deps.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.busy() || sess.LastActivity().After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	if removed > 0 {
		s.metrics.SetActiveSessions(len(s.sessions))
	}
	return removed
}

// SessionSnapshot 便于 Handler 一步取快照
func SessionSnapshot(ws WizardService, id string) (*dto.WizardSessionResponse, error) {
	sess, err := ws.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(), nil
}
