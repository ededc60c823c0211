package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lumina/internal/auth"
	"lumina/internal/config"
	"lumina/internal/drive"
	"lumina/internal/logging"
	"lumina/internal/store"
	"lumina/internal/webhook"
)

// TokenSource supplies valid bearer tokens for users, refreshing as needed.
type TokenSource interface {
	EnsureValidToken(ctx context.Context, user *store.User) (string, error)
}

// Storage is the remote storage surface the pipeline needs.
type Storage interface {
	ListImages(ctx context.Context, token, folderID string) []drive.File
	Download(ctx context.Context, token, fileID string) ([]byte, error)
	Upload(ctx context.Context, token string, data []byte, name, folderID, mimeType string) (*drive.File, error)
	Delete(ctx context.Context, token, fileID string)
	GetQuota(ctx context.Context, token string) *drive.Quota
}

// Manager owns the scheduler loop and per-tick processing.
type Manager struct {
	cfg      *config.Config
	store    *store.Store
	tokens   TokenSource
	storage  Storage
	notifier webhook.Service
	logger   *slog.Logger

	tickInterval  time.Duration
	maxConcurrent int
	locks         *userLocks

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a watcher manager with production dependencies.
func NewManager(cfg *config.Config, st *store.Store, logger *slog.Logger) *Manager {
	return NewManagerWithDeps(cfg, st,
		auth.NewManager(cfg, st, logger),
		drive.NewClient(cfg, logger),
		webhook.NewService(cfg),
		logger,
	)
}

// NewManagerWithDeps constructs a watcher manager with injected dependencies
// (used in tests).
func NewManagerWithDeps(cfg *config.Config, st *store.Store, tokens TokenSource, storage Storage, notifier webhook.Service, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	maxConcurrent := cfg.Watcher.MaxConcurrentUsers
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Manager{
		cfg:           cfg,
		store:         st,
		tokens:        tokens,
		storage:       storage,
		notifier:      notifier,
		logger:        logging.NewComponentLogger(logger, "watcher"),
		tickInterval:  time.Duration(cfg.Watcher.TickIntervalSeconds) * time.Second,
		maxConcurrent: maxConcurrent,
		locks:         newUserLocks(),
	}
}

// Start begins the scheduler loop. Ticks fire on a fixed interval and each
// runs in its own goroutine, so a slow tick never delays the next one; the
// per-user locks keep overlapping ticks from touching the same user twice.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("watcher already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates the scheduler loop and waits for in-flight ticks.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the scheduler loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	m.logger.Info("watcher started",
		logging.Duration("tick_interval", m.tickInterval),
		logging.Int("max_concurrent_users", m.maxConcurrent),
	)

	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("watcher stopped")
			return
		case <-ticker.C:
			m.wg.Add(1)
			go func() {
				defer m.wg.Done()
				m.RunTick(ctx)
			}()
		}
	}
}
