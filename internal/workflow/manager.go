package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"clipcheck/internal/config"
	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/stage"
)

// Stage binds a handler to its slice of the job lifecycle. A worker claims a
// job sitting in Start, moves it to Processing, runs the handler, and leaves
// it in Done for the next stage to pick up.
type Stage struct {
	Name       string
	Start      queue.Status
	Processing queue.Status
	Done       queue.Status
	Handler    stage.Handler
}

// Manager coordinates queue processing using registered stages. Workers
// share the stage table and compete for jobs through compare-and-swap
// status transitions, so any worker can run any stage.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration

	stages       []Stage
	stageByStart map[queue.Status]Stage
	startOrder   []queue.Status

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	managerLogger := logger
	if managerLogger != nil {
		managerLogger = managerLogger.With(logging.String("component", "workflow"))
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       managerLogger,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		stageByStart: make(map[queue.Status]Stage),
	}
}

// Register appends a stage to the pipeline. Stages must be registered before
// Start.
func (m *Manager) Register(s Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, s)
	m.stageByStart[s.Start] = s
	m.startOrder = append(m.startOrder, s.Start)
}

// Start rolls stranded in-flight jobs back to their stage entry, then spawns
// the configured worker loops.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	reclaimed, err := m.store.ReclaimInFlight(ctx)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if reclaimed > 0 && m.logger != nil {
		m.logger.Info("reclaimed stranded jobs", logging.Int64("count", reclaimed))
	}

	workers := m.cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(workers)
	m.mu.Unlock()

	for i := 0; i < workers; i++ {
		go m.runWorker(runCtx, i)
	}
	return nil
}

// Stop terminates background processing and waits for workers to drain.
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

// Health reports readiness of every registered stage handler.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	m.mu.RLock()
	stages := make([]Stage, len(m.stages))
	copy(stages, m.stages)
	m.mu.RUnlock()

	checks := make([]stage.Health, 0, len(stages))
	for _, s := range stages {
		if s.Handler == nil {
			checks = append(checks, stage.Unhealthy(s.Name, "handler missing"))
			continue
		}
		checks = append(checks, s.Handler.HealthCheck(ctx))
	}
	return checks
}

// Running reports whether worker loops are active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastError returns the most recent worker error, for status reporting.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
