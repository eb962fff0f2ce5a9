package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"clipcheck/internal/browser"
	"clipcheck/internal/config"
	"clipcheck/internal/deps"
	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/results"
	"clipcheck/internal/workflow"
)

// Daemon coordinates the browser pool, workflow manager, and API server, and
// enforces single-instance execution through a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	results  *results.Store
	pool     *browser.Pool
	workflow *workflow.Manager
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	QueueDBPath  string
	LockFilePath string
	Queue        queue.HealthSummary
	Workflow     WorkflowStatus
	Dependencies []deps.Status
}

// WorkflowStatus summarizes workflow runtime state for status reporting.
type WorkflowStatus struct {
	Running     bool
	LastError   string
	StageHealth []StageHealth
}

// StageHealth reports a single stage handler readiness check.
type StageHealth struct {
	Name   string
	Ready  bool
	Detail string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, resultStore *results.Store, pool *browser.Pool, wf *workflow.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || resultStore == nil || wf == nil {
		return nil, errors.New("daemon requires config, stores, and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "clipcheckd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		results:  resultStore,
		pool:     pool,
		workflow: wf,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	apiSrv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = apiSrv
	return d, nil
}

// Start acquires the daemon lock, warms the browser pool, then launches the
// workflow manager and the API server. The browser pool must be ready before
// any job is claimed, so pool startup blocks.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipcheck daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if d.pool != nil {
		if err := d.pool.Start(d.ctx); err != nil {
			d.teardownAfterStartFailure()
			return fmt.Errorf("start browser pool: %w", err)
		}
	}

	if err := d.workflow.Start(d.ctx); err != nil {
		if d.pool != nil {
			d.pool.Stop()
		}
		d.teardownAfterStartFailure()
		return fmt.Errorf("start workflow: %w", err)
	}

	if err := d.api.start(d.ctx); err != nil {
		d.workflow.Stop()
		if d.pool != nil {
			d.pool.Stop()
		}
		d.teardownAfterStartFailure()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("clipcheck daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) teardownAfterStartFailure() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx = nil
	d.cancel = nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.workflow.Stop()
	if d.pool != nil {
		d.pool.Stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("clipcheck daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Submit validates nothing beyond persistence and enqueues a new analysis job.
func (d *Daemon) Submit(ctx context.Context, sourceURL string) (*queue.Job, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	job, err := d.store.NewJob(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	d.logger.Info("job queued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("source_url", sourceURL))
	return job, nil
}

// ListQueue returns queue entries filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Job, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	return d.store.List(ctx, statuses...)
}

// ClearQueue removes all queue entries.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.Clear(ctx)
}

// ClearCompleted removes only completed queue entries.
func (d *Daemon) ClearCompleted(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearCompleted(ctx)
}

// ClearFailed removes only failed queue entries.
func (d *Daemon) ClearFailed(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearFailed(ctx)
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		Dependencies: deps.CheckBinaries(deps.Defaults(d.cfg.Extraction.FFmpegCommand, d.cfg.Extraction.YtDlpCommand)),
	}

	if summary, err := d.store.Health(ctx); err == nil {
		status.Queue = summary
	}

	wf := WorkflowStatus{Running: d.workflow.Running()}
	if err := d.workflow.LastError(); err != nil {
		wf.LastError = err.Error()
	}
	for _, check := range d.workflow.Health(ctx) {
		wf.StageHealth = append(wf.StageHealth, StageHealth{
			Name:   check.Name,
			Ready:  check.Ready,
			Detail: check.Detail,
		})
	}
	status.Workflow = wf
	return status
}
