package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/services"
	"clipcheck/internal/stage"
	"clipcheck/internal/testsupport"
)

type scriptedHandler struct {
	name     string
	executed int
	execErr  error
	onExec   func(job *queue.Job)
}

func (h *scriptedHandler) Prepare(ctx context.Context, job *queue.Job) error {
	return nil
}

func (h *scriptedHandler) Execute(ctx context.Context, job *queue.Job) error {
	h.executed++
	if h.onExec != nil {
		h.onExec(job)
	}
	return h.execErr
}

func (h *scriptedHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(h.name)
}

func newTestManager(t *testing.T) (*Manager, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return NewManager(cfg, store, logging.NewNop()), store
}

func registerPipeline(m *Manager, handlers ...*scriptedHandler) {
	stages := []Stage{
		{Name: "capture", Start: queue.StatusQueued, Processing: queue.StatusCapturing, Done: queue.StatusCaptured},
		{Name: "extract", Start: queue.StatusCaptured, Processing: queue.StatusExtracting, Done: queue.StatusExtracted},
		{Name: "transcribe", Start: queue.StatusExtracted, Processing: queue.StatusTranscribing, Done: queue.StatusTranscribed},
		{Name: "score", Start: queue.StatusTranscribed, Processing: queue.StatusScoring, Done: queue.StatusCompleted},
	}
	for i, s := range stages {
		if i < len(handlers) {
			s.Handler = handlers[i]
		} else {
			s.Handler = &scriptedHandler{name: s.Name}
		}
		m.Register(s)
	}
}

func waitForStatus(t *testing.T, store *queue.Store, id string, want queue.Status) *queue.Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if job.Status == want {
			return job
		}
		if job.Status.IsTerminal() && job.Status != want {
			t.Fatalf("job reached terminal status %s, want %s (error: %s)", job.Status, want, job.ErrorMessage)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %s", want)
	return nil
}

func TestManagerRunsJobThroughAllStages(t *testing.T) {
	manager, store := newTestManager(t)
	handlers := []*scriptedHandler{
		{name: "capture"}, {name: "extract"}, {name: "transcribe"}, {name: "score"},
	}
	registerPipeline(manager, handlers...)

	job := testsupport.NewJob(t, store, "https://youtu.be/abc123")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	waitForStatus(t, store, job.ID, queue.StatusCompleted)
	for _, handler := range handlers {
		if handler.executed != 1 {
			t.Fatalf("handler %s executed %d times", handler.name, handler.executed)
		}
	}
}

func TestManagerRequiresStages(t *testing.T) {
	manager, _ := newTestManager(t)
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("expected error without registered stages")
	}
}

func TestManagerStartReclaimsInFlightJobs(t *testing.T) {
	manager, store := newTestManager(t)
	registerPipeline(manager)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "https://youtu.be/abc123")
	job.Status = queue.StatusExtracting
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := manager.Start(runCtx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	// Rolled back to captured, the pipeline finishes the remaining stages.
	waitForStatus(t, store, job.ID, queue.StatusCompleted)
}

func TestProcessJobRetriesRetryableFailure(t *testing.T) {
	manager, store := newTestManager(t)
	failing := &scriptedHandler{
		name:    "capture",
		execErr: services.Wrap(services.ErrExternalTool, "capturing", "drive browser", "tab crashed", nil),
	}
	registerPipeline(manager, failing)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "https://youtu.be/abc123")

	if err := manager.processJob(ctx, logging.NewNop(), job); err == nil {
		t.Fatal("expected stage error")
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusQueued {
		t.Fatalf("expected requeue, got %s", fetched.Status)
	}
	if fetched.Attempts != 1 {
		t.Fatalf("attempts = %d", fetched.Attempts)
	}

	// Second failure exhausts the default retry limit of one.
	if err := manager.processJob(ctx, logging.NewNop(), fetched); err == nil {
		t.Fatal("expected stage error")
	}
	fetched, err = store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusFailed {
		t.Fatalf("expected failed after retry limit, got %s", fetched.Status)
	}
	if fetched.ErrorMessage == "" {
		t.Fatal("expected error message on failed job")
	}
}

func TestProcessJobFailsFastOnValidationError(t *testing.T) {
	manager, store := newTestManager(t)
	failing := &scriptedHandler{
		name:    "capture",
		execErr: services.Wrap(services.ErrValidation, "capturing", "validate inputs", "bad URL", nil),
	}
	registerPipeline(manager, failing)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "https://youtu.be/abc123")

	if err := manager.processJob(ctx, logging.NewNop(), job); err == nil {
		t.Fatal("expected stage error")
	}
	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusFailed {
		t.Fatalf("validation failure must not requeue, got %s", fetched.Status)
	}
	if failing.executed != 1 {
		t.Fatalf("handler executed %d times", failing.executed)
	}
}

func TestProcessJobSkipsLostClaim(t *testing.T) {
	manager, store := newTestManager(t)
	handler := &scriptedHandler{name: "capture"}
	registerPipeline(manager, handler)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "https://youtu.be/abc123")

	// Another worker already claimed the job.
	if ok, err := store.Transition(ctx, job.ID, queue.StatusQueued, queue.StatusCapturing); err != nil || !ok {
		t.Fatalf("claim setup failed: ok=%v err=%v", ok, err)
	}

	if err := manager.processJob(ctx, logging.NewNop(), job); err != nil {
		t.Fatalf("processJob failed: %v", err)
	}
	if handler.executed != 0 {
		t.Fatal("handler must not run on a lost claim")
	}
}

func TestManagerHealthReportsAllStages(t *testing.T) {
	manager, _ := newTestManager(t)
	registerPipeline(manager)

	checks := manager.Health(context.Background())
	if len(checks) != 4 {
		t.Fatalf("expected 4 health checks, got %d", len(checks))
	}
	for _, check := range checks {
		if !check.Ready {
			t.Fatalf("expected healthy stage, got %#v", check)
		}
	}
}

func TestManagerStopIsIdempotent(t *testing.T) {
	manager, store := newTestManager(t)
	registerPipeline(manager)
	_ = store

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	manager.Stop()
	manager.Stop()

	if errors.Is(manager.LastError(), context.Canceled) {
		t.Fatal("shutdown must not record a worker error")
	}
}
