package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/services"
)

func (m *Manager) runWorker(ctx context.Context, index int) {
	defer m.wg.Done()
	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.Int("worker", index))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.NextForStatuses(ctx, m.startOrder...)
		if err != nil {
			m.setLastError(err)
			logger.Error("failed to fetch next job",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
			m.sleep(ctx, time.Duration(m.cfg.Workflow.ErrorRetryInterval)*time.Second)
			continue
		}
		if job == nil {
			m.sleep(ctx, m.pollInterval)
			continue
		}

		if err := m.processJob(ctx, logger, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) processJob(ctx context.Context, logger *slog.Logger, job *queue.Job) error {
	s, ok := m.stageByStart[job.Status]
	if !ok {
		logger.Warn("no stage configured for status", logging.String("status", string(job.Status)))
		m.sleep(ctx, m.pollInterval)
		return nil
	}

	// Compare-and-swap claim so concurrent workers cannot run the same job.
	claimed, err := m.store.Transition(ctx, job.ID, s.Start, s.Processing)
	if err != nil {
		m.setLastError(err)
		return err
	}
	if !claimed {
		return nil
	}
	job.Status = s.Processing

	requestID := uuid.NewString()
	stageCtx := services.WithJobID(ctx, job.ID)
	stageCtx = services.WithStage(stageCtx, s.Name)
	stageCtx = services.WithRequestID(stageCtx, requestID)
	stageLogger := logging.WithContext(stageCtx, logger)

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(s.Processing)),
		logging.String("source_url", strings.TrimSpace(job.SourceURL)),
	)

	if s.Handler == nil {
		failure := fmt.Errorf("stage %s missing handler", s.Name)
		m.failJob(stageCtx, stageLogger, job, failure)
		m.setLastError(failure)
		return failure
	}

	if err := s.Handler.Prepare(stageCtx, job); err != nil {
		m.handleStageFailure(stageCtx, stageLogger, s, job, err)
		return err
	}
	if err := m.store.Update(stageCtx, job); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	if execErr := s.Handler.Execute(stageCtx, job); execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(stageCtx, stageLogger, s, job, execErr)
		return execErr
	}

	if job.Status == s.Processing || job.Status == "" {
		job.Status = s.Done
	}
	if err := m.store.Update(stageCtx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(job.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

// handleStageFailure decides between redelivery and terminal failure. A
// retryable failure under the attempt limit sends the whole job back to the
// front of the pipeline; artifacts from the failed run are overwritten on
// the next pass.
func (m *Manager) handleStageFailure(ctx context.Context, logger *slog.Logger, s Stage, job *queue.Job, stageErr error) {
	m.setLastError(stageErr)
	job.Attempts++

	retryLimit := m.cfg.Workflow.RetryLimit
	if services.Retryable(stageErr) && job.Attempts <= retryLimit {
		job.Status = queue.StatusQueued
		job.ErrorMessage = strings.TrimSpace(stageErr.Error())
		job.SetProgress("retry", fmt.Sprintf("%s failed, retrying from the start", s.Name))
		logger.Warn("stage failed, requeueing job",
			logging.String(logging.FieldEventType, "stage_retry"),
			logging.Int("attempts", job.Attempts),
			logging.Error(stageErr),
		)
		if err := m.store.Update(ctx, job); err != nil {
			logger.Error("failed to persist retry", logging.Error(err))
		}
		return
	}

	m.failJob(ctx, logger, job, stageErr)
}

func (m *Manager) failJob(ctx context.Context, logger *slog.Logger, job *queue.Job, stageErr error) {
	message := "stage failed"
	if stageErr != nil {
		message = strings.TrimSpace(stageErr.Error())
	}
	job.SetFailed(message)
	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_message", message),
		logging.Error(stageErr),
	)
	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not persist failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
