package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const jobColumns = `id, source_url, status, attempts, error_message,
    screenshot_path, video_title, video_channel, audio_path, transcript_json,
    score_source, progress_stage, progress_message, created_at, updated_at`

// ErrJobNotFound is returned when a lookup misses.
var ErrJobNotFound = errors.New("job not found")

// NewJob inserts a queued job for the given source URL and returns it with a
// freshly generated identity.
func (s *Store) NewJob(ctx context.Context, sourceURL string) (*Job, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (id, source_url, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		id,
		strings.TrimSpace(sourceURL),
		StatusQueued,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identity.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

// Update persists all mutable job fields and refreshes updated_at.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("nil job")
	}
	job.UpdatedAt = time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET
            source_url = ?, status = ?, attempts = ?, error_message = ?,
            screenshot_path = ?, video_title = ?, video_channel = ?,
            audio_path = ?, transcript_json = ?, score_source = ?,
            progress_stage = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		job.SourceURL,
		job.Status,
		job.Attempts,
		job.ErrorMessage,
		job.ScreenshotPath,
		job.VideoTitle,
		job.VideoChannel,
		job.AudioPath,
		job.TranscriptJSON,
		job.ScoreSource,
		job.ProgressStage,
		job.ProgressMessage,
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %s: rows affected: %w", job.ID, err)
	}
	if affected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Transition moves a job from one status to another only when it is still in
// the expected status. It reports whether the transition was applied, which
// guards against two workers claiming the same job.
func (s *Store) Transition(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("transition job %s %s->%s: %w", id, from, to, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition job %s: rows affected: %w", id, err)
	}
	return affected > 0, nil
}

// NextForStatuses returns the oldest job matching any of the provided
// statuses, or nil when the queue holds none.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Job, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = status
	}
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY created_at ASC LIMIT 1`

	row := s.db.QueryRowContext(ensureContext(ctx), query, args...)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next job: %w", err)
	}
	return job, nil
}

// List returns jobs filtered by optional statuses, newest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Health aggregates queue counts for status reporting.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch {
		case status == StatusQueued:
			summary.Queued += count
		case status == StatusCompleted:
			summary.Completed += count
		case status == StatusFailed:
			summary.Failed += count
		default:
			summary.Processing += count
		}
	}
	return summary, rows.Err()
}

// ReclaimInFlight rolls jobs stranded in a processing status back to the
// stage entry they were dequeued from. Returns the number of reclaimed jobs.
func (s *Store) ReclaimInFlight(ctx context.Context) (int64, error) {
	var total int64
	for _, tr := range stageRollbackTransitions {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE jobs SET status = ?, updated_at = ? WHERE status = ?`,
			tr.to,
			time.Now().UTC().Format(time.RFC3339Nano),
			tr.from,
		)
		if err != nil {
			return total, fmt.Errorf("reclaim %s jobs: %w", tr.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("reclaim %s jobs: rows affected: %w", tr.from, err)
		}
		total += affected
	}
	return total, nil
}

// Clear removes all jobs and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// ClearCompleted removes only completed jobs.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed jobs.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(scanner rowScanner) (*Job, error) {
	var (
		job       Job
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(
		&job.ID,
		&job.SourceURL,
		&job.Status,
		&job.Attempts,
		&job.ErrorMessage,
		&job.ScreenshotPath,
		&job.VideoTitle,
		&job.VideoChannel,
		&job.AudioPath,
		&job.TranscriptJSON,
		&job.ScoreSource,
		&job.ProgressStage,
		&job.ProgressMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		job.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		job.UpdatedAt = ts
	}
	return &job, nil
}
