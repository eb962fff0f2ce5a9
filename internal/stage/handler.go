package stage

import (
	"context"

	"clipcheck/internal/queue"
)

// Handler describes the contract the workflow manager needs from each
// pipeline stage: capture, extraction, transcription, and scoring all
// implement it. Prepare validates the job and moves files into place,
// Execute does the work, and HealthCheck reports whether the stage could
// run a job right now.
type Handler interface {
	Prepare(context.Context, *queue.Job) error
	Execute(context.Context, *queue.Job) error
	HealthCheck(context.Context) Health
}

// Health is one stage's readiness report. The daemon aggregates these into
// the status API, and `clipcheck status` prints Detail verbatim when a
// stage is not ready.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy reports a stage that can accept jobs.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy reports a stage that cannot run, with the missing piece named
// in detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
