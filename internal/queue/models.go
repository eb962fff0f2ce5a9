package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queued analysis job.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusCapturing    Status = "capturing"
	StatusCaptured     Status = "captured"
	StatusExtracting   Status = "extracting"
	StatusExtracted    Status = "extracted"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusScoring      Status = "scoring"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusCapturing,
	StatusCaptured,
	StatusExtracting,
	StatusExtracted,
	StatusTranscribing,
	StatusTranscribed,
	StatusScoring,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusCapturing:    {},
	StatusExtracting:   {},
	StatusTranscribing: {},
	StatusScoring:      {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions map in-flight statuses back to the stage entry
// they were dequeued from. Applied at startup so jobs orphaned by a worker
// crash are redelivered.
var stageRollbackTransitions = []statusTransition{
	{from: StatusCapturing, to: StatusQueued},
	{from: StatusExtracting, to: StatusCaptured},
	{from: StatusTranscribing, to: StatusExtracted},
	{from: StatusScoring, to: StatusTranscribed},
}

// Job represents an analysis job persisted in SQLite. The queue row is the
// dispatch record only: the durable analysis output lives in the result store.
type Job struct {
	ID              string
	SourceURL       string
	Status          Status
	Attempts        int
	ErrorMessage    string
	ScreenshotPath  string
	VideoTitle      string
	VideoChannel    string
	AudioPath       string
	TranscriptJSON  string
	ScoreSource     string
	ProgressStage   string
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Completed  int
	Failed     int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	return IsProcessingStatus(j.Status)
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status can no longer transition.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ExternalState collapses the stage lifecycle to the caller-facing state.
func (s Status) ExternalState() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "processing"
	}
}

// SetProgress updates the progress label fields together.
func (j *Job) SetProgress(stage, message string) {
	j.ProgressStage = stage
	j.ProgressMessage = message
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressStage = "Failed"
	j.ProgressMessage = message
}
