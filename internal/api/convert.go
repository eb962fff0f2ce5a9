package api

import (
	"clipcheck/internal/queue"
)

// FromJob converts a queue job into its transport representation.
func FromJob(job *queue.Job) QueueItem {
	if job == nil {
		return QueueItem{}
	}
	item := QueueItem{
		ID:           job.ID,
		SourceURL:    job.SourceURL,
		Status:       job.Status.ExternalState(),
		StatusDetail: string(job.Status),
		Attempts:     job.Attempts,
		Progress: QueueProgress{
			Stage:   job.ProgressStage,
			Message: job.ProgressMessage,
		},
		ErrorMessage: job.ErrorMessage,
		VideoTitle:   job.VideoTitle,
		VideoChannel: job.VideoChannel,
	}
	if !job.CreatedAt.IsZero() {
		item.CreatedAt = job.CreatedAt.Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		item.UpdatedAt = job.UpdatedAt.Format(dateTimeFormat)
	}
	return item
}

// FromJobs converts a job list preserving order.
func FromJobs(jobs []*queue.Job) []QueueItem {
	items := make([]QueueItem, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, FromJob(job))
	}
	return items
}

// FromHealth converts queue counts into the stats payload.
func FromHealth(summary queue.HealthSummary) QueueStats {
	return QueueStats{
		Total:      summary.Total,
		Queued:     summary.Queued,
		Processing: summary.Processing,
		Completed:  summary.Completed,
		Failed:     summary.Failed,
	}
}
