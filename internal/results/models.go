package results

import (
	"time"

	"clipcheck/internal/transcript"
)

// VideoInfo captures the page metadata collected during capture.
type VideoInfo struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
}

// Transcription is the scored transcript embedded in a result.
type Transcription struct {
	Language string               `json:"language,omitempty"`
	Text     string               `json:"text"`
	Segments []transcript.Segment `json:"segments"`
}

// AnalysisResult is the durable output of one completed analysis job.
type AnalysisResult struct {
	JobID          string        `json:"jobId"`
	SourceURL      string        `json:"sourceUrl"`
	VideoInfo      VideoInfo     `json:"videoInfo"`
	ScreenshotPath *string       `json:"screenshotPath"`
	Transcription  Transcription `json:"transcription"`
	ScoreSource    string        `json:"scoreSource"`
	CreatedAt      time.Time     `json:"createdAt"`
}
