package transcript

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"clipcheck/internal/config"
	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/services"
	"clipcheck/internal/services/scribe"
	"clipcheck/internal/stage"
)

// SpeechToText abstracts the transcription API client.
type SpeechToText interface {
	Transcribe(ctx context.Context, path string) (*scribe.Result, error)
}

// Transcriber runs the transcription stage: it sends the extracted audio to
// the speech-to-text service and stores the normalized transcript on the job.
type Transcriber struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	client SpeechToText
}

// NewTranscriber constructs the transcription stage handler using the
// configured speech-to-text client.
func NewTranscriber(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transcriber {
	client := scribe.NewClient(
		cfg.Transcription.APIKey,
		scribe.WithBaseURL(cfg.Transcription.BaseURL),
		scribe.WithModelID(cfg.Transcription.ModelID),
		scribe.WithDiarization(cfg.Transcription.Diarize),
		scribe.WithTimeout(cfg.Transcription.Timeout()),
	)
	return NewTranscriberWithClient(cfg, store, logger, client)
}

// NewTranscriberWithClient allows injecting the transcription client (used in tests).
func NewTranscriberWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client SpeechToText) *Transcriber {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "transcriber"))
	}
	return &Transcriber{store: store, cfg: cfg, logger: stageLogger, client: client}
}

func (t *Transcriber) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("transcribe", "Submitting audio for transcription")
	job.ErrorMessage = ""
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, t.logger)
	if strings.TrimSpace(job.AudioPath) == "" {
		return services.Wrap(
			services.ErrValidation,
			"transcribing",
			"validate inputs",
			"No extracted audio present; run extraction before transcription",
			nil,
		)
	}

	result, err := t.client.Transcribe(ctx, job.AudioPath)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"transcribing",
			"speech to text",
			"Transcription request failed; audio is preserved for retry",
			err,
		)
	}

	transcript := FromResult(result)
	encoded, err := json.Marshal(transcript)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"transcribing",
			"encode transcript",
			"Could not serialize transcript",
			err,
		)
	}
	job.TranscriptJSON = string(encoded)
	job.SetProgress("transcribe", "Transcript reconstructed")
	logger.Info(
		"transcription complete",
		logging.String("language", transcript.Language),
		logging.Int("segments", len(transcript.Segments)),
	)
	return nil
}

func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcriber"
	if t.client == nil {
		return stage.Unhealthy(name, "transcription client not configured")
	}
	if t.cfg != nil && strings.TrimSpace(t.cfg.Transcription.APIKey) == "" {
		return stage.Unhealthy(name, "transcription API key missing")
	}
	return stage.Healthy(name)
}

// FromResult converts a raw transcription response into a normalized
// transcript. Spacing tokens are dropped before segmentation. A response
// carrying no word timing at all passes through as one segment of the full
// text, since there is nothing to split on.
func FromResult(result *scribe.Result) Transcript {
	transcript := Transcript{Segments: []Segment{}}
	if result == nil {
		return transcript
	}
	transcript.Language = result.LanguageCode
	transcript.Text = strings.TrimSpace(result.Text)

	words := make([]Word, 0, len(result.Words))
	var lastEnd float64
	for _, raw := range result.Words {
		if raw.Type == "spacing" {
			continue
		}
		word := Word{Text: strings.TrimSpace(raw.Text), Start: raw.Start, End: raw.End}
		if speaker := strings.TrimSpace(raw.SpeakerID); speaker != "" {
			word.Speaker = &speaker
		}
		words = append(words, word)
		if raw.End > lastEnd {
			lastEnd = raw.End
		}
	}

	if len(words) == 0 {
		if transcript.Text != "" {
			transcript.Segments = append(transcript.Segments, Segment{
				Text: transcript.Text,
				End:  lastEnd,
			})
		}
		return transcript
	}

	transcript.Segments = Normalize(words)
	return transcript
}
