package scoring

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"clipcheck/internal/config"
	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/results"
	"clipcheck/internal/services"
	"clipcheck/internal/services/gptzero"
	"clipcheck/internal/stage"
	"clipcheck/internal/transcript"
)

// ScoreSourceClassifier marks results scored by the detection API;
// ScoreSourcePlaceholder marks uniform random scores emitted when no
// classifier is configured.
const (
	ScoreSourceClassifier  = "classifier"
	ScoreSourcePlaceholder = "placeholder"
)

// Classifier produces an AI-generation probability for a text fragment.
type Classifier interface {
	Predict(ctx context.Context, text string) (float64, error)
}

// Scorer runs the scoring stage: it assigns each transcript segment an
// AI-generation probability and writes the finished analysis result. A nil
// classifier means unconfigured, in which case placeholder scores are used.
type Scorer struct {
	store      *queue.Store
	cfg        *config.Config
	logger     *slog.Logger
	classifier Classifier
	results    *results.Store
}

// NewScorer constructs the scoring stage handler. The classifier is only
// wired when an API key is configured.
func NewScorer(cfg *config.Config, store *queue.Store, logger *slog.Logger, resultStore *results.Store) *Scorer {
	var classifier Classifier
	if strings.TrimSpace(cfg.Classifier.APIKey) != "" {
		classifier = gptzero.NewClient(
			cfg.Classifier.APIKey,
			gptzero.WithBaseURL(cfg.Classifier.BaseURL),
			gptzero.WithTimeout(cfg.Classifier.Timeout()),
		)
	}
	return NewScorerWithClassifier(cfg, store, logger, resultStore, classifier)
}

// NewScorerWithClassifier allows injecting the classifier (used in tests).
func NewScorerWithClassifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, resultStore *results.Store, classifier Classifier) *Scorer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "scorer"))
	}
	return &Scorer{store: store, cfg: cfg, logger: stageLogger, classifier: classifier, results: resultStore}
}

func (s *Scorer) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("score", "Scoring transcript segments")
	job.ErrorMessage = ""
	return nil
}

func (s *Scorer) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	if strings.TrimSpace(job.TranscriptJSON) == "" {
		return services.Wrap(
			services.ErrValidation,
			"scoring",
			"validate inputs",
			"No transcript present; run transcription before scoring",
			nil,
		)
	}
	var parsed transcript.Transcript
	if err := json.Unmarshal([]byte(job.TranscriptJSON), &parsed); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"scoring",
			"decode transcript",
			"Stored transcript is not valid JSON; rerun transcription",
			err,
		)
	}

	source := ScoreSourcePlaceholder
	if s.classifier != nil {
		source = ScoreSourceClassifier
	}
	for i := range parsed.Segments {
		segment := &parsed.Segments[i]
		if s.classifier == nil {
			placeholder := rand.Float64()
			segment.AIProbability = &placeholder
			continue
		}
		probability, err := s.classifier.Predict(ctx, segment.Text)
		if err != nil {
			logger.Warn(
				"segment classification failed",
				logging.Int("segment", i),
				logging.Error(err),
			)
			segment.AIProbability = nil
			continue
		}
		segment.AIProbability = &probability
	}

	job.ScoreSource = source
	encoded, err := json.Marshal(parsed)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"scoring",
			"encode transcript",
			"Could not serialize scored transcript",
			err,
		)
	}
	job.TranscriptJSON = string(encoded)

	if err := s.writeResult(job, &parsed); err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"scoring",
			"write result",
			"Could not persist analysis result",
			err,
		)
	}

	job.SetProgress("score", "Analysis complete")
	logger.Info(
		"scoring complete",
		logging.Int("segments", len(parsed.Segments)),
		logging.String("score_source", source),
	)
	return nil
}

func (s *Scorer) HealthCheck(ctx context.Context) stage.Health {
	const name = "scorer"
	if s.results == nil {
		return stage.Unhealthy(name, "result store not configured")
	}
	return stage.Healthy(name)
}

func (s *Scorer) writeResult(job *queue.Job, parsed *transcript.Transcript) error {
	result := &results.AnalysisResult{
		JobID:     job.ID,
		SourceURL: job.SourceURL,
		VideoInfo: results.VideoInfo{
			Title:   job.VideoTitle,
			Channel: job.VideoChannel,
		},
		Transcription: results.Transcription{
			Language: parsed.Language,
			Text:     parsed.Text,
			Segments: parsed.Segments,
		},
		ScoreSource: job.ScoreSource,
		CreatedAt:   time.Now().UTC(),
	}
	if path := strings.TrimSpace(job.ScreenshotPath); path != "" {
		result.ScreenshotPath = &path
	}
	return s.results.Save(result)
}
