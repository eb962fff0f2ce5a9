package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipcheck/internal/config"
	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/services"
	"clipcheck/internal/stage"
)

// fallbackFunc matches FallbackExtract so tests can intercept the shell-out.
type fallbackFunc func(ctx context.Context, ytDlpBinary, ffmpegBinary, sourceURL, dest string) error

// Extractor runs the extraction stage: it resolves the source audio stream
// and transcodes it into the WAV file transcription expects. A signature
// failure from the primary resolver triggers one yt-dlp fallback attempt.
type Extractor struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	resolver Resolver
	fallback fallbackFunc
}

// NewExtractor constructs the extraction stage handler with the default
// resolver and fallback chain.
func NewExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Extractor {
	return NewExtractorWithDependencies(cfg, store, logger, NewResolver(), FallbackExtract)
}

// NewExtractorWithDependencies allows injecting the resolver and fallback
// (used in tests).
func NewExtractorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, resolver Resolver, fallback fallbackFunc) *Extractor {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "extractor"))
	}
	return &Extractor{store: store, cfg: cfg, logger: stageLogger, resolver: resolver, fallback: fallback}
}

func (e *Extractor) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("extract", "Resolving audio stream")
	job.ErrorMessage = ""
	return nil
}

func (e *Extractor) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, e.logger)
	if !IsVideoURL(job.SourceURL) {
		return services.Wrap(
			services.ErrValidation,
			"extracting",
			"validate inputs",
			"Source URL is not a supported video link",
			nil,
		)
	}

	if timeout := e.cfg.Extraction.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dest := filepath.Join(e.cfg.Paths.AudioDir, job.ID+".wav")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"extracting",
			"prepare output",
			"Could not create audio directory",
			err,
		)
	}

	primaryErr := e.extractPrimary(ctx, job.SourceURL, dest)
	if primaryErr == nil {
		job.AudioPath = dest
		job.SetProgress("extract", "Audio extracted")
		logger.Info("audio extracted", logging.String("strategy", "ytdl"))
		return nil
	}

	var extractErr *ExtractError
	if !errors.As(primaryErr, &extractErr) || extractErr.Kind != KindSignature {
		return wrapExtractFailure(primaryErr)
	}

	logger.Warn("primary extraction hit signature failure, trying yt-dlp",
		logging.Error(primaryErr))
	job.SetProgress("extract", "Retrying with fallback extractor")

	fallbackErr := e.fallback(ctx, e.cfg.Extraction.YtDlpCommand, e.cfg.Extraction.FFmpegCommand, job.SourceURL, dest)
	if fallbackErr != nil {
		combined := fmt.Errorf("fallback failed: %w (primary: %v)", fallbackErr, primaryErr)
		return wrapExtractFailure(combined)
	}

	job.AudioPath = dest
	job.SetProgress("extract", "Audio extracted")
	logger.Info("audio extracted", logging.String("strategy", "yt-dlp"))
	return nil
}

func (e *Extractor) HealthCheck(ctx context.Context) stage.Health {
	const name = "extractor"
	if e.cfg == nil || strings.TrimSpace(e.cfg.Extraction.FFmpegCommand) == "" {
		return stage.Unhealthy(name, "ffmpeg command not configured")
	}
	return stage.Healthy(name)
}

func (e *Extractor) extractPrimary(ctx context.Context, sourceURL, dest string) error {
	stream, err := e.resolver.ResolveAudio(ctx, sourceURL)
	if err != nil {
		return err
	}
	defer stream.Close()
	return TranscodeToWAV(ctx, e.cfg.Extraction.FFmpegCommand, stream, dest)
}

func wrapExtractFailure(err error) error {
	marker := services.ErrExternalTool
	var extractErr *ExtractError
	if errors.As(err, &extractErr) && extractErr.Kind == KindBadURL {
		marker = services.ErrValidation
	}
	return services.Wrap(
		marker,
		"extracting",
		"extract audio",
		"Audio extraction failed; see cause for the failing strategy",
		err,
	)
}
