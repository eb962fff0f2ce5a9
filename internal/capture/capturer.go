package capture

import (
	"context"
	"log/slog"
	"strings"

	"clipcheck/internal/browser"
	"clipcheck/internal/config"
	"clipcheck/internal/extraction"
	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/services"
	"clipcheck/internal/stage"
)

// Driver runs one browser capture for a job.
type Driver interface {
	Capture(ctx context.Context, jobID, sourceURL string) (*browser.Capture, error)
}

// Capturer runs the capture stage: it drives a browser session against the
// watch page and records the screenshot and video metadata on the job.
type Capturer struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	driver Driver
}

// NewCapturer constructs the capture stage handler over the shared browser
// pool.
func NewCapturer(cfg *config.Config, store *queue.Store, logger *slog.Logger, driver Driver) *Capturer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "capturer"))
	}
	return &Capturer{store: store, cfg: cfg, logger: stageLogger, driver: driver}
}

func (c *Capturer) Prepare(ctx context.Context, job *queue.Job) error {
	job.SetProgress("capture", "Opening watch page")
	job.ErrorMessage = ""
	return nil
}

func (c *Capturer) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, c.logger)
	if !extraction.IsVideoURL(job.SourceURL) {
		return services.Wrap(
			services.ErrValidation,
			"capturing",
			"validate inputs",
			"Source URL is not a supported video link",
			nil,
		)
	}
	if c.driver == nil {
		return services.Wrap(
			services.ErrConfiguration,
			"capturing",
			"check driver",
			"Browser pool is not available",
			nil,
		)
	}

	capture, err := c.driver.Capture(ctx, job.ID, job.SourceURL)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"capturing",
			"drive browser",
			"Watch page capture failed after retry",
			err,
		)
	}

	job.ScreenshotPath = capture.ScreenshotPath
	job.VideoTitle = capture.Title
	job.VideoChannel = capture.Channel
	job.SetProgress("capture", "Screenshot and metadata captured")
	logger.Info(
		"capture complete",
		logging.String("title", capture.Title),
		logging.String("channel", capture.Channel),
	)
	return nil
}

func (c *Capturer) HealthCheck(ctx context.Context) stage.Health {
	const name = "capturer"
	if c.driver == nil {
		return stage.Unhealthy(name, "browser pool not configured")
	}
	if c.cfg != nil && strings.TrimSpace(c.cfg.Paths.ScreenshotDir) == "" {
		return stage.Unhealthy(name, "screenshot directory not configured")
	}
	return stage.Healthy(name)
}
