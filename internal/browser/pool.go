package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/chromedp/chromedp"

	"clipcheck/internal/config"
	"clipcheck/internal/logging"
)

// Pool owns the shared headless browser and hands out capture sessions. A
// semaphore caps concurrent tabs; each job gets one automatic retry in a
// fresh tab. The browser launches in Start so the daemon can refuse work
// until the pool is actually ready.
type Pool struct {
	cfg    *config.Config
	logger *slog.Logger
	solver Solver

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	sem           chan struct{}
	started       bool
}

// NewPool constructs the browser pool. A nil solver disables captcha solving.
func NewPool(cfg *config.Config, logger *slog.Logger, solver Solver) *Pool {
	poolLogger := logger
	if poolLogger != nil {
		poolLogger = poolLogger.With(logging.String("component", "browser-pool"))
	}
	maxSessions := cfg.Browser.MaxSessions
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &Pool{
		cfg:    cfg,
		logger: poolLogger,
		solver: solver,
		sem:    make(chan struct{}, maxSessions),
	}
}

// Start launches the headless browser and blocks until it is reachable.
func (p *Pool) Start(ctx context.Context) error {
	if p.started {
		return errors.New("browser pool already started")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.cfg.Browser.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("no-first-run", true),
		chromedp.UserAgent(p.cfg.Browser.UserAgent),
		chromedp.WindowSize(p.cfg.Browser.WindowWidth, p.cfg.Browser.WindowHeight),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	launchCtx := browserCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		launchCtx, cancel = context.WithDeadline(browserCtx, deadline)
		defer cancel()
	}
	if err := chromedp.Run(launchCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("launch browser: %w", err)
	}

	p.allocCancel = allocCancel
	p.browserCtx = browserCtx
	p.browserCancel = browserCancel
	p.started = true
	if p.logger != nil {
		p.logger.Info("browser pool ready",
			logging.Int("max_sessions", cap(p.sem)),
			logging.Bool("headless", p.cfg.Browser.Headless),
		)
	}
	return nil
}

// Stop tears down the browser and all open tabs.
func (p *Pool) Stop() {
	if !p.started {
		return
	}
	p.browserCancel()
	p.allocCancel()
	p.started = false
}

// Capture runs a capture session for one job. Failed sessions retry once in
// a fresh tab before reporting the final error.
func (p *Pool) Capture(ctx context.Context, jobID, sourceURL string) (*Capture, error) {
	if !p.started {
		return nil, errors.New("browser pool not started")
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	screenshotPath := filepath.Join(p.cfg.Paths.ScreenshotDir, jobID+".png")
	attempts := p.cfg.Browser.RetryLimit + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		capture, err := p.runSession(ctx, sourceURL, screenshotPath)
		if err == nil {
			return capture, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if p.logger != nil && attempt < attempts {
			p.logger.Warn("capture session failed, retrying in fresh tab",
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
		}
	}
	return nil, lastErr
}

func (p *Pool) runSession(ctx context.Context, sourceURL, screenshotPath string) (*Capture, error) {
	tabCtx, tabCancel := chromedp.NewContext(p.browserCtx)
	defer tabCancel()

	session := NewSession(newChromedpPage(tabCtx), p.cfg, p.logger, p.solver)
	return session.Run(ctx, sourceURL, screenshotPath)
}
