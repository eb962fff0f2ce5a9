package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipcheck/internal/config"
	"clipcheck/internal/logging"
)

// State tracks where a capture session is in its page walk.
type State string

const (
	StateNavigating    State = "navigating"
	StateConsentCheck  State = "consent_check"
	StateCaptchaCheck  State = "captcha_check"
	StatePlaybackCheck State = "playback_check"
	StateCapturing     State = "capturing"
	StateFailed        State = "failed"
)

// Solver resolves a reCAPTCHA challenge into a response token.
type Solver interface {
	SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error)
}

// Capture is the output of a completed session.
type Capture struct {
	ScreenshotPath string
	Title          string
	Channel        string
}

// Session walks one watch page: navigate, clear consent and captcha
// interstitials, ensure playback, then capture the viewport and metadata.
// Only navigation and body readiness are fatal; interstitial and playback
// handling degrade to a best-effort capture.
type Session struct {
	page   Page
	cfg    *config.Config
	logger *slog.Logger
	solver Solver
	state  State
}

// NewSession builds a session over an open page. A nil solver disables
// captcha solving; detection still logs.
func NewSession(page Page, cfg *config.Config, logger *slog.Logger, solver Solver) *Session {
	return &Session{page: page, cfg: cfg, logger: logger, solver: solver, state: StateNavigating}
}

// State reports the current session state.
func (s *Session) State() State {
	return s.state
}

// Run executes the capture walk and writes the screenshot to screenshotPath.
func (s *Session) Run(ctx context.Context, sourceURL, screenshotPath string) (*Capture, error) {
	logger := logging.WithContext(ctx, s.logger)

	s.state = StateNavigating
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.NavigationWait())
	err := s.page.Navigate(navCtx, sourceURL)
	cancel()
	if err != nil {
		s.state = StateFailed
		return nil, fmt.Errorf("navigate %s: %w", sourceURL, err)
	}
	if err := s.page.WaitReady(ctx, "body", s.cfg.Browser.ReadyWait()); err != nil {
		s.state = StateFailed
		return nil, fmt.Errorf("wait for body: %w", err)
	}

	s.state = StateCaptchaCheck
	if err := s.handleCaptcha(ctx, logger); err != nil {
		logger.Warn("captcha handling failed", logging.Error(err))
	}

	s.state = StateConsentCheck
	if err := s.handleConsent(ctx, logger); err != nil {
		logger.Warn("cookie consent handling failed", logging.Error(err))
	}

	s.state = StatePlaybackCheck
	s.ensurePlayback(ctx, logger)

	// Let playback settle before the viewport grab.
	s.sleep(ctx, s.cfg.Browser.CaptureDelay())

	s.state = StateCapturing
	image, err := s.page.Screenshot(ctx)
	if err != nil {
		s.state = StateFailed
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(screenshotPath), 0o755); err != nil {
		s.state = StateFailed
		return nil, fmt.Errorf("screenshot dir: %w", err)
	}
	if err := os.WriteFile(screenshotPath, image, 0o644); err != nil {
		s.state = StateFailed
		return nil, fmt.Errorf("write screenshot: %w", err)
	}

	title, channel := s.videoInfo(ctx, logger)
	return &Capture{ScreenshotPath: screenshotPath, Title: title, Channel: channel}, nil
}

func (s *Session) handleConsent(ctx context.Context, logger *slog.Logger) error {
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.ProbeWait())
	defer cancel()
	clicked, err := ClickFirst(probeCtx, s.page, consentCandidates)
	if errors.Is(err, ErrNoMatch) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("dismissed cookie consent", logging.String("candidate", clicked.Name))
	s.sleep(ctx, s.cfg.Browser.SettleDelay())
	return nil
}

func (s *Session) handleCaptcha(ctx context.Context, logger *slog.Logger) error {
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.ProbeWait())
	detected, err := ProbeFirst(probeCtx, s.page, captchaCandidates)
	cancel()
	if errors.Is(err, ErrNoMatch) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("captcha detected", logging.String("candidate", detected.Name))
	if s.solver == nil {
		return errors.New("captcha present but no solver configured")
	}

	var frameSrc string
	if err := s.page.Eval(ctx, captchaFrameSrcExpr, &frameSrc); err != nil {
		return fmt.Errorf("locate captcha frame: %w", err)
	}
	siteKey := siteKeyFromFrameSrc(frameSrc)
	if siteKey == "" {
		return errors.New("captcha frame has no site key")
	}

	var pageURL string
	if err := s.page.Eval(ctx, pageURLExpr, &pageURL); err != nil {
		return fmt.Errorf("read page url: %w", err)
	}

	token, err := s.solver.SolveRecaptcha(ctx, siteKey, pageURL)
	if err != nil {
		return fmt.Errorf("solve captcha: %w", err)
	}
	if err := s.page.Eval(ctx, injectTokenExpr(token), nil); err != nil {
		return fmt.Errorf("inject captcha token: %w", err)
	}
	logger.Info("captcha solved")
	s.sleep(ctx, s.cfg.Browser.SettleDelay())
	return nil
}

func (s *Session) ensurePlayback(ctx context.Context, logger *slog.Logger) {
	if s.isPlaying(ctx) {
		logger.Debug("video already playing")
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.ProbeWait())
	clicked, err := ClickFirst(probeCtx, s.page, playCandidates)
	cancel()
	if err != nil {
		logger.Warn("no play control found", logging.Error(err))
		return
	}
	logger.Info("clicked play control", logging.String("candidate", clicked.Name))
	s.sleep(ctx, s.cfg.Browser.SettleDelay())

	if !s.isPlaying(ctx) {
		logger.Warn("video did not start playing after click")
	}
}

func (s *Session) isPlaying(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.ProbeWait())
	defer cancel()
	if _, err := ProbeFirst(probeCtx, s.page, pausedCandidates); err == nil {
		// A visible pause control means playback is active.
		return true
	}
	var playing bool
	if err := s.page.Eval(probeCtx, playingExpr, &playing); err != nil {
		return false
	}
	return playing
}

func (s *Session) videoInfo(ctx context.Context, logger *slog.Logger) (string, string) {
	title := s.firstText(ctx, titleSelectors, "Unknown title")
	channel := s.firstText(ctx, channelSelectors, "Unknown channel")
	logger.Info("video info retrieved",
		logging.String("title", title),
		logging.String("channel", channel),
	)
	return title, channel
}

// firstText evaluates the selector list in one round trip and returns the
// first non-empty text content, or the sentinel when nothing matches.
func (s *Session) firstText(ctx context.Context, selectors []string, sentinel string) string {
	encoded, err := json.Marshal(selectors)
	if err != nil {
		return sentinel
	}
	expr := fmt.Sprintf(`(() => {
  for (const selector of %s) {
    const element = document.querySelector(selector);
    if (element && element.textContent && element.textContent.trim()) {
      return element.textContent.trim();
    }
  }
  return "";
})()`, encoded)

	var text string
	if err := s.page.Eval(ctx, expr, &text); err != nil || strings.TrimSpace(text) == "" {
		return sentinel
	}
	return strings.TrimSpace(text)
}

func (s *Session) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// siteKeyFromFrameSrc pulls the reCAPTCHA site key from the challenge
// iframe URL, where it rides in the k query parameter.
func siteKeyFromFrameSrc(frameSrc string) string {
	parsed, err := url.Parse(frameSrc)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("k")
}

func injectTokenExpr(token string) string {
	return fmt.Sprintf(`(() => {
  const response = document.getElementById("g-recaptcha-response");
  if (response) {
    response.innerHTML = %q;
    response.dispatchEvent(new Event("change"));
  }
})()`, token)
}
