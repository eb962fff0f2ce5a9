package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipcheck/internal/logging"
	"clipcheck/internal/testsupport"
)

// fakePage scripts page state for session tests. Selector existence comes
// from the present set; eval expressions answer from canned responses.
type fakePage struct {
	present     map[string]bool
	evalText    map[string]string
	evalBool    map[string]bool
	clicked     []string
	evaled      []string
	navigateErr error
	readyErr    error
	screenshot  []byte
	afterClick  func(selector string)
}

func newFakePage() *fakePage {
	return &fakePage{
		present:    map[string]bool{},
		evalText:   map[string]string{},
		evalBool:   map[string]bool{},
		screenshot: []byte("png-bytes"),
	}
}

func (f *fakePage) Navigate(ctx context.Context, url string) error {
	return f.navigateErr
}

func (f *fakePage) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	return f.readyErr
}

func (f *fakePage) Exists(ctx context.Context, selector string) (bool, error) {
	return f.present[selector], nil
}

func (f *fakePage) Eval(ctx context.Context, expr string, out any) error {
	f.evaled = append(f.evaled, expr)
	switch target := out.(type) {
	case *bool:
		*target = f.evalBool[expr]
	case *string:
		for fragment, value := range f.evalText {
			if strings.Contains(expr, fragment) {
				*target = value
				return nil
			}
		}
		*target = ""
	}
	return nil
}

func (f *fakePage) Click(ctx context.Context, selector string) error {
	f.clicked = append(f.clicked, selector)
	if f.afterClick != nil {
		f.afterClick(selector)
	}
	return nil
}

func (f *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if f.screenshot == nil {
		return nil, errors.New("screenshot failed")
	}
	return f.screenshot, nil
}

type fakeSolver struct {
	token   string
	err     error
	siteKey string
	pageURL string
}

func (f *fakeSolver) SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error) {
	f.siteKey = siteKey
	f.pageURL = pageURL
	return f.token, f.err
}

func TestSessionHappyPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Browser.SettleSeconds = 0
	cfg.Browser.CaptureWaitSeconds = 0
	shot := filepath.Join(cfg.Paths.ScreenshotDir, "job-1.png")

	page := newFakePage()
	page.evalBool[playingExpr] = true
	page.evalText["h1.ytd-watch-metadata"] = ""

	session := NewSession(page, cfg, logging.NewNop(), nil)
	capture, err := session.Run(context.Background(), "https://youtu.be/abc123", shot)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if capture.Title != "Unknown title" || capture.Channel != "Unknown channel" {
		t.Fatalf("expected sentinels without metadata, got %#v", capture)
	}
	data, err := os.ReadFile(shot)
	if err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("screenshot content = %q", data)
	}
	if session.State() != StateCapturing {
		t.Fatalf("final state = %s", session.State())
	}
}

func TestSessionNavigationFailureIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	page := newFakePage()
	page.navigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

	session := NewSession(page, cfg, logging.NewNop(), nil)
	_, err := session.Run(context.Background(), "https://youtu.be/abc123", filepath.Join(t.TempDir(), "s.png"))
	if err == nil {
		t.Fatal("expected navigation failure")
	}
	if session.State() != StateFailed {
		t.Fatalf("state = %s", session.State())
	}
}

func TestSessionClicksConsentWhenPresent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Browser.SettleSeconds = 0
	cfg.Browser.CaptureWaitSeconds = 0

	page := newFakePage()
	page.present[`button[aria-label="Accept all"]`] = true
	page.evalBool[playingExpr] = true

	session := NewSession(page, cfg, logging.NewNop(), nil)
	if _, err := session.Run(context.Background(), "https://youtu.be/abc123", filepath.Join(t.TempDir(), "s.png")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(page.clicked) != 1 || page.clicked[0] != `button[aria-label="Accept all"]` {
		t.Fatalf("clicked = %v", page.clicked)
	}
}

func TestSessionClicksPlayWhenPaused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Browser.SettleSeconds = 0
	cfg.Browser.CaptureWaitSeconds = 0

	page := newFakePage()
	page.present[`.ytp-play-button`] = true
	page.afterClick = func(selector string) {
		page.evalBool[playingExpr] = true
	}

	session := NewSession(page, cfg, logging.NewNop(), nil)
	if _, err := session.Run(context.Background(), "https://youtu.be/abc123", filepath.Join(t.TempDir(), "s.png")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	found := false
	for _, selector := range page.clicked {
		if selector == `.ytp-play-button` {
			found = true
		}
	}
	if !found {
		t.Fatalf("play control not clicked: %v", page.clicked)
	}
}

func TestSessionSolvesCaptcha(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Browser.SettleSeconds = 0
	cfg.Browser.CaptureWaitSeconds = 0

	page := newFakePage()
	page.present[`iframe[src*="captcha"]`] = true
	page.evalBool[playingExpr] = true
	page.evalText[`iframe[src*="captcha"]`] = "https://www.google.com/recaptcha/api2/anchor?k=site-key-123&co=x"
	page.evalText["window.location.href"] = "https://www.youtube.com/watch?v=abc123"

	solver := &fakeSolver{token: "response-token"}
	session := NewSession(page, cfg, logging.NewNop(), solver)
	if _, err := session.Run(context.Background(), "https://youtu.be/abc123", filepath.Join(t.TempDir(), "s.png")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if solver.siteKey != "site-key-123" {
		t.Fatalf("site key = %q", solver.siteKey)
	}
	if solver.pageURL != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("page url = %q", solver.pageURL)
	}

	injected := false
	for _, expr := range page.evaled {
		if strings.Contains(expr, "response-token") && strings.Contains(expr, "g-recaptcha-response") {
			injected = true
		}
	}
	if !injected {
		t.Fatal("token was not injected into the page")
	}
}

func TestSessionCaptchaFailureIsNonFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Browser.SettleSeconds = 0
	cfg.Browser.CaptureWaitSeconds = 0

	page := newFakePage()
	page.present[`#captcha`] = true
	page.evalBool[playingExpr] = true

	// No solver configured: detection logs and the capture continues.
	session := NewSession(page, cfg, logging.NewNop(), nil)
	capture, err := session.Run(context.Background(), "https://youtu.be/abc123", filepath.Join(t.TempDir(), "s.png"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if capture == nil {
		t.Fatal("expected capture despite captcha failure")
	}
}

func TestSiteKeyFromFrameSrc(t *testing.T) {
	cases := []struct {
		src string
		key string
	}{
		{"https://www.google.com/recaptcha/api2/anchor?ar=1&k=abc123&co=x", "abc123"},
		{"https://www.google.com/recaptcha/api2/anchor?co=x", ""},
		{"::bad::url::", ""},
	}
	for _, tc := range cases {
		if got := siteKeyFromFrameSrc(tc.src); got != tc.key {
			t.Errorf("siteKeyFromFrameSrc(%q) = %q, want %q", tc.src, got, tc.key)
		}
	}
}
