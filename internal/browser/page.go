package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Page is the minimal driving surface a capture session needs. The chromedp
// tab implements it; tests substitute fakes so session logic runs without a
// browser.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error
	Exists(ctx context.Context, selector string) (bool, error)
	Eval(ctx context.Context, expr string, out any) error
	Click(ctx context.Context, selector string) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// chromedpPage drives one browser tab. The tab context carries the chromedp
// target; per-call deadlines come from the passed ctx.
type chromedpPage struct {
	tabCtx context.Context
}

func newChromedpPage(tabCtx context.Context) *chromedpPage {
	return &chromedpPage{tabCtx: tabCtx}
}

// run executes actions against the tab, honoring the caller's deadline.
func (p *chromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := p.tabCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(runCtx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *chromedpPage) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (p *chromedpPage) Exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	expr := fmt.Sprintf("document.querySelector(%q) !== null", selector)
	if err := p.run(ctx, chromedp.Evaluate(expr, &found)); err != nil {
		return false, err
	}
	return found, nil
}

func (p *chromedpPage) Eval(ctx context.Context, expr string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expr, out))
}

func (p *chromedpPage) Click(ctx context.Context, selector string) error {
	expr := fmt.Sprintf("document.querySelector(%q)?.click()", selector)
	return p.run(ctx, chromedp.Evaluate(expr, nil))
}

func (p *chromedpPage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}
