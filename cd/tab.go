package cd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pterm/pterm"

	"promptburner/sora"
)

// DefaultActionTimeout bounds a single CDP action such as a click.
const DefaultActionTimeout = 10 * time.Second

// Tab is one browser tab driven over CDP. It implements sora.Page.
type Tab struct {
	ctx     context.Context
	timeout time.Duration
	log     *pterm.Logger

	// eval runs a script and decodes its result into res. Nil means
	// chromedp.Evaluate on the tab.
	eval func(ctx context.Context, script string, res any) error
}

var _ sora.Page = (*Tab)(nil)

// run executes actions on the tab, bounded by the action timeout and by
// both the caller's ctx and the tab's own lifetime.
func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(tctx, actions...)
}

func (t *Tab) evaluate(ctx context.Context, script string, res any) error {
	if t.eval != nil {
		return t.eval(ctx, script, res)
	}
	return t.run(ctx, chromedp.Evaluate(script, res))
}

// Locate reports how many elements match sel and how many are visible.
func (t *Tab) Locate(ctx context.Context, sel sora.Selector) (sora.Match, error) {
	var res struct {
		Count   int  `json:"count"`
		Visible int  `json:"visible"`
		Enabled bool `json:"enabled"`
	}
	if err := t.evaluate(ctx, locateScript(sel), &res); err != nil {
		return sora.Match{}, fmt.Errorf("locate %s: %w", sel, err)
	}
	return sora.Match{Count: res.Count, Visible: res.Visible, Enabled: res.Enabled}, nil
}

// Fill replaces the value of the first matching input or textarea.
func (t *Tab) Fill(ctx context.Context, sel sora.Selector, text string) error {
	var ok bool
	if err := t.evaluate(ctx, fillScript(sel, text), &ok); err != nil {
		return fmt.Errorf("fill %s: %w", sel, err)
	}
	if !ok {
		return fmt.Errorf("fill %s: no such element", sel)
	}
	return nil
}

// Click focuses and clicks the element Locate judges for sel: the first
// visible match, which need not be the first match in the document.
func (t *Tab) Click(ctx context.Context, sel sora.Selector) error {
	var ok bool
	if err := t.evaluate(ctx, clickScript(sel), &ok); err != nil {
		return fmt.Errorf("click %s: %w", sel, err)
	}
	if !ok {
		return fmt.Errorf("click %s: no visible element", sel)
	}
	return nil
}

// CurrentURL returns the location of the tab.
func (t *Tab) CurrentURL(ctx context.Context) (string, error) {
	var value string
	if err := t.run(ctx, chromedp.Location(&value)); err != nil {
		return "", fmt.Errorf("current url: %w", err)
	}
	return value, nil
}

// Navigate directs the tab to url and waits for the body to be ready.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	t.log.Debug("navigating", t.log.Args("url", url))
	tctx, cancel := context.WithTimeout(t.ctx, 60*time.Second)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(tctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("navigate to %q: %w", url, err)
	}
	return nil
}

// Screenshot captures the viewport into dir, naming the file after name.
// It returns the path written.
func (t *Tab) Screenshot(ctx context.Context, dir, name string) (string, error) {
	var buf []byte
	if err := t.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.png", time.Now().Format("20060102-150405"), fileSafe(name)))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}
	return path, nil
}

func fileSafe(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.TrimSpace(name))
	if name == "" {
		return "item"
	}
	return name
}
