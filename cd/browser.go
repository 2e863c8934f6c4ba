package cd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/pterm/pterm"
)

// ErrNotConnected means the DevTools endpoint never answered.
var ErrNotConnected = errors.New("chrome not connected")

// Debugger probe defaults: five tries, two seconds apart.
const (
	DefaultProbeAttempts = 5
	DefaultProbeSpacing  = 2 * time.Second
)

// Version is the answer of /json/version.
type Version struct {
	Browser              string `json:"Browser"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Target is one entry of /json/list.
type Target struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

var httpClient = &http.Client{Timeout: 2 * time.Second}

// WaitForDebugger polls the DevTools endpoint at base (for example
// http://localhost:9222) until it reports a browser websocket URL. It tries
// attempts times, spacing apart, and does not sleep after the last try.
func WaitForDebugger(ctx context.Context, base string, attempts int, spacing time.Duration) (Version, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		var v Version
		lastErr = getJSON(ctx, base+"/json/version", &v)
		if lastErr == nil && v.WebSocketDebuggerURL != "" {
			return v, nil
		}
		if lastErr == nil {
			lastErr = errors.New("no webSocketDebuggerUrl in /json/version")
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return Version{}, ctx.Err()
			case <-time.After(spacing):
			}
		}
	}
	return Version{}, fmt.Errorf("%w after %d attempts: %v", ErrNotConnected, attempts, lastErr)
}

// ListTargets returns the targets Chrome exposes at base.
func ListTargets(ctx context.Context, base string) ([]Target, error) {
	var targets []Target
	if err := getJSON(ctx, base+"/json/list", &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

func getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// FindPage returns the first page target whose URL contains marker.
func FindPage(targets []Target, marker string) (Target, bool) {
	for _, t := range targets {
		if t.Type == "page" && strings.Contains(t.URL, marker) {
			return t, true
		}
	}
	return Target{}, false
}

// Options configures Connect.
type Options struct {
	Port          int
	URL           string // opened when no tab matches HostMarker
	HostMarker    string
	ActionTimeout time.Duration
	Logger        *pterm.Logger
}

// Connect attaches to the Chrome listening on opts.Port. It reuses the first
// tab whose URL contains opts.HostMarker or opens opts.URL in a new one. The
// returned release func closes the connection and leaves the tab open.
func Connect(ctx context.Context, opts Options) (*Tab, func(), error) {
	log := opts.Logger
	if log == nil {
		log = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	if opts.ActionTimeout == 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}
	base := fmt.Sprintf("http://localhost:%d", opts.Port)

	log.Info("checking Chrome connection", log.Args("endpoint", base+"/json/version"))
	version, err := WaitForDebugger(ctx, base, DefaultProbeAttempts, DefaultProbeSpacing)
	if err != nil {
		return nil, nil, err
	}
	log.Info("connected to Chrome", log.Args("browser", version.Browser))

	targets, err := ListTargets(ctx, base)
	if err != nil {
		return nil, nil, fmt.Errorf("list tabs: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, version.WebSocketDebuggerURL, chromedp.NoModifyURL)

	var tabCtx context.Context
	var tabCancel context.CancelFunc
	found, ok := FindPage(targets, opts.HostMarker)
	if ok {
		tabCtx, tabCancel = chromedp.NewContext(allocCtx, chromedp.WithTargetID(target.ID(found.ID)))
	} else {
		tabCtx, tabCancel = chromedp.NewContext(allocCtx)
	}
	release := releaseFunc(tabCtx, tabCancel, allocCancel, log)

	// The first Run binds the connection to tabCtx, so it must not carry a
	// timeout of its own.
	if err := chromedp.Run(tabCtx); err != nil {
		release()
		return nil, nil, fmt.Errorf("open devtools session: %w", err)
	}

	tab := &Tab{ctx: tabCtx, timeout: opts.ActionTimeout, log: log}
	if ok {
		//* Reuse the open tab
		err = chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			return page.BringToFront().Do(ctx)
		}))
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("attach to tab %s: %w", found.ID, err)
		}
		log.Info("found Sora tab", log.Args("url", found.URL))
		return tab, release, nil
	}

	//* No matching tab, open one
	if err := tab.Navigate(ctx, opts.URL); err != nil {
		release()
		return nil, nil, err
	}
	log.Info("opened new Sora tab", log.Args("url", opts.URL))
	return tab, release, nil
}

// releaseFunc returns the cleanup for a tab context. It detaches from the tab
// before cancelling, since cancelling an attached chromedp context closes its
// target. Later calls are no-ops.
func releaseFunc(tabCtx context.Context, tabCancel, allocCancel context.CancelFunc, log *pterm.Logger) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := detach(tabCtx); err != nil {
				log.Debug("detach from tab failed", log.Args("error", err))
			}
			tabCancel()
			allocCancel()
			log.Info("browser connection closed")
		})
	}
}

// detach ends the DevTools session on the tab behind ctx and forgets the
// target, so cancelling ctx only drops the websocket.
func detach(ctx context.Context) error {
	c := chromedp.FromContext(ctx)
	if c == nil || c.Target == nil {
		return nil
	}
	var err error
	if c.Browser != nil && c.Target.SessionID != "" {
		dctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		err = target.DetachFromTarget().
			WithSessionID(c.Target.SessionID).
			Do(cdp.WithExecutor(dctx, c.Browser))
	}
	c.Target = nil
	return err
}

// Remediation returns the steps an operator follows to start Chrome with
// remote debugging enabled.
func Remediation(port int, userDataDir, exploreURL string) []string {
	if userDataDir == "" {
		userDataDir = `C:\Users\<you>\AppData\Local\Google\Chrome\User Data\Default`
	}
	return []string{
		"Close all Chrome windows",
		"Open a terminal (cmd.exe on Windows)",
		"Run this exact command:",
		fmt.Sprintf(`chrome --remote-debugging-port=%d --user-data-dir="%s"`, port, userDataDir),
		"Wait for Chrome to open",
		"Go to " + exploreURL,
		"Run promptburner again",
	}
}
