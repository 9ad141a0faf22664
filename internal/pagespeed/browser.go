package pagespeed

import (
	"context"
	"net/url"
	"os/exec"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/Bahjat/page-speed-tool/internal/model"
	"github.com/Bahjat/page-speed-tool/internal/platform/errs"
)

const (
	defaultNavigationTimeout = 30 * time.Second
	defaultIdleTimeout       = 5 * time.Second
	defaultIdleWindow        = 500 * time.Millisecond
	idlePollInterval         = 50 * time.Millisecond
)

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

// BrowserOptions configures BrowserBackend. Zero values take defaults.
type BrowserOptions struct {
	ExecPath          string
	NavigationTimeout time.Duration
	IdleTimeout       time.Duration
	IdleWindow        time.Duration
}

// BrowserBackend measures page loads in headless Chrome.
type BrowserBackend struct {
	opts     BrowserOptions
	lookPath func(file string) (string, error)
}

// NewBrowserBackend returns a backend that drives the Chrome binary at
// opts.ExecPath, or the first well-known Chrome binary on $PATH.
func NewBrowserBackend(opts BrowserOptions) *BrowserBackend {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = defaultNavigationTimeout
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	if opts.IdleWindow <= 0 {
		opts.IdleWindow = defaultIdleWindow
	}
	return &BrowserBackend{opts: opts, lookPath: exec.LookPath}
}

// Available reports an errs.BackendUnavailable error when no Chrome
// binary can be found.
func (b *BrowserBackend) Available() error {
	if _, ok := b.execPath(); !ok {
		return &errs.AppError{
			Kind:    errs.BackendUnavailable,
			Message: "No headless Chrome binary found; page loads will be simulated.",
		}
	}
	return nil
}

func (b *BrowserBackend) execPath() (string, bool) {
	candidates := chromeCandidates
	if b.opts.ExecPath != "" {
		candidates = []string{b.opts.ExecPath}
	}
	for _, name := range candidates {
		if p, err := b.lookPath(name); err == nil {
			return p, true
		}
	}
	return "", false
}

// Measure navigates to in.URL, waits for the load event and then for a
// short network-idle window, and reports the elapsed time and the number
// of stylesheet, script and image requests seen. Browser processes are
// released before returning on every path.
func (b *BrowserBackend) Measure(ctx context.Context, in LoadInput) model.LoadEstimate {
	execPath, ok := b.execPath()
	if !ok {
		return unavailableEstimate(ReasonBrowserNotInstalled)
	}

	width, height, userAgent := 1366, 768, desktopUserAgent
	if in.Mobile {
		width, height, userAgent = 390, 844, mobileUserAgent
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.WindowSize(width, height),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tracker := newRequestTracker()
	chromedp.ListenTarget(tabCtx, tracker.handle)

	// Launch before starting the clock so process startup is not measured.
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		return unavailableEstimate(ReasonBrowserLaunchFailed)
	}

	navCtx, cancelNav := context.WithTimeout(tabCtx, b.opts.NavigationTimeout)
	defer cancelNav()

	start := time.Now()
	if err := chromedp.Run(navCtx, chromedp.Navigate(in.URL)); err != nil {
		return unavailableEstimate(ReasonNavigationFailed)
	}
	tracker.waitIdle(tabCtx, b.opts.IdleWindow, b.opts.IdleTimeout)
	total := roundMs(time.Since(start))

	css, js, images := tracker.counts()
	return model.LoadEstimate{
		TotalLoadTimeMs:  total,
		CSSFiles:         css,
		JSFiles:          js,
		Images:           images,
		AdditionalTimeMs: round2(max(0, total-in.BaseResponseMs)),
		Source:           model.LoadSourceBrowser,
	}
}

// requestTracker counts resource requests and tracks in-flight ones.
type requestTracker struct {
	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	css          int
	js           int
	images       int
	lastActivity time.Time
}

func newRequestTracker() *requestTracker {
	return &requestTracker{
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
	}
}

func (t *requestTracker) handle(ev any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
		t.lastActivity = time.Now()
		if e.RedirectResponse == nil && e.Request != nil {
			t.classify(e.Type, e.Request.URL)
		}
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
		t.lastActivity = time.Now()
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
		t.lastActivity = time.Now()
	}
}

func (t *requestTracker) classify(kind network.ResourceType, rawURL string) {
	switch kind {
	case network.ResourceTypeStylesheet:
		t.css++
		return
	case network.ResourceTypeScript:
		t.js++
		return
	case network.ResourceTypeImage:
		t.images++
		return
	}

	// Untyped requests fall back to the file extension.
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".css":
		t.css++
	case ".js":
		t.js++
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
		t.images++
	}
}

func (t *requestTracker) counts() (css, js, images int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.css, t.js, t.images
}

func (t *requestTracker) idleFor() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inflight) > 0 {
		return 0
	}
	return time.Since(t.lastActivity)
}

// waitIdle blocks until no request has been in flight for window, or until
// timeout elapses. Not reaching idle is not an error.
func (t *requestTracker) waitIdle(ctx context.Context, window, timeout time.Duration) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for {
		if t.idleFor() >= window {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
		}
	}
}
