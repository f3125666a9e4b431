// Package render drives a headless browser to obtain fully script-executed
// HTML for sources whose content is absent from the initial document
// response. One Session owns one browser process and one shared browsing
// context; every call opens its own tab and closes it on every exit path.
// Calls on one Session must be sequential; parallel rendering means
// multiple Sessions.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/caslex/caslex/internal/errclass"
)

// Config is the immutable browser session configuration.
type Config struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	// SlowMo pauses after navigation, for sources that throttle rapid
	// automation.
	SlowMo time.Duration
}

// DefaultConfig returns the session settings used against the case-law
// sources.
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		Timeout:        30 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36",
	}
}

// RenderedPage is the immutable snapshot of one navigation.
type RenderedPage struct {
	URL        string        `json:"url"`
	HTML       string        `json:"html"`
	Title      string        `json:"title"`
	StatusCode int           `json:"status_code"`
	LoadTime   time.Duration `json:"load_time"`
}

// PageOptions tune one RenderPage call.
type PageOptions struct {
	// WaitSelector, when set, must become visible before the snapshot is
	// taken; its absence fails the call.
	WaitSelector string
	// WaitNetworkIdle waits, best-effort, for request activity to quiet
	// down after navigation. Failing to reach idle is tolerated.
	WaitNetworkIdle bool
}

// DefaultPageOptions waits for network idle and no selector.
func DefaultPageOptions() PageOptions {
	return PageOptions{WaitNetworkIdle: true}
}

type sessionState int

const (
	stateNotStarted sessionState = iota
	stateStarted
	stateStopped
)

// Session is the stateful rendering adapter. Zero value is not usable;
// construct with NewSession, then Start before rendering.
type Session struct {
	cfg Config
	log *slog.Logger

	mu            sync.Mutex
	state         sessionState
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewSession builds a stopped session around cfg.
func NewSession(cfg Config, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Session{cfg: cfg, log: log}
}

// Start launches the browser process and the shared browsing context. The
// session lives until Stop or until ctx is cancelled.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateStarted {
		return nil
	}
	if s.state == stateStopped {
		return errclass.NewComponentUnavailable("browser session already stopped")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.WindowSize(s.cfg.ViewportWidth, s.cfg.ViewportHeight),
	)
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the browser process to launch now, so a
	// missing or broken binary surfaces here and not on the first render.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return errclass.NewComponentUnavailable("browser failed to launch: " + err.Error())
	}

	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	s.allocCancel = allocCancel
	s.state = stateStarted
	s.log.Info("browser session started", "headless", s.cfg.Headless,
		"viewport", fmt.Sprintf("%dx%d", s.cfg.ViewportWidth, s.cfg.ViewportHeight))
	return nil
}

// Stop closes the context, the browser, and the underlying process. Safe
// to call on a session that never started.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateStarted {
		s.browserCancel()
		s.allocCancel()
		s.log.Info("browser session stopped")
	}
	s.state = stateStopped
}

// Started reports whether the session can render.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateStarted
}

func (s *Session) ensureStarted() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateStarted {
		return nil, errclass.NewComponentUnavailable("browser session not started")
	}
	return s.browserCtx, nil
}

// RenderPage navigates a fresh tab to url and snapshots the executed DOM.
// The tab is closed on every exit path. Navigation overrunning the
// configured timeout is a recoverable Timeout; a wait selector that never
// appears is a recoverable RenderFailure.
func (s *Session) RenderPage(ctx context.Context, url string, opts PageOptions) (*RenderedPage, error) {
	browserCtx, err := s.ensureStarted()
	if err != nil {
		return nil, err
	}
	start := time.Now()

	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()
	tabCtx, cancel := context.WithTimeout(tabCtx, s.cfg.Timeout)
	defer cancel()

	status := watchDocumentStatus(tabCtx)
	var idle *idleTracker
	if opts.WaitNetworkIdle {
		idle = watchNetworkActivity(tabCtx)
	}

	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(url)); err != nil {
		return nil, s.classifyNavError(err, url, "navigate")
	}
	if s.cfg.SlowMo > 0 {
		sleepCtx(tabCtx, s.cfg.SlowMo)
	}
	if idle != nil {
		// Best-effort: some sources poll forever and never go quiet.
		if !idle.await(tabCtx, s.cfg.Timeout/2) {
			s.log.Debug("network never reached idle", "url", url)
		}
	}
	if opts.WaitSelector != "" {
		if err := chromedp.Run(tabCtx, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery)); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, errclass.NewRenderFailure(
					fmt.Sprintf("selector %q never appeared", opts.WaitSelector), url)
			}
			return nil, errclass.NewRenderFailure("wait for selector: "+err.Error(), url)
		}
	}

	var html, title string
	if err := chromedp.Run(tabCtx, chromedp.Title(&title), chromedp.OuterHTML("html", &html)); err != nil {
		return nil, s.classifyNavError(err, url, "capture content")
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return nil, errclass.NewRenderFailure("caller cancelled: "+ctxErr.Error(), url)
	}

	page := &RenderedPage{
		URL:        url,
		HTML:       html,
		Title:      title,
		StatusCode: status.code(),
		LoadTime:   time.Since(start),
	}
	s.log.Debug("rendered page", "url", url, "status", page.StatusCode,
		"load_ms", page.LoadTime.Milliseconds(), "bytes", len(page.HTML))
	return page, nil
}

// CaptureScreenshot renders url and writes a full-page screenshot to
// outputPath, with the same open/navigate/close discipline as RenderPage.
func (s *Session) CaptureScreenshot(ctx context.Context, url, outputPath string) (string, error) {
	browserCtx, err := s.ensureStarted()
	if err != nil {
		return "", err
	}

	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()
	tabCtx, cancel := context.WithTimeout(tabCtx, s.cfg.Timeout)
	defer cancel()

	var shot []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.FullScreenshot(&shot, 90),
	); err != nil {
		return "", s.classifyNavError(err, url, "screenshot")
	}
	if err := os.WriteFile(outputPath, shot, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	s.log.Debug("captured screenshot", "url", url, "path", outputPath)
	return outputPath, nil
}

// SearchFilters maps CSS selectors of form controls to the values to
// enter. Filter-to-control mapping is source specific; a filter whose
// control is absent on the page is skipped, not an error.
type SearchFilters map[string]string

// ExecuteSearch navigates to baseURL, applies filters best-effort, submits
// the first search form it can find, waits for activity to quiet down, and
// returns the resulting page.
func (s *Session) ExecuteSearch(ctx context.Context, baseURL string, filters SearchFilters) (*RenderedPage, error) {
	browserCtx, err := s.ensureStarted()
	if err != nil {
		return nil, err
	}
	start := time.Now()

	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()
	tabCtx, cancel := context.WithTimeout(tabCtx, s.cfg.Timeout)
	defer cancel()

	status := watchDocumentStatus(tabCtx)
	idle := watchNetworkActivity(tabCtx)

	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(baseURL)); err != nil {
		return nil, s.classifyNavError(err, baseURL, "navigate")
	}
	idle.await(tabCtx, s.cfg.Timeout/2)

	for selector, value := range filters {
		// Each interaction gets a short budget of its own so one missing
		// control cannot eat the whole call.
		actionCtx, actionCancel := context.WithTimeout(tabCtx, 2*time.Second)
		err := chromedp.Run(actionCtx, chromedp.SendKeys(selector, value, chromedp.ByQuery))
		actionCancel()
		if err != nil {
			s.log.Debug("search filter skipped", "selector", selector, "reason", err)
		}
	}

	submitCtx, submitCancel := context.WithTimeout(tabCtx, 2*time.Second)
	if err := chromedp.Run(submitCtx,
		chromedp.Click(`button[type="submit"], input[type="submit"]`, chromedp.ByQuery),
	); err != nil {
		s.log.Debug("no submit control found", "url", baseURL)
	}
	submitCancel()
	idle.await(tabCtx, s.cfg.Timeout/2)

	var html, title string
	if err := chromedp.Run(tabCtx, chromedp.Title(&title), chromedp.OuterHTML("html", &html)); err != nil {
		return nil, s.classifyNavError(err, baseURL, "capture content")
	}
	return &RenderedPage{
		URL:        baseURL,
		HTML:       html,
		Title:      title,
		StatusCode: status.code(),
		LoadTime:   time.Since(start),
	}, nil
}

func (s *Session) classifyNavError(err error, url, stage string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errclass.NewTimeout(stage+" deadline exceeded", s.cfg.Timeout.Seconds())
	}
	return errclass.NewRenderFailure(stage+": "+err.Error(), url)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
