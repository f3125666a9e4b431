// Package fetch retrieves pages over plain HTTP for sources whose content
// is complete in the initial document response. Sources that assemble
// their pages in script go through the browser session instead.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/caslex/caslex/internal/errclass"
)

const maxBodyBytes = 16 << 20 // 16MB, far above any case-law page

// Page is one fetched document.
type Page struct {
	URL        string `json:"url"`
	HTML       string `json:"html"`
	StatusCode int    `json:"status_code"`
}

// Client fetches pages with classified failures. Recoverable failures are
// retried internally with backoff; what comes back is either a page or an
// error retrying cannot fix right now.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxRetries int
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxRetries: MaxRetries,
	}
}

// Get fetches url, retrying recoverable failures up to MaxRetries times.
// A rate-limited response is waited out for its advertised Retry-After
// before the next attempt, ctx permitting.
func (c *Client) Get(ctx context.Context, url string) (*Page, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitBeforeRetry(ctx, lastErr, attempt-1); err != nil {
				return nil, err
			}
		}
		page, err := c.fetch(ctx, url)
		if err == nil {
			return page, nil
		}
		if !errclass.Recoverable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return nil, errclass.NewTimeout("fetch "+url, c.httpClient.Timeout.Seconds())
		}
		return nil, errclass.NewRemoteServerError("fetch "+url+": "+err.Error(), 0)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, errclass.NewRateLimited("rate limited by "+req.URL.Host, retryAfter)
	case resp.StatusCode >= 500:
		return nil, errclass.NewRemoteServerError(
			fmt.Sprintf("fetch %s: status %d", url, resp.StatusCode), resp.StatusCode)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("fetch %s: status %d: %s", url, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errclass.NewRemoteServerError("read body: "+err.Error(), resp.StatusCode)
	}
	return &Page{URL: url, HTML: string(body), StatusCode: resp.StatusCode}, nil
}

func isClientTimeout(err error) bool {
	// net/http wraps its client timeout in a *url.Error whose message
	// carries this marker rather than context.DeadlineExceeded.
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
