// Package platform implements REST clients for the third-party services the
// persona lives on: Moltbook, Clawk, Shellmates, and AgentMail.
//
// All clients share one base client with pooled transport, retries on
// connection errors and 5xx (429 is never retried so callers can decide how
// to deal with rate limiting), client-side sliding-window rate limiting, and
// typed errors carrying the ratelimit-* response headers.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RussellLuo/slidingwindow"
	"github.com/carlmjohnson/versioninfo"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/kitfox/den/internal/apperr"
)

// leveledSlog adapts slog to retryablehttp's logger. Client ERROR is
// rewritten to WARN because intermediate failures get retried.
type leveledSlog struct {
	inner *slog.Logger
}

func (l leveledSlog) Error(msg string, keysAndValues ...any) { l.inner.Warn(msg, keysAndValues...) }
func (l leveledSlog) Warn(msg string, keysAndValues ...any)  { l.inner.Warn(msg, keysAndValues...) }
func (l leveledSlog) Info(msg string, keysAndValues ...any)  { l.inner.Info(msg, keysAndValues...) }
func (l leveledSlog) Debug(msg string, keysAndValues ...any) { l.inner.Debug(msg, keysAndValues...) }

// retryPolicy wraps retryablehttp.DefaultRetryPolicy but treats 429 as
// non-retryable so the application decides how to deal with rate limiting.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// NewHTTPClient returns an *http.Client with retry and timeout defaults
// suitable for the platform APIs.
func NewHTTPClient(logger *slog.Logger) *http.Client {
	if logger == nil {
		logger = slog.Default()
	}
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	rc.RetryMax = 3
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = retryablehttp.LeveledLogger(leveledSlog{inner: logger.With(slog.String("subsystem", "platform-http"))})
	rc.CheckRetry = retryPolicy

	client := rc.StandardClient()
	client.Timeout = 30 * time.Second
	return client
}

// RatelimitInfo is parsed from ratelimit-* response headers.
type RatelimitInfo struct {
	Limit     int
	Remaining int
	Policy    string
	Reset     time.Time
}

// Error is a typed platform API error.
type Error struct {
	Platform   string
	StatusCode int
	ErrStr     string
	Message    string
	Ratelimit  *RatelimitInfo
}

func (e *Error) Error() string {
	msg := e.ErrStr
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", e.ErrStr, e.Message)
	}
	if msg == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Platform, e.StatusCode)
	}
	if e.StatusCode == http.StatusTooManyRequests && e.Ratelimit != nil {
		return fmt.Sprintf("%s: HTTP %d: %s (throttled until %s)", e.Platform, e.StatusCode, msg, e.Ratelimit.Reset.Local())
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Platform, e.StatusCode, msg)
}

// Is lets errors.Is(err, apperr.ErrRateLimited) match throttled responses.
func (e *Error) Is(target error) bool {
	return target == apperr.ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// IsThrottled reports whether the platform asked us to back off.
func (e *Error) IsThrottled() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func errorFromResponse(platform string, resp *http.Response) *Error {
	e := &Error{Platform: platform, StatusCode: resp.StatusCode}

	var body struct {
		ErrStr  string `json:"error"`
		Message string `json:"message"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil {
		e.ErrStr = body.ErrStr
		e.Message = body.Message
	}

	if resp.Header.Get("ratelimit-limit") != "" {
		e.Ratelimit = &RatelimitInfo{
			Policy: resp.Header.Get("ratelimit-policy"),
		}
		if n, err := strconv.ParseInt(resp.Header.Get("ratelimit-reset"), 10, 64); err == nil {
			e.Ratelimit.Reset = time.Unix(n, 0)
		}
		if n, err := strconv.ParseInt(resp.Header.Get("ratelimit-limit"), 10, 64); err == nil {
			e.Ratelimit.Limit = int(n)
		}
		if n, err := strconv.ParseInt(resp.Header.Get("ratelimit-remaining"), 10, 64); err == nil {
			e.Ratelimit.Remaining = int(n)
		}
	}
	return e
}

// Options configures a platform client.
type Options struct {
	BaseURL    string
	Token      string
	UserAgent  string
	HealthPath string // defaults to /api/status

	// Client-side rate limit: at most RateLimit requests per RateWindow.
	// Zero disables the limiter.
	RateLimit  int64
	RateWindow time.Duration

	// HTTPClient overrides the default retrying client (used in tests).
	HTTPClient *http.Client
}

// Client is the shared base for all platform API clients.
type Client struct {
	name       string
	baseURL    string
	token      string
	userAgent  string
	healthPath string
	http       *http.Client
	limiter    *slidingwindow.Limiter
	logger     *slog.Logger
}

// NewClient builds a base client for the named platform.
func NewClient(name string, opts Options, logger *slog.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: %s has no base URL", apperr.ErrNotConfigured, name)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		name:       name,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		userAgent:  opts.UserAgent,
		healthPath: opts.HealthPath,
		http:       opts.HTTPClient,
		logger:     logger.With(slog.String("platform", name)),
	}
	if c.userAgent == "" {
		c.userAgent = "den/" + versioninfo.Short()
	}
	if c.healthPath == "" {
		c.healthPath = "/api/status"
	}
	if c.http == nil {
		c.http = NewHTTPClient(logger)
	}
	if opts.RateLimit > 0 && opts.RateWindow > 0 {
		lim, _ := slidingwindow.NewLimiter(opts.RateWindow, opts.RateLimit, func() (slidingwindow.Window, slidingwindow.StopFunc) {
			return slidingwindow.NewLocalWindow()
		})
		c.limiter = lim
	}
	return c, nil
}

// Name returns the platform name.
func (c *Client) Name() string { return c.name }

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	_, err := c.do(ctx, http.MethodGet, path, params, nil, out)
	return err
}

// post issues a POST request with a JSON body and decodes the response into
// out. The status code is returned for flows that branch on it (Moltbook's
// captcha gate answers 202 before a comment is accepted).
func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) (int, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return 0, fmt.Errorf("%w: %s client-side limit reached", apperr.ErrRateLimited, c.name)
	}

	uri := c.baseURL + path
	if len(params) > 0 {
		uri += "?" + params.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("platform %s: marshal body: %w", c.name, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, rdr)
	if err != nil {
		return 0, fmt.Errorf("platform %s: build request: %w", c.name, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("platform %s: request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.StatusCode, errorFromResponse(c.name, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("platform %s: decode response: %w", c.name, err)
		}
	}
	return resp.StatusCode, nil
}
