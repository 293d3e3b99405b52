package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"sec_insights/pkg/config"
	"sec_insights/pkg/core/cache"
	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/logging"
	"sec_insights/pkg/core/metrics"
)

// Cache lifetimes per endpoint.
const (
	TickersTTL     = 24 * time.Hour
	SubmissionsTTL = 6 * time.Hour
	FactsTTL       = 7 * 24 * time.Hour
	ConceptTTL     = 7 * 24 * time.Hour
	FramesTTL      = 30 * 24 * time.Hour
)

const (
	defaultMinInterval = 100 * time.Millisecond
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// HttpRequestDoer performs HTTP requests. *http.Client implements it.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Limiter blocks until the next request may go out.
type Limiter interface{ Wait(context.Context) error }

// Client handles SEC EDGAR API requests. Every network call waits on the
// shared limiter; responses are cached per endpoint when a cache is set.
type Client struct {
	httpClient HttpRequestDoer
	limiter    Limiter
	cache      *cache.Cache
	metrics    *metrics.Metrics
	log        logrus.FieldLogger

	baseURL     string
	tickersURL  string
	userAgent   string
	minInterval time.Duration
	maxAttempts int
	retryDelay  time.Duration
	sleep       func(context.Context, time.Duration) error
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) { c.httpClient = doer }
}

// WithBaseURL points the client at a different EDGAR data host.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithTickersURL overrides the company_tickers.json location.
func WithTickersURL(url string) ClientOption {
	return func(c *Client) { c.tickersURL = url }
}

// WithUserAgent sets the User-Agent header SEC requires.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithMinInterval sets the minimum spacing between network requests. It is
// ignored when WithLimiter is also given.
func WithMinInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.minInterval = d }
}

// WithLimiter paces requests with l instead of a fixed interval.
func WithLimiter(l Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithRetry sets the number of attempts per request and the base delay
// between them.
func WithRetry(maxAttempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		c.retryDelay = delay
	}
}

// WithSleep replaces the retry sleep, mainly for tests.
func WithSleep(sleep func(context.Context, time.Duration) error) ClientOption {
	return func(c *Client) { c.sleep = sleep }
}

// WithCache serves responses from ch when fresh and stores new ones there.
func WithCache(ch *cache.Cache) ClientOption {
	return func(c *Client) { c.cache = ch }
}

// WithMetrics records request counts and latencies into m.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger. Defaults to the standard logrus logger.
func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a new SEC EDGAR API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		tickersURL:  DefaultTickersURL,
		userAgent:   DefaultUserAgent,
		minInterval: defaultMinInterval,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Every(c.minInterval), 1)
	}
	c.log = logging.OrDefault(c.log).WithField("component", "sec_client")
	return c
}

// NewClientFromConfig wires a client from the SEC config section.
func NewClientFromConfig(cfg config.SECConfig, ch *cache.Cache, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithBaseURL(cfg.BaseURL),
		WithTickersURL(cfg.TickersURL),
		WithUserAgent(cfg.UserAgent),
		WithMinInterval(cfg.RateLimitDelay),
		WithRetry(cfg.MaxRetries, cfg.RetryDelay),
		WithCache(ch),
	}
	return NewClient(append(base, opts...)...)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// CompanyTickers fetches the ticker directory.
func (c *Client) CompanyTickers(ctx context.Context) (TickerDirectory, error) {
	var dir TickerDirectory
	if err := c.cached(ctx, "CompanyTickers", TickersTTL, nil, c.tickersURL, &dir); err != nil {
		return nil, err
	}
	return dir, nil
}

// LookupCIK finds the CIK for a given ticker symbol.
func (c *Client) LookupCIK(ctx context.Context, ticker string) (string, error) {
	if strings.TrimSpace(ticker) == "" {
		return "", fmt.Errorf("%w: empty ticker", errs.ErrInvalidIdentifier)
	}
	dir, err := c.CompanyTickers(ctx)
	if err != nil {
		return "", err
	}
	entry, ok := dir.Lookup(ticker)
	if !ok {
		return "", fmt.Errorf("%w: ticker %s not found in SEC database", errs.ErrInvalidIdentifier, strings.ToUpper(ticker))
	}
	return entry.CIK.String(), nil
}

// CompanySubmissions retrieves company metadata and recent filings.
func (c *Client) CompanySubmissions(ctx context.Context, cik string) (*Submissions, error) {
	norm, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}
	var sub Submissions
	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.baseURL, norm)
	if err := c.cached(ctx, "CompanySubmissions", SubmissionsTTL, []any{norm}, url, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CompanyFacts retrieves every XBRL fact a company has reported.
func (c *Client) CompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	norm, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}
	var facts CompanyFacts
	url := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", c.baseURL, norm)
	if err := c.cached(ctx, "CompanyFacts", FactsTTL, []any{norm}, url, &facts); err != nil {
		return nil, err
	}
	return &facts, nil
}

// CompanyConcept retrieves one tag's history for a company.
func (c *Client) CompanyConcept(ctx context.Context, cik, taxonomy, tag string) (*ConceptSeries, error) {
	norm, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}
	if taxonomy == "" || tag == "" {
		return nil, fmt.Errorf("%w: taxonomy and tag are required", errs.ErrInvalidArgument)
	}
	var series ConceptSeries
	url := fmt.Sprintf("%s/api/xbrl/companyconcept/CIK%s/%s/%s.json", c.baseURL, norm, taxonomy, tag)
	if err := c.cached(ctx, "CompanyConcept", ConceptTTL, []any{norm, taxonomy, tag}, url, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// Frames retrieves one value per company for a concept and calendar period.
func (c *Client) Frames(ctx context.Context, q FrameQuery) (*Frame, error) {
	period, err := q.Period()
	if err != nil {
		return nil, err
	}
	var frame Frame
	url := fmt.Sprintf("%s/api/xbrl/frames/%s/%s/%s/%s.json", c.baseURL, q.Taxonomy, q.Tag, q.Unit, period)
	if err := c.cached(ctx, "Frames", FramesTTL, []any{q.Taxonomy, q.Tag, q.Unit, period}, url, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) cached(ctx context.Context, name string, ttl time.Duration, args []any, url string, out any) error {
	compute := func() (json.RawMessage, error) { return c.fetch(ctx, name, url) }

	var data json.RawMessage
	var err error
	if c.cache != nil {
		data, err = c.cache.GetOrCompute(name, ttl, args, compute)
	} else {
		data, err = compute()
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to parse %s response: %w", errs.ErrDataRetrieval, name, err)
	}
	return nil
}

// fetch GETs url with throttling and retries. A 429 backs off linearly
// (delay, 2*delay, ...) and surfaces as ErrRateLimited once attempts run out;
// every other failure waits the base delay and ends as ErrDataRetrieval.
func (c *Client) fetch(ctx context.Context, endpoint, url string) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait for %s: %w", url, err)
		}

		body, status, err := c.get(ctx, endpoint, url)
		if err == nil {
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		last := attempt == c.maxAttempts
		if status == http.StatusTooManyRequests {
			if last {
				return nil, fmt.Errorf("%w: %s", errs.ErrRateLimited, url)
			}
			wait := c.retryDelay * time.Duration(attempt)
			c.log.WithFields(logrus.Fields{"url": url, "attempt": attempt, "wait": wait}).Warn("Rate limited by SEC, backing off")
			c.metrics.Retry("rate_limited")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		lastErr = err
		if last {
			break
		}
		c.log.WithError(err).WithFields(logrus.Fields{"url": url, "attempt": attempt}).Warn("SEC request failed, retrying")
		c.metrics.Retry("error")
		if err := c.sleep(ctx, c.retryDelay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %w", errs.ErrDataRetrieval, url, c.maxAttempts, lastErr)
}

// get performs a single request and returns the body when it is a 2xx
// response holding valid JSON.
func (c *Client) get(ctx context.Context, endpoint, url string) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	// SEC requires User-Agent header
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Request(endpoint, 0, time.Since(start))
		return nil, 0, fmt.Errorf("SEC API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.Request(endpoint, resp.StatusCode, time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("SEC API returned status %d", resp.StatusCode)
	}
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(body) {
		return nil, resp.StatusCode, errors.New("SEC API returned invalid JSON")
	}

	c.log.WithFields(logrus.Fields{"url": url, "status": resp.StatusCode}).Debug("SEC request complete")
	return body, resp.StatusCode, nil
}
