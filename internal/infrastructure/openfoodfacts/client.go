package openfoodfacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/greenscanner/backend/internal/domain"
)

const serviceName = "openfoodfacts"

// Paths of the two search endpoints
const (
	simpleSearchPath = "/cgi/search.pl"
	v2SearchPath     = "/api/v2/search"
)

// maxBodyBytes caps how much of a search response is read
const maxBodyBytes = 8 << 20

// ClientConfig holds Open Food Facts client settings
type ClientConfig struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	MaxAttempts       int
	RequestsPerMinute int
}

// Client handles communication with the Open Food Facts search APIs
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	timeout     time.Duration
	maxAttempts int
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      *zap.Logger
}

// NewClient creates a new Open Food Facts client
func NewClient(config ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = 2
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "GreenScanner/1.0"
	}

	// Open Food Facts asks search clients to stay around 10 requests per minute
	// per user; the service fans out several searches per lookup, so the
	// default budget is larger with a small burst.
	perMinute := config.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 100
	}
	limiter := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 10)

	return &Client{
		httpClient:  &http.Client{},
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		userAgent:   userAgent,
		timeout:     timeout,
		maxAttempts: attempts,
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
		logger:      logger.Named(serviceName),
	}
}

// Search runs one product search. A nil error with no products means the
// search succeeded and matched nothing; any transport failure, non-2xx status
// or unreadable body is returned as a *domain.UpstreamError.
// 429 and 5xx responses are retried with exponential backoff.
func (c *Client) Search(ctx context.Context, query domain.ProductQuery) ([]domain.RawProduct, error) {
	reqURL, err := c.buildURL(query)
	if err != nil {
		return nil, &domain.UpstreamError{Service: serviceName, Err: err}
	}

	log := c.logger.With(zap.String("terms", query.Terms), zap.String("category", query.CategoryTag))

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return nil, &domain.UpstreamError{Service: serviceName, Err: err}
			}
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, &domain.UpstreamError{Service: serviceName, Err: fmt.Errorf("rate limiter: %w", err)}
		}

		products, retry, err := c.searchOnce(ctx, reqURL)
		if err == nil {
			log.Debug("search complete", zap.Int("products", len(products)), zap.Int("attempt", attempt))
			return products, nil
		}
		lastErr = err
		log.Warn("search attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		if !retry {
			break
		}
	}
	return nil, lastErr
}

// searchOnce performs one bounded request; retry reports whether the failure is transient
func (c *Client) searchOnce(ctx context.Context, reqURL string) ([]domain.RawProduct, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, &domain.UpstreamError{Service: serviceName, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, &domain.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, true, &domain.UpstreamError{Service: serviceName, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, &domain.UpstreamError{Service: serviceName, Status: resp.StatusCode}
	}

	products, err := DecodeSearchResponse(body)
	if err != nil {
		return nil, false, &domain.UpstreamError{Service: serviceName, Err: err}
	}
	return products, false, nil
}

// buildURL renders the endpoint URL for a query
func (c *Client) buildURL(q domain.ProductQuery) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid base URL %q", c.baseURL)
	}

	params := url.Values{}
	switch q.Mode {
	case domain.ModeSimple:
		base.Path += simpleSearchPath
		params.Set("search_terms", q.Terms)
		params.Set("search_simple", "1")
		params.Set("action", "process")
		params.Set("json", "1")
	default:
		base.Path += v2SearchPath
		if q.CategoryTag != "" {
			params.Set("categories_tags", q.CategoryTag)
		} else {
			params.Set("search_terms", q.Terms)
		}
		if len(q.Fields) > 0 {
			params.Set("fields", strings.Join(q.Fields, ","))
		}
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}

	base.RawQuery = params.Encode()
	return base.String(), nil
}

// exponentialBackoff returns the wait before retry number attempt (1-based)
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
