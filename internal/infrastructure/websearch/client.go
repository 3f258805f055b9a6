package websearch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/greenscanner/backend/internal/domain"
)

const (
	defaultBaseURL = "https://api.search.brave.com"
	searchPath     = "/res/v1/web/search"
	defaultTimeout = 4 * time.Second
	defaultLimit   = 3
	maxBodyBytes   = 2 << 20
)

// ClientConfig holds Brave Search settings
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond matches the subscription plan; the free plan allows 1
	RequestsPerSecond float64
}

// Client is a best-effort Brave Search client. It never returns an error:
// no key, a failed call, a timeout or a malformed body all yield no results.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new web search client
func NewClient(config ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		httpClient:  &http.Client{},
		apiKey:      strings.TrimSpace(config.APIKey),
		baseURL:     baseURL,
		timeout:     timeout,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:      logger.Named("websearch"),
	}
}

// Search returns up to limit web results for query
func (c *Client) Search(ctx context.Context, query string, limit int) []domain.WebResult {
	if c.apiKey == "" {
		return []domain.WebResult{}
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results, err := c.search(ctx, query, limit)
	if err != nil {
		c.logger.Warn("web search failed", zap.String("query", query), zap.Error(err))
		return []domain.WebResult{}
	}
	return results
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]domain.WebResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(limit))
	reqURL := c.baseURL + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Subscription-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "websearch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{Service: "websearch", Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.UpstreamError{Service: "websearch", Err: err}
	}
	return DecodeResults(body, limit), nil
}

// DecodeResults reads web.results from a Brave response, keeping at most limit
func DecodeResults(body []byte, limit int) []domain.WebResult {
	results := []domain.WebResult{}
	if !gjson.ValidBytes(body) {
		return results
	}
	items := gjson.GetBytes(body, "web.results")
	if !items.IsArray() {
		return results
	}
	for _, item := range items.Array() {
		if len(results) == limit {
			break
		}
		if !item.IsObject() {
			continue
		}
		results = append(results, domain.WebResult{
			Title:   stringField(item, "title"),
			URL:     stringField(item, "url"),
			Snippet: stringField(item, "description"),
		})
	}
	return results
}

func stringField(r gjson.Result, path string) string {
	v := r.Get(path)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}
