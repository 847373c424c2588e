package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/veritube/internal/cache"
	"github.com/ppiankov/veritube/internal/model"
	"github.com/ppiankov/veritube/internal/util"
	"github.com/ppiankov/veritube/internal/worker"
)

// Searcher defines the interface for the web-search service
type Searcher interface {
	// Search runs one query and returns at most limit evidence items.
	Search(ctx context.Context, query string, limit int) ([]model.EvidenceItem, error)
}

const searchMaxRetries = 3

// searchSleepFunc is the sleep function used between retries (injectable for tests)
var searchSleepFunc = time.Sleep

// GoogleClient implements Searcher against the Google Custom Search JSON API
type GoogleClient struct {
	httpClient *http.Client
	apiKey     string
	engineID   string // Custom Search engine (cx) identifier
	baseURL    string
	userAgent  string
	limiter    *worker.Limiter
	cache      cache.Cache // nil disables caching
	cacheTTL   time.Duration
}

// GoogleOption customizes a GoogleClient
type GoogleOption func(*GoogleClient)

// WithCache enables TTL caching of search responses
func WithCache(c cache.Cache, ttl time.Duration) GoogleOption {
	return func(g *GoogleClient) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

// WithLimiter sets the outbound rate limiter
func WithLimiter(l *worker.Limiter) GoogleOption {
	return func(g *GoogleClient) {
		g.limiter = l
	}
}

// WithBaseURL overrides the API endpoint (used in tests)
func WithBaseURL(u string) GoogleOption {
	return func(g *GoogleClient) {
		g.baseURL = strings.TrimSuffix(u, "/")
	}
}

// NewGoogleClient creates a Custom Search client
func NewGoogleClient(apiKey, engineID string, httpCfg model.HTTPConfig, opts ...GoogleOption) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("search API key is required")
	}
	if engineID == "" {
		return nil, fmt.Errorf("search engine ID (cx) is required")
	}

	g := &GoogleClient{
		httpClient: &http.Client{
			Timeout: httpCfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
		apiKey:    apiKey,
		engineID:  engineID,
		baseURL:   "https://www.googleapis.com/customsearch/v1",
		userAgent: httpCfg.UserAgent,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// googleResponse mirrors the slice of the Custom Search response we need
type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search runs one query with bounded retry on transient failures
func (g *GoogleClient) Search(ctx context.Context, query string, limit int) ([]model.EvidenceItem, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 10 {
		limit = 10 // API maximum per request
	}

	key := cache.SearchKey(query, limit)
	if g.cache != nil {
		if data, found := g.cache.Get(key); found {
			var items []model.EvidenceItem
			if err := json.Unmarshal(data, &items); err == nil {
				return items, nil
			}
		}
	}

	var items []model.EvidenceItem
	var err error
	for attempt := 0; attempt < searchMaxRetries; attempt++ {
		items, err = g.searchOnce(ctx, query, limit)
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			break
		}
		if attempt < searchMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			searchSleepFunc(backoff)
		}
	}
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		if data, mErr := json.Marshal(items); mErr == nil {
			_ = g.cache.Set(key, data, g.cacheTTL)
		}
	}

	return items, nil
}

func (g *GoogleClient) searchOnce(ctx context.Context, query string, limit int) ([]model.EvidenceItem, error) {
	reqURL := fmt.Sprintf("%s?key=%s&cx=%s&q=%s&num=%d",
		g.baseURL,
		url.QueryEscape(g.apiKey),
		url.QueryEscape(g.engineID),
		url.QueryEscape(query),
		limit,
	)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, reqURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiResp googleResponse
		if jErr := json.Unmarshal(body, &apiResp); jErr == nil && apiResp.Error != nil {
			return nil, &statusError{code: resp.StatusCode, message: apiResp.Error.Message}
		}
		return nil, &statusError{code: resp.StatusCode, message: http.StatusText(resp.StatusCode)}
	}

	var apiResp googleResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]model.EvidenceItem, 0, len(apiResp.Items))
	for _, item := range apiResp.Items {
		if item.Link == "" {
			continue
		}
		items = append(items, model.EvidenceItem{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
			Query:   query,
		})
	}
	return items, nil
}

// statusError carries the HTTP status so retry logic can classify it
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return "search API error (" + strconv.Itoa(e.code) + "): " + e.message
}

// isRetryable reports whether an error indicates a transient failure worth
// retrying: 5xx, 429, or network-level errors
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || (se.code >= 500 && se.code < 600)
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
