// Package market proxies third-party market-data APIs (NewsAPI headlines,
// Twelve Data symbol search) behind rate-limited resty clients.
package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trade-journal-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const newsBaseURL = "https://newsapi.org/v2"

var (
	// ErrMissingAPIKey reports a proxy invoked without credentials.
	ErrMissingAPIKey = errors.New("api key not configured")
	// ErrUpstreamRateLimited reports an upstream 429 with no cached data
	// to fall back on.
	ErrUpstreamRateLimited = errors.New("upstream rate limit exceeded")
	// ErrUpstreamUnavailable reports any other upstream failure.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// NewsItem is one formatted headline.
type NewsItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Summary     string `json:"summary"`
}

// NewsResponse is the proxy's cached payload.
type NewsResponse struct {
	Count    int        `json:"count"`
	Items    []NewsItem `json:"data"`
	CachedAt time.Time  `json:"cachedAt"`
}

type newsAPIResult struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// NewsClient fetches Indian business headlines with a TTL cache in front.
type NewsClient struct {
	client  *resty.Client
	apiKey  string
	cache   *NewsCache
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewNewsClient creates a news proxy client.
func NewNewsClient(cfg *config.MarketNews, cache *NewsCache, logger *zap.Logger) *NewsClient {
	return &NewsClient{
		client:  resty.New().SetBaseURL(newsBaseURL),
		apiKey:  cfg.APIKey,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
		logger:  logger,
	}
}

// GetMarketNews returns the cached headlines when fresh, otherwise fetches
// from NewsAPI. On an upstream 429 it degrades to stale cache if present.
func (c *NewsClient) GetMarketNews(ctx context.Context) (*NewsResponse, error) {
	if cached, ok := c.cache.Get(); ok {
		c.logger.Debug("Serving cached market news")
		return cached, nil
	}

	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var result newsAPIResult
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"country":  "in",
			"category": "business",
			"pageSize": "10",
			"apiKey":   c.apiKey,
		}).
		SetResult(&result).
		Get("/top-headlines")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: invalid api key", ErrMissingAPIKey)
	case resp.StatusCode() == http.StatusTooManyRequests:
		if stale, ok := c.cache.GetStale(); ok {
			c.logger.Warn("NewsAPI rate limited, serving stale cache")
			return stale, nil
		}
		return nil, ErrUpstreamRateLimited
	case resp.IsError():
		return nil, fmt.Errorf("%w: status %s", ErrUpstreamUnavailable, resp.Status())
	case result.Status == "error":
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, result.Message)
	}

	items := make([]NewsItem, 0, 10)
	for _, a := range result.Articles {
		if len(items) == 10 {
			break
		}
		items = append(items, NewsItem{
			Title:       a.Title,
			URL:         a.URL,
			Source:      sourceName(a.Source.Name),
			PublishedAt: a.PublishedAt,
			Summary:     a.Description,
		})
	}

	response := &NewsResponse{
		Count:    len(items),
		Items:    items,
		CachedAt: time.Now(),
	}
	c.cache.Set(response)
	c.logger.Info("Fetched fresh market news", zap.Int("count", len(items)))
	return response, nil
}

// RefreshCache drops the cached headlines so the next call refetches.
func (c *NewsClient) RefreshCache() {
	c.cache.Clear()
	c.logger.Info("News cache cleared")
}

func sourceName(name string) string {
	if name == "" {
		return "News Source"
	}
	return name
}
