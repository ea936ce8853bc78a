package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"trade-journal-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const symbolSearchBaseURL = "https://api.twelvedata.com"

// ErrQueryTooShort rejects symbol searches under two characters.
var ErrQueryTooShort = errors.New("query must be at least 2 characters")

// SymbolMatch is one search hit.
type SymbolMatch struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type symbolSearchResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    []struct {
		Symbol         string `json:"symbol"`
		InstrumentName string `json:"instrument_name"`
		Exchange       string `json:"exchange"`
		InstrumentType string `json:"instrument_type"`
		Type           string `json:"type"`
	} `json:"data"`
}

// SymbolClient proxies Twelve Data symbol search.
type SymbolClient struct {
	client  *resty.Client
	apiKey  string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewSymbolClient creates a symbol-search proxy client.
func NewSymbolClient(cfg *config.SymbolSearch, logger *zap.Logger) *SymbolClient {
	return &SymbolClient{
		client:  resty.New().SetBaseURL(symbolSearchBaseURL),
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
		logger:  logger,
	}
}

// Search looks up stock symbols matching the query, capped at 10 results.
func (c *SymbolClient) Search(ctx context.Context, query string) ([]SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, ErrQueryTooShort
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var result symbolSearchResult
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": query,
			"apikey": c.apiKey,
		}).
		SetResult(&result).
		Get("/symbol_search")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: invalid api key", ErrMissingAPIKey)
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, ErrUpstreamRateLimited
	case resp.IsError():
		return nil, fmt.Errorf("%w: status %s", ErrUpstreamUnavailable, resp.Status())
	case result.Status == "error":
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, result.Message)
	}

	matches := make([]SymbolMatch, 0, 10)
	for _, item := range result.Data {
		if len(matches) == 10 {
			break
		}
		description := item.InstrumentName
		if description == "" {
			description = item.Exchange
		}
		matchType := item.InstrumentType
		if matchType == "" {
			matchType = item.Type
		}
		if matchType == "" {
			matchType = "Stock"
		}
		matches = append(matches, SymbolMatch{
			Symbol:      item.Symbol,
			Description: description,
			Type:        matchType,
		})
	}

	c.logger.Debug("Symbol search completed", zap.String("query", query), zap.Int("matches", len(matches)))
	return matches, nil
}
