package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trade-journal-go/internal/market"
)

// MarketNews returns the cached business headlines, fetching from the
// upstream provider when the cache has gone stale.
func (h *Handler) MarketNews(c *gin.Context) {
	news, err := h.news.GetMarketNews(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, market.ErrMissingAPIKey):
			fail(c, http.StatusServiceUnavailable, "Market news is not configured")
		case errors.Is(err, market.ErrUpstreamRateLimited):
			fail(c, http.StatusTooManyRequests, "News provider rate limit reached, try again later")
		default:
			h.logger.Error("Failed to fetch market news", zap.Error(err))
			fail(c, http.StatusBadGateway, "News provider is unavailable")
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"data": news})
}

// RefreshMarketNews drops the news cache so the next read hits upstream.
func (h *Handler) RefreshMarketNews(c *gin.Context) {
	h.news.RefreshCache()
	ok(c, http.StatusOK, gin.H{"message": "News cache cleared"})
}

// SymbolSearch proxies instrument lookups to the quote provider.
func (h *Handler) SymbolSearch(c *gin.Context) {
	matches, err := h.symbols.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		switch {
		case errors.Is(err, market.ErrQueryTooShort):
			fail(c, http.StatusBadRequest, "Query must be at least 2 characters")
		case errors.Is(err, market.ErrMissingAPIKey):
			fail(c, http.StatusServiceUnavailable, "Symbol search is not configured")
		case errors.Is(err, market.ErrUpstreamRateLimited):
			fail(c, http.StatusTooManyRequests, "Quote provider rate limit reached, try again later")
		default:
			h.logger.Error("Symbol search failed", zap.Error(err), zap.String("query", c.Query("q")))
			fail(c, http.StatusBadGateway, "Quote provider is unavailable")
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"data": gin.H{"matches": matches}})
}
