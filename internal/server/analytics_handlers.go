package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trade-journal-go/internal/analytics"
	"trade-journal-go/internal/models"
)

// Summary computes aggregate performance stats over the caller's closed
// trades, optionally narrowed to a calendar month.
func (h *Handler) Summary(c *gin.Context) {
	user := currentUser(c)

	trades, loaded := h.loadTrades(c, closedOnly(h.tradesQuery(c, user.ID)))
	if !loaded {
		return
	}

	summary, err := analytics.ComputeSummary(trades)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"data": summary})
}

// EquityCurve returns cumulative realized pnl over a trailing window,
// bucketed per day or per trade.
func (h *Handler) EquityCurve(c *gin.Context) {
	user := currentUser(c)

	mode := analytics.SeriesDaily
	if period := c.Query("period"); period != "" {
		mode = analytics.SeriesMode(period)
	}

	days := queryInt(c, "days", 30)
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)

	query := closedOnly(h.db.Where("user_id = ? AND date >= ?", user.ID, since))
	trades, loaded := h.loadTrades(c, query)
	if !loaded {
		return
	}

	series, err := analytics.BuildEquitySeries(trades, mode)
	if err != nil {
		if errors.Is(err, analytics.ErrMalformedTrade) {
			h.handleAnalyticsError(c, err)
		} else {
			fail(c, http.StatusBadRequest, "period must be daily or trade")
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"data": series})
}

// TradingVolume returns per-day traded quantity for the caller's closed
// trades, narrowed to a trailing window or a calendar month.
func (h *Handler) TradingVolume(c *gin.Context) {
	user := currentUser(c)

	trades, loaded := h.loadTrades(c, closedOnly(h.windowQuery(c, user.ID)))
	if !loaded {
		return
	}

	points, err := analytics.BuildVolumeSeries(trades)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"data": gin.H{"volume": points}})
}

// BehaviorAnalysis inspects the caller's trading habits. Unlike the pnl
// analytics it considers open trades too, since discipline breaches do
// not wait for an exit.
func (h *Handler) BehaviorAnalysis(c *gin.Context) {
	user := currentUser(c)

	trades, loaded := h.loadTrades(c, h.windowQuery(c, user.ID))
	if !loaded {
		return
	}

	report, err := analytics.AnalyzeBehavior(trades, user.TradeLimit())
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"data": report})
}

// tradesQuery starts a query over the user's trades with the optional
// month and year filters applied.
func (h *Handler) tradesQuery(c *gin.Context, userID uint) *gorm.DB {
	query := h.db.Where("user_id = ?", userID)
	return applyMonthFilter(query, c.Query("month"), c.Query("year"))
}

// windowQuery prefers a trailing ?days window and falls back to the
// month/year filter when days is absent.
func (h *Handler) windowQuery(c *gin.Context, userID uint) *gorm.DB {
	if c.Query("days") == "" {
		return h.tradesQuery(c, userID)
	}
	days := queryInt(c, "days", 30)
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
	return h.db.Where("user_id = ? AND date >= ?", userID, since)
}

func closedOnly(query *gorm.DB) *gorm.DB {
	return query.Where("status = ?", models.StatusClosed)
}

func (h *Handler) loadTrades(c *gin.Context, query *gorm.DB) ([]models.Trade, bool) {
	var trades []models.Trade
	if err := query.Order("date ASC, time ASC").Find(&trades).Error; err != nil {
		h.logger.Error("Failed to load trades for analytics", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return trades, true
}

func (h *Handler) handleAnalyticsError(c *gin.Context, err error) {
	if errors.Is(err, analytics.ErrMalformedTrade) {
		h.logger.Error("Malformed trade record encountered", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Corrupt trade data, please contact support")
		return
	}
	h.logger.Error("Analytics computation failed", zap.Error(err))
	fail(c, http.StatusInternalServerError, "Internal server error")
}
