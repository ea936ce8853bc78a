package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trade-journal-go/internal/models"
)

const dateLayout = "2006-01-02"

type tradeRequest struct {
	Date         string   `json:"date" binding:"required"`
	Time         string   `json:"time" binding:"required"`
	Instrument   string   `json:"instrument" binding:"required"`
	Segment      string   `json:"segment" binding:"required,oneof=equity futures options"`
	Side         string   `json:"side" binding:"required,oneof=LONG SHORT"`
	Setup        string   `json:"setup" binding:"required,oneof=breakout trend reversal scalp other"`
	EntryPrice   float64  `json:"entryPrice" binding:"required,gt=0"`
	ExitPrice    *float64 `json:"exitPrice" binding:"omitempty,gt=0"`
	Quantity     int      `json:"quantity" binding:"required,gte=1"`
	StopLoss     *float64 `json:"stopLoss" binding:"omitempty,gt=0"`
	Target       *float64 `json:"target" binding:"omitempty,gt=0"`
	Mood         string   `json:"mood" binding:"required,oneof=calm fomo revenge anxious confident neutral"`
	Notes        string   `json:"notes" binding:"max=500"`
	FollowedPlan *bool    `json:"followedPlan"`
	Status       string   `json:"status" binding:"omitempty,oneof=OPEN CLOSED"`
}

func (r *tradeRequest) toModel(userID uint) (models.Trade, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return models.Trade{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	entry, err := time.Parse("15:04", r.Time)
	if err != nil {
		return models.Trade{}, fmt.Errorf("time must be HH:MM: %w", err)
	}
	// Re-emit so "9:30" is stored zero-padded; stored times sort lexically.
	entryTime := entry.Format("15:04")

	followedPlan := true
	if r.FollowedPlan != nil {
		followedPlan = *r.FollowedPlan
	}
	status := models.Status(r.Status)
	if status == "" {
		status = models.StatusOpen
		if r.ExitPrice != nil {
			status = models.StatusClosed
		}
	}

	return models.Trade{
		UserID:       userID,
		Date:         date,
		Time:         entryTime,
		Instrument:   r.Instrument,
		Segment:      models.Segment(r.Segment),
		Side:         models.Side(r.Side),
		Setup:        models.Setup(r.Setup),
		EntryPrice:   r.EntryPrice,
		ExitPrice:    r.ExitPrice,
		Quantity:     r.Quantity,
		StopLoss:     r.StopLoss,
		Target:       r.Target,
		Mood:         models.Mood(r.Mood),
		Notes:        r.Notes,
		FollowedPlan: followedPlan,
		Status:       status,
	}, nil
}

// CreateTrade logs a new trade, enforcing the user's daily trade limit.
func (h *Handler) CreateTrade(c *gin.Context) {
	user := currentUser(c)

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	trade, err := req.toModel(user.ID)
	if err != nil {
		fail(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	var countToday int64
	err = h.db.Model(&models.Trade{}).
		Where("user_id = ? AND date = ?", user.ID, trade.Date).
		Count(&countToday).Error
	if err != nil {
		h.logger.Error("Failed to count trades for limit check", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	limit := user.TradeLimit()
	if countToday >= int64(limit) {
		fail(c, http.StatusBadRequest,
			fmt.Sprintf("Daily trade limit exceeded. Maximum %d trades per day allowed.", limit))
		return
	}

	if err := h.db.Create(&trade).Error; err != nil {
		h.logger.Error("Failed to create trade", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusCreated, gin.H{"message": "Trade logged successfully", "data": gin.H{"trade": trade}})
}

// ListTrades returns a filtered, paginated trade journal, newest first.
func (h *Handler) ListTrades(c *gin.Context) {
	user := currentUser(c)

	query := h.db.Model(&models.Trade{}).Where("user_id = ?", user.ID)
	query = applyMonthFilter(query, c.Query("month"), c.Query("year"))
	for param, column := range map[string]string{
		"setup":   "setup",
		"mood":    "mood",
		"status":  "status",
		"segment": "segment",
		"side":    "side",
	} {
		if value := c.Query(param); value != "" {
			query = query.Where(column+" = ?", value)
		}
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.logger.Error("Failed to count trades", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var trades []models.Trade
	err := query.Order("date DESC, time DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&trades).Error
	if err != nil {
		h.logger.Error("Failed to list trades", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusOK, gin.H{"data": gin.H{
		"trades": trades,
		"pagination": gin.H{
			"currentPage": page,
			"totalPages":  int(math.Ceil(float64(total) / float64(limit))),
			"totalTrades": total,
			"limit":       limit,
		},
	}})
}

// GetTrade returns a single trade owned by the caller.
func (h *Handler) GetTrade(c *gin.Context) {
	user := currentUser(c)

	trade, found := h.findTrade(c, user.ID)
	if !found {
		return
	}
	ok(c, http.StatusOK, gin.H{"data": gin.H{"trade": trade}})
}

// UpdateTrade applies changes to an owned trade; derived fields recompute
// in the model's save hook.
func (h *Handler) UpdateTrade(c *gin.Context) {
	user := currentUser(c)

	trade, found := h.findTrade(c, user.ID)
	if !found {
		return
	}

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	updated, err := req.toModel(user.ID)
	if err != nil {
		fail(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	updated.ID = trade.ID
	updated.CreatedAt = trade.CreatedAt

	if err := h.db.Save(&updated).Error; err != nil {
		h.logger.Error("Failed to update trade", zap.Error(err), zap.Uint("trade_id", trade.ID))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Trade updated successfully", "data": gin.H{"trade": updated}})
}

// DeleteTrade removes an owned trade.
func (h *Handler) DeleteTrade(c *gin.Context) {
	user := currentUser(c)

	trade, found := h.findTrade(c, user.ID)
	if !found {
		return
	}

	if err := h.db.Delete(&trade).Error; err != nil {
		h.logger.Error("Failed to delete trade", zap.Error(err), zap.Uint("trade_id", trade.ID))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Trade deleted successfully"})
}

// findTrade loads an owned trade by path id, writing the error response on
// failure.
func (h *Handler) findTrade(c *gin.Context, userID uint) (models.Trade, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid trade id")
		return models.Trade{}, false
	}

	var trade models.Trade
	err = h.db.Where("id = ? AND user_id = ?", id, userID).First(&trade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Trade not found")
		} else {
			h.logger.Error("Failed to load trade", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Internal server error")
		}
		return models.Trade{}, false
	}
	return trade, true
}

// applyMonthFilter narrows a query to one calendar month when both month
// and year are supplied.
func applyMonthFilter(query *gorm.DB, month, year string) *gorm.DB {
	if month == "" || year == "" {
		return query
	}
	m, errM := strconv.Atoi(month)
	y, errY := strconv.Atoi(year)
	if errM != nil || errY != nil || m < 1 || m > 12 {
		return query
	}
	start := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return query.Where("date >= ? AND date < ?", start, end)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return value
}
