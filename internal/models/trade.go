package models

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

// Side is the direction of a trade.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Segment is the market segment a trade was taken in.
type Segment string

const (
	SegmentEquity  Segment = "equity"
	SegmentFutures Segment = "futures"
	SegmentOptions Segment = "options"
)

// Setup is the tagged strategy behind a trade entry.
type Setup string

const (
	SetupBreakout Setup = "breakout"
	SetupTrend    Setup = "trend"
	SetupReversal Setup = "reversal"
	SetupScalp    Setup = "scalp"
	SetupOther    Setup = "other"
)

// Mood is the trader's self-reported state of mind at entry.
type Mood string

const (
	MoodCalm      Mood = "calm"
	MoodFomo      Mood = "fomo"
	MoodRevenge   Mood = "revenge"
	MoodAnxious   Mood = "anxious"
	MoodConfident Mood = "confident"
	MoodNeutral   Mood = "neutral"
)

// Status marks whether a trade has been closed out.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Trade is a single journaled trade. Pnl and RRRatio are derived in the
// BeforeSave hook and must be treated as precomputed facts by readers.
type Trade struct {
	gorm.Model
	UserID       uint      `gorm:"index;not null" json:"userId"`
	Date         time.Time `gorm:"index;not null" json:"date"`
	Time         string    `gorm:"not null" json:"time"` // HH:MM
	Instrument   string    `gorm:"not null" json:"instrument"`
	Segment      Segment   `gorm:"index" json:"segment"`
	Side         Side      `json:"side"`
	Setup        Setup     `json:"setup"`
	EntryPrice   float64   `json:"entryPrice"`
	ExitPrice    *float64  `json:"exitPrice"`
	Quantity     int       `json:"quantity"`
	StopLoss     *float64  `json:"stopLoss"`
	Target       *float64  `json:"target"`
	Pnl          float64   `json:"pnl"`
	RRRatio      float64   `json:"rrRatio"`
	Mood         Mood      `json:"mood"`
	Notes        string    `json:"notes"`
	FollowedPlan bool      `gorm:"default:true" json:"followedPlan"`
	Status       Status    `gorm:"index;default:OPEN" json:"status"`
}

// BeforeSave derives Pnl and RRRatio from the price, side and quantity
// fields so stored rows are always self-consistent.
func (t *Trade) BeforeSave(tx *gorm.DB) error {
	t.Pnl = 0
	if t.Status == StatusClosed && t.ExitPrice != nil {
		multiplier := 1.0
		if t.Side == SideShort {
			multiplier = -1.0
		}
		t.Pnl = Round2((*t.ExitPrice - t.EntryPrice) * multiplier * float64(t.Quantity))
	}

	t.RRRatio = 0
	if t.StopLoss != nil && t.Target != nil {
		risk := math.Abs(t.EntryPrice - *t.StopLoss)
		reward := math.Abs(*t.Target - t.EntryPrice)
		if risk > 0 {
			t.RRRatio = Round2(reward / risk)
		}
	}

	return nil
}

// DayKey returns the trade's calendar-day bucket key.
func (t *Trade) DayKey() string {
	return t.Date.Format("2006-01-02")
}

// OccurredAt combines the calendar date with the HH:MM entry time.
func (t *Trade) OccurredAt() (time.Time, error) {
	entry, err := time.Parse("15:04", t.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid trade time %q: %w", t.Time, err)
	}
	return time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(),
		entry.Hour(), entry.Minute(), 0, 0, t.Date.Location()), nil
}

// Outcome classifies the trade by realized P&L.
func (t *Trade) Outcome() string {
	switch {
	case t.Pnl > 0:
		return "win"
	case t.Pnl < 0:
		return "loss"
	default:
		return "breakeven"
	}
}

// Round2 rounds a monetary value to two decimal places. Aggregations
// accumulate at full precision and round only when a value is emitted.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
