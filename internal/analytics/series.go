package analytics

import (
	"fmt"
	"sort"
	"time"

	"trade-journal-go/internal/models"
)

// SeriesMode selects the bucketing of the equity curve.
type SeriesMode string

const (
	// SeriesDaily buckets P&L per calendar day.
	SeriesDaily SeriesMode = "daily"
	// SeriesPerTrade emits one point per trade.
	SeriesPerTrade SeriesMode = "trade"
)

// EquityPoint is one step of the equity curve.
type EquityPoint struct {
	Date          string  `json:"date"`
	Time          string  `json:"time,omitempty"`
	Pnl           float64 `json:"pnl"`
	CumulativePnl float64 `json:"cumulativePnl"`
}

// EquitySeries is the ordered equity curve plus its terminal value.
type EquitySeries struct {
	Points   []EquityPoint `json:"equityCurve"`
	FinalPnl float64       `json:"finalPnl"`
}

// VolumePoint is the total traded quantity for one calendar day.
type VolumePoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// BuildEquitySeries buckets trades into a cumulative P&L series. Days with
// no trades are absent from the output; the series is sparse, never
// zero-filled. Ordering is by real date value, not string comparison.
func BuildEquitySeries(trades []models.Trade, mode SeriesMode) (EquitySeries, error) {
	if err := validateTrades(trades); err != nil {
		return EquitySeries{}, err
	}

	switch mode {
	case SeriesDaily, "":
		return buildDailySeries(trades), nil
	case SeriesPerTrade:
		return buildPerTradeSeries(trades), nil
	default:
		return EquitySeries{}, fmt.Errorf("unknown series mode %q", mode)
	}
}

func buildDailySeries(trades []models.Trade) EquitySeries {
	dayPnl := make(map[string]float64)
	dayDate := make(map[string]time.Time)
	for _, t := range trades {
		key := t.DayKey()
		dayPnl[key] += t.Pnl
		dayDate[key] = t.Date
	}

	days := make([]string, 0, len(dayPnl))
	for key := range dayPnl {
		days = append(days, key)
	}
	sort.Slice(days, func(i, j int) bool {
		return dayDate[days[i]].Before(dayDate[days[j]])
	})

	series := EquitySeries{Points: make([]EquityPoint, 0, len(days))}
	var runningPnl float64
	for _, key := range days {
		runningPnl += dayPnl[key]
		series.Points = append(series.Points, EquityPoint{
			Date:          key,
			Pnl:           models.Round2(dayPnl[key]),
			CumulativePnl: models.Round2(runningPnl),
		})
	}
	series.FinalPnl = models.Round2(runningPnl)
	return series
}

func buildPerTradeSeries(trades []models.Trade) EquitySeries {
	sorted := sortByDateTime(trades)
	series := EquitySeries{Points: make([]EquityPoint, 0, len(sorted))}
	var runningPnl float64
	for _, t := range sorted {
		runningPnl += t.Pnl
		series.Points = append(series.Points, EquityPoint{
			Date:          t.DayKey(),
			Time:          t.Time,
			Pnl:           models.Round2(t.Pnl),
			CumulativePnl: models.Round2(runningPnl),
		})
	}
	series.FinalPnl = models.Round2(runningPnl)
	return series
}

// BuildVolumeSeries sums traded quantity per calendar day. Volume has no
// cumulative component; it is an independent metric family.
func BuildVolumeSeries(trades []models.Trade) ([]VolumePoint, error) {
	if err := validateTrades(trades); err != nil {
		return nil, err
	}

	dayQty := make(map[string]int)
	dayDate := make(map[string]time.Time)
	for _, t := range trades {
		key := t.DayKey()
		dayQty[key] += t.Quantity
		dayDate[key] = t.Date
	}

	days := make([]string, 0, len(dayQty))
	for key := range dayQty {
		days = append(days, key)
	}
	sort.Slice(days, func(i, j int) bool {
		return dayDate[days[i]].Before(dayDate[days[j]])
	})

	points := make([]VolumePoint, 0, len(days))
	for _, key := range days {
		points = append(points, VolumePoint{Date: key, Value: dayQty[key]})
	}
	return points, nil
}
