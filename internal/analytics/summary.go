package analytics

import (
	"math"
	"sort"
	"time"

	"trade-journal-go/internal/models"
)

// DayExtreme is the best or worst calendar day by net P&L. Date is nil when
// the trade set was empty.
type DayExtreme struct {
	Date *string `json:"date"`
	Pnl  float64 `json:"pnl"`
}

// Summary aggregates performance statistics over a set of closed trades.
// It is recomputed per request and never persisted.
type Summary struct {
	TotalTrades   int        `json:"totalTrades"`
	WinningTrades int        `json:"winningTrades"`
	LosingTrades  int        `json:"losingTrades"`
	WinRate       float64    `json:"winRate"`
	NetPnl        float64    `json:"netPnl"`
	AvgPnl        float64    `json:"avgPnl"`
	AvgRR         float64    `json:"avgRR"`
	BestTrade     float64    `json:"bestTrade"`
	WorstTrade    float64    `json:"worstTrade"`
	BestDay       DayExtreme `json:"bestDay"`
	WorstDay      DayExtreme `json:"worstDay"`
	MaxDrawdown   float64    `json:"maxDrawdown"`
	ProfitFactor  float64    `json:"profitFactor"`
}

// ComputeSummary calculates aggregate statistics for the supplied trades.
// The caller has already scoped the slice to one user, an optional date
// range and CLOSED status. An empty slice yields the zero summary.
//
// All monetary outputs are rounded to two decimals on emission only;
// intermediate sums run at full float64 precision.
func ComputeSummary(trades []models.Trade) (Summary, error) {
	if err := validateTrades(trades); err != nil {
		return Summary{}, err
	}

	if len(trades) == 0 {
		return Summary{}, nil
	}

	total := len(trades)
	var winCount, lossCount int
	var netPnl, totalGains, totalLosses float64
	var rrSum float64
	var rrCount int
	bestTrade := trades[0].Pnl
	worstTrade := trades[0].Pnl

	for _, t := range trades {
		netPnl += t.Pnl
		switch {
		case t.Pnl > 0:
			winCount++
			totalGains += t.Pnl
		case t.Pnl < 0:
			lossCount++
			totalLosses += t.Pnl
		}
		// Trades without stop/target carry rrRatio 0 and are excluded
		// from the average rather than dragging it toward zero.
		if t.RRRatio > 0 {
			rrSum += t.RRRatio
			rrCount++
		}
		if t.Pnl > bestTrade {
			bestTrade = t.Pnl
		}
		if t.Pnl < worstTrade {
			worstTrade = t.Pnl
		}
	}

	winRate := float64(winCount) / float64(total) * 100

	profitFactor := 0.0
	if totalLosses < 0 {
		profitFactor = totalGains / math.Abs(totalLosses)
	}

	avgRR := 0.0
	if rrCount > 0 {
		avgRR = rrSum / float64(rrCount)
	}

	sorted := sortByDateTime(trades)
	maxDrawdown := computeMaxDrawdown(sorted)
	bestDay, worstDay := computeDayExtremes(sorted)

	return Summary{
		TotalTrades:   total,
		WinningTrades: winCount,
		LosingTrades:  lossCount,
		WinRate:       models.Round2(winRate),
		NetPnl:        models.Round2(netPnl),
		AvgPnl:        models.Round2(netPnl / float64(total)),
		AvgRR:         models.Round2(avgRR),
		BestTrade:     models.Round2(bestTrade),
		WorstTrade:    models.Round2(worstTrade),
		BestDay:       bestDay,
		WorstDay:      worstDay,
		MaxDrawdown:   models.Round2(maxDrawdown),
		ProfitFactor:  models.Round2(profitFactor),
	}, nil
}

// computeMaxDrawdown scans trades already sorted ascending by (date, time).
// The peak starts at zero so an initial losing streak counts as drawdown.
func computeMaxDrawdown(sorted []models.Trade) float64 {
	var runningPnl, peak, maxDrawdown float64
	for _, t := range sorted {
		runningPnl += t.Pnl
		if runningPnl > peak {
			peak = runningPnl
		}
		if dd := peak - runningPnl; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

// computeDayExtremes aggregates P&L per calendar day first, then takes the
// max and min across days, so two trades on one day net into a single entry.
func computeDayExtremes(sorted []models.Trade) (best, worst DayExtreme) {
	dayPnl := make(map[string]float64)
	dayDate := make(map[string]time.Time)
	for _, t := range sorted {
		key := t.DayKey()
		dayPnl[key] += t.Pnl
		dayDate[key] = t.Date
	}

	days := make([]string, 0, len(dayPnl))
	for key := range dayPnl {
		days = append(days, key)
	}
	// Ascending by the day's actual date value; ties on equal net P&L then
	// resolve to the earliest day deterministically.
	sort.Slice(days, func(i, j int) bool {
		return dayDate[days[i]].Before(dayDate[days[j]])
	})

	bestPnl := math.Inf(-1)
	worstPnl := math.Inf(1)
	var bestDate, worstDate string
	for _, key := range days {
		pnl := dayPnl[key]
		if pnl > bestPnl {
			bestPnl = pnl
			bestDate = key
		}
		if pnl < worstPnl {
			worstPnl = pnl
			worstDate = key
		}
	}

	if math.IsInf(bestPnl, -1) {
		return DayExtreme{}, DayExtreme{}
	}
	return DayExtreme{Date: &bestDate, Pnl: models.Round2(bestPnl)},
		DayExtreme{Date: &worstDate, Pnl: models.Round2(worstPnl)}
}
