package analytics

import (
	"testing"
	"time"

	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
)

// tradeOn builds a closed trade with a precomputed P&L, the way the trade
// store hands records to the engines.
func tradeOn(day, hhmm string, pnl float64) models.Trade {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return models.Trade{
		Date:         d,
		Time:         hhmm,
		Instrument:   "RELIANCE",
		Segment:      models.SegmentEquity,
		Side:         models.SideLong,
		Setup:        models.SetupTrend,
		Mood:         models.MoodNeutral,
		Status:       models.StatusClosed,
		Quantity:     10,
		Pnl:          pnl,
		FollowedPlan: true,
	}
}

func withRR(t models.Trade, rr float64) models.Trade {
	t.RRRatio = rr
	sl := 100.0
	t.StopLoss = &sl
	return t
}

func TestComputeSummaryEmptyInput(t *testing.T) {
	summary, err := ComputeSummary(nil)

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTrades)
	assert.Equal(t, 0.0, summary.WinRate, "zero trades must not divide by zero")
	assert.Equal(t, 0.0, summary.ProfitFactor)
	assert.Nil(t, summary.BestDay.Date)
	assert.Nil(t, summary.WorstDay.Date)
}

func TestComputeSummaryMalformedTrade(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01", "10:00", 50),
		{Time: "10:30", Pnl: -20}, // zero date
	}

	_, err := ComputeSummary(trades)

	assert.ErrorIs(t, err, ErrMalformedTrade)
}

func TestComputeSummaryBasicStats(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01", "10:00", 100),
		tradeOn("2024-03-02", "10:00", -40),
		tradeOn("2024-03-03", "10:00", 60),
		tradeOn("2024-03-04", "10:00", 0),
	}

	summary, err := ComputeSummary(trades)

	assert.NoError(t, err)
	assert.Equal(t, 4, summary.TotalTrades)
	assert.Equal(t, 2, summary.WinningTrades)
	assert.Equal(t, 1, summary.LosingTrades)
	assert.Equal(t, 50.0, summary.WinRate)
	assert.Equal(t, 120.0, summary.NetPnl)
	assert.Equal(t, 30.0, summary.AvgPnl)
	assert.Equal(t, 100.0, summary.BestTrade)
	assert.Equal(t, -40.0, summary.WorstTrade)
	assert.Equal(t, 4.0, summary.ProfitFactor) // 160 gains / 40 losses
}

func TestComputeSummaryProfitFactorZeroLosses(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01", "10:00", 100),
		tradeOn("2024-03-02", "10:00", 60),
	}

	summary, err := ComputeSummary(trades)

	assert.NoError(t, err)
	// Defined fallback: no losses means profit factor 0, never +Inf.
	assert.Equal(t, 0.0, summary.ProfitFactor)
}

func TestComputeSummaryAvgRRExcludesUnsetRatios(t *testing.T) {
	trades := []models.Trade{
		withRR(tradeOn("2024-03-01", "10:00", 100), 2.0),
		withRR(tradeOn("2024-03-02", "10:00", 50), 1.0),
		tradeOn("2024-03-03", "10:00", 25), // rrRatio 0, excluded
	}

	summary, err := ComputeSummary(trades)

	assert.NoError(t, err)
	assert.Equal(t, 1.5, summary.AvgRR)
}

func TestComputeSummaryDrawdown(t *testing.T) {
	testCases := []struct {
		name        string
		trades      []models.Trade
		expectedMDD float64
	}{
		{
			name: "initial losing streak counts from zero peak",
			trades: []models.Trade{
				tradeOn("2024-03-01", "10:00", -100),
				tradeOn("2024-03-02", "10:00", -50),
				tradeOn("2024-03-03", "10:00", 300),
			},
			expectedMDD: 150,
		},
		{
			name: "unsorted input is date-sorted before the scan",
			trades: []models.Trade{
				tradeOn("2024-03-03", "10:00", -120),
				tradeOn("2024-03-01", "10:00", 200),
				tradeOn("2024-03-02", "10:00", -80),
			},
			expectedMDD: 200,
		},
		{
			name: "non-decreasing equity has zero drawdown",
			trades: []models.Trade{
				tradeOn("2024-03-01", "10:00", 10),
				tradeOn("2024-03-02", "10:00", 0),
				tradeOn("2024-03-03", "10:00", 25),
			},
			expectedMDD: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			summary, err := ComputeSummary(tc.trades)

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedMDD, summary.MaxDrawdown)
			assert.GreaterOrEqual(t, summary.MaxDrawdown, 0.0)
		})
	}
}

func TestComputeSummaryBestWorstDayAggregates(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01", "10:00", 100),
		tradeOn("2024-03-01", "11:00", -30), // nets to +70 with the above
		tradeOn("2024-03-02", "10:00", -10),
	}

	summary, err := ComputeSummary(trades)

	assert.NoError(t, err)
	if assert.NotNil(t, summary.BestDay.Date) {
		assert.Equal(t, "2024-03-01", *summary.BestDay.Date)
	}
	assert.Equal(t, 70.0, summary.BestDay.Pnl)
	if assert.NotNil(t, summary.WorstDay.Date) {
		assert.Equal(t, "2024-03-02", *summary.WorstDay.Date)
	}
	assert.Equal(t, -10.0, summary.WorstDay.Pnl)
}

func TestComputeSummaryRoundsOnEmissionOnly(t *testing.T) {
	// 0.1 + 0.2 style accumulation error must not leak into the output:
	// sums run at full precision and round once at the end.
	trades := make([]models.Trade, 0, 6)
	for i := 0; i < 6; i++ {
		trades = append(trades, tradeOn("2024-03-01", "10:00", 0.1))
	}

	summary, err := ComputeSummary(trades)

	assert.NoError(t, err)
	assert.Equal(t, 0.6, summary.NetPnl)
	assert.Equal(t, 0.1, summary.AvgPnl)
	assert.Equal(t, 0.6, summary.BestDay.Pnl)
}

func TestComputeSummaryIsPure(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-02", "10:00", -40),
		tradeOn("2024-03-01", "10:00", 100),
	}

	first, err1 := ComputeSummary(trades)
	second, err2 := ComputeSummary(trades)

	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, first, second)
	// The input slice order survives the internal sorting.
	assert.Equal(t, "2024-03-02", trades[0].DayKey())
}
