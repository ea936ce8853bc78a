package analytics

import (
	"testing"

	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildEquitySeriesChronologicalOrder(t *testing.T) {
	// Entered out of order; February days must come before October even
	// though "10" sorts before "2" as a string.
	trades := []models.Trade{
		tradeOn("2024-10-02", "10:00", 30),
		tradeOn("2024-02-15", "10:00", -20),
		tradeOn("2024-02-01", "10:00", 50),
	}

	series, err := BuildEquitySeries(trades, SeriesDaily)

	assert.NoError(t, err)
	if assert.Len(t, series.Points, 3) {
		assert.Equal(t, "2024-02-01", series.Points[0].Date)
		assert.Equal(t, "2024-02-15", series.Points[1].Date)
		assert.Equal(t, "2024-10-02", series.Points[2].Date)
	}
	assert.Equal(t, []float64{50, 30, 60}, []float64{
		series.Points[0].CumulativePnl,
		series.Points[1].CumulativePnl,
		series.Points[2].CumulativePnl,
	})
	assert.Equal(t, 60.0, series.FinalPnl)
}

func TestBuildEquitySeriesDailyBucketsAndSparseGaps(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01", "10:00", 100),
		tradeOn("2024-03-01", "14:00", -30),
		// 2024-03-02 has no trades and must be absent, not zero-filled.
		tradeOn("2024-03-03", "10:00", 10),
	}

	series, err := BuildEquitySeries(trades, SeriesDaily)

	assert.NoError(t, err)
	if assert.Len(t, series.Points, 2) {
		assert.Equal(t, EquityPoint{Date: "2024-03-01", Pnl: 70, CumulativePnl: 70}, series.Points[0])
		assert.Equal(t, EquityPoint{Date: "2024-03-03", Pnl: 10, CumulativePnl: 80}, series.Points[1])
	}
}

func TestBuildEquitySeriesPerTrade(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01", "11:30", -30),
		tradeOn("2024-03-01", "09:30", 100),
	}

	series, err := BuildEquitySeries(trades, SeriesPerTrade)

	assert.NoError(t, err)
	if assert.Len(t, series.Points, 2) {
		assert.Equal(t, "09:30", series.Points[0].Time)
		assert.Equal(t, 100.0, series.Points[0].CumulativePnl)
		assert.Equal(t, "11:30", series.Points[1].Time)
		assert.Equal(t, 70.0, series.Points[1].CumulativePnl)
	}
}

func TestBuildEquitySeriesPerTradeUnpaddedTimes(t *testing.T) {
	// "9:30" must sort before "10:00" chronologically, not lexically.
	trades := []models.Trade{
		tradeOn("2024-03-01", "10:00", -30),
		tradeOn("2024-03-01", "9:30", 100),
	}

	series, err := BuildEquitySeries(trades, SeriesPerTrade)

	assert.NoError(t, err)
	if assert.Len(t, series.Points, 2) {
		assert.Equal(t, "9:30", series.Points[0].Time)
		assert.Equal(t, 100.0, series.Points[0].CumulativePnl)
		assert.Equal(t, 70.0, series.Points[1].CumulativePnl)
	}
}

func TestBuildEquitySeriesUnknownMode(t *testing.T) {
	_, err := BuildEquitySeries(nil, SeriesMode("weekly"))

	assert.Error(t, err)
}

func TestBuildVolumeSeries(t *testing.T) {
	first := tradeOn("2024-03-02", "10:00", 10)
	first.Quantity = 25
	second := tradeOn("2024-03-01", "10:00", -5)
	second.Quantity = 100
	third := tradeOn("2024-03-01", "12:00", 5)
	third.Quantity = 50

	points, err := BuildVolumeSeries([]models.Trade{first, second, third})

	assert.NoError(t, err)
	assert.Equal(t, []VolumePoint{
		{Date: "2024-03-01", Value: 150},
		{Date: "2024-03-02", Value: 25},
	}, points)
}

func TestBuildVolumeSeriesEmpty(t *testing.T) {
	points, err := BuildVolumeSeries(nil)

	assert.NoError(t, err)
	assert.Empty(t, points)
}
