// Package analytics computes performance statistics, equity/volume series
// and behavioral reports over in-memory trade sets. Every function here is
// a pure, reentrant pass over the slice it is given; callers own persistence
// queries and filtering (user scope, date range, status).
package analytics

import (
	"errors"
	"fmt"
	"sort"

	"trade-journal-go/internal/models"
)

// ErrMalformedTrade reports a trade record missing a field the engines
// depend on. The engines fail fast rather than silently skipping, since a
// skipped record would corrupt aggregate statistics.
var ErrMalformedTrade = errors.New("malformed trade record")

// validateTrades rejects records without a usable calendar date.
func validateTrades(trades []models.Trade) error {
	for i := range trades {
		if trades[i].Date.IsZero() {
			return fmt.Errorf("%w: trade %d (id %d) has no date", ErrMalformedTrade, i, trades[i].ID)
		}
	}
	return nil
}

// sortByDateTime returns a copy of trades in ascending (date, time) order.
// The input slice is never mutated.
func sortByDateTime(trades []models.Trade) []models.Trade {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return timeKey(sorted[i].Time) < timeKey(sorted[j].Time)
	})
	return sorted
}

// timeKey pads a H:MM entry time to HH:MM so string comparison is
// chronological. Rows written before times were normalized on ingest can
// still carry the short form.
func timeKey(t string) string {
	if len(t) == len("H:MM") {
		return "0" + t
	}
	return t
}
