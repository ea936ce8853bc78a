package analytics

import (
	"fmt"
	"sort"
	"time"

	"trade-journal-go/internal/models"
)

// revengeWindow is the maximum gap after a losing trade for the next entry
// to count as a revenge trade.
const revengeWindow = 30 * time.Minute

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// OvertradingDay flags a calendar day whose trade count exceeded the user's
// daily limit.
type OvertradingDay struct {
	Date       string  `json:"date"`
	TradeCount int     `json:"tradeCount"`
	NetPnl     float64 `json:"netPnl"`
}

// SetupStats is the per-setup performance split.
type SetupStats struct {
	Count    int     `json:"count"`
	TotalPnl float64 `json:"totalPnl"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
}

// BehaviorReport is the rule-based behavioral analysis of a trade window.
type BehaviorReport struct {
	OvertradingDays     []OvertradingDay              `json:"overtradingDays"`
	RevengeTradingCount int                           `json:"revengeTradingCount"`
	MoodDistribution    map[models.Mood]int           `json:"moodDistribution"`
	MoodPnl             map[models.Mood]float64       `json:"moodPnl"`
	SetupPerformance    map[models.Setup]*SetupStats  `json:"setupPerformance"`
	RuleBreaks          int                           `json:"ruleBreaks"`
	TradesWithoutSL     int                           `json:"tradesWithoutSL"`
	PoorRRTrades        int                           `json:"poorRRTrades"`
	MostActiveDay       string                        `json:"mostActiveDay"`
	Insights            []string                      `json:"insights"`
	TotalTrades         int                           `json:"totalTrades"`
}

// AnalyzeBehavior scans a user's trades over a trailing window for
// overtrading, revenge sequences, mood/setup correlation and rule
// violations. dailyTradeLimit falls back to the account default when
// non-positive.
func AnalyzeBehavior(trades []models.Trade, dailyTradeLimit int) (BehaviorReport, error) {
	if err := validateTrades(trades); err != nil {
		return BehaviorReport{}, err
	}
	if dailyTradeLimit <= 0 {
		dailyTradeLimit = models.DefaultDailyTradeLimit
	}

	sorted := sortByDateTime(trades)

	report := BehaviorReport{
		OvertradingDays:  []OvertradingDay{},
		MoodDistribution: make(map[models.Mood]int),
		MoodPnl:          make(map[models.Mood]float64),
		SetupPerformance: make(map[models.Setup]*SetupStats),
		Insights:         []string{},
		TotalTrades:      len(sorted),
	}

	// Day buckets and weekday tally in one pass.
	dayTrades := make(map[string][]models.Trade)
	dayDate := make(map[string]time.Time)
	var weekdayCounts [7]int
	for _, t := range sorted {
		key := t.DayKey()
		dayTrades[key] = append(dayTrades[key], t)
		dayDate[key] = t.Date
		weekdayCounts[int(t.Date.Weekday())]++

		report.MoodDistribution[t.Mood]++
		report.MoodPnl[t.Mood] += t.Pnl

		stats := report.SetupPerformance[t.Setup]
		if stats == nil {
			stats = &SetupStats{}
			report.SetupPerformance[t.Setup] = stats
		}
		stats.Count++
		stats.TotalPnl += t.Pnl
		if t.Pnl > 0 {
			stats.Wins++
		} else if t.Pnl < 0 {
			stats.Losses++
		}

		if !t.FollowedPlan {
			report.RuleBreaks++
		}
		if t.StopLoss == nil {
			report.TradesWithoutSL++
		}
		if t.RRRatio > 0 && t.RRRatio < 1 {
			report.PoorRRTrades++
		}
	}
	for _, stats := range report.SetupPerformance {
		stats.TotalPnl = models.Round2(stats.TotalPnl)
	}
	for mood, pnl := range report.MoodPnl {
		report.MoodPnl[mood] = models.Round2(pnl)
	}

	days := make([]string, 0, len(dayTrades))
	for key := range dayTrades {
		days = append(days, key)
	}
	sort.Slice(days, func(i, j int) bool {
		return dayDate[days[i]].Before(dayDate[days[j]])
	})
	for _, key := range days {
		bucket := dayTrades[key]
		if len(bucket) <= dailyTradeLimit {
			continue
		}
		var netPnl float64
		for _, t := range bucket {
			netPnl += t.Pnl
		}
		report.OvertradingDays = append(report.OvertradingDays, OvertradingDay{
			Date:       key,
			TradeCount: len(bucket),
			NetPnl:     models.Round2(netPnl),
		})
	}

	count, err := countRevengeTrades(sorted)
	if err != nil {
		return BehaviorReport{}, err
	}
	report.RevengeTradingCount = count

	// Ties break toward the lowest weekday index, Sunday first.
	maxIdx := 0
	for i := 1; i < 7; i++ {
		if weekdayCounts[i] > weekdayCounts[maxIdx] {
			maxIdx = i
		}
	}
	report.MostActiveDay = weekdayNames[maxIdx]

	report.Insights = buildInsights(report)
	return report, nil
}

// countRevengeTrades is a stateless pairwise scan: a trade counts when the
// previous trade lost, the gap is within the revenge window, and the
// trader self-reported a revenge mood. Intentionally simplistic tagging;
// the user-visible insight text depends on this exact count.
func countRevengeTrades(sorted []models.Trade) (int, error) {
	count := 0
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		prevAt, err := prev.OccurredAt()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformedTrade, err)
		}
		currAt, err := curr.OccurredAt()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformedTrade, err)
		}
		if prev.Pnl < 0 && currAt.Sub(prevAt) <= revengeWindow && curr.Mood == models.MoodRevenge {
			count++
		}
	}
	return count, nil
}

// buildInsights appends fixed-template insight strings in priority order:
// overtrading, revenge, worst mood, missing stop loss, poor risk-reward.
// The order is load-bearing; the frontend renders them as ranked findings.
func buildInsights(report BehaviorReport) []string {
	insights := []string{}

	if len(report.OvertradingDays) > 0 {
		insights = append(insights, fmt.Sprintf("You exceeded your daily limit on %d day(s)", len(report.OvertradingDays)))
	}

	if report.RevengeTradingCount > 0 {
		insights = append(insights, fmt.Sprintf("Detected %d potential revenge trades", report.RevengeTradingCount))
	}

	if mood, pnl, ok := worstMood(report.MoodPnl); ok && pnl < 0 {
		insights = append(insights, fmt.Sprintf("Most losses occur during %q trades", mood))
	}

	if report.TradesWithoutSL > 0 {
		insights = append(insights, fmt.Sprintf("%d trades without stop loss", report.TradesWithoutSL))
	}

	if float64(report.PoorRRTrades) > float64(report.TotalTrades)*0.3 {
		insights = append(insights, fmt.Sprintf("%d trades have poor risk-reward ratio (<1:1)", report.PoorRRTrades))
	}

	return insights
}

// worstMood returns the mood with the lowest net P&L. Ties resolve to the
// lexicographically smallest mood so output stays deterministic across map
// iteration order.
func worstMood(moodPnl map[models.Mood]float64) (models.Mood, float64, bool) {
	moods := make([]models.Mood, 0, len(moodPnl))
	for mood := range moodPnl {
		moods = append(moods, mood)
	}
	if len(moods) == 0 {
		return "", 0, false
	}
	sort.Slice(moods, func(i, j int) bool { return moods[i] < moods[j] })

	worst := moods[0]
	for _, mood := range moods[1:] {
		if moodPnl[mood] < moodPnl[worst] {
			worst = mood
		}
	}
	return worst, moodPnl[worst], true
}
