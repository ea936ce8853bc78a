// Package ocr turns broker screenshots into pre-filled trade fields:
// image preprocessing, Tesseract text recognition, then deterministic
// regex extraction. Nothing is inferred beyond a literal pattern match.
package ocr

import (
	"regexp"
	"strconv"
	"strings"

	"trade-journal-go/internal/models"
)

// ExtractedTradeFields is the parse result. Every field is independently
// nullable: a field with no matching pattern stays nil, never guessed and
// never zeroed, so downstream auto-fill can skip absent values. RawText is
// always carried for audit.
type ExtractedTradeFields struct {
	Symbol     *string      `json:"symbol"`
	Side       *models.Side `json:"side"`
	EntryPrice *float64     `json:"entryPrice"`
	ExitPrice  *float64     `json:"exitPrice"`
	Quantity   *int         `json:"quantity"`
	StopLoss   *float64     `json:"stopLoss"`
	Target     *float64     `json:"target"`
	Timestamp  *string      `json:"timestamp"`
	RawText    string       `json:"rawText"`
}

// FieldCount reports how many fields matched a pattern.
func (f *ExtractedTradeFields) FieldCount() int {
	count := 0
	if f.Symbol != nil {
		count++
	}
	if f.Side != nil {
		count++
	}
	if f.EntryPrice != nil {
		count++
	}
	if f.ExitPrice != nil {
		count++
	}
	if f.Quantity != nil {
		count++
	}
	if f.StopLoss != nil {
		count++
	}
	if f.Target != nil {
		count++
	}
	if f.Timestamp != nil {
		count++
	}
	return count
}

// Each field has an ordered candidate list; the first match wins and the
// rest are skipped. The order carries meaning (an exchange-prefixed symbol
// must beat the generic SYMBOL: label), so these lists must not be
// reordered.
var (
	sideRe = regexp.MustCompile(`\b(BUY|SELL|LONG|SHORT|BOUGHT|SOLD)\b`)

	symbolRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:NSE|BSE):\s*([A-Z0-9]+)`),        // NSE:RELIANCE, BSE:TATASTEEL
		regexp.MustCompile(`SYMBOL\s*[:\-]?\s*([A-Z0-9]+)`),     // SYMBOL: RELIANCE
		regexp.MustCompile(`SCRIP\s*[:\-]?\s*([A-Z0-9]+)`),      // SCRIP: INFY
		regexp.MustCompile(`\b(NIFTY|BANKNIFTY|FINNIFTY)\b\s*\d*`),
		regexp.MustCompile(`\b([A-Z]{2,})\s+(?:CE|PE|FUT)\b`),   // NIFTY 18000 CE
	}

	quantityRes = []*regexp.Regexp{
		regexp.MustCompile(`QTY\s*[:\-]?\s*(\d+)`),
		regexp.MustCompile(`QUANTITY\s*[:\-]?\s*(\d+)`),
		regexp.MustCompile(`LOT\s*SIZE\s*[:\-]?\s*(\d+)`),
		regexp.MustCompile(`LOTS\s*[:\-]?\s*(\d+)`),
		regexp.MustCompile(`(\d+)\s*(?:SHARES|QTY|LOTS)`),
	}

	entryPriceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:ENTRY|BUY|PURCHASE|AVG)\s*PRICE\s*[:\-]?\s*₹?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?:PRICE|RATE)\s*[:\-]?\s*₹?\s*([\d,]+\.?\d*)`),
		// Lowest priority: the first bare currency amount in the document.
		// With several rupee amounts and no label this may pick the wrong
		// one; that is a known limitation of the extraction, not a bug.
		regexp.MustCompile(`₹\s*([\d,]+\.?\d*)`),
	}

	exitPriceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:EXIT|SELL)\s*PRICE\s*[:\-]?\s*₹?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`SOLD\s*AT\s*[:\-]?\s*₹?\s*([\d,]+\.?\d*)`),
	}

	stopLossRes = []*regexp.Regexp{
		regexp.MustCompile(`STOP\s*LOSS\s*[:\-]?\s*₹?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`\bSL\s*[:\-]?\s*₹?\s*([\d,]+\.?\d*)`),
	}

	targetRes = []*regexp.Regexp{
		regexp.MustCompile(`TARGET\s*[:\-]?\s*₹?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`\bTGT\s*[:\-]?\s*₹?\s*([\d,]+\.?\d*)`),
	}

	timestampRes = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\s+\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AP]M)?)`),
		regexp.MustCompile(`(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})`),
		regexp.MustCompile(`(?:DATE|TIME|TIMESTAMP)\s*[:\-]?\s*([0-9/\-:\s]+)`),
	}
)

// ParseTradeFields extracts trade fields from raw OCR text. It never
// fails: unparseable text simply yields all-nil fields, which is a valid
// outcome distinct from an OCR engine failure.
func ParseTradeFields(rawText string) ExtractedTradeFields {
	extracted := ExtractedTradeFields{RawText: rawText}

	// All matching runs against the uppercased text, so extracted symbols
	// inherit uppercase.
	text := strings.ToUpper(rawText)

	if m := sideRe.FindStringSubmatch(text); m != nil {
		side := normalizeSide(m[1])
		extracted.Side = &side
	}

	if value, ok := firstMatch(symbolRes, text); ok {
		symbol := strings.TrimSpace(value)
		extracted.Symbol = &symbol
	}

	if value, ok := firstMatch(quantityRes, text); ok {
		if qty, err := strconv.Atoi(value); err == nil {
			extracted.Quantity = &qty
		}
	}

	extracted.EntryPrice = matchPrice(entryPriceRes, text)
	extracted.ExitPrice = matchPrice(exitPriceRes, text)
	extracted.StopLoss = matchPrice(stopLossRes, text)
	extracted.Target = matchPrice(targetRes, text)

	if value, ok := firstMatch(timestampRes, text); ok {
		ts := strings.TrimSpace(value)
		extracted.Timestamp = &ts
	}

	return extracted
}

// firstMatch tries patterns in priority order and returns the first capture.
func firstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// matchPrice parses the first matching pattern as a number, stripping
// thousands-separator commas first.
func matchPrice(patterns []*regexp.Regexp, text string) *float64 {
	value, ok := firstMatch(patterns, text)
	if !ok {
		return nil
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &price
}

// normalizeSide folds every recognized token into the LONG/SHORT enum so
// the extracted value is directly storable on a trade.
func normalizeSide(token string) models.Side {
	switch token {
	case "SELL", "SOLD", "SHORT":
		return models.SideShort
	default: // BUY, BOUGHT, LONG
		return models.SideLong
	}
}
