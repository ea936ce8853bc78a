package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func newTestSymbolClient(serverURL string) *SymbolClient {
	return &SymbolClient{
		client:  resty.New().SetBaseURL(serverURL),
		apiKey:  "test-key",
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  zap.NewNop(),
	}
}

func TestSymbolSearch(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/symbol_search", r.URL.Path)
		assert.Equal(t, "RELI", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"data": [
				{"symbol": "RELIANCE", "instrument_name": "Reliance Industries", "exchange": "NSE", "instrument_type": "Common Stock"},
				{"symbol": "RELI", "instrument_name": "", "exchange": "BSE", "instrument_type": ""}
			]
		}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	matches, err := newTestSymbolClient(server.URL).Search(context.Background(), " RELI ")

	assert.NoError(t, err)
	if assert.Len(t, matches, 2) {
		assert.Equal(t, SymbolMatch{Symbol: "RELIANCE", Description: "Reliance Industries", Type: "Common Stock"}, matches[0])
		// Fallbacks: exchange as description, "Stock" as type.
		assert.Equal(t, SymbolMatch{Symbol: "RELI", Description: "BSE", Type: "Stock"}, matches[1])
	}
}

func TestSymbolSearchCapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","data":[
			{"symbol":"A1"},{"symbol":"A2"},{"symbol":"A3"},{"symbol":"A4"},{"symbol":"A5"},
			{"symbol":"A6"},{"symbol":"A7"},{"symbol":"A8"},{"symbol":"A9"},{"symbol":"A10"},
			{"symbol":"A11"},{"symbol":"A12"}]}`))
	}))
	defer server.Close()

	matches, err := newTestSymbolClient(server.URL).Search(context.Background(), "AA")

	assert.NoError(t, err)
	assert.Len(t, matches, 10)
}

func TestSymbolSearchQueryTooShort(t *testing.T) {
	testCases := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "single char", query: "R"},
		{name: "whitespace only", query: "   "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestSymbolClient("http://localhost:0").Search(context.Background(), tc.query)

			assert.ErrorIs(t, err, ErrQueryTooShort)
		})
	}
}

func TestSymbolSearchUpstreamErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"error","message":"symbol not found"}`))
	}))
	defer server.Close()

	_, err := newTestSymbolClient(server.URL).Search(context.Background(), "ZZZZ")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "symbol not found")
}
