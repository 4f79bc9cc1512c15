package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"investopaper/internal/ai"
	"investopaper/internal/config"
	"investopaper/internal/journal"
	"investopaper/internal/market"
	"investopaper/internal/news"
	"investopaper/internal/paper"
	"investopaper/internal/plan"
)

type staticCandleSource struct {
	payload *market.Candles
	err     error
}

func (s *staticCandleSource) GetCandles(_ context.Context, symbol, interval string, _ int) (*market.Candles, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.payload != nil {
		return s.payload, nil
	}
	return &market.Candles{Symbol: symbol, Interval: interval}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Market: config.Market{Provider: "stooq"},
		News:   config.News{RSSURLs: []string{"https://example.com/rss"}},
	}
	logger := zap.NewNop()

	journalSvc := journal.NewService(journal.NewMemoryStore(), logger)
	svcs := Services{
		Paper:   paper.NewService(paper.NewMemoryStore(), logger),
		Market:  market.NewService(&market.StubProvider{Name: "test"}, logger),
		Plan:    plan.NewService(&staticCandleSource{}, journalSvc, logger),
		Journal: journalSvc,
		News:    news.NewService(news.NewMemoryStore(), logger),
		AI:      ai.NewClient(&config.AI{}, logger),
		Config:  cfg,
	}

	ts := httptest.NewServer(NewRouter(NewHandler(svcs, logger), logger))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["time"])
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["uuid"])
	assert.NotEmpty(t, body["startTime"])
	assert.NotEmpty(t, body["uptime"])
}

func TestPublicConfig(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/config/public", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "stooq", body["marketDataProvider"])
	assert.Equal(t, []any{"https://example.com/rss"}, body["newsRssUrls"])
}

func TestPaperLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/paper/init", `{"startingCash": 100000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	portfolio := body["portfolio"].(map[string]any)
	assert.Equal(t, 100000.0, portfolio["cash"])
	assert.Equal(t, 100000.0, portfolio["equity"])

	resp, _ = doJSON(t, ts, http.MethodPost, "/api/paper/mark-to-market", `{"prices": {"AAPL": 500}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, ts, http.MethodPost, "/api/paper/order",
		`{"symbol": "AAPL", "side": "buy", "qty": 10, "type": "market"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	portfolio = body["portfolio"].(map[string]any)
	assert.Equal(t, 94999.0, portfolio["cash"])
	assert.Equal(t, 99999.0, portfolio["equity"])

	positions := body["positions"].([]any)
	require.Len(t, positions, 1)
	position := positions[0].(map[string]any)
	assert.Equal(t, "AAPL", position["symbol"])
	assert.Equal(t, 10.0, position["qty"])
	assert.Equal(t, 500.1, position["avgPrice"])

	trades := body["trades"].([]any)
	require.Len(t, trades, 1)
	assert.Equal(t, 500.1, trades[0].(map[string]any)["price"])

	resp, body = doJSON(t, ts, http.MethodGet, "/api/paper/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["orders"].([]any), 1)
}

func TestPaperOrder_BeforeInit(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/paper/order",
		`{"symbol": "AAPL", "side": "buy", "qty": 1, "type": "market"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestPaperOrder_RejectsInvalidSide(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/api/paper/init", `{"startingCash": 1000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/paper/order",
		`{"symbol": "AAPL", "side": "short", "qty": 1, "type": "market"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "side")
}

func TestPaperInit_RejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/paper/init", `{"startingCash": "lots"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestMarketCandles_RequiresSymbolAndInterval(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/market/candles?symbol=SPY", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "required")
}

func TestMarketCandles_UnimplementedProvider(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodGet, "/api/market/candles?symbol=SPY&interval=1d", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestPlanToday_RequiresSymbol(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/plan/today", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "symbol")
}

func TestPlanToday_ReturnsHoldWithoutData(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/plan/today?symbol=spy", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SPY", body["symbol"])
	assert.Equal(t, "hold", body["plan"].(map[string]any)["signal"])
}

func TestJournalCreateAndList(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/journal/",
		`{"type": "note", "payload": {"text": "watch SPY open"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "note", body["type"])

	resp, body = doJSON(t, ts, http.MethodGet, "/api/journal/?limit=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	payload := entries[0].(map[string]any)["payload"].(map[string]any)
	assert.Equal(t, "watch SPY open", payload["text"])
}

func TestJournalCreate_RejectsUnknownType(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/journal/", `{"type": "dream", "payload": {}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestNewsList_EmptyStore(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/news", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])
}

func TestNewsList_RejectsMalformedLimit(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/api/news?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "limit")
}

func TestAINewsSummary_Validation(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/ai/news-summary", `{"symbol": "SPY", "items": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestAINewsSummary_WithoutAPIKey(t *testing.T) {
	ts := newTestServer(t)

	payload := `{"symbol": "SPY", "items": [{"title": "Markets rally", "url": "https://example.com/a"}]}`
	resp, _ := doJSON(t, ts, http.MethodPost, "/api/ai/news-summary", payload)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestAITradeBriefing_Validation(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/api/ai/trade-briefing", `{"symbol": "SPY"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, fmt.Sprintf("%s/api/paper/order", ts.URL), nil)
	require.NoError(t, err)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
