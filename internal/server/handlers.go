package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"investopaper/internal/ai"
	"investopaper/internal/apperr"
	"investopaper/internal/config"
	"investopaper/internal/journal"
	"investopaper/internal/market"
	"investopaper/internal/metrics"
	"investopaper/internal/models"
	"investopaper/internal/news"
	"investopaper/internal/paper"
	"investopaper/internal/plan"
)

// Services bundles everything the API exposes.
type Services struct {
	Paper   *paper.Service
	Market  *market.Service
	Plan    *plan.Service
	Journal *journal.Service
	News    *news.Service
	AI      *ai.Client
	Config  *config.Config
}

// Handler holds dependencies for the API endpoints.
type Handler struct {
	svcs      Services
	logger    *zap.Logger
	uuid      string
	startTime time.Time
}

// NewHandler creates the API handler set.
func NewHandler(svcs Services, logger *zap.Logger) *Handler {
	return &Handler{
		svcs:      svcs,
		logger:    logger,
		uuid:      uuid.NewString(),
		startTime: time.Now(),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid JSON request body")
	}
	return nil
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

// Status reports instance identity and uptime.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"uuid":      h.uuid,
		"startTime": h.startTime.Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	})
}

// PublicConfig returns the caller-visible configuration.
func (h *Handler) PublicConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svcs.Config.Public())
}

// PaperInit wipes the portfolio and starts over with the given cash.
func (h *Handler) PaperInit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StartingCash float64 `json:"startingCash"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}

	snap, err := h.svcs.Paper.InitPortfolio(r.Context(), body.StartingCash)
	if err != nil {
		h.writeError(w, err)
		return
	}
	metrics.PortfolioResets.Inc()
	h.writeJSON(w, http.StatusOK, snap)
}

// PaperState returns the current snapshot.
func (h *Handler) PaperState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svcs.Paper.GetState(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// PaperOrder places a market order.
func (h *Handler) PaperOrder(w http.ResponseWriter, r *http.Request) {
	var body paper.OrderRequest
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}

	side := strings.ToLower(body.Side)
	snap, err := h.svcs.Paper.PlaceOrder(r.Context(), body)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues(side, "rejected").Inc()
		h.writeError(w, err)
		return
	}
	metrics.OrdersTotal.WithLabelValues(side, models.OrderStatusFilled).Inc()
	h.writeJSON(w, http.StatusOK, snap)
}

// PaperMarkToMarket merges externally supplied prices into the price book.
func (h *Handler) PaperMarkToMarket(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prices map[string]float64 `json:"prices"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}

	snap, err := h.svcs.Paper.MarkToMarket(r.Context(), body.Prices)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// MarketCandles serves cached OHLCV data.
func (h *Handler) MarketCandles(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	interval := r.URL.Query().Get("interval")
	if symbol == "" || interval == "" {
		h.writeError(w, apperr.Validation("symbol and interval are required query parameters"))
		return
	}

	limit := 200
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed >= 1 {
			limit = parsed
		}
	}

	payload, err := h.svcs.Market.GetCandles(r.Context(), symbol, interval, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payload)
}

// PlanToday builds the daily plan for a symbol.
func (h *Handler) PlanToday(w http.ResponseWriter, r *http.Request) {
	dailyPlan, err := h.svcs.Plan.GetDailyPlan(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dailyPlan)
}

// NewsList returns the most recent stored headlines.
func (h *Handler) NewsList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, apperr.Validation("limit must be a positive number"))
			return
		}
		limit = parsed
	}

	items, err := h.svcs.News.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// JournalCreate appends one journal entry.
func (h *Handler) JournalCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}

	entry, err := h.svcs.Journal.Create(r.Context(), body.Type, body.Payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, entry)
}

// JournalList returns recent journal entries.
func (h *Handler) JournalList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, apperr.Validation("limit must be a positive number"))
			return
		}
		limit = parsed
	}

	entries, err := h.svcs.Journal.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// AINewsSummary asks the model to summarize headlines for a symbol.
func (h *Handler) AINewsSummary(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Symbol string           `json:"symbol"`
		Items  []ai.NewsItemRef `json:"items"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}

	symbol := strings.TrimSpace(body.Symbol)
	items := make([]ai.NewsItemRef, 0, len(body.Items))
	for _, item := range body.Items {
		item.Title = strings.TrimSpace(item.Title)
		item.URL = strings.TrimSpace(item.URL)
		item.PublishedAt = strings.TrimSpace(item.PublishedAt)
		if item.Title != "" && item.URL != "" {
			items = append(items, item)
		}
	}
	if symbol == "" || len(items) == 0 {
		h.writeError(w, apperr.Validation("symbol (string) and items (array with title and url) are required"))
		return
	}

	summary, err := h.svcs.AI.Complete(r.Context(), ai.BuildNewsSummaryMessages(symbol, items))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// AITradeBriefing asks the model for a trade briefing.
func (h *Handler) AITradeBriefing(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Symbol         string `json:"symbol"`
		SignalOutput   any    `json:"signalOutput"`
		NewsSummary    any    `json:"newsSummary"`
		PortfolioState any    `json:"portfolioState"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, err)
		return
	}

	symbol := strings.TrimSpace(body.Symbol)
	if symbol == "" || body.SignalOutput == nil || body.NewsSummary == nil || body.PortfolioState == nil {
		h.writeError(w, apperr.Validation("symbol, signalOutput, newsSummary, and portfolioState are required in the request body"))
		return
	}

	briefing, err := h.svcs.AI.Complete(r.Context(),
		ai.BuildTradeBriefingMessages(symbol, body.SignalOutput, body.NewsSummary, body.PortfolioState))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, briefing)
}
