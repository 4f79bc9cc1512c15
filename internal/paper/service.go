package paper

import (
	"context"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"investopaper/internal/apperr"
	"investopaper/internal/models"
)

// OrderRequest is an order as submitted by the request layer, before
// validation and normalization.
type OrderRequest struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Qty    float64 `json:"qty"`
	Type   string  `json:"type"`
}

// Service is the execution engine. It validates and normalizes raw input,
// then hands fully-formed operations to the store, which applies them
// atomically.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates an execution engine on top of the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// InitPortfolio discards all existing state and creates a fresh account.
// This is the only way to wipe a portfolio.
func (s *Service) InitPortfolio(ctx context.Context, startingCash float64) (*Snapshot, error) {
	if !isFinite(startingCash) {
		return nil, apperr.Validation("startingCash must be a number")
	}
	if startingCash <= 0 {
		return nil, apperr.Validation("startingCash must be greater than zero")
	}

	snap, err := s.store.Reset(ctx, decimal.NewFromFloat(startingCash))
	if err != nil {
		return nil, err
	}
	s.logger.Info("Portfolio initialized", zap.Float64("starting_cash", startingCash))
	return snap, nil
}

// GetState returns the current snapshot without mutating anything.
func (s *Service) GetState(ctx context.Context) (*Snapshot, error) {
	return s.store.GetState(ctx)
}

// PlaceOrder validates a raw order and executes it. Validation fails fast in
// a fixed order: symbol, side, type, quantity; account existence and pricing
// are checked by the store inside its critical section.
func (s *Service) PlaceOrder(ctx context.Context, req OrderRequest) (*Snapshot, error) {
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		return nil, apperr.Validation("symbol is required")
	}
	side := strings.ToLower(req.Side)
	if side != models.SideBuy && side != models.SideSell {
		return nil, apperr.Validation(`side must be either "buy" or "sell"`)
	}
	if req.Type != models.OrderTypeMarket {
		return nil, apperr.Validation(`only type "market" is supported`)
	}
	if !isFinite(req.Qty) {
		return nil, apperr.Validation("qty must be a number")
	}
	if req.Qty <= 0 {
		return nil, apperr.Validation("qty must be greater than zero")
	}

	fill := FillRequest{
		Symbol:   strings.ToUpper(symbol),
		Side:     side,
		Qty:      decimal.NewFromFloat(req.Qty),
		Slippage: DefaultSlippage,
	}

	snap, err := s.store.PlaceOrder(ctx, fill)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Order filled",
		zap.String("symbol", fill.Symbol),
		zap.String("side", fill.Side),
		zap.Float64("qty", req.Qty),
	)
	return snap, nil
}

// MarkToMarket merges externally supplied prices into the price book.
func (s *Service) MarkToMarket(ctx context.Context, prices map[string]float64) (*Snapshot, error) {
	if prices == nil {
		return nil, apperr.Validation("prices object is required")
	}

	normalized := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		if strings.TrimSpace(symbol) == "" {
			return nil, apperr.Validation("prices must use non-empty symbols")
		}
		if !isFinite(price) {
			return nil, apperr.Validation("price for %s must be a number", symbol)
		}
		normalized[strings.ToUpper(strings.TrimSpace(symbol))] = decimal.NewFromFloat(price)
	}

	return s.store.MarkToMarket(ctx, normalized)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
