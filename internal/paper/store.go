// Package paper implements the paper-trading portfolio: one account with
// cash and last known prices, open positions, and an append-only journal of
// orders and trades. All mutations go through a Store implementation that
// applies them atomically.
package paper

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"investopaper/internal/models"
)

// DefaultSlippage is the fixed fractional price adjustment (2 bps) applied
// against the trader on every fill.
var DefaultSlippage = decimal.NewFromFloat(0.0002)

// FillRequest is a fully validated, normalized market order ready for
// execution. Symbol is trimmed and uppercased, Side is lowercased, Qty is
// strictly positive.
type FillRequest struct {
	Symbol   string
	Side     string
	Qty      decimal.Decimal
	Slippage decimal.Decimal
}

// PortfolioView is the account as returned to callers, with equity computed
// from cash plus the market value of all open positions.
type PortfolioView struct {
	ID         uint            `json:"id"`
	Cash       decimal.Decimal `json:"cash"`
	Equity     decimal.Decimal `json:"equity"`
	LastPrices models.PriceMap `json:"lastPrices"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Snapshot is the full read-only view of the portfolio returned after every
// operation.
type Snapshot struct {
	Portfolio PortfolioView     `json:"portfolio"`
	Positions []models.Position `json:"positions"`
	Orders    []models.Order    `json:"orders"`
	Trades    []models.Trade    `json:"trades"`
}

// Store persists the portfolio aggregate. Every mutating operation is
// all-or-nothing: a failure mid-way leaves cash, positions, orders, and
// trades exactly as they were. At most one mutation commits at a time
// against a given account.
type Store interface {
	// Reset discards all existing state and creates a fresh account with
	// the given starting cash.
	Reset(ctx context.Context, startingCash decimal.Decimal) (*Snapshot, error)

	// GetState returns the current snapshot, or a not-found error if no
	// account has ever been initialized.
	GetState(ctx context.Context) (*Snapshot, error)

	// PlaceOrder executes a validated market order: prices it against the
	// last known price, checks funds or position quantity, and applies the
	// fill to account, position, order, and trade records as one unit.
	PlaceOrder(ctx context.Context, req FillRequest) (*Snapshot, error)

	// MarkToMarket merges the given prices into the account's price book.
	// Symbols not mentioned are untouched.
	MarkToMarket(ctx context.Context, prices map[string]decimal.Decimal) (*Snapshot, error)
}

// computeFill prices a market order against the last known price. Buys fill
// above the quote, sells below it.
func computeFill(req FillRequest, lastPrice decimal.Decimal) (fillPrice, fillCost decimal.Decimal) {
	one := decimal.New(1, 0)
	if req.Side == models.SideBuy {
		fillPrice = lastPrice.Mul(one.Add(req.Slippage))
	} else {
		fillPrice = lastPrice.Mul(one.Sub(req.Slippage))
	}
	fillCost = req.Qty.Mul(fillPrice)
	return fillPrice, fillCost
}

// applyBuy returns the new quantity and volume-weighted average entry price
// after a buy fill.
func applyBuy(prevQty, prevAvg, qty, fillPrice decimal.Decimal) (newQty, newAvg decimal.Decimal) {
	newQty = prevQty.Add(qty)
	if newQty.IsZero() {
		return newQty, decimal.Zero
	}
	newAvg = prevQty.Mul(prevAvg).Add(qty.Mul(fillPrice)).Div(newQty)
	return newQty, newAvg
}

// buildSnapshot assembles the caller-facing view. A held symbol with no
// entry in the price book contributes zero to equity.
func buildSnapshot(account *models.Account, positions []models.Position, orders []models.Order, trades []models.Trade) *Snapshot {
	equity := account.Cash
	for _, pos := range positions {
		price, ok := account.LastPrices[pos.Symbol]
		if !ok {
			continue
		}
		equity = equity.Add(pos.Qty.Mul(price))
	}

	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })

	prices := make(models.PriceMap, len(account.LastPrices))
	for symbol, price := range account.LastPrices {
		prices[symbol] = price
	}

	if positions == nil {
		positions = []models.Position{}
	}
	if orders == nil {
		orders = []models.Order{}
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	return &Snapshot{
		Portfolio: PortfolioView{
			ID:         account.ID,
			Cash:       account.Cash,
			Equity:     equity,
			LastPrices: prices,
			CreatedAt:  account.CreatedAt,
			UpdatedAt:  account.UpdatedAt,
		},
		Positions: positions,
		Orders:    orders,
		Trades:    trades,
	}
}
