package paper

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"investopaper/internal/models"
)

// MemoryStore keeps the whole portfolio in process memory behind a single
// lock. Mutating operations validate everything before touching state, so a
// rejected order leaves the portfolio untouched.
type MemoryStore struct {
	mu          sync.RWMutex
	account     *models.Account
	positions   map[string]*models.Position
	orders      []models.Order
	trades      []models.Trade
	nextOrderID uint
	nextTradeID uint
}

// NewMemoryStore creates an empty in-memory store. No account exists until
// the first Reset.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		positions:   make(map[string]*models.Position),
		nextOrderID: 1,
		nextTradeID: 1,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Reset(_ context.Context, startingCash decimal.Decimal) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.account = &models.Account{
		ID:         1,
		Cash:       startingCash,
		LastPrices: models.PriceMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.positions = make(map[string]*models.Position)
	s.orders = nil
	s.trades = nil
	s.nextOrderID = 1
	s.nextTradeID = 1

	return s.snapshotLocked(), nil
}

func (s *MemoryStore) GetState(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.account == nil {
		return nil, errNotInitialized()
	}
	return s.snapshotLocked(), nil
}

func (s *MemoryStore) PlaceOrder(_ context.Context, req FillRequest) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account == nil {
		return nil, errNotInitialized()
	}

	lastPrice, ok := s.account.LastPrices[req.Symbol]
	if !ok || !lastPrice.IsPositive() {
		return nil, errMissingPrice(req.Symbol)
	}

	fillPrice, fillCost := computeFill(req, lastPrice)
	existing := s.positions[req.Symbol]

	if req.Side == models.SideBuy && s.account.Cash.LessThan(fillCost) {
		return nil, errInsufficientCash()
	}
	if req.Side == models.SideSell {
		var prevQty decimal.Decimal
		if existing != nil {
			prevQty = existing.Qty
		}
		if prevQty.LessThan(req.Qty) {
			return nil, errInsufficientQty()
		}
	}

	now := time.Now().UTC()
	if req.Side == models.SideBuy {
		var prevQty, prevAvg decimal.Decimal
		if existing != nil {
			prevQty, prevAvg = existing.Qty, existing.AvgPrice
		}
		newQty, newAvg := applyBuy(prevQty, prevAvg, req.Qty, fillPrice)
		s.positions[req.Symbol] = &models.Position{
			AccountID: s.account.ID,
			Symbol:    req.Symbol,
			Qty:       newQty,
			AvgPrice:  newAvg,
			UpdatedAt: now,
		}
		s.account.Cash = s.account.Cash.Sub(fillCost)
	} else {
		// Average price stays as-is on sells; realized P&L is not tracked.
		newQty := existing.Qty.Sub(req.Qty)
		if newQty.IsZero() {
			delete(s.positions, req.Symbol)
		} else {
			existing.Qty = newQty
			existing.UpdatedAt = now
		}
		s.account.Cash = s.account.Cash.Add(fillCost)
	}
	s.account.UpdatedAt = now

	order := models.Order{
		ID:          s.nextOrderID,
		AccountID:   s.account.ID,
		Symbol:      req.Symbol,
		Side:        req.Side,
		Qty:         req.Qty,
		Type:        models.OrderTypeMarket,
		Status:      models.OrderStatusFilled,
		FilledQty:   req.Qty,
		FilledPrice: fillPrice,
		CreatedAt:   now,
	}
	s.nextOrderID++

	trade := models.Trade{
		ID:        s.nextTradeID,
		AccountID: s.account.ID,
		OrderID:   order.ID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Qty:       req.Qty,
		Price:     fillPrice,
		CreatedAt: now,
	}
	s.nextTradeID++

	s.orders = append(s.orders, order)
	s.trades = append(s.trades, trade)

	return s.snapshotLocked(), nil
}

func (s *MemoryStore) MarkToMarket(_ context.Context, prices map[string]decimal.Decimal) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account == nil {
		return nil, errNotInitialized()
	}

	merged := make(models.PriceMap, len(s.account.LastPrices)+len(prices))
	for symbol, price := range s.account.LastPrices {
		merged[symbol] = price
	}
	for symbol, price := range prices {
		merged[symbol] = price
	}
	s.account.LastPrices = merged
	s.account.UpdatedAt = time.Now().UTC()

	return s.snapshotLocked(), nil
}

// snapshotLocked copies out the current state. Callers must hold at least a
// read lock and must have checked that the account exists.
func (s *MemoryStore) snapshotLocked() *Snapshot {
	account := *s.account

	positions := make([]models.Position, 0, len(s.positions))
	for _, pos := range s.positions {
		positions = append(positions, *pos)
	}
	orders := make([]models.Order, len(s.orders))
	copy(orders, s.orders)
	trades := make([]models.Trade, len(s.trades))
	copy(trades, s.trades)

	return buildSnapshot(&account, positions, orders, trades)
}
