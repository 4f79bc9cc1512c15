package paper

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investopaper/internal/apperr"
	"investopaper/internal/models"
)

// GormStore persists the portfolio in a relational database. Every mutation
// runs inside one transaction spanning the whole read-modify-write sequence,
// with the account row locked for update where the dialect supports it.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by the given database handle. The
// schema must already be migrated (database.AutoMigrate).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) Reset(ctx context.Context, startingCash decimal.Decimal) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.Trade{}, &models.Order{}, &models.Position{}, &models.Account{}} {
			if err := wipe.Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear previous portfolio: %w", err)
			}
		}

		account := models.Account{Cash: startingCash, LastPrices: models.PriceMap{}}
		if err := tx.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		snap = buildSnapshot(&account, nil, nil, nil)
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return snap, nil
}

// GetState reads the whole portfolio inside one transaction so a
// concurrently committing order can never show up in the journal before its
// cash movement does.
func (s *GormStore) GetState(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Order("id DESC").First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotInitialized()
			}
			return fmt.Errorf("failed to load account: %w", err)
		}

		positions, orders, trades, err := loadDependents(tx, account.ID)
		if err != nil {
			return err
		}
		snap = buildSnapshot(&account, positions, orders, trades)
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return snap, nil
}

func (s *GormStore) PlaceOrder(ctx context.Context, req FillRequest) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx)
		if err != nil {
			return err
		}

		lastPrice, ok := account.LastPrices[req.Symbol]
		if !ok || !lastPrice.IsPositive() {
			return errMissingPrice(req.Symbol)
		}

		fillPrice, fillCost := computeFill(req, lastPrice)

		var position models.Position
		hasPosition := true
		err = tx.Where("account_id = ? AND symbol = ?", account.ID, req.Symbol).First(&position).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hasPosition = false
		} else if err != nil {
			return fmt.Errorf("failed to load position: %w", err)
		}

		if req.Side == models.SideBuy && account.Cash.LessThan(fillCost) {
			return errInsufficientCash()
		}
		if req.Side == models.SideSell {
			var prevQty decimal.Decimal
			if hasPosition {
				prevQty = position.Qty
			}
			if prevQty.LessThan(req.Qty) {
				return errInsufficientQty()
			}
		}

		if req.Side == models.SideBuy {
			var prevQty, prevAvg decimal.Decimal
			if hasPosition {
				prevQty, prevAvg = position.Qty, position.AvgPrice
			}
			newQty, newAvg := applyBuy(prevQty, prevAvg, req.Qty, fillPrice)
			position.AccountID = account.ID
			position.Symbol = req.Symbol
			position.Qty = newQty
			position.AvgPrice = newAvg
			if err := tx.Save(&position).Error; err != nil {
				return fmt.Errorf("failed to upsert position: %w", err)
			}
			account.Cash = account.Cash.Sub(fillCost)
		} else {
			// Average price stays as-is on sells; realized P&L is not tracked.
			newQty := position.Qty.Sub(req.Qty)
			if newQty.IsZero() {
				if err := tx.Delete(&position).Error; err != nil {
					return fmt.Errorf("failed to delete closed position: %w", err)
				}
			} else {
				position.Qty = newQty
				if err := tx.Save(&position).Error; err != nil {
					return fmt.Errorf("failed to update position: %w", err)
				}
			}
			account.Cash = account.Cash.Add(fillCost)
		}

		if err := tx.Save(account).Error; err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		order := models.Order{
			AccountID:   account.ID,
			Symbol:      req.Symbol,
			Side:        req.Side,
			Qty:         req.Qty,
			Type:        models.OrderTypeMarket,
			Status:      models.OrderStatusFilled,
			FilledQty:   req.Qty,
			FilledPrice: fillPrice,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to record order: %w", err)
		}

		trade := models.Trade{
			AccountID: account.ID,
			OrderID:   order.ID,
			Symbol:    req.Symbol,
			Side:      req.Side,
			Qty:       req.Qty,
			Price:     fillPrice,
		}
		if err := tx.Create(&trade).Error; err != nil {
			return fmt.Errorf("failed to record trade: %w", err)
		}

		positions, orders, trades, err := loadDependents(tx, account.ID)
		if err != nil {
			return err
		}
		snap = buildSnapshot(account, positions, orders, trades)
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return snap, nil
}

func (s *GormStore) MarkToMarket(ctx context.Context, prices map[string]decimal.Decimal) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx)
		if err != nil {
			return err
		}

		merged := make(models.PriceMap, len(account.LastPrices)+len(prices))
		for symbol, price := range account.LastPrices {
			merged[symbol] = price
		}
		for symbol, price := range prices {
			merged[symbol] = price
		}
		account.LastPrices = merged

		if err := tx.Save(account).Error; err != nil {
			return fmt.Errorf("failed to update price book: %w", err)
		}

		positions, orders, trades, err := loadDependents(tx, account.ID)
		if err != nil {
			return err
		}
		snap = buildSnapshot(account, positions, orders, trades)
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return snap, nil
}

// lockAccount loads the latest account row for update. Dialects without
// SELECT ... FOR UPDATE (sqlite) rely on their single-writer transaction
// semantics instead.
func lockAccount(tx *gorm.DB) (*models.Account, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var account models.Account
	if err := q.Order("id DESC").First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotInitialized()
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &account, nil
}

func loadDependents(db *gorm.DB, accountID uint) ([]models.Position, []models.Order, []models.Trade, error) {
	var positions []models.Position
	if err := db.Where("account_id = ?", accountID).Order("symbol").Find(&positions).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load positions: %w", err)
	}

	var orders []models.Order
	if err := db.Where("account_id = ?", accountID).Order("id").Find(&orders).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load orders: %w", err)
	}

	var trades []models.Trade
	if err := db.Where("account_id = ?", accountID).Order("id").Find(&trades).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load trades: %w", err)
	}

	return positions, orders, trades, nil
}

// storeErr passes typed errors through and maps transactional conflicts so
// callers can resubmit the same operation.
func storeErr(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("portfolio was modified concurrently, retry the operation")
	}
	return err
}
