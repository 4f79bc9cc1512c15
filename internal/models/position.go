package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the open quantity and volume-weighted average entry cost for
// one symbol. A position whose quantity reaches zero is deleted, never kept
// around with qty 0.
type Position struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	AccountID uint            `gorm:"uniqueIndex:idx_positions_account_symbol;not null" json:"-"`
	Symbol    string          `gorm:"uniqueIndex:idx_positions_account_symbol;not null" json:"symbol"`
	Qty       decimal.Decimal `gorm:"type:numeric;not null" json:"qty"`
	AvgPrice  decimal.Decimal `gorm:"type:numeric;not null" json:"avgPrice"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
