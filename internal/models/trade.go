package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the immutable fill produced by an order. Under the market-order
// model one order produces exactly one trade.
type Trade struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AccountID uint            `gorm:"index;not null" json:"-"`
	OrderID   uint            `gorm:"index;not null" json:"orderId"`
	Symbol    string          `gorm:"not null" json:"symbol"`
	Side      string          `gorm:"not null" json:"side"`
	Qty       decimal.Decimal `gorm:"type:numeric;not null" json:"qty"`
	Price     decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}
