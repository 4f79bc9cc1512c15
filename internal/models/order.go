package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order sides and the only supported order type. Every accepted order fills
// immediately and fully, so "filled" is the only order status.
const (
	SideBuy  = "buy"
	SideSell = "sell"

	OrderTypeMarket = "market"

	OrderStatusFilled = "filled"
)

// Order is an immutable journal record of a submitted order.
type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AccountID   uint            `gorm:"index;not null" json:"-"`
	Symbol      string          `gorm:"not null" json:"symbol"`
	Side        string          `gorm:"not null" json:"side"`
	Qty         decimal.Decimal `gorm:"type:numeric;not null" json:"qty"`
	Type        string          `gorm:"not null" json:"type"`
	Status      string          `gorm:"not null" json:"status"`
	FilledQty   decimal.Decimal `gorm:"type:numeric;not null" json:"filledQty"`
	FilledPrice decimal.Decimal `gorm:"type:numeric;not null" json:"filledPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}
