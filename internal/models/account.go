package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Cash, quantities and prices serialize as JSON numbers, matching the
	// wire format the frontend consumes.
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceMap holds the latest known price per symbol. It is stored as a JSON
// document in a single column so a mark-to-market merge is one row update.
type PriceMap map[string]decimal.Decimal

// Value implements driver.Valuer.
func (p PriceMap) Value() (driver.Value, error) {
	if p == nil {
		p = PriceMap{}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (p *PriceMap) Scan(value any) error {
	if value == nil {
		*p = PriceMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PriceMap", value)
	}
	if len(raw) == 0 {
		*p = PriceMap{}
		return nil
	}
	return json.Unmarshal(raw, p)
}

// Account is the single live paper-trading portfolio. Creating a new one
// discards the prior account and everything it owns.
type Account struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Cash       decimal.Decimal `gorm:"type:numeric;not null" json:"cash"`
	LastPrices PriceMap        `gorm:"type:text;not null" json:"lastPrices"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
