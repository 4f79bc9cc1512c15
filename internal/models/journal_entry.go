package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONPayload is an arbitrary JSON object stored in a single text column.
type JSONPayload map[string]any

// Value implements driver.Valuer.
func (p JSONPayload) Value() (driver.Value, error) {
	if p == nil {
		p = JSONPayload{}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (p *JSONPayload) Scan(value any) error {
	if value == nil {
		*p = JSONPayload{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONPayload", value)
	}
	if len(raw) == 0 {
		*p = JSONPayload{}
		return nil
	}
	return json.Unmarshal(raw, p)
}

// JournalEntry is one append-only note in the trading journal.
type JournalEntry struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Type      string      `gorm:"index:idx_journal_type_created;not null" json:"type"`
	Payload   JSONPayload `gorm:"type:text;not null" json:"payload"`
	CreatedAt time.Time   `gorm:"index:idx_journal_type_created" json:"createdAt"`
}
