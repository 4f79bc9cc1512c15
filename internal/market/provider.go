// Package market retrieves and caches OHLCV candles from external data
// providers. The portfolio core never calls this package; it only consumes
// prices the caller marks to market.
package market

import (
	"context"
	"time"

	"go.uber.org/zap"

	"investopaper/internal/config"
)

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Candles is a provider response for one symbol and interval.
type Candles struct {
	Symbol   string   `json:"symbol"`
	Interval string   `json:"interval"`
	Candles  []Candle `json:"candles"`
}

// Provider fetches candles from one upstream data source.
type Provider interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) (*Candles, error)
}

// NewProvider selects the provider implementation for the configured name.
// Unknown or unimplemented providers get the stub, which rejects every call.
func NewProvider(cfg *config.Market, logger *zap.Logger) Provider {
	switch cfg.Provider {
	case "stooq":
		return NewStooqProvider(cfg, logger)
	default:
		return &StubProvider{Name: cfg.Provider}
	}
}
