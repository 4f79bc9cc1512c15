package market

import (
	"context"

	"investopaper/internal/apperr"
)

// StubProvider stands in for providers that are configured but not yet
// implemented (alphavantage, finnhub).
type StubProvider struct {
	Name string
}

var _ Provider = (*StubProvider)(nil)

func (p *StubProvider) GetCandles(_ context.Context, _, _ string, _ int) (*Candles, error) {
	name := p.Name
	if name == "" {
		name = "unknown"
	}
	return nil, apperr.NotImplemented("market data provider %q is not implemented", name)
}
