package market

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"investopaper/internal/apperr"
)

// Service normalizes candle requests and serves them through a short-lived
// cache in front of the configured provider.
type Service struct {
	provider Provider
	cache    *candleCache
	logger   *zap.Logger
}

// NewService creates a market-data service over the given provider.
func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    newCandleCache(),
		logger:   logger,
	}
}

// GetCandles returns up to limit candles for the symbol at the given
// interval. Only "1d" and "1h" intervals are supported.
func (s *Service) GetCandles(ctx context.Context, symbol, interval string, limit int) (*Candles, error) {
	normalizedSymbol := strings.ToUpper(strings.TrimSpace(symbol))
	normalizedInterval := strings.TrimSpace(interval)

	if normalizedInterval != "1d" && normalizedInterval != "1h" {
		return nil, apperr.Validation(`only "1d" and "1h" intervals are supported at this time`)
	}

	key := cacheKey(normalizedSymbol, normalizedInterval, limit)
	if cached, ok := s.cache.get(key); ok {
		return cached, nil
	}

	result, err := s.provider.GetCandles(ctx, normalizedSymbol, normalizedInterval, limit)
	if err != nil {
		return nil, err
	}

	s.cache.set(key, result)
	return result, nil
}
