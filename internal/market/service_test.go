package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"investopaper/internal/apperr"
)

// MockProvider is a mock implementation of the Provider interface.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetCandles(ctx context.Context, symbol, interval string, limit int) (*Candles, error) {
	args := m.Called(symbol, interval, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Candles), args.Error(1)
}

func TestService_GetCandles_RejectsUnsupportedInterval(t *testing.T) {
	svc := NewService(new(MockProvider), zap.NewNop())

	_, err := svc.GetCandles(context.Background(), "SPY", "5m", 10)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestService_GetCandles_NormalizesAndCaches(t *testing.T) {
	provider := new(MockProvider)
	svc := NewService(provider, zap.NewNop())

	payload := &Candles{Symbol: "SPY", Interval: "1d", Candles: []Candle{{Close: 500}}}
	provider.On("GetCandles", "SPY", "1d", 200).Return(payload, nil).Once()

	first, err := svc.GetCandles(context.Background(), " spy ", "1d", 200)
	require.NoError(t, err)
	assert.Equal(t, payload, first)

	// Second call is served from the cache; the mock would fail on a
	// second provider hit because of Once().
	second, err := svc.GetCandles(context.Background(), "SPY", "1d", 200)
	require.NoError(t, err)
	assert.Equal(t, payload, second)

	provider.AssertExpectations(t)
}

func TestCandleCache_Expiry(t *testing.T) {
	cache := newCandleCache()
	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.set("k", &Candles{Symbol: "SPY"})
	_, ok := cache.get("k")
	assert.True(t, ok)

	current = current.Add(cacheTTL + time.Second)
	_, ok = cache.get("k")
	assert.False(t, ok)
}

func TestStubProvider_NotImplemented(t *testing.T) {
	p := &StubProvider{Name: "finnhub"}
	_, err := p.GetCandles(context.Background(), "SPY", "1d", 10)
	assert.Equal(t, apperr.KindNotImplemented, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "finnhub")
}
