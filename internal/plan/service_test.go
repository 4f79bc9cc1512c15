package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"investopaper/internal/apperr"
	"investopaper/internal/journal"
	"investopaper/internal/market"
	"investopaper/internal/strategy"
)

// MockCandleSource is a mock implementation of the CandleSource interface.
type MockCandleSource struct {
	mock.Mock
}

func (m *MockCandleSource) GetCandles(ctx context.Context, symbol, interval string, limit int) (*market.Candles, error) {
	args := m.Called(symbol, interval, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*market.Candles), args.Error(1)
}

func setupPlan(t *testing.T) (*Service, *MockCandleSource, *journal.Service) {
	t.Helper()
	source := new(MockCandleSource)
	journalSvc := journal.NewService(journal.NewMemoryStore(), zap.NewNop())
	return NewService(source, journalSvc, zap.NewNop()), source, journalSvc
}

func TestGetDailyPlan_RequiresSymbol(t *testing.T) {
	svc, _, _ := setupPlan(t)
	_, err := svc.GetDailyPlan(context.Background(), "  ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGetDailyPlan_HoldWithoutData(t *testing.T) {
	svc, source, _ := setupPlan(t)
	source.On("GetCandles", "SPY", "1d", 200).
		Return(&market.Candles{Symbol: "SPY", Interval: "1d"}, nil)

	plan, err := svc.GetDailyPlan(context.Background(), " spy ")
	require.NoError(t, err)

	assert.Equal(t, "SPY", plan.Symbol)
	assert.Equal(t, strategy.SignalHold, plan.Plan.Signal)
	assert.Nil(t, plan.Plan.KeyLevels.Support)
	assert.Nil(t, plan.Plan.KeyLevels.Resistance)
	assert.Len(t, plan.Plan.Checklist, 4)
	assert.Empty(t, plan.News.Bullets)
	source.AssertExpectations(t)
}

func TestGetDailyPlan_KeyLevelsFromLast20Candles(t *testing.T) {
	svc, source, _ := setupPlan(t)

	candles := make([]market.Candle, 30)
	for i := range candles {
		price := 100 + float64(i)
		candles[i] = market.Candle{Open: price, High: price + 2, Low: price - 2, Close: price}
	}
	source.On("GetCandles", "SPY", "1d", 200).
		Return(&market.Candles{Symbol: "SPY", Interval: "1d", Candles: candles}, nil)

	plan, err := svc.GetDailyPlan(context.Background(), "SPY")
	require.NoError(t, err)

	// Window starts at candle index 10: low 108, high 131.
	require.NotNil(t, plan.Plan.KeyLevels.Support)
	require.NotNil(t, plan.Plan.KeyLevels.Resistance)
	assert.Equal(t, 108.0, *plan.Plan.KeyLevels.Support)
	assert.Equal(t, 131.0, *plan.Plan.KeyLevels.Resistance)
}

func TestGetDailyPlan_NewsBulletsFromJournal(t *testing.T) {
	svc, source, journalSvc := setupPlan(t)
	source.On("GetCandles", "SPY", "1d", 200).
		Return(&market.Candles{Symbol: "SPY", Interval: "1d"}, nil)

	_, err := journalSvc.Create(context.Background(), journal.TypeNews, map[string]any{
		"bullets": []any{"CPI cooled", "Earnings beat"},
	})
	require.NoError(t, err)

	plan, err := svc.GetDailyPlan(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, []string{"CPI cooled", "Earnings beat"}, plan.News.Bullets)
}

func TestGetDailyPlan_NewsSummaryFallback(t *testing.T) {
	svc, source, journalSvc := setupPlan(t)
	source.On("GetCandles", "SPY", "1d", 200).
		Return(&market.Candles{Symbol: "SPY", Interval: "1d"}, nil)

	_, err := journalSvc.Create(context.Background(), journal.TypeNews, map[string]any{
		"summary": "Quiet session ahead of the Fed.",
	})
	require.NoError(t, err)

	plan, err := svc.GetDailyPlan(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, []string{"Quiet session ahead of the Fed."}, plan.News.Bullets)
}

func TestGetDailyPlan_PropagatesProviderErrors(t *testing.T) {
	svc, source, _ := setupPlan(t)
	source.On("GetCandles", "SPY", "1d", 200).
		Return(nil, apperr.Upstream("failed to fetch data from stooq (500)"))

	_, err := svc.GetDailyPlan(context.Background(), "SPY")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestBuildChecklist_SideSpecificFirstItem(t *testing.T) {
	assert.Contains(t, buildChecklist(strategy.SignalBuy)[0], "uptrend")
	assert.Contains(t, buildChecklist(strategy.SignalSell)[0], "downtrend")
	assert.Len(t, buildChecklist(strategy.SignalHold), 4)
}
