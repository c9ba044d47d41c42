package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traderview/journal-backend/internal/analytics"
	"github.com/traderview/journal-backend/pkg/types"
	"go.uber.org/zap"
)

type fixtureStore struct {
	trades      []types.Trade
	err         error
	closedCalls int
}

func (f *fixtureStore) ListTrades(ctx context.Context, accountID int64) ([]types.Trade, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.trades, nil
}

func (f *fixtureStore) ListClosedTrades(ctx context.Context, accountID int64) ([]types.Trade, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.closedCalls++
	var closed []types.Trade
	for _, t := range f.trades {
		if t.Status == types.TradeStatusClosed {
			closed = append(closed, t)
		}
	}
	return closed, nil
}

func TestServiceGetTradeStatsAppliesFilter(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	nq := closedTrade("75", base.Add(time.Hour), 10)
	nq.Symbol = "NQ"
	store := &fixtureStore{trades: []types.Trade{
		closedTrade("50", base, 10),
		nq,
	}}

	service := analytics.NewService(zap.NewNop(), store)
	stats, err := service.GetTradeStats(context.Background(), 1, &types.StatsFilter{Symbols: []string{"NQ"}})

	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalNumberOfTrades)
	assert.True(t, stats.TotalGainLoss.Equal(d("75")))
}

func TestServiceFiltersReadClosedTradesOnly(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	open := closedTrade("0", base.Add(time.Hour), 10)
	open.Status = types.TradeStatusOpen
	open.RealizedPnL = nil
	store := &fixtureStore{trades: []types.Trade{
		closedTrade("50", base, 10),
		open,
	}}

	service := analytics.NewService(zap.NewNop(), store)
	stats, err := service.GetTradeStats(context.Background(), 1, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalNumberOfTrades)
	assert.Equal(t, 1, store.closedCalls, "stats read the closed-trade listing")
}

func TestServiceGetWinLossDays(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	store := &fixtureStore{trades: []types.Trade{
		closedTrade("50", base, 10),
		closedTrade("-30", base.AddDate(0, 0, 1), 10),
	}}

	service := analytics.NewService(zap.NewNop(), store)
	result, err := service.GetWinLossDays(context.Background(), 1, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.WinningDays.NumberOfDays)
	assert.Equal(t, int64(1), result.LosingDays.NumberOfDays)
	assert.True(t, result.WinningDays.TotalGainLoss.Equal(d("50")))
	assert.True(t, result.LosingDays.TotalGainLoss.Equal(d("-30")))
}

func TestServicePropagatesStoreError(t *testing.T) {
	storeErr := errors.New("db unavailable")
	service := analytics.NewService(zap.NewNop(), &fixtureStore{err: storeErr})

	_, err := service.GetTradeStats(context.Background(), 1, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)

	_, err = service.GetDrawdownAnalysis(context.Background(), 1, nil)
	require.Error(t, err)

	_, err = service.GetIntradayAnalysis(context.Background(), 1, time.Now())
	require.Error(t, err)
}

func TestServiceGetDashboardSummary(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	open := closedTrade("0", base.Add(time.Hour), 10)
	open.Status = types.TradeStatusOpen
	open.RealizedPnL = nil
	outside := closedTrade("999", base.AddDate(0, -2, 0), 10)

	store := &fixtureStore{trades: []types.Trade{
		closedTrade("100", base, 10),
		closedTrade("-40", base.Add(2*time.Hour), 10),
		open,
		outside,
	}}

	service := analytics.NewService(zap.NewNop(), store)
	summary, err := service.GetDashboardSummary(context.Background(), 1,
		base.AddDate(0, 0, -7), base.AddDate(0, 0, 7))

	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalTrades, "the out-of-period trade is excluded")
	assert.Equal(t, int64(1), summary.OpenTrades)
	assert.Equal(t, int64(2), summary.ClosedTrades)
	assert.True(t, summary.TotalRealizedPnL.Equal(d("60")))
	assert.Equal(t, int64(1), summary.WinningTrades)
	assert.Equal(t, int64(1), summary.LosingTrades)
	assert.True(t, summary.WinRate.Equal(d("50")), "winRate = %s", summary.WinRate)
	assert.True(t, summary.TotalCommission.Equal(d("6")))
	assert.True(t, summary.TotalFees.Equal(d("3")))
}

func TestServiceGetSymbolPerformanceSortedByPnL(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	nq := closedTrade("200", base.Add(time.Hour), 10)
	nq.Symbol = "NQ"
	ym := closedTrade("-15", base.Add(2*time.Hour), 10)
	ym.Symbol = "YM"

	store := &fixtureStore{trades: []types.Trade{
		closedTrade("50", base, 10),
		nq,
		ym,
	}}

	service := analytics.NewService(zap.NewNop(), store)
	results, err := service.GetSymbolPerformance(context.Background(), 1,
		base.AddDate(0, 0, -1), base.AddDate(0, 0, 1))

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "NQ", results[0].Symbol)
	assert.Equal(t, "ES", results[1].Symbol)
	assert.Equal(t, "YM", results[2].Symbol)

	assert.True(t, results[0].TotalRealizedPnL.Equal(d("200")))
	assert.True(t, results[0].WinRate.Equal(d("100")))
	assert.True(t, results[0].AverageTradeSize.Equal(d("1000")))
	assert.True(t, results[2].WinRate.IsZero())
}
