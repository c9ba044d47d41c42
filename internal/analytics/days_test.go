package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traderview/journal-backend/internal/analytics"
	"github.com/traderview/journal-backend/pkg/types"
)

func TestAggregateByDay(t *testing.T) {
	day1 := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 7, 9, 30, 0, 0, time.UTC)
	trades := []types.Trade{
		closedTrade("50", day1, 10),
		closedTrade("-20", day1.Add(2*time.Hour), 10),
		closedTrade("40", day2, 10),
	}

	dailyPnL, dailyTrades := analytics.AggregateByDay(trades)

	require.Len(t, dailyPnL, 2)
	assert.True(t, dailyPnL["2025-01-06"].Equal(d("30")))
	assert.True(t, dailyPnL["2025-01-07"].Equal(d("40")))
	assert.Len(t, dailyTrades["2025-01-06"], 2)
	assert.Len(t, dailyTrades["2025-01-07"], 1)
}

func TestWinLossDayStats(t *testing.T) {
	day1 := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	trades := []types.Trade{
		closedTrade("50", day1, 10),
		closedTrade("-30", day1.AddDate(0, 0, 1), 10),
		closedTrade("20", day1.AddDate(0, 0, 2), 10),
	}

	dailyPnL, _ := analytics.AggregateByDay(trades)

	winning := analytics.WinLossDayStats(dailyPnL, trades, true)
	assert.True(t, winning.TotalGainLoss.Equal(d("70")), "winning total = %s", winning.TotalGainLoss)
	assert.True(t, winning.AverageDailyGainLoss.Equal(d("35")))
	assert.True(t, winning.AverageDailyVolume.Equal(d("1000")))
	assert.True(t, winning.AveragePerShareGainLoss.Equal(d("3.5")))
	assert.True(t, winning.AverageTradeGainLoss.Equal(d("35")))
	assert.Equal(t, int64(2), winning.NumberOfDays)
	assert.Equal(t, int64(2), winning.TotalTrades)

	losing := analytics.WinLossDayStats(dailyPnL, trades, false)
	assert.True(t, losing.TotalGainLoss.Equal(d("-30")))
	assert.True(t, losing.AverageDailyGainLoss.Equal(d("-30")))
	assert.Equal(t, int64(1), losing.NumberOfDays)
	assert.Equal(t, int64(1), losing.TotalTrades)
}

func TestWinLossDayStatsScratchDayCountsNeither(t *testing.T) {
	day1 := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	trades := []types.Trade{
		closedTrade("25", day1, 10),
		closedTrade("-25", day1.Add(time.Hour), 10),
	}

	dailyPnL, _ := analytics.AggregateByDay(trades)

	winning := analytics.WinLossDayStats(dailyPnL, trades, true)
	losing := analytics.WinLossDayStats(dailyPnL, trades, false)

	assert.Equal(t, int64(0), winning.NumberOfDays)
	assert.Equal(t, int64(0), losing.NumberOfDays)
	assert.True(t, winning.TotalGainLoss.IsZero())
	assert.True(t, losing.TotalGainLoss.IsZero())
}

func TestIntradayAnalysis(t *testing.T) {
	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	first := closedTrade("100", date.Add(9*time.Hour+30*time.Minute), 30)
	second := closedTrade("-40", date.Add(11*time.Hour), 45)
	elsewhere := closedTrade("999", date.AddDate(0, 0, 1).Add(10*time.Hour), 30)

	rows := analytics.IntradayAnalysis([]types.Trade{second, first, elsewhere}, date)

	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, date, row.Date)
	assert.Equal(t, int64(2), row.TotalTrades)
	assert.Equal(t, int64(1), row.WinningTrades)
	assert.Equal(t, int64(1), row.LosingTrades)
	assert.Equal(t, int64(0), row.ScratchTrades)
	assert.True(t, row.TotalPnL.Equal(d("60")))
	// Gross adds back 2 commission + 1 fee per trade.
	assert.True(t, row.GrossPnL.Equal(d("66")), "gross = %s", row.GrossPnL)
	assert.True(t, row.Commissions.Equal(d("4")))
	assert.True(t, row.Fees.Equal(d("2")))
	assert.True(t, row.LargestWin.Equal(d("100")))
	assert.True(t, row.LargestLoss.Equal(d("-40")))
	assert.True(t, row.AverageTradeSize.Equal(d("1000")))
	assert.True(t, row.TotalVolume.Equal(d("20")))

	require.NotNil(t, row.FirstTradeTime)
	assert.Equal(t, first.EntryTime, *row.FirstTradeTime)
	require.NotNil(t, row.LastTradeTime)
	assert.Equal(t, *second.ExitTime, *row.LastTradeTime)

	// 09:30 entry to 11:45 exit.
	assert.Equal(t, int64(135), row.TradingDuration)
}

func TestIntradayAnalysisNoTrades(t *testing.T) {
	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	trades := []types.Trade{
		closedTrade("50", date.AddDate(0, 0, 3).Add(10*time.Hour), 30),
	}

	rows := analytics.IntradayAnalysis(trades, date)

	require.NotNil(t, rows)
	assert.Empty(t, rows)
}
