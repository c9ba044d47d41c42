package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traderview/journal-backend/internal/analytics"
	"github.com/traderview/journal-backend/pkg/types"
)

func decPtr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func TestFilterTradesKeepsOnlyClosed(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	closed := closedTrade("50", base, 10)
	open := closedTrade("0", base.Add(time.Hour), 10)
	open.Status = types.TradeStatusOpen
	open.RealizedPnL = nil
	partial := closedTrade("10", base.Add(2*time.Hour), 10)
	partial.Status = types.TradeStatusPartiallyClosed

	filtered := analytics.FilterTrades([]types.Trade{closed, open, partial}, nil)

	require.Len(t, filtered, 1)
	assert.Equal(t, closed.ID, filtered[0].ID)
}

func TestFilterTradesBySymbol(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	es := closedTrade("50", base, 10)
	nq := closedTrade("30", base.Add(time.Hour), 10)
	nq.Symbol = "NQ"

	filter := &types.StatsFilter{Symbols: []string{"NQ"}}
	filtered := analytics.FilterTrades([]types.Trade{es, nq}, filter)

	require.Len(t, filtered, 1)
	assert.Equal(t, "NQ", filtered[0].Symbol)
}

func TestFilterTradesDateBoundsInclusive(t *testing.T) {
	day1 := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)
	trades := []types.Trade{
		closedTrade("10", day1, 10),
		closedTrade("20", day2, 10),
		closedTrade("30", day3, 10),
	}

	filter := &types.StatsFilter{StartDate: timePtr(day2), EndDate: timePtr(day2)}
	filtered := analytics.FilterTrades(trades, filter)

	require.Len(t, filtered, 1)
	assert.Equal(t, day2, filtered[0].EntryTime)
}

func TestFilterTradesMinPnLZeroKeepsScratches(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	trades := []types.Trade{
		closedTrade("50", base, 10),
		closedTrade("0", base.Add(time.Hour), 10),
		closedTrade("-25", base.Add(2*time.Hour), 10),
	}

	filter := &types.StatsFilter{MinPnL: decPtr("0")}
	filtered := analytics.FilterTrades(trades, filter)

	require.Len(t, filtered, 2, "a zero bound excludes losses but keeps scratches")
	for _, trade := range filtered {
		assert.False(t, trade.PnL().IsNegative())
	}
}

func TestFilterTradesQuantityBounds(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	small := closedTrade("10", base, 10)
	small.Quantity = decimal.RequireFromString("2")
	large := closedTrade("20", base.Add(time.Hour), 10)
	large.Quantity = decimal.RequireFromString("50")

	filter := &types.StatsFilter{MinQuantity: decPtr("5"), MaxQuantity: decPtr("100")}
	filtered := analytics.FilterTrades([]types.Trade{small, large}, filter)

	require.Len(t, filtered, 1)
	assert.Equal(t, large.ID, filtered[0].ID)
}

func TestFilterTradesConjunctive(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	match := closedTrade("60", base, 10)
	wrongSymbol := closedTrade("60", base.Add(time.Hour), 10)
	wrongSymbol.Symbol = "NQ"
	wrongPnL := closedTrade("-5", base.Add(2*time.Hour), 10)

	filter := &types.StatsFilter{
		Symbols: []string{"ES"},
		MinPnL:  decPtr("0"),
	}
	filtered := analytics.FilterTrades([]types.Trade{match, wrongSymbol, wrongPnL}, filter)

	require.Len(t, filtered, 1)
	assert.Equal(t, match.ID, filtered[0].ID)
}

func TestFilterTradesEmptyResultIsValid(t *testing.T) {
	base := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	trades := []types.Trade{closedTrade("50", base, 10)}

	filter := &types.StatsFilter{Symbols: []string{"ZB"}}
	filtered := analytics.FilterTrades(trades, filter)

	require.NotNil(t, filtered)
	assert.Empty(t, filtered)
}
