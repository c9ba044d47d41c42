package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/traderview/journal-backend/pkg/types"
)

// dateKey formats a calendar date as a map key.
const dateKey = "2006-01-02"

// AggregateByDay groups trades by the calendar date of their entry and
// returns the per-day realized P&L totals alongside the per-day trade
// subsets.
func AggregateByDay(trades []types.Trade) (map[string]decimal.Decimal, map[string][]types.Trade) {
	dailyPnL := make(map[string]decimal.Decimal)
	dailyTrades := make(map[string][]types.Trade)

	for _, t := range trades {
		key := t.EntryTime.Format(dateKey)
		dailyPnL[key] = dailyPnL[key].Add(t.PnL())
		dailyTrades[key] = append(dailyTrades[key], t)
	}

	return dailyPnL, dailyTrades
}

// WinLossDayStats aggregates either the winning days (aggregate P&L > 0)
// or the losing days (< 0). Zero selected days yields an all-zero result.
func WinLossDayStats(dailyPnL map[string]decimal.Decimal, trades []types.Trade, winning bool) types.DayStats {
	selected := make(map[string]decimal.Decimal)
	for day, pnl := range dailyPnL {
		if winning && pnl.IsPositive() || !winning && pnl.IsNegative() {
			selected[day] = pnl
		}
	}

	if len(selected) == 0 {
		return types.DayStats{}
	}

	var totalPnL decimal.Decimal
	for _, pnl := range selected {
		totalPnL = totalPnL.Add(pnl)
	}

	var totalVolume, totalQuantity decimal.Decimal
	var tradeCount int64
	for _, t := range trades {
		if _, ok := selected[t.EntryTime.Format(dateKey)]; !ok {
			continue
		}
		totalVolume = totalVolume.Add(t.EntryValue)
		totalQuantity = totalQuantity.Add(t.Quantity)
		tradeCount++
	}

	days := decimal.NewFromInt(int64(len(selected)))
	stats := types.DayStats{
		TotalGainLoss:        totalPnL,
		AverageDailyGainLoss: totalPnL.Div(days).Round(currencyScale),
		AverageDailyVolume:   totalVolume.Div(days).Round(currencyScale),
		NumberOfDays:         int64(len(selected)),
		TotalTrades:          tradeCount,
	}
	if totalQuantity.IsPositive() {
		stats.AveragePerShareGainLoss = totalPnL.Div(totalQuantity).Round(ratioScale)
	}
	if tradeCount > 0 {
		stats.AverageTradeGainLoss = totalPnL.Div(decimal.NewFromInt(tradeCount)).Round(currencyScale)
	}

	return stats
}

// IntradayAnalysis summarizes the trades entered on the requested calendar
// date. When no trades match, the result is an empty slice: "no data for
// this date" is zero rows, not one zeroed row.
func IntradayAnalysis(trades []types.Trade, date time.Time) []types.IntradayStats {
	key := date.Format(dateKey)

	var dayTrades []types.Trade
	for _, t := range trades {
		if t.EntryTime.Format(dateKey) == key {
			dayTrades = append(dayTrades, t)
		}
	}

	if len(dayTrades) == 0 {
		return []types.IntradayStats{}
	}

	sort.Slice(dayTrades, func(i, j int) bool {
		return dayTrades[i].EntryTime.Before(dayTrades[j].EntryTime)
	})

	var winning, losing, scratch int64
	var totalPnL, commissions, fees, totalValue, totalVolume decimal.Decimal
	largestWin := dayTrades[0].PnL()
	largestLoss := dayTrades[0].PnL()

	for _, t := range dayTrades {
		pnl := t.PnL()
		switch {
		case pnl.IsPositive():
			winning++
		case pnl.IsNegative():
			losing++
		default:
			scratch++
		}
		totalPnL = totalPnL.Add(pnl)
		commissions = commissions.Add(t.Commission)
		fees = fees.Add(t.Fees)
		totalValue = totalValue.Add(t.EntryValue)
		totalVolume = totalVolume.Add(t.Quantity)
		if pnl.GreaterThan(largestWin) {
			largestWin = pnl
		}
		if pnl.LessThan(largestLoss) {
			largestLoss = pnl
		}
	}

	first := dayTrades[0]
	last := dayTrades[0]
	for _, t := range dayTrades[1:] {
		if tradeEndTime(t).After(tradeEndTime(last)) {
			last = t
		}
	}

	firstTime := first.EntryTime
	lastTime := tradeEndTime(last)

	var durationMinutes int64
	if last.ExitTime != nil {
		durationMinutes = int64(last.ExitTime.Sub(first.EntryTime).Minutes())
	}

	y, m, d := first.EntryTime.Date()
	stats := types.IntradayStats{
		Date:             time.Date(y, m, d, 0, 0, 0, 0, first.EntryTime.Location()),
		TotalTrades:      int64(len(dayTrades)),
		WinningTrades:    winning,
		LosingTrades:     losing,
		ScratchTrades:    scratch,
		TotalPnL:         totalPnL,
		GrossPnL:         totalPnL.Add(commissions).Add(fees),
		Commissions:      commissions,
		Fees:             fees,
		LargestWin:       largestWin,
		LargestLoss:      largestLoss,
		FirstTradeTime:   &firstTime,
		LastTradeTime:    &lastTime,
		TradingDuration:  durationMinutes,
		AverageTradeSize: totalValue.Div(decimal.NewFromInt(int64(len(dayTrades)))).Round(currencyScale),
		TotalVolume:      totalVolume,
	}

	return []types.IntradayStats{stats}
}

// tradeEndTime is the exit time when present, the entry time otherwise.
func tradeEndTime(t types.Trade) time.Time {
	if t.ExitTime != nil {
		return *t.ExitTime
	}
	return t.EntryTime
}
