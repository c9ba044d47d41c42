package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/traderview/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// Published scales: 2 decimal places for currency figures, 4 for
// per-share and ratio figures, rounded half away from zero.
const (
	currencyScale = 2
	ratioScale    = 4
)

var oneHundred = decimal.NewFromInt(100)

// StatsCalculator computes the TradeStats bundle from closed trades.
type StatsCalculator struct {
	logger *zap.Logger
}

// NewStatsCalculator creates a new stats calculator.
func NewStatsCalculator(logger *zap.Logger) *StatsCalculator {
	return &StatsCalculator{logger: logger}
}

// Compute calculates the full metric bundle. It is a pure function of its
// input: an empty trade list yields a TradeStats with every field at zero.
func (c *StatsCalculator) Compute(trades []types.Trade) *types.TradeStats {
	if len(trades) == 0 {
		return &types.TradeStats{}
	}

	var winning, losing, scratch []types.Trade
	for _, t := range trades {
		pnl := t.PnL()
		switch {
		case pnl.IsPositive():
			winning = append(winning, t)
		case pnl.IsNegative():
			losing = append(losing, t)
		default:
			scratch = append(scratch, t)
		}
	}

	var totalPnL, totalCommissions, totalFees, totalVolume, totalQuantity decimal.Decimal
	largestGain := trades[0].PnL()
	largestLoss := trades[0].PnL()
	pnlValues := make([]decimal.Decimal, 0, len(trades))

	for _, t := range trades {
		pnl := t.PnL()
		totalPnL = totalPnL.Add(pnl)
		totalCommissions = totalCommissions.Add(t.Commission)
		totalFees = totalFees.Add(t.Fees)
		totalVolume = totalVolume.Add(t.EntryValue)
		totalQuantity = totalQuantity.Add(t.Quantity)
		pnlValues = append(pnlValues, pnl)

		if pnl.GreaterThan(largestGain) {
			largestGain = pnl
		}
		if pnl.LessThan(largestLoss) {
			largestLoss = pnl
		}
	}

	tradingDays := countTradingDays(trades)
	nTrades := decimal.NewFromInt(int64(len(trades)))

	stats := &types.TradeStats{
		TotalGainLoss:         totalPnL,
		LargestGain:           largestGain,
		LargestLoss:           largestLoss,
		TotalNumberOfTrades:   int64(len(trades)),
		NumberOfWinningTrades: int64(len(winning)),
		NumberOfLosingTrades:  int64(len(losing)),
		NumberOfScratchTrades: int64(len(scratch)),
		TotalCommissions:      totalCommissions,
		TotalFees:             totalFees,
	}

	if tradingDays > 0 {
		days := decimal.NewFromInt(int64(tradingDays))
		stats.AverageDailyGainLoss = totalPnL.Div(days).Round(currencyScale)
		stats.AverageDailyVolume = totalVolume.Div(days).Round(currencyScale)
	}
	if totalQuantity.IsPositive() {
		stats.AveragePerShareGainLoss = totalPnL.Div(totalQuantity).Round(ratioScale)
	}
	stats.AverageTradeGainLoss = totalPnL.Div(nTrades).Round(currencyScale)
	stats.AverageWinningTrade = meanPnL(winning)
	stats.AverageLosingTrade = meanPnL(losing)

	stats.AverageHoldTimeWinning = averageHoldMinutes(winning)
	stats.AverageHoldTimeLosing = averageHoldMinutes(losing)
	stats.AverageHoldTimeScratches = averageHoldMinutes(scratch)

	stats.MaxConsecutiveWins = maxConsecutive(trades, true)
	stats.MaxConsecutiveLosses = maxConsecutive(trades, false)

	stdDev := populationStdDev(pnlValues)
	stats.TradePnLStandardDeviation = stdDev.Round(currencyScale)
	stats.SystemQualityNumber = systemQualityNumber(pnlValues, stdDev)
	stats.ProbabilityOfRandomChance = probabilityOfRandomChance(len(winning), len(trades))
	stats.KellyPercentage = kellyPercentage(winning, losing)
	stats.KRatio = kRatio(pnlValues, stdDev)
	stats.ProfitFactor = profitFactor(winning, losing)

	// MAE/MFE stay zero: they need intraday excursion data that the
	// trade store does not carry.

	return stats
}

// countTradingDays counts distinct calendar dates of entry.
func countTradingDays(trades []types.Trade) int {
	days := make(map[string]bool, len(trades))
	for _, t := range trades {
		days[t.EntryTime.Format("2006-01-02")] = true
	}
	return len(days)
}

// meanPnL is the mean realized P&L over a subset, zero when empty.
// A losing subset keeps its natural negative sign.
func meanPnL(trades []types.Trade) decimal.Decimal {
	if len(trades) == 0 {
		return decimal.Zero
	}
	var sum decimal.Decimal
	for _, t := range trades {
		sum = sum.Add(t.PnL())
	}
	return sum.Div(decimal.NewFromInt(int64(len(trades)))).Round(currencyScale)
}

// averageHoldMinutes is the mean entry-to-exit duration in whole minutes
// over trades in the subset that have an exit time.
func averageHoldMinutes(trades []types.Trade) int64 {
	var total, count int64
	for _, t := range trades {
		if t.ExitTime == nil {
			continue
		}
		total += int64(t.ExitTime.Sub(t.EntryTime).Minutes())
		count++
	}
	if count == 0 {
		return 0
	}
	return total / count
}

// maxConsecutive scans trades in entry order and returns the longest run
// of wins (or losses). Scratch trades break both streak types.
func maxConsecutive(trades []types.Trade, wins bool) int64 {
	sorted := make([]types.Trade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EntryTime.Before(sorted[j].EntryTime)
	})

	var maxRun, run int64
	for _, t := range sorted {
		pnl := t.PnL()
		matches := pnl.IsPositive()
		if !wins {
			matches = pnl.IsNegative()
		}
		if matches {
			run++
			if run > maxRun {
				maxRun = run
			}
		} else {
			run = 0
		}
	}
	return maxRun
}

// populationStdDev is the population standard deviation (divide by N) of
// the P&L values, unrounded.
func populationStdDev(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(len(values)))

	var sum decimal.Decimal
	for _, v := range values {
		sum = sum.Add(v)
	}
	mean := sum.Div(n)

	var sumSquares decimal.Decimal
	for _, v := range values {
		diff := v.Sub(mean)
		sumSquares = sumSquares.Add(diff.Mul(diff))
	}
	variance, _ := sumSquares.Div(n).Float64()

	return decimal.NewFromFloat(math.Sqrt(variance))
}

// systemQualityNumber is mean(pnl) * sqrt(N) / stddev(pnl), zero when the
// standard deviation is zero.
func systemQualityNumber(values []decimal.Decimal, stdDev decimal.Decimal) decimal.Decimal {
	if len(values) == 0 || !stdDev.IsPositive() {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(len(values)))

	var sum decimal.Decimal
	for _, v := range values {
		sum = sum.Add(v)
	}
	mean := sum.Div(n)
	sqrtN := decimal.NewFromFloat(math.Sqrt(float64(len(values))))

	return mean.Mul(sqrtN).Div(stdDev).Round(currencyScale)
}

// probabilityOfRandomChance is (1 - winRate) * 100. This is a simplified
// placeholder, not a binomial-test p-value.
func probabilityOfRandomChance(wins, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	winRate := decimal.NewFromInt(int64(wins)).
		Div(decimal.NewFromInt(int64(total))).
		Round(ratioScale)
	return decimal.NewFromInt(1).Sub(winRate).Mul(oneHundred)
}

// kellyPercentage is 100 * (b*p - q) / b with b = avgWin/avgLoss (loss as
// a positive magnitude) and p the win rate among win+loss trades. Zero when
// either subset is empty or b is zero.
func kellyPercentage(winning, losing []types.Trade) decimal.Decimal {
	if len(winning) == 0 || len(losing) == 0 {
		return decimal.Zero
	}

	var winSum, lossSum decimal.Decimal
	for _, t := range winning {
		winSum = winSum.Add(t.PnL())
	}
	for _, t := range losing {
		lossSum = lossSum.Add(t.PnL())
	}

	avgWin := winSum.Div(decimal.NewFromInt(int64(len(winning))))
	avgLoss := lossSum.Abs().Div(decimal.NewFromInt(int64(len(losing))))
	if !avgLoss.IsPositive() {
		return decimal.Zero
	}

	b := avgWin.Div(avgLoss)
	if !b.IsPositive() {
		return decimal.Zero
	}
	p := decimal.NewFromInt(int64(len(winning))).
		Div(decimal.NewFromInt(int64(len(winning) + len(losing))))
	q := decimal.NewFromInt(1).Sub(p)

	return b.Mul(p).Sub(q).Div(b).Round(ratioScale).Mul(oneHundred)
}

// kRatio fits an ordinary-least-squares line to the raw P&L sequence
// indexed 1..N and divides the slope by the standard error
// stddev / sqrt(N). The conventional K-ratio regresses the cumulative
// equity curve instead; the raw-sequence form is kept for compatibility
// with existing journals.
func kRatio(values []decimal.Decimal, stdDev decimal.Decimal) decimal.Decimal {
	if len(values) < 2 {
		return decimal.Zero
	}

	n := int64(len(values))
	xSum := n * (n + 1) / 2
	xSqSum := n * (n + 1) * (2*n + 1) / 6

	var ySum, xySum decimal.Decimal
	for i, v := range values {
		ySum = ySum.Add(v)
		xySum = xySum.Add(decimal.NewFromInt(int64(i + 1)).Mul(v))
	}

	nDec := decimal.NewFromInt(n)
	xSumDec := decimal.NewFromInt(xSum)
	numerator := nDec.Mul(xySum).Sub(xSumDec.Mul(ySum))
	denominator := nDec.Mul(decimal.NewFromInt(xSqSum)).Sub(xSumDec.Mul(xSumDec))
	if denominator.IsZero() {
		return decimal.Zero
	}
	slope := numerator.Div(denominator)

	stdError := stdDev.Div(decimal.NewFromFloat(math.Sqrt(float64(n))))
	if !stdError.IsPositive() {
		return decimal.Zero
	}

	return slope.Div(stdError).Round(currencyScale)
}

// profitFactor is gross profit over gross loss magnitude. Reported as
// zero (not +Inf) when there are no losses; a simplification kept for
// compatibility with existing journals.
func profitFactor(winning, losing []types.Trade) decimal.Decimal {
	var winSum, lossSum decimal.Decimal
	for _, t := range winning {
		winSum = winSum.Add(t.PnL())
	}
	for _, t := range losing {
		lossSum = lossSum.Add(t.PnL())
	}

	lossMagnitude := lossSum.Abs()
	if !lossMagnitude.IsPositive() {
		return decimal.Zero
	}
	return winSum.Div(lossMagnitude).Round(currencyScale)
}
