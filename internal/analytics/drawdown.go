package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/traderview/journal-backend/pkg/types"
)

// seriesPoint is one day on the cumulative P&L curve.
type seriesPoint struct {
	Date          time.Time
	CumulativePnL decimal.Decimal
}

// ComputeDrawdown reconstructs the daily cumulative-P&L series from closed
// trades and detects peak-to-trough drawdown periods. One walk over the
// series produces the period list, the max drawdown, and the current
// drawdown figures.
func ComputeDrawdown(trades []types.Trade) *types.DrawdownAnalysis {
	series := cumulativeSeries(trades)
	if len(series) == 0 {
		return &types.DrawdownAnalysis{Periods: []types.DrawdownPeriod{}}
	}

	periods := make([]types.DrawdownPeriod, 0)

	// The high-water mark starts at zero: equity that never goes positive
	// has a peak of zero and reports percent figures as zero.
	peak := decimal.Zero
	peakDate := series[0].Date
	lastAtPeak := series[0].Date

	inDrawdown := false
	var current types.DrawdownPeriod

	for _, point := range series {
		if inDrawdown {
			if point.CumulativePnL.LessThan(current.TroughValue) {
				current.TroughValue = point.CumulativePnL
				current.EndDate = point.Date
			}
			if point.CumulativePnL.GreaterThanOrEqual(current.PeakValue) {
				recovery := point.Date
				current.RecoveryDate = &recovery
				periods = append(periods, finishPeriod(current))
				inDrawdown = false
			}
		}

		if point.CumulativePnL.GreaterThanOrEqual(peak) {
			peak = point.CumulativePnL
			peakDate = point.Date
			lastAtPeak = point.Date
		} else if !inDrawdown {
			current = types.DrawdownPeriod{
				StartDate:   peakDate,
				EndDate:     point.Date,
				PeakValue:   peak,
				TroughValue: point.CumulativePnL,
			}
			inDrawdown = true
		}
	}

	// A drawdown still open at the end of the series has no recovery date.
	if inDrawdown {
		periods = append(periods, finishPeriod(current))
	}

	analysis := &types.DrawdownAnalysis{Periods: periods}

	for _, p := range periods {
		if p.DrawdownAmount.GreaterThan(analysis.MaxDrawdown) {
			analysis.MaxDrawdown = p.DrawdownAmount
			analysis.MaxDrawdownPercent = p.DrawdownPercent
			analysis.MaxDrawdownDuration = p.DurationDays
		}
	}

	latest := series[len(series)-1]
	if latest.CumulativePnL.LessThan(peak) {
		analysis.CurrentDrawdown = peak.Sub(latest.CumulativePnL)
		analysis.CurrentDrawdownPercent = percentOfPeak(analysis.CurrentDrawdown, peak)
		analysis.CurrentDrawdownDuration = daysBetween(lastAtPeak, latest.Date)
	}

	return analysis
}

// cumulativeSeries groups trades by entry date ascending and accumulates
// realized P&L, one point per distinct trading day.
func cumulativeSeries(trades []types.Trade) []seriesPoint {
	if len(trades) == 0 {
		return nil
	}

	dailyPnL := make(map[time.Time]decimal.Decimal)
	for _, t := range trades {
		day := t.EntryDate()
		dailyPnL[day] = dailyPnL[day].Add(t.PnL())
	}

	dates := make([]time.Time, 0, len(dailyPnL))
	for day := range dailyPnL {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	series := make([]seriesPoint, 0, len(dates))
	var running decimal.Decimal
	for _, day := range dates {
		running = running.Add(dailyPnL[day])
		series = append(series, seriesPoint{Date: day, CumulativePnL: running})
	}

	return series
}

// finishPeriod derives the amount, percent, and duration fields.
func finishPeriod(p types.DrawdownPeriod) types.DrawdownPeriod {
	p.DrawdownAmount = p.PeakValue.Sub(p.TroughValue)
	p.DrawdownPercent = percentOfPeak(p.DrawdownAmount, p.PeakValue)
	p.DurationDays = daysBetween(p.StartDate, p.EndDate)
	return p
}

// percentOfPeak is amount / peak * 100, zero when the peak is not positive.
func percentOfPeak(amount, peak decimal.Decimal) decimal.Decimal {
	if !peak.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(peak).Round(ratioScale).Mul(oneHundred)
}

// daysBetween is the whole number of calendar days from a to b. Rounding
// keeps the count exact across DST transitions.
func daysBetween(a, b time.Time) int64 {
	return int64(math.Round(b.Sub(a).Hours() / 24))
}
