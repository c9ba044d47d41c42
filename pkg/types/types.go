// Package types provides shared type definitions for the journal backend.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus represents the lifecycle state of a trade
type TradeStatus string

const (
	TradeStatusOpen            TradeStatus = "open"
	TradeStatusClosed          TradeStatus = "closed"
	TradeStatusPartiallyClosed TradeStatus = "partially_closed"
)

// TradeSide represents the direction of a trade
type TradeSide string

const (
	TradeSideLong  TradeSide = "long"
	TradeSideShort TradeSide = "short"
)

// TradingAccount represents a broker account whose trades are journaled
type TradingAccount struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Broker    string    `json:"broker,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Trade represents a round-trip trade record.
// A closed trade always carries RealizedPnL and ExitTime; the analytics
// engine tolerates a nil RealizedPnL on a closed trade by treating it as zero.
type Trade struct {
	ID          string           `json:"id"`
	AccountID   int64            `json:"accountId"`
	Symbol      string           `json:"symbol"`
	Side        TradeSide        `json:"side"`
	Quantity    decimal.Decimal  `json:"quantity"`
	EntryPrice  decimal.Decimal  `json:"entryPrice"`
	ExitPrice   *decimal.Decimal `json:"exitPrice,omitempty"`
	EntryValue  decimal.Decimal  `json:"entryValue"`
	ExitValue   *decimal.Decimal `json:"exitValue,omitempty"`
	RealizedPnL *decimal.Decimal `json:"realizedPnl,omitempty"`
	Commission  decimal.Decimal  `json:"commission"`
	Fees        decimal.Decimal  `json:"fees"`
	EntryTime   time.Time        `json:"entryTime"`
	ExitTime    *time.Time       `json:"exitTime,omitempty"`
	Status      TradeStatus      `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// PnL returns the realized P&L of the trade, zero when not yet realized.
func (t *Trade) PnL() decimal.Decimal {
	if t.RealizedPnL == nil {
		return decimal.Zero
	}
	return *t.RealizedPnL
}

// EntryDate returns the calendar date of the trade entry.
func (t *Trade) EntryDate() time.Time {
	y, m, d := t.EntryTime.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.EntryTime.Location())
}

// StatsFilter narrows an account's trade set. A nil bound is unconstrained.
// Date bounds are inclusive on both ends; callers wanting a whole end day
// add one day to the bound before filtering.
type StatsFilter struct {
	StartDate   *time.Time       `json:"startDate,omitempty"`
	EndDate     *time.Time       `json:"endDate,omitempty"`
	Symbols     []string         `json:"symbols,omitempty"`
	MinPnL      *decimal.Decimal `json:"minPnl,omitempty"`
	MaxPnL      *decimal.Decimal `json:"maxPnl,omitempty"`
	MinQuantity *decimal.Decimal `json:"minQuantity,omitempty"`
	MaxQuantity *decimal.Decimal `json:"maxQuantity,omitempty"`
}

// TradeStats is the full performance-metric bundle computed over a filtered
// set of closed trades. All monetary fields are rounded to 2 decimal places,
// per-share and ratio fields to 4, hold times are whole minutes.
type TradeStats struct {
	TotalGainLoss           decimal.Decimal `json:"totalGainLoss"`
	LargestGain             decimal.Decimal `json:"largestGain"`
	LargestLoss             decimal.Decimal `json:"largestLoss"`
	AverageDailyGainLoss    decimal.Decimal `json:"averageDailyGainLoss"`
	AverageDailyVolume      decimal.Decimal `json:"averageDailyVolume"`
	AveragePerShareGainLoss decimal.Decimal `json:"averagePerShareGainLoss"`
	AverageTradeGainLoss    decimal.Decimal `json:"averageTradeGainLoss"`
	AverageWinningTrade     decimal.Decimal `json:"averageWinningTrade"`
	AverageLosingTrade      decimal.Decimal `json:"averageLosingTrade"`

	TotalNumberOfTrades   int64 `json:"totalNumberOfTrades"`
	NumberOfWinningTrades int64 `json:"numberOfWinningTrades"`
	NumberOfLosingTrades  int64 `json:"numberOfLosingTrades"`
	NumberOfScratchTrades int64 `json:"numberOfScratchTrades"`

	// Hold times are mean minutes between entry and exit per outcome subset.
	AverageHoldTimeWinning   int64 `json:"averageHoldTimeWinning"`
	AverageHoldTimeLosing    int64 `json:"averageHoldTimeLosingTrades"`
	AverageHoldTimeScratches int64 `json:"averageHoldTimeScratches"`

	MaxConsecutiveWins   int64 `json:"maxConsecutiveWins"`
	MaxConsecutiveLosses int64 `json:"maxConsecutiveLosses"`

	TradePnLStandardDeviation decimal.Decimal `json:"tradePnlStandardDeviation"`
	SystemQualityNumber       decimal.Decimal `json:"systemQualityNumber"`
	ProbabilityOfRandomChance decimal.Decimal `json:"probabilityOfRandomChance"`
	KellyPercentage           decimal.Decimal `json:"kellyPercentage"`
	KRatio                    decimal.Decimal `json:"kRatio"`
	ProfitFactor              decimal.Decimal `json:"profitFactor"`

	TotalCommissions decimal.Decimal `json:"totalCommissions"`
	TotalFees        decimal.Decimal `json:"totalFees"`

	// MAE/MFE need intraday excursion data the store does not carry;
	// both are always zero.
	AveragePositionMAE decimal.Decimal `json:"averagePositionMae"`
	AveragePositionMFE decimal.Decimal `json:"averagePositionMfe"`
}

// DayStats aggregates trades over either winning or losing days.
type DayStats struct {
	TotalGainLoss           decimal.Decimal `json:"totalGainLoss"`
	AverageDailyGainLoss    decimal.Decimal `json:"averageDailyGainLoss"`
	AverageDailyVolume      decimal.Decimal `json:"averageDailyVolume"`
	AveragePerShareGainLoss decimal.Decimal `json:"averagePerShareGainLoss"`
	AverageTradeGainLoss    decimal.Decimal `json:"averageTradeGainLoss"`
	NumberOfDays            int64           `json:"numberOfDays"`
	TotalTrades             int64           `json:"totalTrades"`
}

// WinLossDays pairs the winning-day and losing-day aggregates.
type WinLossDays struct {
	WinningDays DayStats `json:"winningDays"`
	LosingDays  DayStats `json:"losingDays"`
}

// DrawdownPeriod describes one peak-to-trough decline in cumulative P&L.
// RecoveryDate is nil while the drawdown is still open.
type DrawdownPeriod struct {
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	PeakValue       decimal.Decimal `json:"peakValue"`
	TroughValue     decimal.Decimal `json:"troughValue"`
	DrawdownAmount  decimal.Decimal `json:"drawdownAmount"`
	DrawdownPercent decimal.Decimal `json:"drawdownPercent"`
	DurationDays    int64           `json:"durationDays"`
	RecoveryDate    *time.Time      `json:"recoveryDate,omitempty"`
}

// DrawdownAnalysis is the result of a drawdown-series walk.
type DrawdownAnalysis struct {
	MaxDrawdown             decimal.Decimal  `json:"maxDrawdown"`
	MaxDrawdownPercent      decimal.Decimal  `json:"maxDrawdownPercent"`
	MaxDrawdownDuration     int64            `json:"maxDrawdownDuration"`
	CurrentDrawdown         decimal.Decimal  `json:"currentDrawdown"`
	CurrentDrawdownPercent  decimal.Decimal  `json:"currentDrawdownPercent"`
	CurrentDrawdownDuration int64            `json:"currentDrawdownDuration"`
	Periods                 []DrawdownPeriod `json:"drawdownPeriods"`
}

// IntradayStats summarizes one trading day.
type IntradayStats struct {
	Date             time.Time       `json:"date"`
	TotalTrades      int64           `json:"totalTrades"`
	WinningTrades    int64           `json:"winningTrades"`
	LosingTrades     int64           `json:"losingTrades"`
	ScratchTrades    int64           `json:"scratchTrades"`
	TotalPnL         decimal.Decimal `json:"totalPnl"`
	GrossPnL         decimal.Decimal `json:"grossPnl"`
	Commissions      decimal.Decimal `json:"commissions"`
	Fees             decimal.Decimal `json:"fees"`
	LargestWin       decimal.Decimal `json:"largestWin"`
	LargestLoss      decimal.Decimal `json:"largestLoss"`
	FirstTradeTime   *time.Time      `json:"firstTradeTime,omitempty"`
	LastTradeTime    *time.Time      `json:"lastTradeTime,omitempty"`
	TradingDuration  int64           `json:"tradingDuration"` // minutes
	AverageTradeSize decimal.Decimal `json:"averageTradeSize"`
	TotalVolume      decimal.Decimal `json:"totalVolume"`
}

// DashboardSummary is the headline view of an account over a period.
type DashboardSummary struct {
	TotalTrades        int64           `json:"totalTrades"`
	OpenTrades         int64           `json:"openTrades"`
	ClosedTrades       int64           `json:"closedTrades"`
	TotalRealizedPnL   decimal.Decimal `json:"totalRealizedPnl"`
	WinningTrades      int64           `json:"winningTrades"`
	LosingTrades       int64           `json:"losingTrades"`
	WinRate            decimal.Decimal `json:"winRate"`
	TotalCommission    decimal.Decimal `json:"totalCommission"`
	TotalFees          decimal.Decimal `json:"totalFees"`
	PeriodStart        time.Time       `json:"periodStart"`
	PeriodEnd          time.Time       `json:"periodEnd"`
}

// SymbolPerformance aggregates an account's trades per ticker.
type SymbolPerformance struct {
	Symbol           string          `json:"symbol"`
	TotalTrades      int64           `json:"totalTrades"`
	WinningTrades    int64           `json:"winningTrades"`
	LosingTrades     int64           `json:"losingTrades"`
	WinRate          decimal.Decimal `json:"winRate"`
	TotalRealizedPnL decimal.Decimal `json:"totalRealizedPnl"`
	TotalVolume      decimal.Decimal `json:"totalVolume"`
	AverageTradeSize decimal.Decimal `json:"averageTradeSize"`
}
