package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/traderview/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// TradeStore supplies an account's trade records. Ordering is not
// guaranteed; the engines sort internally wherever order matters.
type TradeStore interface {
	ListTrades(ctx context.Context, accountID int64) ([]types.Trade, error)
	ListClosedTrades(ctx context.Context, accountID int64) ([]types.Trade, error)
}

// Service computes analytics views over a trade store. Every call reads
// an immutable snapshot and performs a pure in-memory transformation, so
// concurrent calls for different accounts need no coordination.
type Service struct {
	logger *zap.Logger
	store  TradeStore
	stats  *StatsCalculator
}

// NewService creates an analytics service.
func NewService(logger *zap.Logger, store TradeStore) *Service {
	return &Service{
		logger: logger,
		store:  store,
		stats:  NewStatsCalculator(logger),
	}
}

// GetTradeStats returns the full metric bundle for an account's filtered
// closed trades.
func (s *Service) GetTradeStats(ctx context.Context, accountID int64, filter *types.StatsFilter) (*types.TradeStats, error) {
	trades, err := s.filteredTrades(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}
	return s.stats.Compute(trades), nil
}

// GetWinLossDays returns the winning-day and losing-day aggregates.
func (s *Service) GetWinLossDays(ctx context.Context, accountID int64, filter *types.StatsFilter) (*types.WinLossDays, error) {
	trades, err := s.filteredTrades(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}

	dailyPnL, _ := AggregateByDay(trades)
	return &types.WinLossDays{
		WinningDays: WinLossDayStats(dailyPnL, trades, true),
		LosingDays:  WinLossDayStats(dailyPnL, trades, false),
	}, nil
}

// GetDrawdownAnalysis returns the drawdown-series analysis.
func (s *Service) GetDrawdownAnalysis(ctx context.Context, accountID int64, filter *types.StatsFilter) (*types.DrawdownAnalysis, error) {
	trades, err := s.filteredTrades(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}
	return ComputeDrawdown(trades), nil
}

// GetIntradayAnalysis returns the per-day breakdown for a single date.
// The result has zero rows when the account has no trades on that date.
func (s *Service) GetIntradayAnalysis(ctx context.Context, accountID int64, date time.Time) ([]types.IntradayStats, error) {
	trades, err := s.store.ListTrades(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades for account %d: %w", accountID, err)
	}
	return IntradayAnalysis(trades, date), nil
}

// GetDashboardSummary returns the account's headline figures over a period.
func (s *Service) GetDashboardSummary(ctx context.Context, accountID int64, start, end time.Time) (*types.DashboardSummary, error) {
	trades, err := s.store.ListTrades(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades for account %d: %w", accountID, err)
	}

	summary := &types.DashboardSummary{
		PeriodStart: start,
		PeriodEnd:   end,
	}

	var closedCount int64
	for _, t := range trades {
		if t.EntryTime.Before(start) || t.EntryTime.After(end) {
			continue
		}
		summary.TotalTrades++
		summary.TotalCommission = summary.TotalCommission.Add(t.Commission)
		summary.TotalFees = summary.TotalFees.Add(t.Fees)

		if t.Status == types.TradeStatusOpen {
			summary.OpenTrades++
			continue
		}
		if t.Status != types.TradeStatusClosed {
			continue
		}
		closedCount++
		pnl := t.PnL()
		summary.TotalRealizedPnL = summary.TotalRealizedPnL.Add(pnl)
		if pnl.IsPositive() {
			summary.WinningTrades++
		} else if pnl.IsNegative() {
			summary.LosingTrades++
		}
	}
	summary.ClosedTrades = closedCount

	if closedCount > 0 {
		summary.WinRate = decimal.NewFromInt(summary.WinningTrades).
			Div(decimal.NewFromInt(closedCount)).
			Round(ratioScale).
			Mul(oneHundred)
	}

	return summary, nil
}

// GetSymbolPerformance aggregates an account's trades per ticker over a
// period, sorted by total realized P&L descending.
func (s *Service) GetSymbolPerformance(ctx context.Context, accountID int64, start, end time.Time) ([]types.SymbolPerformance, error) {
	trades, err := s.store.ListTrades(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades for account %d: %w", accountID, err)
	}

	bySymbol := make(map[string][]types.Trade)
	for _, t := range trades {
		if t.EntryTime.Before(start) || t.EntryTime.After(end) {
			continue
		}
		bySymbol[t.Symbol] = append(bySymbol[t.Symbol], t)
	}

	results := make([]types.SymbolPerformance, 0, len(bySymbol))
	for symbol, symbolTrades := range bySymbol {
		perf := types.SymbolPerformance{
			Symbol:      symbol,
			TotalTrades: int64(len(symbolTrades)),
		}

		var closedCount int64
		for _, t := range symbolTrades {
			perf.TotalVolume = perf.TotalVolume.Add(t.EntryValue)
			if t.Status != types.TradeStatusClosed {
				continue
			}
			closedCount++
			pnl := t.PnL()
			perf.TotalRealizedPnL = perf.TotalRealizedPnL.Add(pnl)
			if pnl.IsPositive() {
				perf.WinningTrades++
			} else if pnl.IsNegative() {
				perf.LosingTrades++
			}
		}

		if closedCount > 0 {
			perf.WinRate = decimal.NewFromInt(perf.WinningTrades).
				Div(decimal.NewFromInt(closedCount)).
				Round(ratioScale).
				Mul(oneHundred)
		}
		if perf.TotalTrades > 0 {
			perf.AverageTradeSize = perf.TotalVolume.
				Div(decimal.NewFromInt(perf.TotalTrades)).
				Round(currencyScale)
		}

		results = append(results, perf)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].TotalRealizedPnL.GreaterThan(results[j].TotalRealizedPnL)
	})

	return results, nil
}

// filteredTrades fetches the account's closed trades and applies the
// filter stage. Narrowing to closed rows in the store keeps open
// positions out of the engines without scanning them here.
func (s *Service) filteredTrades(ctx context.Context, accountID int64, filter *types.StatsFilter) ([]types.Trade, error) {
	trades, err := s.store.ListClosedTrades(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed trades for account %d: %w", accountID, err)
	}
	return FilterTrades(trades, filter), nil
}
