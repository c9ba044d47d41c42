// Package analytics computes trading-journal performance analytics.
package analytics

import (
	"github.com/traderview/journal-backend/pkg/types"
)

// FilterTrades narrows a trade set to closed trades matching every
// criterion that is present on the filter. A nil filter (or a filter
// with no bounds set) keeps all closed trades. An empty result is valid.
func FilterTrades(trades []types.Trade, filter *types.StatsFilter) []types.Trade {
	filtered := make([]types.Trade, 0, len(trades))

	var symbols map[string]bool
	if filter != nil && len(filter.Symbols) > 0 {
		symbols = make(map[string]bool, len(filter.Symbols))
		for _, s := range filter.Symbols {
			symbols[s] = true
		}
	}

	for _, t := range trades {
		if t.Status != types.TradeStatusClosed {
			continue
		}
		if filter != nil && !matchesFilter(&t, filter, symbols) {
			continue
		}
		filtered = append(filtered, t)
	}

	return filtered
}

// matchesFilter applies the conjunctive criteria. Date bounds are
// inclusive on both ends.
func matchesFilter(t *types.Trade, filter *types.StatsFilter, symbols map[string]bool) bool {
	if filter.StartDate != nil && t.EntryTime.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && t.EntryTime.After(*filter.EndDate) {
		return false
	}
	if symbols != nil && !symbols[t.Symbol] {
		return false
	}
	if filter.MinPnL != nil && t.PnL().LessThan(*filter.MinPnL) {
		return false
	}
	if filter.MaxPnL != nil && t.PnL().GreaterThan(*filter.MaxPnL) {
		return false
	}
	if filter.MinQuantity != nil && t.Quantity.LessThan(*filter.MinQuantity) {
		return false
	}
	if filter.MaxQuantity != nil && t.Quantity.GreaterThan(*filter.MaxQuantity) {
		return false
	}
	return true
}
