// Package importer ingests normalized broker trade feeds into the store.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/traderview/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// Record is one normalized broker feed row. Times are RFC 3339; a row
// without exit fields imports as an open trade.
type Record struct {
	Symbol     string           `csv:"symbol" json:"symbol"`
	Side       string           `csv:"side" json:"side,omitempty"`
	Quantity   decimal.Decimal  `csv:"quantity" json:"quantity"`
	EntryPrice decimal.Decimal  `csv:"entry_price" json:"entryPrice"`
	ExitPrice  *decimal.Decimal `csv:"exit_price" json:"exitPrice,omitempty"`
	EntryTime  time.Time        `csv:"entry_time" json:"entryTime"`
	ExitTime   *time.Time       `csv:"exit_time" json:"exitTime,omitempty"`
	Commission decimal.Decimal  `csv:"commission" json:"commission"`
	Fees       decimal.Decimal  `csv:"fees" json:"fees"`
}

// Result reports the outcome of an import batch. Row errors do not abort
// the batch; every valid row is persisted.
type Result struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	ImportedTrades int      `json:"importedTrades"`
	Errors         []string `json:"errors"`
}

// TradeWriter is the store surface the importer needs.
type TradeWriter interface {
	GetAccount(ctx context.Context, id int64) (*types.TradingAccount, error)
	SaveTrade(ctx context.Context, trade *types.Trade) error
}

// Importer converts normalized feed records into trade rows.
type Importer struct {
	logger *zap.Logger
	store  TradeWriter
}

// New creates an importer.
func New(logger *zap.Logger, store TradeWriter) *Importer {
	return &Importer{logger: logger, store: store}
}

// ImportCSV parses a CSV feed and imports its records.
func (i *Importer) ImportCSV(ctx context.Context, accountID int64, r io.Reader) (*Result, error) {
	var records []Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("failed to parse CSV feed: %w", err)
	}
	return i.ImportRecords(ctx, accountID, records)
}

// ImportRecords imports a batch of normalized records for an account.
func (i *Importer) ImportRecords(ctx context.Context, accountID int64, records []Record) (*Result, error) {
	if _, err := i.store.GetAccount(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to resolve account %d: %w", accountID, err)
	}

	result := &Result{Errors: []string{}}

	for idx, record := range records {
		trade, err := buildTrade(accountID, record)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", idx+1, err))
			continue
		}
		if err := i.store.SaveTrade(ctx, trade); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", idx+1, err))
			continue
		}
		result.ImportedTrades++
	}

	result.Success = len(result.Errors) == 0
	if result.Success {
		result.Message = "import completed"
	} else {
		result.Message = "import completed with errors"
	}

	i.logger.Info("Trade import finished",
		zap.Int64("accountId", accountID),
		zap.Int("imported", result.ImportedTrades),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// buildTrade validates one record and derives values and realized P&L.
func buildTrade(accountID int64, r Record) (*types.Trade, error) {
	if strings.TrimSpace(r.Symbol) == "" {
		return nil, fmt.Errorf("missing symbol")
	}
	if !r.Quantity.IsPositive() {
		return nil, fmt.Errorf("quantity must be positive, got %s", r.Quantity)
	}
	if !r.EntryPrice.IsPositive() {
		return nil, fmt.Errorf("entry price must be positive, got %s", r.EntryPrice)
	}
	if r.EntryTime.IsZero() {
		return nil, fmt.Errorf("missing entry time")
	}
	if (r.ExitPrice == nil) != (r.ExitTime == nil) {
		return nil, fmt.Errorf("exit price and exit time must both be present or both absent")
	}

	side := types.TradeSideLong
	if strings.EqualFold(r.Side, string(types.TradeSideShort)) || strings.EqualFold(r.Side, "sell") {
		side = types.TradeSideShort
	}

	symbol := strings.ToUpper(strings.TrimSpace(r.Symbol))
	multiplier := ContractMultiplier(symbol)

	trade := &types.Trade{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Symbol:     symbol,
		Side:       side,
		Quantity:   r.Quantity,
		EntryPrice: r.EntryPrice,
		EntryValue: r.Quantity.Mul(r.EntryPrice).Mul(multiplier).Round(2),
		Commission: r.Commission,
		Fees:       r.Fees,
		EntryTime:  r.EntryTime,
		Status:     types.TradeStatusOpen,
	}

	if r.ExitPrice != nil {
		if r.ExitTime.Before(r.EntryTime) {
			return nil, fmt.Errorf("exit time precedes entry time")
		}

		exitValue := r.Quantity.Mul(*r.ExitPrice).Mul(multiplier).Round(2)
		pointMove := r.ExitPrice.Sub(r.EntryPrice)
		if side == types.TradeSideShort {
			pointMove = r.EntryPrice.Sub(*r.ExitPrice)
		}
		pnl := pointMove.Mul(r.Quantity).Mul(multiplier).
			Sub(r.Commission).Sub(r.Fees).Round(2)

		trade.ExitPrice = r.ExitPrice
		trade.ExitValue = &exitValue
		trade.RealizedPnL = &pnl
		trade.ExitTime = r.ExitTime
		trade.Status = types.TradeStatusClosed
	}

	return trade, nil
}

// multiplier table for common futures contracts; micro contracts are
// listed before their full-size prefixes.
var contractMultipliers = []struct {
	prefix     string
	multiplier decimal.Decimal
}{
	{"MES", decimal.NewFromInt(5)},
	{"MNQ", decimal.NewFromInt(2)},
	{"MYM", decimal.NewFromFloat(0.5)},
	{"ES", decimal.NewFromInt(50)},
	{"NQ", decimal.NewFromInt(20)},
	{"YM", decimal.NewFromInt(5)},
}

// ContractMultiplier returns the dollars-per-point multiplier for a
// symbol, defaulting to one for equities and unknown contracts.
func ContractMultiplier(symbol string) decimal.Decimal {
	for _, entry := range contractMultipliers {
		if strings.HasPrefix(symbol, entry.prefix) {
			return entry.multiplier
		}
	}
	return decimal.NewFromInt(1)
}
