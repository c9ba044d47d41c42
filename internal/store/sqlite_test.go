package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traderview/journal-backend/internal/store"
	"github.com/traderview/journal-backend/pkg/types"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(zap.NewNop(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newAccount(t *testing.T, s *store.Store) int64 {
	t.Helper()
	id, err := s.CreateAccount(context.Background(), &types.TradingAccount{Name: "Test Account", Broker: "tradovate"})
	require.NoError(t, err)
	return id
}

func sampleTrade(accountID int64, symbol string, pnl string, entry time.Time) *types.Trade {
	realized := decimal.RequireFromString(pnl)
	exitPrice := decimal.RequireFromString("101.25")
	exitValue := decimal.RequireFromString("1012.5")
	exit := entry.Add(45 * time.Minute)
	return &types.Trade{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		Symbol:      symbol,
		Side:        types.TradeSideLong,
		Quantity:    decimal.RequireFromString("10"),
		EntryPrice:  decimal.RequireFromString("100"),
		ExitPrice:   &exitPrice,
		EntryValue:  decimal.RequireFromString("1000"),
		ExitValue:   &exitValue,
		RealizedPnL: &realized,
		Commission:  decimal.RequireFromString("2.5"),
		Fees:        decimal.RequireFromString("1.1"),
		EntryTime:   entry,
		ExitTime:    &exit,
		Status:      types.TradeStatusClosed,
	}
}

func TestCreateAndGetAccount(t *testing.T) {
	s := newTestStore(t)

	id := newAccount(t, s)
	require.Greater(t, id, int64(0))

	account, err := s.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Test Account", account.Name)
	assert.Equal(t, "tradovate", account.Broker)
	assert.False(t, account.CreatedAt.IsZero())
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAccount(context.Background(), 9999)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestSaveAndListTradesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	accountID := newAccount(t, s)

	entry := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	original := sampleTrade(accountID, "ES", "123.45", entry)
	require.NoError(t, s.SaveTrade(context.Background(), original))

	trades, err := s.ListTrades(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	got := trades[0]
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, accountID, got.AccountID)
	assert.Equal(t, "ES", got.Symbol)
	assert.Equal(t, types.TradeSideLong, got.Side)
	assert.Equal(t, types.TradeStatusClosed, got.Status)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("10")))
	assert.True(t, got.EntryPrice.Equal(decimal.RequireFromString("100")))
	assert.True(t, got.EntryValue.Equal(decimal.RequireFromString("1000")))
	assert.True(t, got.Commission.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, got.Fees.Equal(decimal.RequireFromString("1.1")))
	require.NotNil(t, got.RealizedPnL)
	assert.True(t, got.RealizedPnL.Equal(decimal.RequireFromString("123.45")))
	require.NotNil(t, got.ExitPrice)
	assert.True(t, got.ExitPrice.Equal(decimal.RequireFromString("101.25")))
	require.NotNil(t, got.ExitTime)
	assert.True(t, got.ExitTime.Equal(entry.Add(45*time.Minute)))
	assert.True(t, got.EntryTime.Equal(entry))
}

func TestSaveTradeWithNilOptionals(t *testing.T) {
	s := newTestStore(t)
	accountID := newAccount(t, s)

	entry := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	open := sampleTrade(accountID, "NQ", "0", entry)
	open.Status = types.TradeStatusOpen
	open.ExitPrice = nil
	open.ExitValue = nil
	open.RealizedPnL = nil
	open.ExitTime = nil
	require.NoError(t, s.SaveTrade(context.Background(), open))

	trades, err := s.ListTrades(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	got := trades[0]
	assert.Nil(t, got.ExitPrice)
	assert.Nil(t, got.ExitValue)
	assert.Nil(t, got.RealizedPnL)
	assert.Nil(t, got.ExitTime)
	assert.Equal(t, types.TradeStatusOpen, got.Status)
}

func TestListClosedTradesExcludesOpen(t *testing.T) {
	s := newTestStore(t)
	accountID := newAccount(t, s)

	entry := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	closed := sampleTrade(accountID, "ES", "50", entry)
	open := sampleTrade(accountID, "ES", "0", entry.Add(time.Hour))
	open.Status = types.TradeStatusOpen
	open.RealizedPnL = nil
	open.ExitTime = nil

	require.NoError(t, s.SaveTrade(context.Background(), closed))
	require.NoError(t, s.SaveTrade(context.Background(), open))

	trades, err := s.ListClosedTrades(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, closed.ID, trades[0].ID)
}

func TestListTradesScopedToAccount(t *testing.T) {
	s := newTestStore(t)
	first := newAccount(t, s)
	second := newAccount(t, s)

	entry := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.SaveTrade(context.Background(), sampleTrade(first, "ES", "10", entry)))
	require.NoError(t, s.SaveTrade(context.Background(), sampleTrade(second, "NQ", "20", entry)))

	trades, err := s.ListTrades(context.Background(), first)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "ES", trades[0].Symbol)
}

func TestDeleteTrades(t *testing.T) {
	s := newTestStore(t)
	accountID := newAccount(t, s)

	entry := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.SaveTrade(context.Background(), sampleTrade(accountID, "ES", "10", entry)))
	require.NoError(t, s.SaveTrade(context.Background(), sampleTrade(accountID, "ES", "20", entry.Add(time.Hour))))

	deleted, err := s.DeleteTrades(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	trades, err := s.ListTrades(context.Background(), accountID)
	require.NoError(t, err)
	assert.Empty(t, trades)
}
