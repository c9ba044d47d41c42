// Package store persists journal accounts and trade records in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"
	"github.com/traderview/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// ErrAccountNotFound is returned when an account ID does not exist.
var ErrAccountNotFound = fmt.Errorf("trading account not found")

// Store is the SQLite-backed trade store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore opens (or creates) the journal database and initializes the
// schema. The parent directory is created when missing.
func NewStore(logger *zap.Logger, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database at %s: %w", dbPath, err)
	}

	// SQLite serializes writes internally; a single connection avoids
	// SQLITE_BUSY churn in the Go driver.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, logger: logger}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Trade store opened", zap.String("path", dbPath))
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		broker TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		account_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity TEXT NOT NULL,
		entry_price TEXT NOT NULL,
		exit_price TEXT,
		entry_value TEXT NOT NULL,
		exit_value TEXT,
		realized_pnl TEXT,
		commission TEXT NOT NULL,
		fees TEXT NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_account_entry_time ON trades (account_id, entry_time);
	CREATE INDEX IF NOT EXISTS idx_trades_account_status ON trades (account_id, status);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateAccount inserts a trading account and returns its assigned ID.
func (s *Store) CreateAccount(ctx context.Context, account *types.TradingAccount) (int64, error) {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO accounts (name, broker, created_at) VALUES (?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, account.Name, account.Broker, account.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert account %q: %w", account.Name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get account id: %w", err)
	}
	account.ID = id
	return id, nil
}

// GetAccount fetches one trading account.
func (s *Store) GetAccount(ctx context.Context, id int64) (*types.TradingAccount, error) {
	const query = `SELECT id, name, COALESCE(broker, ''), created_at FROM accounts WHERE id = ?`
	var account types.TradingAccount
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&account.ID, &account.Name, &account.Broker, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return &account, nil
}

// SaveTrade inserts a trade record.
func (s *Store) SaveTrade(ctx context.Context, trade *types.Trade) error {
	now := time.Now().UTC()
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = now
	}
	trade.UpdatedAt = now

	const query = `
	INSERT INTO trades (
		id, account_id, symbol, side, quantity, entry_price, exit_price,
		entry_value, exit_value, realized_pnl, commission, fees,
		entry_time, exit_time, status, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		trade.ID,
		trade.AccountID,
		trade.Symbol,
		string(trade.Side),
		trade.Quantity.String(),
		trade.EntryPrice.String(),
		decimalPtrString(trade.ExitPrice),
		trade.EntryValue.String(),
		decimalPtrString(trade.ExitValue),
		decimalPtrString(trade.RealizedPnL),
		trade.Commission.String(),
		trade.Fees.String(),
		trade.EntryTime,
		timePtr(trade.ExitTime),
		string(trade.Status),
		trade.CreatedAt,
		trade.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade %s: %w", trade.ID, err)
	}
	return nil
}

// ListTrades returns every trade of an account, unordered.
func (s *Store) ListTrades(ctx context.Context, accountID int64) ([]types.Trade, error) {
	const query = `
	SELECT id, account_id, symbol, side, quantity, entry_price, exit_price,
	       entry_value, exit_value, realized_pnl, commission, fees,
	       entry_time, exit_time, status, created_at, updated_at
	FROM trades WHERE account_id = ?`
	return s.queryTrades(ctx, query, accountID)
}

// ListClosedTrades returns the account's closed trades, unordered.
func (s *Store) ListClosedTrades(ctx context.Context, accountID int64) ([]types.Trade, error) {
	const query = `
	SELECT id, account_id, symbol, side, quantity, entry_price, exit_price,
	       entry_value, exit_value, realized_pnl, commission, fees,
	       entry_time, exit_time, status, created_at, updated_at
	FROM trades WHERE account_id = ? AND status = 'closed'`
	return s.queryTrades(ctx, query, accountID)
}

// DeleteTrades removes all trades of an account.
func (s *Store) DeleteTrades(ctx context.Context, accountID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM trades WHERE account_id = ?`, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete trades for account %d: %w", accountID, err)
	}
	return result.RowsAffected()
}

func (s *Store) queryTrades(ctx context.Context, query string, args ...any) ([]types.Trade, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}
	return trades, nil
}

func scanTrade(rows *sql.Rows) (types.Trade, error) {
	var (
		trade                            types.Trade
		side, status                     string
		quantity, entryPrice, entryValue string
		commission, fees                 string
		exitPrice, exitValue, pnl        sql.NullString
		exitTime                         sql.NullTime
	)

	err := rows.Scan(
		&trade.ID, &trade.AccountID, &trade.Symbol, &side,
		&quantity, &entryPrice, &exitPrice,
		&entryValue, &exitValue, &pnl,
		&commission, &fees,
		&trade.EntryTime, &exitTime, &status,
		&trade.CreatedAt, &trade.UpdatedAt,
	)
	if err != nil {
		return trade, fmt.Errorf("failed to scan trade: %w", err)
	}

	trade.Side = types.TradeSide(side)
	trade.Status = types.TradeStatus(status)

	if trade.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return trade, fmt.Errorf("invalid quantity for trade %s: %w", trade.ID, err)
	}
	if trade.EntryPrice, err = decimal.NewFromString(entryPrice); err != nil {
		return trade, fmt.Errorf("invalid entry price for trade %s: %w", trade.ID, err)
	}
	if trade.EntryValue, err = decimal.NewFromString(entryValue); err != nil {
		return trade, fmt.Errorf("invalid entry value for trade %s: %w", trade.ID, err)
	}
	if trade.Commission, err = decimal.NewFromString(commission); err != nil {
		return trade, fmt.Errorf("invalid commission for trade %s: %w", trade.ID, err)
	}
	if trade.Fees, err = decimal.NewFromString(fees); err != nil {
		return trade, fmt.Errorf("invalid fees for trade %s: %w", trade.ID, err)
	}
	if trade.ExitPrice, err = nullDecimal(exitPrice); err != nil {
		return trade, fmt.Errorf("invalid exit price for trade %s: %w", trade.ID, err)
	}
	if trade.ExitValue, err = nullDecimal(exitValue); err != nil {
		return trade, fmt.Errorf("invalid exit value for trade %s: %w", trade.ID, err)
	}
	if trade.RealizedPnL, err = nullDecimal(pnl); err != nil {
		return trade, fmt.Errorf("invalid realized pnl for trade %s: %w", trade.ID, err)
	}
	if exitTime.Valid {
		t := exitTime.Time
		trade.ExitTime = &t
	}

	return trade, nil
}

func decimalPtrString(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
