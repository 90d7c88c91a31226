package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TrendSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

type tickRow struct {
	Timestamp      int64   `db:"timestamp"`
	Symbol         string  `db:"symbol"`
	Price          float64 `db:"price"`
	InUptrend      bool    `db:"in_uptrend"`
	Signal         string  `db:"signal"`
	Position       string  `db:"position"`
	PortfolioValue float64 `db:"portfolio_value"`
	Outcome        string  `db:"outcome"`
	Note           string  `db:"note"`
}

type tradeRow struct {
	ID                    string  `db:"id"`
	Timestamp             int64   `db:"timestamp"`
	Action                string  `db:"action"`
	Price                 float64 `db:"price"`
	AssetAmount           float64 `db:"asset_amount"`
	CashFlow              float64 `db:"cash_flow"`
	ResultingCashBalance  float64 `db:"resulting_cash_balance"`
	ResultingAssetBalance float64 `db:"resulting_asset_balance"`
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; keeps pragmas on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT,
			price           REAL,
			in_uptrend      INTEGER,
			signal          TEXT,
			position        TEXT,
			portfolio_value REAL,
			outcome         TEXT,
			note            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticks_ts ON ticks(timestamp)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id                      TEXT PRIMARY KEY,
			timestamp               INTEGER NOT NULL,
			action                  TEXT NOT NULL,
			price                   REAL,
			asset_amount            REAL,
			cash_flow               REAL,
			resulting_cash_balance  REAL,
			resulting_asset_balance REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTick(evt *TickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	row := tickRow{
		Timestamp:      ts.Unix(),
		Symbol:         evt.Symbol,
		Price:          evt.Price,
		InUptrend:      evt.InUptrend,
		Signal:         string(evt.Signal),
		Position:       string(evt.Position),
		PortfolioValue: evt.PortfolioValue,
		Outcome:        evt.Outcome,
		Note:           evt.Note,
	}
	_, err := r.db.NamedExec(`INSERT INTO ticks
		(timestamp, symbol, price, in_uptrend, signal, position, portfolio_value, outcome, note)
		VALUES (:timestamp, :symbol, :price, :in_uptrend, :signal, :position, :portfolio_value, :outcome, :note)`,
		row)
	return err
}

func (r *SQLiteRecorder) RecordTrade(trade *model.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := tradeRow{
		ID:                    trade.ID,
		Timestamp:             trade.Timestamp.UnixNano(),
		Action:                string(trade.Action),
		Price:                 trade.Price,
		AssetAmount:           trade.AssetAmount,
		CashFlow:              trade.CashFlow,
		ResultingCashBalance:  trade.ResultingCashBalance,
		ResultingAssetBalance: trade.ResultingAssetBalance,
	}
	_, err := r.db.NamedExec(`INSERT OR IGNORE INTO trades
		(id, timestamp, action, price, asset_amount, cash_flow, resulting_cash_balance, resulting_asset_balance)
		VALUES (:id, :timestamp, :action, :price, :asset_amount, :cash_flow, :resulting_cash_balance, :resulting_asset_balance)`,
		row)
	return err
}

// RecentTrades returns up to limit trades, oldest first.
func (r *SQLiteRecorder) RecentTrades(limit int) ([]model.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []tradeRow
	err := r.db.Select(&rows, `SELECT id, timestamp, action, price, asset_amount, cash_flow,
			resulting_cash_balance, resulting_asset_balance
		FROM trades ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select trades: %w", err)
	}

	trades := make([]model.Trade, len(rows))
	for i, row := range rows {
		trades[len(rows)-1-i] = model.Trade{
			ID:                    row.ID,
			Timestamp:             time.Unix(0, row.Timestamp).UTC(),
			Action:                model.Action(row.Action),
			Price:                 row.Price,
			AssetAmount:           row.AssetAmount,
			CashFlow:              row.CashFlow,
			ResultingCashBalance:  row.ResultingCashBalance,
			ResultingAssetBalance: row.ResultingAssetBalance,
		}
	}
	return trades, nil
}

// TickCount returns the number of journaled ticks.
func (r *SQLiteRecorder) TickCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM ticks`); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
