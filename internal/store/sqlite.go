package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// SQLiteStore persists bars and analysis runs to a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the dashboard can read while an analysis writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_bars (
			symbol   TEXT NOT NULL,
			bar_date TEXT NOT NULL,
			open     REAL,
			high     REAL,
			low      REAL,
			close    REAL,
			volume   REAL,
			PRIMARY KEY (symbol, bar_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_symbol_date ON price_bars(symbol, bar_date)`,

		`CREATE TABLE IF NOT EXISTS company_info (
			symbol     TEXT PRIMARY KEY,
			long_name  TEXT,
			sector     TEXT,
			industry   TEXT,
			market_cap REAL,
			currency   TEXT,
			exchange   TEXT,
			updated_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS analysis_snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			symbol            TEXT NOT NULL,
			period            TEXT,
			generated_at      INTEGER NOT NULL,
			price             REAL,
			total_return      REAL,
			annualized_return REAL,
			volatility        REAL,
			sharpe_ratio      REAL,
			max_drawdown      REAL,
			indicators        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON analysis_snapshots(symbol, generated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

const barDateLayout = "2006-01-02"

func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, bars []model.OHLCV) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bars tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO price_bars
		(symbol, bar_date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare bars insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Time.UTC().Format(barDateLayout),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bar_date, open, high, low, close, volume
		FROM price_bars WHERE symbol = ? ORDER BY bar_date DESC LIMIT ?`, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var date string
		var b model.OHLCV
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		t, err := time.Parse(barDateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse bar date %q: %w", date, err)
		}
		b.Time = t
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: bars for %s", ErrNotFound, symbol)
	}
	// Newest-first from the query; flip to chronological order.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

func (s *SQLiteStore) SaveCompanyInfo(ctx context.Context, info model.CompanyInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO company_info
		(symbol, long_name, sector, industry, market_cap, currency, exchange, updated_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		info.Symbol, info.LongName, info.Sector, info.Industry,
		info.MarketCap, info.Currency, info.Exchange, time.Now().Unix())
	return err
}

func (s *SQLiteStore) LoadCompanyInfo(ctx context.Context, symbol string) (model.CompanyInfo, error) {
	var info model.CompanyInfo
	err := s.db.QueryRowContext(ctx, `SELECT symbol, long_name, sector, industry, market_cap, currency, exchange
		FROM company_info WHERE symbol = ?`, symbol).
		Scan(&info.Symbol, &info.LongName, &info.Sector, &info.Industry,
			&info.MarketCap, &info.Currency, &info.Exchange)
	if err == sql.ErrNoRows {
		return model.CompanyInfo{}, fmt.Errorf("%w: company info for %s", ErrNotFound, symbol)
	}
	if err != nil {
		return model.CompanyInfo{}, fmt.Errorf("query company info: %w", err)
	}
	info.Available = true
	return info, nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	indicators, err := json.Marshal(snap.Indicators)
	if err != nil {
		return fmt.Errorf("encode indicators: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO analysis_snapshots
		(run_id, symbol, period, generated_at, price, total_return,
		 annualized_return, volatility, sharpe_ratio, max_drawdown, indicators)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID, snap.Symbol, snap.Period, snap.GeneratedAt.Unix(),
		nullIfNaN(snap.Price), nullIfNaN(snap.TotalReturn),
		nullIfNaN(snap.AnnualizedReturn), nullIfNaN(snap.Volatility),
		nullIfNaN(snap.SharpeRatio), nullIfNaN(snap.MaxDrawdown),
		string(indicators))
	return err
}

func (s *SQLiteStore) LoadSnapshots(ctx context.Context, symbol string, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, symbol, period, generated_at,
		price, total_return, annualized_return, volatility, sharpe_ratio, max_drawdown, indicators
		FROM analysis_snapshots WHERE symbol = ? ORDER BY generated_at DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var ts int64
		var price, total, ann, vol, sharpe, dd sql.NullFloat64
		var indicators string
		if err := rows.Scan(&snap.RunID, &snap.Symbol, &snap.Period, &ts,
			&price, &total, &ann, &vol, &sharpe, &dd, &indicators); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.GeneratedAt = time.Unix(ts, 0).UTC()
		snap.Price = floatOrNaN(price)
		snap.TotalReturn = floatOrNaN(total)
		snap.AnnualizedReturn = floatOrNaN(ann)
		snap.Volatility = floatOrNaN(vol)
		snap.SharpeRatio = floatOrNaN(sharpe)
		snap.MaxDrawdown = floatOrNaN(dd)
		if indicators != "" {
			if err := json.Unmarshal([]byte(indicators), &snap.Indicators); err != nil {
				return nil, fmt.Errorf("decode indicators: %w", err)
			}
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

// nullIfNaN keeps undefined scalars out of REAL columns; they come back as
// NULL and scan into NaN again.
func nullIfNaN(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
