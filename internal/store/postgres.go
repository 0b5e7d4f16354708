package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// PostgresStore is the shared-database alternative to SQLite. Postgres
// serializes concurrent writers itself, so no mutex here.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects via the pgx stdlib driver and runs migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(60 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Println("[INFO] postgres store connected")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_bars (
			symbol   TEXT NOT NULL,
			bar_date DATE NOT NULL,
			open     DOUBLE PRECISION,
			high     DOUBLE PRECISION,
			low      DOUBLE PRECISION,
			close    DOUBLE PRECISION,
			volume   DOUBLE PRECISION,
			PRIMARY KEY (symbol, bar_date)
		)`,

		`CREATE TABLE IF NOT EXISTS company_info (
			symbol     TEXT PRIMARY KEY,
			long_name  TEXT,
			sector     TEXT,
			industry   TEXT,
			market_cap DOUBLE PRECISION,
			currency   TEXT,
			exchange   TEXT,
			updated_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS analysis_snapshots (
			id                BIGSERIAL PRIMARY KEY,
			run_id            TEXT NOT NULL,
			symbol            TEXT NOT NULL,
			period            TEXT,
			generated_at      TIMESTAMPTZ NOT NULL,
			price             DOUBLE PRECISION,
			total_return      DOUBLE PRECISION,
			annualized_return DOUBLE PRECISION,
			volatility        DOUBLE PRECISION,
			sharpe_ratio      DOUBLE PRECISION,
			max_drawdown      DOUBLE PRECISION,
			indicators        JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON analysis_snapshots(symbol, generated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveBars(ctx context.Context, symbol string, bars []model.OHLCV) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bars tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO price_bars
		(symbol, bar_date, open, high, low, close, volume)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (symbol, bar_date) DO UPDATE SET
			open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
			close = EXCLUDED.close, volume = EXCLUDED.volume`)
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

func (s *PostgresStore) LoadBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bar_date, open, high, low, close, volume
		FROM price_bars WHERE symbol = $1 ORDER BY bar_date DESC LIMIT $2`, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var date time.Time
		var b model.OHLCV
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Time = date.UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: bars for %s", ErrNotFound, symbol)
	}
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

func (s *PostgresStore) SaveCompanyInfo(ctx context.Context, info model.CompanyInfo) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO company_info
		(symbol, long_name, sector, industry, market_cap, currency, exchange, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (symbol) DO UPDATE SET
			long_name = EXCLUDED.long_name, sector = EXCLUDED.sector,
			industry = EXCLUDED.industry, market_cap = EXCLUDED.market_cap,
			currency = EXCLUDED.currency, exchange = EXCLUDED.exchange,
			updated_at = EXCLUDED.updated_at`,
		info.Symbol, info.LongName, info.Sector, info.Industry,
		info.MarketCap, info.Currency, info.Exchange, time.Now().UTC())
	return err
}

func (s *PostgresStore) LoadCompanyInfo(ctx context.Context, symbol string) (model.CompanyInfo, error) {
	var info model.CompanyInfo
	err := s.db.QueryRowContext(ctx, `SELECT symbol, long_name, sector, industry, market_cap, currency, exchange
		FROM company_info WHERE symbol = $1`, symbol).
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

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	indicators, err := json.Marshal(snap.Indicators)
	if err != nil {
		return fmt.Errorf("encode indicators: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO analysis_snapshots
		(run_id, symbol, period, generated_at, price, total_return,
		 annualized_return, volatility, sharpe_ratio, max_drawdown, indicators)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		snap.RunID, snap.Symbol, snap.Period, snap.GeneratedAt.UTC(),
		nullIfNaN(snap.Price), nullIfNaN(snap.TotalReturn),
		nullIfNaN(snap.AnnualizedReturn), nullIfNaN(snap.Volatility),
		nullIfNaN(snap.SharpeRatio), nullIfNaN(snap.MaxDrawdown),
		string(indicators))
	return err
}

func (s *PostgresStore) LoadSnapshots(ctx context.Context, symbol string, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, symbol, period, generated_at,
		price, total_return, annualized_return, volatility, sharpe_ratio, max_drawdown, indicators
		FROM analysis_snapshots WHERE symbol = $1 ORDER BY generated_at DESC LIMIT $2`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var ts time.Time
		var price, total, ann, vol, sharpe, dd sql.NullFloat64
		var indicators []byte
		if err := rows.Scan(&snap.RunID, &snap.Symbol, &snap.Period, &ts,
			&price, &total, &ann, &vol, &sharpe, &dd, &indicators); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.GeneratedAt = ts.UTC()
		snap.Price = floatOrNaN(price)
		snap.TotalReturn = floatOrNaN(total)
		snap.AnnualizedReturn = floatOrNaN(ann)
		snap.Volatility = floatOrNaN(vol)
		snap.SharpeRatio = floatOrNaN(sharpe)
		snap.MaxDrawdown = floatOrNaN(dd)
		if len(indicators) > 0 {
			if err := json.Unmarshal(indicators, &snap.Indicators); err != nil {
				return nil, fmt.Errorf("decode indicators: %w", err)
			}
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *PostgresStore) Close() error {
	log.Println("[INFO] closing postgres store")
	return s.db.Close()
}
