package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskwatch/internal/domain"
)

// Store persists daily price history in SQLite. It sits under the in-memory
// series cache as a durable fallback: when the provider is unreachable, the
// last fetched series can still feed the risk calculators. Risk scores
// themselves are never persisted here.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// New creates a new history store
func New(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "history_store").Logger(),
	}
}

// Init creates the daily_prices table if it does not exist
func (s *Store) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_prices (
			symbol      TEXT NOT NULL,
			date        TEXT NOT NULL,
			open_price  REAL NOT NULL,
			high_price  REAL NOT NULL,
			low_price   REAL NOT NULL,
			close_price REAL NOT NULL,
			volume      REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create daily_prices table: %w", err)
	}
	return nil
}

// SaveSeries upserts every point of a fetched series
func (s *Store) SaveSeries(series domain.AssetSeries) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO daily_prices (symbol, date, open_price, high_price, low_price, close_price, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open_price = excluded.open_price,
			high_price = excluded.high_price,
			low_price = excluded.low_price,
			close_price = excluded.close_price,
			volume = excluded.volume
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range series.Points {
		if _, err := stmt.Exec(
			series.Asset,
			p.Date.UTC().Format("2006-01-02"),
			p.Open, p.High, p.Low, p.Close, p.Volume,
		); err != nil {
			return fmt.Errorf("failed to upsert price for %s: %w", series.Asset, err)
		}
	}

	return tx.Commit()
}

// GetDailyPrices fetches the most recent daily prices for a symbol,
// returned oldest first.
func (s *Store) GetDailyPrices(symbol string, limit int) ([]domain.PricePoint, error) {
	rows, err := s.db.Query(`
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM daily_prices
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		var date string

		if err := rows.Scan(&date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}

		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price date %q: %w", date, err)
		}
		p.Date = parsed

		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	// Query returns newest first; series are oldest first
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}
