package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/ratefeed"
)

// Store persists the quote cache. Symbol lookups are case-insensitive; the
// stored casing wins.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertQuotes(ctx context.Context, quotes []ratefeed.Quote) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, quote := range quotes {
		_, err := dbTx.ExecContext(ctx,
			"INSERT OR REPLACE INTO quotes (symbol, price, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
			quote.Symbol, quote.Price)
		if err != nil {
			return fmt.Errorf("caching quote %s: %w", quote.Symbol, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) CachedQuote(ctx context.Context, symbol string) (*ratefeed.Quote, error) {
	var quote ratefeed.Quote

	err := s.db.QueryRowContext(ctx,
		"SELECT symbol, price FROM quotes WHERE symbol = ?", symbol).
		Scan(&quote.Symbol, &quote.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ratefeed.ErrNotCached
	}

	if err != nil {
		return nil, fmt.Errorf("reading cached quote: %w", err)
	}

	return &quote, nil
}

// LastDate returns the newest stored close date for the symbol, empty when
// nothing is stored yet.
func (s *Store) LastDate(ctx context.Context, symbol string) (string, error) {
	var last sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(date) FROM daily_quotes WHERE symbol = ?", symbol).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("reading last quote date: %w", err)
	}

	return last.String, nil
}

func (s *Store) UpsertDailyQuotes(ctx context.Context, symbol string, prices []ratefeed.DailyQuote) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, price := range prices {
		_, err := dbTx.ExecContext(ctx,
			"INSERT OR REPLACE INTO daily_quotes (symbol, date, price) VALUES (?, ?, ?)",
			symbol, price.Date, price.Price)
		if err != nil {
			return fmt.Errorf("storing daily quote %s %s: %w", symbol, price.Date, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) DailyQuotes(ctx context.Context, symbol string) ([]ratefeed.DailyQuote, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT date, price FROM daily_quotes WHERE symbol = ? ORDER BY date ASC", symbol)
	if err != nil {
		return nil, fmt.Errorf("listing daily quotes: %w", err)
	}
	defer rows.Close()

	var prices []ratefeed.DailyQuote

	for rows.Next() {
		var price ratefeed.DailyQuote
		if err := rows.Scan(&price.Date, &price.Price); err != nil {
			return nil, fmt.Errorf("scanning daily quote: %w", err)
		}

		prices = append(prices, price)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily quotes: %w", err)
	}

	return prices, nil
}
