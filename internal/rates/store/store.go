package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/rates"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Set(ctx context.Context, currency string, rate float64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO custom_exchange_rates (currency, rate) VALUES (?, ?)",
		currency, rate)
	if err != nil {
		return fmt.Errorf("setting custom rate: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, currency string) (float64, error) {
	var rate float64

	err := s.db.QueryRowContext(ctx,
		"SELECT rate FROM custom_exchange_rates WHERE currency = ?", currency).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, rates.ErrNotFound
	}

	if err != nil {
		return 0, fmt.Errorf("reading custom rate: %w", err)
	}

	return rate, nil
}

func (s *Store) All(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT currency, rate FROM custom_exchange_rates")
	if err != nil {
		return nil, fmt.Errorf("listing custom rates: %w", err)
	}
	defer rows.Close()

	overrides := map[string]float64{}

	for rows.Next() {
		var (
			currency string
			rate     float64
		)

		if err := rows.Scan(&currency, &rate); err != nil {
			return nil, fmt.Errorf("scanning custom rate: %w", err)
		}

		overrides[currency] = rate
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating custom rates: %w", err)
	}

	return overrides, nil
}
