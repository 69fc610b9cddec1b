package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/account"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/fx"
)

// amountEpsilon bounds "effectively zero" for monetary amounts.
const amountEpsilon = 1e-9

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectAccountColumns = "id, name, balance, currency"

func scanAccount(s scanner) (*account.Account, error) {
	var a account.Account

	if err := s.Scan(&a.ID, &a.Name, &a.Balance, &a.Currency); err != nil {
		return nil, err
	}

	a.ExchangeRate = 1.0

	return &a, nil
}

// Create inserts the account and, for a non-zero opening balance, the
// synthesized opening transaction, in one unit of work.
func (s *Store) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := checkNameFree(ctx, dbTx, params.Name, 0); err != nil {
		return nil, err
	}

	res, err := dbTx.ExecContext(ctx,
		"INSERT INTO accounts (name, balance, currency) VALUES (?, ?, ?)",
		params.Name, params.Balance, params.Currency,
	)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new account id: %w", err)
	}

	if math.Abs(params.Balance) > amountEpsilon {
		_, err = dbTx.ExecContext(ctx,
			`INSERT INTO transactions (account_id, date, payee, notes, category, amount, currency)
			 VALUES (?, ?, 'Opening Balance', 'Initial Balance', 'Income', ?, ?)`,
			id, time.Now().UTC().Format(time.DateOnly), params.Balance, params.Currency,
		)
		if err != nil {
			return nil, fmt.Errorf("creating opening transaction: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &account.Account{
		ID:           id,
		Name:         params.Name,
		Balance:      params.Balance,
		Currency:     params.Currency,
		ExchangeRate: 1.0,
	}, nil
}

func (s *Store) Rename(ctx context.Context, id int64, name string) (*account.Account, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := checkNameFree(ctx, dbTx, name, id); err != nil {
		return nil, err
	}

	if err := applyUpdate(ctx, dbTx, "UPDATE accounts SET name = ? WHERE id = ?", name, id); err != nil {
		return nil, err
	}

	updated, err := scanAccount(dbTx.QueryRowContext(ctx,
		"SELECT "+selectAccountColumns+" FROM accounts WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reading account: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return updated, nil
}

func (s *Store) Update(ctx context.Context, id int64, name string, currency *string) (*account.Account, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := checkNameFree(ctx, dbTx, name, id); err != nil {
		return nil, err
	}

	if err := applyUpdate(ctx, dbTx, "UPDATE accounts SET name = ?, currency = ? WHERE id = ?", name, currency, id); err != nil {
		return nil, err
	}

	updated, err := scanAccount(dbTx.QueryRowContext(ctx,
		"SELECT "+selectAccountColumns+" FROM accounts WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reading account: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return updated, nil
}

// Delete removes the account and everything it owns. Counterpart rows in
// other accounts that pointed at this account's transactions are unlinked
// first so no reference dangles.
func (s *Store) Delete(ctx context.Context, id int64) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx,
		`UPDATE transactions SET linked_tx_id = NULL
		 WHERE account_id != ? AND linked_tx_id IN (SELECT id FROM transactions WHERE account_id = ?)`,
		id, id,
	)
	if err != nil {
		return fmt.Errorf("unlinking counterparts: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "DELETE FROM transactions WHERE account_id = ?", id); err != nil {
		return fmt.Errorf("deleting account transactions: %w", err)
	}

	res, err := dbTx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if affected == 0 {
		return account.ErrNotFound
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*account.Account, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectAccountColumns+" FROM accounts")
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return accounts, nil
}

// CurrencySums returns transaction amounts grouped by account and currency.
// Rows without a currency are reported under the target currency.
func (s *Store) CurrencySums(ctx context.Context, target string) ([]fx.Sum, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT account_id, currency, SUM(amount) FROM transactions GROUP BY account_id, currency")
	if err != nil {
		return nil, fmt.Errorf("summing transactions: %w", err)
	}
	defer rows.Close()

	var sums []fx.Sum

	for rows.Next() {
		var (
			sum      fx.Sum
			currency sql.NullString
			total    sql.NullFloat64
		)

		if err := rows.Scan(&sum.AccountID, &currency, &total); err != nil {
			return nil, fmt.Errorf("scanning currency sum: %w", err)
		}

		sum.Currency = target
		if currency.Valid {
			sum.Currency = currency.String
		}

		sum.Total = total.Float64

		sums = append(sums, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating currency sums: %w", err)
	}

	return sums, nil
}

// checkNameFree enforces the case-insensitive unique name rule. selfID
// excludes the account being renamed; zero excludes nothing.
func checkNameFree(ctx context.Context, dbTx *sql.Tx, name string, selfID int64) error {
	var existing int64

	err := dbTx.QueryRowContext(ctx,
		"SELECT id FROM accounts WHERE LOWER(name) = LOWER(?) LIMIT 1", name).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("checking account name: %w", err)
	}

	if existing != selfID {
		return account.ErrNameTaken
	}

	return nil
}

func applyUpdate(ctx context.Context, dbTx *sql.Tx, query string, args ...any) error {
	res, err := dbTx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if affected == 0 {
		return account.ErrNotFound
	}

	return nil
}
