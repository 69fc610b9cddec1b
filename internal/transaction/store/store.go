package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/transaction"
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

const selectTransactionColumns = `
	id, account_id, date, payee, notes, category, amount,
	ticker, shares, price_per_share, fee, currency, linked_tx_id, is_transfer
`

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	if err := s.Scan(
		&tx.ID, &tx.AccountID, &tx.Date, &tx.Payee, &tx.Notes, &tx.Category, &tx.Amount,
		&tx.Ticker, &tx.Shares, &tx.PricePerShare, &tx.Fee, &tx.Currency, &tx.LinkedID, &tx.Transfer,
	); err != nil {
		return nil, err
	}

	return &tx, nil
}

// Create inserts the transaction and applies its amount to the owning
// account's balance. A payee naming another account turns the row into a
// transfer: the category is forced, a mirrored counterpart is inserted on the
// target account and both rows are linked symmetrically. Everything happens
// in one unit of work.
func (s *Store) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	ownerName, err := accountName(ctx, dbTx, params.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrAccountNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading owning account: %w", err)
	}

	var targetID int64

	isTransfer := true

	err = dbTx.QueryRowContext(ctx,
		"SELECT id FROM accounts WHERE name = ? AND id != ?",
		params.Payee, params.AccountID).Scan(&targetID)
	if errors.Is(err, sql.ErrNoRows) {
		isTransfer = false
	} else if err != nil {
		return nil, fmt.Errorf("detecting transfer: %w", err)
	}

	category := params.Category
	if isTransfer {
		transfer := transaction.CategoryTransfer
		category = &transfer
	}

	res, err := dbTx.ExecContext(ctx,
		`INSERT INTO transactions (account_id, date, payee, notes, category, amount,
			ticker, shares, price_per_share, fee, currency, is_transfer)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		params.AccountID, params.Date, params.Payee, params.Notes, category, params.Amount,
		params.Ticker, params.Shares, params.PricePerShare, params.Fee, params.Currency, isTransfer,
	)
	if err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new transaction id: %w", err)
	}

	if err := adjustBalance(ctx, dbTx, params.AccountID, params.Amount); err != nil {
		return nil, err
	}

	var linkedID *int64

	if isTransfer {
		res, err := dbTx.ExecContext(ctx,
			`INSERT INTO transactions (account_id, date, payee, notes, category, amount, is_transfer)
			 VALUES (?, ?, ?, ?, ?, ?, 1)`,
			targetID, params.Date, ownerName, params.Notes, transaction.CategoryTransfer, -params.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("creating counterpart transaction: %w", err)
		}

		counterpartID, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading counterpart id: %w", err)
		}

		if err := linkPair(ctx, dbTx, id, counterpartID); err != nil {
			return nil, err
		}

		if err := adjustBalance(ctx, dbTx, targetID, -params.Amount); err != nil {
			return nil, err
		}

		linkedID = &counterpartID
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &transaction.Transaction{
		ID:            id,
		AccountID:     params.AccountID,
		Date:          params.Date,
		Payee:         params.Payee,
		Notes:         params.Notes,
		Category:      category,
		Amount:        params.Amount,
		Ticker:        params.Ticker,
		Shares:        params.Shares,
		PricePerShare: params.PricePerShare,
		Fee:           params.Fee,
		Currency:      params.Currency,
		LinkedID:      linkedID,
		Transfer:      isTransfer,
	}, nil
}

// CreateTrade inserts an investment row. Trades never grow a counterpart
// leg, whatever the payee says.
func (s *Store) CreateTrade(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := accountName(ctx, dbTx, params.AccountID); errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrAccountNotFound
	} else if err != nil {
		return nil, fmt.Errorf("reading owning account: %w", err)
	}

	res, err := dbTx.ExecContext(ctx,
		`INSERT INTO transactions (account_id, date, payee, notes, category, amount,
			ticker, shares, price_per_share, fee, currency)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		params.AccountID, params.Date, params.Payee, params.Notes, params.Category, params.Amount,
		params.Ticker, params.Shares, params.PricePerShare, params.Fee, params.Currency,
	)
	if err != nil {
		return nil, fmt.Errorf("creating trade: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new trade id: %w", err)
	}

	if err := adjustBalance(ctx, dbTx, params.AccountID, params.Amount); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &transaction.Transaction{
		ID:            id,
		AccountID:     params.AccountID,
		Date:          params.Date,
		Payee:         params.Payee,
		Notes:         params.Notes,
		Category:      params.Category,
		Amount:        params.Amount,
		Ticker:        params.Ticker,
		Shares:        params.Shares,
		PricePerShare: params.PricePerShare,
		Fee:           params.Fee,
		Currency:      params.Currency,
	}, nil
}

// Update overwrites the row, reconciles account balances (including moves
// between accounts) and keeps a transfer counterpart in sync. A counterpart
// is found through the stored link, or, for rows created before linking
// existed, through an exact-notes match that then repairs the link.
func (s *Store) Update(ctx context.Context, id int64, params transaction.UpdateParams) (*transaction.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var (
		oldAmount    float64
		oldAccountID int64
	)

	err = dbTx.QueryRowContext(ctx,
		"SELECT amount, account_id FROM transactions WHERE id = ?", id).Scan(&oldAmount, &oldAccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading old transaction: %w", err)
	}

	if params.AccountID != oldAccountID {
		if _, err := accountName(ctx, dbTx, params.AccountID); errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrAccountNotFound
		} else if err != nil {
			return nil, fmt.Errorf("reading new account: %w", err)
		}
	}

	_, err = dbTx.ExecContext(ctx,
		`UPDATE transactions SET account_id = ?, date = ?, payee = ?, notes = ?,
			category = ?, amount = ?, currency = ? WHERE id = ?`,
		params.AccountID, params.Date, params.Payee, params.Notes,
		params.Category, params.Amount, params.Currency, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}

	if err := reconcileBalances(ctx, dbTx, oldAccountID, params.AccountID, oldAmount, params.Amount); err != nil {
		return nil, err
	}

	counterpartID, err := counterpart(ctx, dbTx, id, params.Notes)
	if err != nil {
		return nil, err
	}

	if counterpartID != nil {
		if err := syncCounterpart(ctx, dbTx, *counterpartID, params); err != nil {
			return nil, err
		}
	}

	updated, err := scanTransaction(dbTx.QueryRowContext(ctx,
		"SELECT "+selectTransactionColumns+" FROM transactions WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reading updated transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return updated, nil
}

// UpdateTrade overwrites every field of an investment row, including the
// recomputed instrument columns, and reconciles balances. Trades have no
// counterpart to sync.
func (s *Store) UpdateTrade(ctx context.Context, id int64, params transaction.CreateParams) (*transaction.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var (
		oldAmount    float64
		oldAccountID int64
	)

	err = dbTx.QueryRowContext(ctx,
		"SELECT amount, account_id FROM transactions WHERE id = ?", id).Scan(&oldAmount, &oldAccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading old trade: %w", err)
	}

	if params.AccountID != oldAccountID {
		if _, err := accountName(ctx, dbTx, params.AccountID); errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrAccountNotFound
		} else if err != nil {
			return nil, fmt.Errorf("reading new account: %w", err)
		}
	}

	_, err = dbTx.ExecContext(ctx,
		`UPDATE transactions SET account_id = ?, date = ?, payee = ?, notes = ?, category = ?,
			amount = ?, ticker = ?, shares = ?, price_per_share = ?, fee = ?, currency = ?
		 WHERE id = ?`,
		params.AccountID, params.Date, params.Payee, params.Notes, params.Category,
		params.Amount, params.Ticker, params.Shares, params.PricePerShare, params.Fee, params.Currency,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating trade: %w", err)
	}

	if err := reconcileBalances(ctx, dbTx, oldAccountID, params.AccountID, oldAmount, params.Amount); err != nil {
		return nil, err
	}

	updated, err := scanTransaction(dbTx.QueryRowContext(ctx,
		"SELECT "+selectTransactionColumns+" FROM transactions WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reading updated trade: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return updated, nil
}

// Delete removes the row, reverts its account balance, and takes any transfer
// counterpart down with it so no one-sided pair survives.
func (s *Store) Delete(ctx context.Context, id int64) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var (
		amount    float64
		accountID int64
		notes     *string
		linkedID  *int64
	)

	err = dbTx.QueryRowContext(ctx,
		"SELECT amount, account_id, notes, linked_tx_id FROM transactions WHERE id = ?", id).
		Scan(&amount, &accountID, &notes, &linkedID)
	if errors.Is(err, sql.ErrNoRows) {
		return transaction.ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("reading transaction: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if err := adjustBalance(ctx, dbTx, accountID, -amount); err != nil {
		return err
	}

	counterpartID := linkedID
	if counterpartID == nil && notes != nil {
		// The row itself is already gone, so the oldest matching transfer row
		// is the counterpart candidate.
		var foundID int64

		err := dbTx.QueryRowContext(ctx,
			"SELECT id FROM transactions WHERE notes = ? AND is_transfer = 1 ORDER BY id LIMIT 1",
			*notes).Scan(&foundID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("finding counterpart by notes: %w", err)
		}

		if err == nil {
			counterpartID = &foundID
		}
	}

	if counterpartID != nil {
		var (
			ctrAmount    float64
			ctrAccountID int64
		)

		err := dbTx.QueryRowContext(ctx,
			"SELECT amount, account_id FROM transactions WHERE id = ?", *counterpartID).
			Scan(&ctrAmount, &ctrAccountID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reading counterpart: %w", err)
		}

		if err == nil {
			if _, err := dbTx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", *counterpartID); err != nil {
				return fmt.Errorf("deleting counterpart: %w", err)
			}

			if err := adjustBalance(ctx, dbTx, ctrAccountID, -ctrAmount); err != nil {
				return err
			}
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) ByAccount(ctx context.Context, accountID int64) ([]*transaction.Transaction, error) {
	return s.list(ctx,
		"SELECT "+selectTransactionColumns+" FROM transactions WHERE account_id = ? ORDER BY date DESC, id DESC",
		accountID)
}

func (s *Store) All(ctx context.Context) ([]*transaction.Transaction, error) {
	return s.list(ctx,
		"SELECT "+selectTransactionColumns+" FROM transactions ORDER BY date DESC, id DESC")
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) Payees(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "SELECT DISTINCT payee FROM transactions ORDER BY payee")
}

// Categories lists the category values of ordinary rows. Transfer legs are
// excluded by flag, so a user category literally named "Transfer" survives.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	return s.distinct(ctx,
		"SELECT DISTINCT category FROM transactions WHERE category IS NOT NULL AND is_transfer = 0 ORDER BY category")
}

func (s *Store) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing values: %w", err)
	}
	defer rows.Close()

	var values []string

	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning value: %w", err)
		}

		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating values: %w", err)
	}

	return values, nil
}

func accountName(ctx context.Context, dbTx *sql.Tx, id int64) (string, error) {
	var name string

	err := dbTx.QueryRowContext(ctx, "SELECT name FROM accounts WHERE id = ?", id).Scan(&name)

	return name, err
}

func adjustBalance(ctx context.Context, dbTx *sql.Tx, accountID int64, delta float64) error {
	_, err := dbTx.ExecContext(ctx,
		"UPDATE accounts SET balance = balance + ? WHERE id = ?", delta, accountID)
	if err != nil {
		return fmt.Errorf("adjusting account balance: %w", err)
	}

	return nil
}

func linkPair(ctx context.Context, dbTx *sql.Tx, a, b int64) error {
	for _, pair := range [][2]int64{{b, a}, {a, b}} {
		_, err := dbTx.ExecContext(ctx,
			"UPDATE transactions SET linked_tx_id = ? WHERE id = ?", pair[0], pair[1])
		if err != nil {
			return fmt.Errorf("linking transactions: %w", err)
		}
	}

	return nil
}

// reconcileBalances applies the balance effect of an amount change. A move
// between accounts reverts the old account and charges the new one
// unconditionally; an in-place edit applies only a non-zero diff.
func reconcileBalances(ctx context.Context, dbTx *sql.Tx, oldAccountID, newAccountID int64, oldAmount, newAmount float64) error {
	if oldAccountID == newAccountID {
		if diff := newAmount - oldAmount; math.Abs(diff) > amountEpsilon {
			return adjustBalance(ctx, dbTx, newAccountID, diff)
		}

		return nil
	}

	if err := adjustBalance(ctx, dbTx, oldAccountID, -oldAmount); err != nil {
		return err
	}

	return adjustBalance(ctx, dbTx, newAccountID, newAmount)
}

// counterpart resolves the transfer counterpart of the given row: the stored
// link when present, otherwise a deterministic exact-notes match among other
// transfer rows, which also repairs the missing link on both sides.
func counterpart(ctx context.Context, dbTx *sql.Tx, id int64, notes *string) (*int64, error) {
	var linkedID *int64

	err := dbTx.QueryRowContext(ctx,
		"SELECT linked_tx_id FROM transactions WHERE id = ?", id).Scan(&linkedID)
	if err != nil {
		return nil, fmt.Errorf("reading link: %w", err)
	}

	if linkedID != nil || notes == nil {
		return linkedID, nil
	}

	var foundID int64

	err = dbTx.QueryRowContext(ctx,
		"SELECT id FROM transactions WHERE notes = ? AND is_transfer = 1 AND id != ? ORDER BY id LIMIT 1",
		*notes, id).Scan(&foundID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding counterpart by notes: %w", err)
	}

	if err := linkPair(ctx, dbTx, id, foundID); err != nil {
		return nil, err
	}

	return &foundID, nil
}

// syncCounterpart rewrites the counterpart to mirror the updated side: its
// amount must be the exact negation, its payee the updated side's account
// name. The counterpart's own account absorbs any amount drift. A counterpart
// that vanished underneath the link is skipped, not an error.
func syncCounterpart(ctx context.Context, dbTx *sql.Tx, counterpartID int64, params transaction.UpdateParams) error {
	var (
		oldCtrAmount float64
		ctrAccountID int64
	)

	err := dbTx.QueryRowContext(ctx,
		"SELECT amount, account_id FROM transactions WHERE id = ?", counterpartID).
		Scan(&oldCtrAmount, &ctrAccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("reading counterpart: %w", err)
	}

	ownerName, err := accountName(ctx, dbTx, params.AccountID)
	if err != nil {
		return fmt.Errorf("reading owning account name: %w", err)
	}

	newCtrAmount := -params.Amount

	_, err = dbTx.ExecContext(ctx,
		`UPDATE transactions SET date = ?, payee = ?, notes = ?, category = ?, amount = ?, currency = ?
		 WHERE id = ?`,
		params.Date, ownerName, params.Notes, transaction.CategoryTransfer, newCtrAmount, params.Currency,
		counterpartID,
	)
	if err != nil {
		return fmt.Errorf("updating counterpart: %w", err)
	}

	if diff := newCtrAmount - oldCtrAmount; math.Abs(diff) > amountEpsilon {
		return adjustBalance(ctx, dbTx, ctrAccountID, diff)
	}

	return nil
}
