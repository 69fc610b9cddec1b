package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/rules"
)

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

const selectRuleColumns = "id, priority, match_field, match_pattern, action_field, action_value"

func scanRule(s scanner) (*rules.Rule, error) {
	var r rules.Rule

	if err := s.Scan(&r.ID, &r.Priority, &r.MatchField, &r.MatchPattern, &r.ActionField, &r.ActionValue); err != nil {
		return nil, err
	}

	return &r, nil
}

func (s *Store) List(ctx context.Context) ([]*rules.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectRuleColumns+" FROM rules ORDER BY priority DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var list []*rules.Rule

	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		list = append(list, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return list, nil
}

func (s *Store) Create(ctx context.Context, params rules.Params) (*rules.Rule, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rules (match_field, match_pattern, action_field, action_value)
		 VALUES (?, ?, ?, ?)`,
		params.MatchField, params.MatchPattern, params.ActionField, params.ActionValue)
	if err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new rule id: %w", err)
	}

	return &rules.Rule{
		ID:           id,
		MatchField:   params.MatchField,
		MatchPattern: params.MatchPattern,
		ActionField:  params.ActionField,
		ActionValue:  params.ActionValue,
	}, nil
}

func (s *Store) Update(ctx context.Context, id int64, params rules.Params) (*rules.Rule, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rules SET match_field = ?, match_pattern = ?, action_field = ?, action_value = ?
		 WHERE id = ?`,
		params.MatchField, params.MatchPattern, params.ActionField, params.ActionValue, id)
	if err != nil {
		return nil, fmt.Errorf("updating rule: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking updated rows: %w", err)
	}

	if affected == 0 {
		return nil, rules.ErrNotFound
	}

	rule, err := scanRule(s.db.QueryRowContext(ctx,
		"SELECT "+selectRuleColumns+" FROM rules WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reading updated rule: %w", err)
	}

	return rule, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}

	if affected == 0 {
		return rules.ErrNotFound
	}

	return nil
}

// Reorder rewrites every listed rule's priority in one unit of work: the
// first id gets the highest priority, the last gets 1. Unknown ids are
// ignored.
func (s *Store) Reorder(ctx context.Context, ids []int64) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for i, id := range ids {
		_, err := dbTx.ExecContext(ctx,
			"UPDATE rules SET priority = ? WHERE id = ?", len(ids)-i, id)
		if err != nil {
			return fmt.Errorf("reordering rule %d: %w", id, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
