package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/database"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/rules"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/rules/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	return store.New(db)
}

func TestCreateAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, rules.Params{
		MatchField:   "payee",
		MatchPattern: "Cafe",
		ActionField:  "category",
		ActionValue:  "Food",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cafe", list[0].MatchPattern)
	assert.Equal(t, 0, list[0].Priority)
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, rules.Params{
		MatchField:   "payee",
		MatchPattern: "Cafe",
		ActionField:  "category",
		ActionValue:  "Food",
	})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, rules.Params{
		MatchField:   "payee",
		MatchPattern: "Coffee",
		ActionField:  "category",
		ActionValue:  "Drinks",
	})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", updated.MatchPattern)
	assert.Equal(t, "Drinks", updated.ActionValue)

	_, err = s.Update(ctx, 99, rules.Params{MatchField: "payee"})
	assert.ErrorIs(t, err, rules.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, rules.Params{
		MatchField:   "payee",
		MatchPattern: "Cafe",
		ActionField:  "category",
		ActionValue:  "Food",
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))
	assert.ErrorIs(t, s.Delete(ctx, created.ID), rules.ErrNotFound)
}

func TestReorder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []int64

	for _, pattern := range []string{"A", "B", "C"} {
		r, err := s.Create(ctx, rules.Params{
			MatchField:   "payee",
			MatchPattern: pattern,
			ActionField:  "category",
			ActionValue:  "X",
		})
		require.NoError(t, err)

		ids = append(ids, r.ID)
	}

	// Put C first, then A, then B.
	require.NoError(t, s.Reorder(ctx, []int64{ids[2], ids[0], ids[1]}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "C", list[0].MatchPattern)
	assert.Equal(t, "A", list[1].MatchPattern)
	assert.Equal(t, "B", list[2].MatchPattern)

	assert.Equal(t, 3, list[0].Priority)
	assert.Equal(t, 2, list[1].Priority)
	assert.Equal(t, 1, list[2].Priority)
}
