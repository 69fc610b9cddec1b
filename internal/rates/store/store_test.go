package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/database"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/rates"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/rates/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	return store.New(db)
}

func TestSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "EUR", 1.1))
	require.NoError(t, s.Set(ctx, "EUR", 1.2))

	rate, err := s.Get(ctx, "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 1.2, rate, 1e-9)
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "JPY")
	assert.ErrorIs(t, err, rates.ErrNotFound)
}

func TestAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, s.Set(ctx, "EUR", 1.1))
	require.NoError(t, s.Set(ctx, "GBP", 1.3))

	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"EUR": 1.1, "GBP": 1.3}, all)
}
