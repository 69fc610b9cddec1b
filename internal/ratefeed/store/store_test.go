package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/database"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/ratefeed"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/ratefeed/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	return store.New(db)
}

func TestUpsertQuotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertQuotes(ctx, []ratefeed.Quote{
		{Symbol: "VTI", Price: 250},
		{Symbol: "AAPL", Price: 180},
	}))

	// A later batch overwrites, keyed case-insensitively.
	require.NoError(t, s.UpsertQuotes(ctx, []ratefeed.Quote{{Symbol: "vti", Price: 260}}))

	quote, err := s.CachedQuote(ctx, "VTI")
	require.NoError(t, err)
	assert.InDelta(t, 260, quote.Price, 1e-9)
}

func TestCachedQuoteCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertQuotes(ctx, []ratefeed.Quote{{Symbol: "VTI", Price: 250}}))

	quote, err := s.CachedQuote(ctx, "vti")
	require.NoError(t, err)
	assert.Equal(t, "VTI", quote.Symbol)
	assert.InDelta(t, 250, quote.Price, 1e-9)
}

func TestCachedQuoteMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CachedQuote(context.Background(), "VTI")
	assert.ErrorIs(t, err, ratefeed.ErrNotCached)
}

func TestDailyQuotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	last, err := s.LastDate(ctx, "VTI")
	require.NoError(t, err)
	assert.Empty(t, last)

	require.NoError(t, s.UpsertDailyQuotes(ctx, "VTI", []ratefeed.DailyQuote{
		{Date: "2024-03-02", Price: 101},
		{Date: "2024-03-01", Price: 100},
	}))

	// Overwriting one day must not duplicate it.
	require.NoError(t, s.UpsertDailyQuotes(ctx, "VTI", []ratefeed.DailyQuote{
		{Date: "2024-03-02", Price: 102},
	}))

	prices, err := s.DailyQuotes(ctx, "VTI")
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "2024-03-01", prices[0].Date)
	assert.Equal(t, "2024-03-02", prices[1].Date)
	assert.InDelta(t, 102, prices[1].Price, 1e-9)

	last, err = s.LastDate(ctx, "VTI")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", last)
}
