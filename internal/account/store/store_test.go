package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/account"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/account/store"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/database"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/fx"
)

func newTestStore(t *testing.T) (*store.Store, *sql.DB) {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	return store.New(db), db
}

func strPtr(s string) *string { return &s }

func TestCreateSynthesizesOpeningTransaction(t *testing.T) {
	s, db := newTestStore(t)

	created, err := s.Create(context.Background(), account.CreateParams{
		Name:    "Checking",
		Balance: 100,
	})
	require.NoError(t, err)
	assert.InDelta(t, 100, created.Balance, 1e-9)
	assert.InDelta(t, 1.0, created.ExchangeRate, 1e-9)

	var (
		date     string
		payee    string
		notes    string
		category string
		amount   float64
	)

	err = db.QueryRow(
		"SELECT date, payee, notes, category, amount FROM transactions WHERE account_id = ?",
		created.ID).Scan(&date, &payee, &notes, &category, &amount)
	require.NoError(t, err)

	assert.Equal(t, time.Now().UTC().Format(time.DateOnly), date)
	assert.Equal(t, "Opening Balance", payee)
	assert.Equal(t, "Initial Balance", notes)
	assert.Equal(t, "Income", category)
	assert.InDelta(t, 100, amount, 1e-9)
}

func TestCreateZeroBalance(t *testing.T) {
	s, db := newTestStore(t)

	created, err := s.Create(context.Background(), account.CreateParams{Name: "Empty"})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM transactions WHERE account_id = ?", created.ID).Scan(&count))
	assert.Zero(t, count)
}

func TestCreateDuplicateName(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, account.CreateParams{Name: "Checking"})
	require.NoError(t, err)

	// Uniqueness ignores case.
	_, err = s.Create(ctx, account.CreateParams{Name: "checking"})
	assert.ErrorIs(t, err, account.ErrNameTaken)
}

func TestRename(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, account.CreateParams{Name: "Checking"})
	require.NoError(t, err)

	_, err = s.Create(ctx, account.CreateParams{Name: "Savings"})
	require.NoError(t, err)

	renamed, err := s.Rename(ctx, created.ID, "Main Checking")
	require.NoError(t, err)
	assert.Equal(t, "Main Checking", renamed.Name)

	// Recasing the own name is fine, taking another account's is not.
	_, err = s.Rename(ctx, created.ID, "MAIN CHECKING")
	require.NoError(t, err)

	_, err = s.Rename(ctx, created.ID, "savings")
	assert.ErrorIs(t, err, account.ErrNameTaken)

	_, err = s.Rename(ctx, 99, "Ghost")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestUpdateCurrency(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, account.CreateParams{Name: "Travel"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, "Travel", strPtr("EUR"))
	require.NoError(t, err)
	require.NotNil(t, updated.Currency)
	assert.Equal(t, "EUR", *updated.Currency)

	updated, err = s.Update(ctx, created.ID, "Travel", nil)
	require.NoError(t, err)
	assert.Nil(t, updated.Currency)
}

func TestDeleteCascades(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	victim, err := s.Create(ctx, account.CreateParams{Name: "Old"})
	require.NoError(t, err)

	keeper, err := s.Create(ctx, account.CreateParams{Name: "Keeper", Balance: 50})
	require.NoError(t, err)

	// A linked transfer pair across the two accounts, inserted directly.
	res, err := db.Exec(
		"INSERT INTO transactions (account_id, date, payee, category, amount, is_transfer) VALUES (?, '2024-01-02', 'Keeper', 'Transfer', -30, 1)",
		victim.ID)
	require.NoError(t, err)
	victimTx, err := res.LastInsertId()
	require.NoError(t, err)

	res, err = db.Exec(
		"INSERT INTO transactions (account_id, date, payee, category, amount, is_transfer, linked_tx_id) VALUES (?, '2024-01-02', 'Old', 'Transfer', 30, 1, ?)",
		keeper.ID, victimTx)
	require.NoError(t, err)
	keeperTx, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = db.Exec("UPDATE transactions SET linked_tx_id = ? WHERE id = ?", keeperTx, victimTx)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, victim.ID))

	// The account and its rows are gone; the surviving counterpart is
	// unlinked, not deleted.
	var count int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM accounts WHERE id = ?", victim.ID).Scan(&count))
	assert.Zero(t, count)

	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM transactions WHERE account_id = ?", victim.ID).Scan(&count))
	assert.Zero(t, count)

	var linked *int64
	require.NoError(t, db.QueryRow(
		"SELECT linked_tx_id FROM transactions WHERE id = ?", keeperTx).Scan(&linked))
	assert.Nil(t, linked)
}

func TestDeleteMissing(t *testing.T) {
	s, _ := newTestStore(t)

	assert.ErrorIs(t, s.Delete(context.Background(), 42), account.ErrNotFound)
}

func TestList(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, account.CreateParams{Name: "Checking", Balance: 100})
	require.NoError(t, err)

	_, err = s.Create(ctx, account.CreateParams{Name: "Travel", Currency: strPtr("EUR")})
	require.NoError(t, err)

	accounts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "Checking", accounts[0].Name)
	assert.InDelta(t, 1.0, accounts[0].ExchangeRate, 1e-9)
	require.NotNil(t, accounts[1].Currency)
	assert.Equal(t, "EUR", *accounts[1].Currency)
}

func TestCurrencySums(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, account.CreateParams{Name: "Travel", Currency: strPtr("GBP")})
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO transactions (account_id, date, payee, amount, currency) VALUES
		(?, '2024-01-01', 'Hotel', -60, 'EUR'),
		(?, '2024-01-02', 'Hotel', -40, 'EUR'),
		(?, '2024-01-03', 'Cafe', -5, NULL)`,
		created.ID, created.ID, created.ID)
	require.NoError(t, err)

	sums, err := s.CurrencySums(ctx, "USD")
	require.NoError(t, err)
	require.Len(t, sums, 2)

	bySumCurrency := map[string]fx.Sum{}
	for _, sum := range sums {
		bySumCurrency[sum.Currency] = sum
	}

	assert.InDelta(t, -100, bySumCurrency["EUR"].Total, 1e-9)

	// Currency-less rows count toward the target currency.
	assert.InDelta(t, -5, bySumCurrency["USD"].Total, 1e-9)
}
