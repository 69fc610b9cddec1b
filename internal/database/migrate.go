package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

type migration struct {
	name string
	fn   func(*sql.DB) error
}

// Applied migrations are recorded by name; each entry runs at most once, in
// order. Column adds are guarded so rerunning a partially recorded migration
// still succeeds.
var migrations = []migration{
	{"create_base_schema", createBaseSchema},
	{"add_transaction_links", addTransactionLinks},
	{"add_currency_columns", addCurrencyColumns},
	{"add_transfer_flag", addTransferFlag},
	{"create_rules", createRules},
	{"create_quote_cache", createQuoteCache},
}

// Migrate brings the schema up to date.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", m.name).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %s: %w", m.name, err)
		}

		if applied > 0 {
			continue
		}

		slog.Info("applying migration", "name", m.name)

		if err := m.fn(db); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.name, err)
		}

		if _, err := db.Exec("INSERT INTO migrations (name) VALUES (?)", m.name); err != nil {
			return fmt.Errorf("recording migration %s: %w", m.name, err)
		}
	}

	return nil
}

func createBaseSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			balance REAL NOT NULL DEFAULT 0,
			kind TEXT NOT NULL DEFAULT 'cash'
		);

		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			payee TEXT NOT NULL,
			notes TEXT,
			category TEXT,
			amount REAL NOT NULL,
			ticker TEXT,
			shares REAL,
			price_per_share REAL,
			fee REAL,
			FOREIGN KEY (account_id) REFERENCES accounts (id)
		);

		CREATE TABLE IF NOT EXISTS custom_exchange_rates (
			currency TEXT PRIMARY KEY,
			rate REAL NOT NULL
		);
	`)

	return err
}

func addTransactionLinks(db *sql.DB) error {
	return addColumn(db, "transactions", "linked_tx_id", "INTEGER")
}

func addCurrencyColumns(db *sql.DB) error {
	if err := addColumn(db, "accounts", "currency", "TEXT"); err != nil {
		return err
	}

	return addColumn(db, "transactions", "currency", "TEXT")
}

func addTransferFlag(db *sql.DB) error {
	if err := addColumn(db, "transactions", "is_transfer", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}

	// Rows written before the flag existed are recognizable by the reserved
	// category only.
	if _, err := db.Exec(`UPDATE transactions SET is_transfer = 1 WHERE category = 'Transfer'`); err != nil {
		return fmt.Errorf("backfilling transfer flag: %w", err)
	}

	return nil
}

func createRules(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			priority INTEGER NOT NULL DEFAULT 0,
			match_field TEXT NOT NULL,
			match_pattern TEXT NOT NULL,
			action_field TEXT NOT NULL,
			action_value TEXT NOT NULL
		)
	`)

	return err
}

func createQuoteCache(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS quotes (
			symbol TEXT PRIMARY KEY COLLATE NOCASE,
			price REAL NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS daily_quotes (
			symbol TEXT NOT NULL COLLATE NOCASE,
			date TEXT NOT NULL,
			price REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		);
	`)

	return err
}

func addColumn(db *sql.DB, table, column, definition string) error {
	var count int

	check := fmt.Sprintf("SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = '%s'", table, column)
	if err := db.QueryRow(check).Scan(&count); err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}

	if count > 0 {
		return nil
	}

	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("adding column %s.%s: %w", table, column, err)
	}

	return nil
}
