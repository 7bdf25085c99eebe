package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mcclellann/ledgerbook/pkg/logger"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// Manually enable foreign keys and WAL mode
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{sqlStore: newSQLStore(db, false)}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	logger.Info("sqlite store ready", logger.Fields{"path": dataSourceName})
	return s, nil
}

// initSchema creates the tables if they don't already exist and adds columns
// introduced after the first release.
// Money is stored as TEXT so no precision is lost.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS customer_payments (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		amount TEXT NOT NULL,
		total_amount TEXT,
		due_amount TEXT,
		is_partial_payment BOOLEAN NOT NULL DEFAULT 0,
		payment_method TEXT NOT NULL DEFAULT 'cash',
		description TEXT NOT NULL DEFAULT '',
		payment_date DATE NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_customer_payments_owner ON customer_payments(owner_id, created_at);
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		category TEXT NOT NULL,
		subcategory TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL DEFAULT 'cash',
		location TEXT NOT NULL DEFAULT '',
		expense_date DATE NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_expenses_owner ON expenses(owner_id, expense_date);
	CREATE TABLE IF NOT EXISTS investments (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		payment_method TEXT NOT NULL DEFAULT 'cash',
		investment_date DATE NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_investments_owner ON investments(owner_id, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// parent_payment_id was added together with follow-up payments.
	columns := []string{
		"parent_payment_id TEXT REFERENCES customer_payments(id) ON DELETE SET NULL",
	}

	for _, col := range columns {
		_, err := s.db.Exec(fmt.Sprintf("ALTER TABLE customer_payments ADD COLUMN %s", col))
		if err != nil && !isDuplicateColumnError(err) {
			return fmt.Errorf("failed to add column %s: %w", col, err)
		}
	}

	return nil
}

// isDuplicateColumnError checks if the error indicates a duplicate column.
func isDuplicateColumnError(err error) bool {
	if err == nil {
		return false
	}
	return strings.HasPrefix(err.Error(), "duplicate column name")
}
