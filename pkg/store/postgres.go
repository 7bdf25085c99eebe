package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mcclellann/ledgerbook/pkg/logger"

	_ "github.com/lib/pq"
)

// PostgresStore is the Postgres backend. It shares its queries with SQLiteStore.
type PostgresStore struct {
	*sqlStore
}

// NewPostgresStore opens a connection pool, verifies it and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(15 * time.Minute)

	s := &PostgresStore{sqlStore: newSQLStore(db, true)}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	logger.Info("postgres store ready", nil)
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS customer_payments (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL,
	customer_name TEXT NOT NULL,
	amount NUMERIC(20, 4) NOT NULL CHECK (amount > 0),
	total_amount NUMERIC(20, 4),
	due_amount NUMERIC(20, 4) CHECK (due_amount >= 0),
	is_partial_payment BOOLEAN NOT NULL DEFAULT FALSE,
	parent_payment_id UUID REFERENCES customer_payments(id) ON DELETE SET NULL,
	payment_method TEXT NOT NULL DEFAULT 'cash',
	description TEXT NOT NULL DEFAULT '',
	payment_date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_customer_payments_owner ON customer_payments(owner_id, created_at);
CREATE TABLE IF NOT EXISTS expenses (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL,
	category TEXT NOT NULL,
	subcategory TEXT NOT NULL DEFAULT '',
	amount NUMERIC(20, 4) NOT NULL CHECK (amount > 0),
	description TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT 'cash',
	location TEXT NOT NULL DEFAULT '',
	expense_date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_expenses_owner ON expenses(owner_id, expense_date);
CREATE TABLE IF NOT EXISTS investments (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL,
	name TEXT NOT NULL,
	amount NUMERIC(20, 4) NOT NULL CHECK (amount > 0),
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	payment_method TEXT NOT NULL DEFAULT 'cash',
	investment_date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_investments_owner ON investments(owner_id, created_at)`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
