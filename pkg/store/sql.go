package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/ledgerbook/pkg/models"
)

// sqlStore holds the queries shared by the SQLite and Postgres backends.
// Queries are written with ? placeholders and rebound for the driver.
type sqlStore struct {
	db       *sql.DB
	numbered bool // use $1, $2 placeholders

	mu          sync.Mutex
	lastCreated time.Time
	now         func() time.Time
}

func newSQLStore(db *sql.DB, numbered bool) *sqlStore {
	return &sqlStore{db: db, numbered: numbered, now: time.Now}
}

func (s *sqlStore) bind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// nextCreatedAt returns a timestamp strictly after every one it returned before.
// Microsecond precision matches Postgres timestamptz.
func (s *sqlStore) nextCreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.lastCreated) {
		t = s.lastCreated.Add(time.Microsecond)
	}
	s.lastCreated = t
	return t
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

const paymentColumns = `id, owner_id, customer_name, amount, total_amount, due_amount, is_partial_payment, parent_payment_id, payment_method, description, payment_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.PaymentRecord, error) {
	var p models.PaymentRecord
	var parent uuid.NullUUID
	if err := row.Scan(&p.ID, &p.OwnerID, &p.CustomerName, &p.Amount, &p.TotalAmount, &p.DueAmount, &p.IsPartialPayment, &parent, &p.PaymentMethod, &p.Description, &p.Date, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		id := parent.UUID
		p.ParentPaymentID = &id
	}
	p.Date = models.DateOnly(p.Date)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// CreatePayment inserts a payment, assigning its ID and timestamps.
func (s *sqlStore) CreatePayment(ctx context.Context, payment *models.PaymentRecord) error {
	payment.ID = uuid.New()
	payment.CreatedAt = s.nextCreatedAt()
	payment.UpdatedAt = payment.CreatedAt
	payment.Date = models.DateOnly(payment.Date)

	_, err := s.db.ExecContext(ctx, s.bind(
		`INSERT INTO customer_payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		payment.ID.String(), payment.OwnerID.String(), payment.CustomerName, payment.Amount, payment.TotalAmount, payment.DueAmount,
		payment.IsPartialPayment, nullableUUID(payment.ParentPaymentID), payment.PaymentMethod, payment.Description,
		payment.Date, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by its ID.
func (s *sqlStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, error) {
	row := s.db.QueryRowContext(ctx, s.bind(`SELECT `+paymentColumns+` FROM customer_payments WHERE id = ?`), id.String())
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListPayments returns all payments of an owner, most recently created first.
func (s *sqlStore) ListPayments(ctx context.Context, ownerID uuid.UUID) ([]*models.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT `+paymentColumns+` FROM customer_payments WHERE owner_id = ? ORDER BY created_at DESC, id ASC`), ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	payments := make([]*models.PaymentRecord, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return payments, nil
}

// UpdatePayment writes the mutable fields of a payment. ID, owner and
// creation time are never changed.
func (s *sqlStore) UpdatePayment(ctx context.Context, payment *models.PaymentRecord) error {
	payment.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)
	payment.Date = models.DateOnly(payment.Date)

	result, err := s.db.ExecContext(ctx, s.bind(
		`UPDATE customer_payments SET customer_name = ?, amount = ?, total_amount = ?, due_amount = ?, is_partial_payment = ?, parent_payment_id = ?, payment_method = ?, description = ?, payment_date = ?, updated_at = ? WHERE id = ?`),
		payment.CustomerName, payment.Amount, payment.TotalAmount, payment.DueAmount, payment.IsPartialPayment,
		nullableUUID(payment.ParentPaymentID), payment.PaymentMethod, payment.Description, payment.Date, payment.UpdatedAt,
		payment.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return checkAffected(result)
}

// DeletePayment permanently removes a payment.
func (s *sqlStore) DeletePayment(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM customer_payments WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return checkAffected(result)
}
