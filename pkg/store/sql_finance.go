package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/ledgerbook/pkg/models"
)

const expenseColumns = `id, owner_id, category, subcategory, amount, description, payment_method, location, expense_date, created_at, updated_at`

func scanExpense(row rowScanner) (*models.Expense, error) {
	var e models.Expense
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Category, &e.Subcategory, &e.Amount, &e.Description, &e.PaymentMethod, &e.Location, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Date = models.DateOnly(e.Date)
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func (s *sqlStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	expense.ID = uuid.New()
	expense.CreatedAt = s.nextCreatedAt()
	expense.UpdatedAt = expense.CreatedAt
	expense.Date = models.DateOnly(expense.Date)

	_, err := s.db.ExecContext(ctx, s.bind(
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		expense.ID.String(), expense.OwnerID.String(), expense.Category, expense.Subcategory, expense.Amount, expense.Description,
		expense.PaymentMethod, expense.Location, expense.Date, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (s *sqlStore) GetExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	e, err := scanExpense(s.db.QueryRowContext(ctx, s.bind(`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`), id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns an owner's expenses, newest date first.
func (s *sqlStore) ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT `+expenseColumns+` FROM expenses WHERE owner_id = ? ORDER BY expense_date DESC, created_at DESC`), ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	expenses := make([]*models.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return expenses, nil
}

func (s *sqlStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)
	expense.Date = models.DateOnly(expense.Date)

	result, err := s.db.ExecContext(ctx, s.bind(
		`UPDATE expenses SET category = ?, subcategory = ?, amount = ?, description = ?, payment_method = ?, location = ?, expense_date = ?, updated_at = ? WHERE id = ?`),
		expense.Category, expense.Subcategory, expense.Amount, expense.Description, expense.PaymentMethod, expense.Location,
		expense.Date, expense.UpdatedAt, expense.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return checkAffected(result)
}

func (s *sqlStore) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM expenses WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return checkAffected(result)
}

const investmentColumns = `id, owner_id, name, amount, description, status, payment_method, investment_date, created_at, updated_at`

func scanInvestment(row rowScanner) (*models.Investment, error) {
	var inv models.Investment
	if err := row.Scan(&inv.ID, &inv.OwnerID, &inv.Name, &inv.Amount, &inv.Description, &inv.Status, &inv.PaymentMethod, &inv.Date, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	inv.Date = models.DateOnly(inv.Date)
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return &inv, nil
}

func (s *sqlStore) CreateInvestment(ctx context.Context, investment *models.Investment) error {
	investment.ID = uuid.New()
	investment.CreatedAt = s.nextCreatedAt()
	investment.UpdatedAt = investment.CreatedAt
	investment.Date = models.DateOnly(investment.Date)

	_, err := s.db.ExecContext(ctx, s.bind(
		`INSERT INTO investments (`+investmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		investment.ID.String(), investment.OwnerID.String(), investment.Name, investment.Amount, investment.Description,
		investment.Status, investment.PaymentMethod, investment.Date, investment.CreatedAt, investment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

func (s *sqlStore) GetInvestment(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	inv, err := scanInvestment(s.db.QueryRowContext(ctx, s.bind(`SELECT `+investmentColumns+` FROM investments WHERE id = ?`), id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return inv, nil
}

// ListInvestments returns an owner's investments, most recently created first.
func (s *sqlStore) ListInvestments(ctx context.Context, ownerID uuid.UUID) ([]*models.Investment, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT `+investmentColumns+` FROM investments WHERE owner_id = ? ORDER BY created_at DESC`), ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list investments for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	investments := make([]*models.Investment, 0)
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment row: %w", err)
		}
		investments = append(investments, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return investments, nil
}

func (s *sqlStore) UpdateInvestment(ctx context.Context, investment *models.Investment) error {
	investment.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)
	investment.Date = models.DateOnly(investment.Date)

	result, err := s.db.ExecContext(ctx, s.bind(
		`UPDATE investments SET name = ?, amount = ?, description = ?, status = ?, payment_method = ?, investment_date = ?, updated_at = ? WHERE id = ?`),
		investment.Name, investment.Amount, investment.Description, investment.Status, investment.PaymentMethod,
		investment.Date, investment.UpdatedAt, investment.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", err)
	}
	return checkAffected(result)
}

func (s *sqlStore) DeleteInvestment(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM investments WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	return checkAffected(result)
}
