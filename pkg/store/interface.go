package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mcclellann/ledgerbook/pkg/models"
)

// ErrNotFound is returned when no record matches the requested ID.
var ErrNotFound = errors.New("record not found")

// PaymentStore is the durable storage for customer payment records.
// CreatePayment assigns ID, CreatedAt and UpdatedAt; CreatedAt is strictly
// increasing across calls on the same store.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.PaymentRecord) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, error)
	ListPayments(ctx context.Context, ownerID uuid.UUID) ([]*models.PaymentRecord, error)
	UpdatePayment(ctx context.Context, payment *models.PaymentRecord) error
	DeletePayment(ctx context.Context, id uuid.UUID) error
}

type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

type InvestmentStore interface {
	CreateInvestment(ctx context.Context, investment *models.Investment) error
	GetInvestment(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	ListInvestments(ctx context.Context, ownerID uuid.UUID) ([]*models.Investment, error)
	UpdateInvestment(ctx context.Context, investment *models.Investment) error
	DeleteInvestment(ctx context.Context, id uuid.UUID) error
}

// Storage defines the interface for all database operations.
type Storage interface {
	PaymentStore
	ExpenseStore
	InvestmentStore

	Close() error
}
