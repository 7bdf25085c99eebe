package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	payments    []*models.PaymentRecord
	expenses    []*models.Expense
	investments []*models.Investment
	expenseErr  error
}

func (f *fakeSource) ListPayments(ctx context.Context, ownerID uuid.UUID) ([]*models.PaymentRecord, error) {
	return f.payments, nil
}

func (f *fakeSource) ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]*models.Expense, error) {
	if f.expenseErr != nil {
		return nil, f.expenseErr
	}
	return f.expenses, nil
}

func (f *fakeSource) ListInvestments(ctx context.Context, ownerID uuid.UUID) ([]*models.Investment, error) {
	return f.investments, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newFixture() *fakeSource {
	return &fakeSource{
		payments: []*models.PaymentRecord{
			{Amount: decimal.NewFromInt(400), Date: day(2026, 3, 10)},
			{Amount: decimal.NewFromInt(600), Date: day(2025, 1, 10)},
		},
		expenses: []*models.Expense{
			{Category: "fuel", Amount: decimal.RequireFromString("40.50"), Date: day(2026, 3, 12)},
			{Category: "rent", Amount: decimal.NewFromInt(300), Date: day(2026, 2, 1)},
			{Category: "fuel", Amount: decimal.RequireFromString("9.50"), Date: day(2026, 1, 5)},
		},
		investments: []*models.Investment{
			{Amount: decimal.NewFromInt(1000)},
		},
	}
}

func TestFinancialSummary(t *testing.T) {
	svc := NewService(newFixture())

	summary, err := svc.FinancialSummary(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !summary.TotalCustomerPayments.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected payments 1000, got %s", summary.TotalCustomerPayments)
	}
	if !summary.TotalExpenses.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("expected expenses 350, got %s", summary.TotalExpenses)
	}
	if !summary.NetWorth.Equal(decimal.NewFromInt(1650)) {
		t.Fatalf("expected net worth 1650, got %s", summary.NetWorth)
	}
	if !summary.MonthlyIncome.Equal(summary.TotalCustomerPayments) {
		t.Fatalf("expected monthly income to equal total payments")
	}
}

func TestFinancialSummaryPropagatesErrors(t *testing.T) {
	src := newFixture()
	src.expenseErr = errors.New("db down")
	svc := NewService(src)

	if _, err := svc.FinancialSummary(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error when a source fails")
	}
}

func TestExpenseBreakdown(t *testing.T) {
	svc := NewService(newFixture())

	breakdown, err := svc.ExpenseBreakdown(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !breakdown["fuel"].Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected fuel 50, got %s", breakdown["fuel"])
	}
	if !breakdown["rent"].Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected rent 300, got %s", breakdown["rent"])
	}
}

func TestTrendsWindowAndOrder(t *testing.T) {
	svc := NewService(newFixture())
	svc.now = func() time.Time { return time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC) }

	income, err := svc.IncomeTrend(context.Background(), uuid.New(), 3)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(income) != 1 || !income[0].Date.Equal(day(2026, 3, 10)) {
		t.Fatalf("expected only the recent payment, got %+v", income)
	}

	expenses, err := svc.ExpenseTrend(context.Background(), uuid.New(), 3)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(expenses) != 3 {
		t.Fatalf("expected 3 expense points, got %d", len(expenses))
	}
	for i := 1; i < len(expenses); i++ {
		if expenses[i].Date.Before(expenses[i-1].Date) {
			t.Fatalf("expected ascending dates, got %+v", expenses)
		}
	}
	if expenses[0].Category != "fuel" {
		t.Fatalf("expected category kept, got %q", expenses[0].Category)
	}
}
