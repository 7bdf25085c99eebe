package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/shopspring/decimal"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test_store.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_CreateAndGetPayment(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	payment := &models.PaymentRecord{
		OwnerID:          uuid.New(),
		CustomerName:     "Alice",
		Amount:           decimal.RequireFromString("400.50"),
		TotalAmount:      decimal.NewNullDecimal(decimal.NewFromInt(1000)),
		DueAmount:        decimal.NewNullDecimal(decimal.RequireFromString("599.50")),
		IsPartialPayment: true,
		PaymentMethod:    models.PaymentMethodUPI,
		Description:      "first instalment",
		Date:             time.Date(2026, 3, 14, 17, 45, 0, 0, time.UTC),
	}

	if err := s.CreatePayment(ctx, payment); err != nil {
		t.Fatalf("Failed to create payment: %v", err)
	}
	if payment.ID == uuid.Nil {
		t.Fatal("Expected store to assign an ID")
	}
	if payment.CreatedAt.IsZero() {
		t.Fatal("Expected store to assign CreatedAt")
	}

	fetched, err := s.GetPayment(ctx, payment.ID)
	if err != nil {
		t.Fatalf("Failed to get payment: %v", err)
	}

	if fetched.CustomerName != "Alice" {
		t.Errorf("Expected CustomerName Alice, got %s", fetched.CustomerName)
	}
	if !fetched.Amount.Equal(payment.Amount) {
		t.Errorf("Expected Amount %s, got %s", payment.Amount, fetched.Amount)
	}
	if !fetched.TotalAmount.Valid || !fetched.TotalAmount.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected TotalAmount 1000, got %+v", fetched.TotalAmount)
	}
	if !fetched.DueAmount.Valid || !fetched.DueAmount.Decimal.Equal(decimal.RequireFromString("599.50")) {
		t.Errorf("Expected DueAmount 599.50, got %+v", fetched.DueAmount)
	}
	if !fetched.IsPartialPayment {
		t.Error("Expected IsPartialPayment true")
	}
	if fetched.PaymentMethod != models.PaymentMethodUPI {
		t.Errorf("Expected PaymentMethod upi, got %s", fetched.PaymentMethod)
	}
	if !fetched.Date.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected Date 2026-03-14, got %s", fetched.Date)
	}
	if !fetched.CreatedAt.Equal(payment.CreatedAt) {
		t.Errorf("Expected CreatedAt %s, got %s", payment.CreatedAt, fetched.CreatedAt)
	}
	if fetched.ParentPaymentID != nil {
		t.Errorf("Expected no parent payment, got %s", fetched.ParentPaymentID)
	}
}

func TestSQLiteStore_OptionalAmountsStayAbsent(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	payment := &models.PaymentRecord{
		OwnerID:       uuid.New(),
		CustomerName:  "Bob",
		Amount:        decimal.NewFromInt(250),
		PaymentMethod: models.PaymentMethodCash,
		Date:          time.Now(),
	}
	if err := s.CreatePayment(ctx, payment); err != nil {
		t.Fatalf("Failed to create payment: %v", err)
	}

	fetched, err := s.GetPayment(ctx, payment.ID)
	if err != nil {
		t.Fatalf("Failed to get payment: %v", err)
	}
	if fetched.TotalAmount.Valid || fetched.DueAmount.Valid {
		t.Errorf("Expected absent total/due, got %+v / %+v", fetched.TotalAmount, fetched.DueAmount)
	}
}

func TestSQLiteStore_ListPaymentsScopedAndOrdered(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()
	var created []uuid.UUID
	for i := 0; i < 3; i++ {
		p := &models.PaymentRecord{
			OwnerID:       owner,
			CustomerName:  "Alice",
			Amount:        decimal.NewFromInt(int64(100 * (i + 1))),
			PaymentMethod: models.PaymentMethodCash,
			Date:          time.Now(),
		}
		if err := s.CreatePayment(ctx, p); err != nil {
			t.Fatalf("Failed to create payment: %v", err)
		}
		created = append(created, p.ID)
	}
	if err := s.CreatePayment(ctx, &models.PaymentRecord{
		OwnerID:       other,
		CustomerName:  "Mallory",
		Amount:        decimal.NewFromInt(1),
		PaymentMethod: models.PaymentMethodCash,
		Date:          time.Now(),
	}); err != nil {
		t.Fatalf("Failed to create payment: %v", err)
	}

	payments, err := s.ListPayments(ctx, owner)
	if err != nil {
		t.Fatalf("Failed to list payments: %v", err)
	}
	if len(payments) != 3 {
		t.Fatalf("Expected 3 payments, got %d", len(payments))
	}
	// Newest first.
	for i, p := range payments {
		if p.ID != created[len(created)-1-i] {
			t.Errorf("Position %d: expected %s, got %s", i, created[len(created)-1-i], p.ID)
		}
	}
	for i := 1; i < len(payments); i++ {
		if !payments[i-1].CreatedAt.After(payments[i].CreatedAt) {
			t.Errorf("Expected strictly decreasing CreatedAt at %d", i)
		}
	}
}

func TestSQLiteStore_UpdateAndDeletePayment(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	parent := &models.PaymentRecord{
		OwnerID:       uuid.New(),
		CustomerName:  "Alice",
		Amount:        decimal.NewFromInt(400),
		TotalAmount:   decimal.NewNullDecimal(decimal.NewFromInt(1000)),
		DueAmount:     decimal.NewNullDecimal(decimal.NewFromInt(600)),
		PaymentMethod: models.PaymentMethodCash,
		Date:          time.Now(),
	}
	if err := s.CreatePayment(ctx, parent); err != nil {
		t.Fatalf("Failed to create payment: %v", err)
	}

	child := &models.PaymentRecord{
		OwnerID:          parent.OwnerID,
		CustomerName:     "Alice",
		Amount:           decimal.NewFromInt(100),
		TotalAmount:      decimal.NewNullDecimal(decimal.NewFromInt(600)),
		DueAmount:        decimal.NewNullDecimal(decimal.NewFromInt(500)),
		IsPartialPayment: true,
		ParentPaymentID:  &parent.ID,
		PaymentMethod:    models.PaymentMethodCard,
		Date:             time.Now(),
	}
	if err := s.CreatePayment(ctx, child); err != nil {
		t.Fatalf("Failed to create follow-up payment: %v", err)
	}

	child.Amount = decimal.NewFromInt(600)
	child.DueAmount = decimal.NewNullDecimal(decimal.Zero)
	if err := s.UpdatePayment(ctx, child); err != nil {
		t.Fatalf("Failed to update payment: %v", err)
	}

	fetched, err := s.GetPayment(ctx, child.ID)
	if err != nil {
		t.Fatalf("Failed to get payment: %v", err)
	}
	if !fetched.Amount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected updated amount 600, got %s", fetched.Amount)
	}
	if fetched.ParentPaymentID == nil || *fetched.ParentPaymentID != parent.ID {
		t.Errorf("Expected parent %s, got %v", parent.ID, fetched.ParentPaymentID)
	}
	if !fetched.CreatedAt.Equal(child.CreatedAt) {
		t.Errorf("CreatedAt must not change on update")
	}

	if err := s.DeletePayment(ctx, parent.ID); err != nil {
		t.Fatalf("Failed to delete payment: %v", err)
	}
	if _, err := s.GetPayment(ctx, parent.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	fetched, err = s.GetPayment(ctx, child.ID)
	if err != nil {
		t.Fatalf("Failed to get payment: %v", err)
	}
	if fetched.ParentPaymentID != nil {
		t.Errorf("Expected parent link cleared, got %s", fetched.ParentPaymentID)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	missing := &models.PaymentRecord{ID: uuid.New(), CustomerName: "x", Amount: decimal.NewFromInt(1), Date: time.Now()}
	if err := s.UpdatePayment(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on update, got %v", err)
	}
	if err := s.DeletePayment(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on delete, got %v", err)
	}
	if err := s.DeleteExpense(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on expense delete, got %v", err)
	}
	if _, err := s.GetInvestment(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on investment get, got %v", err)
	}
}

func TestSQLiteStore_EmptyListsAreNotNil(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	payments, err := s.ListPayments(ctx, owner)
	if err != nil || payments == nil || len(payments) != 0 {
		t.Errorf("Expected empty non-nil payments, got %v (err %v)", payments, err)
	}
	expenses, err := s.ListExpenses(ctx, owner)
	if err != nil || expenses == nil || len(expenses) != 0 {
		t.Errorf("Expected empty non-nil expenses, got %v (err %v)", expenses, err)
	}
	investments, err := s.ListInvestments(ctx, owner)
	if err != nil || investments == nil || len(investments) != 0 {
		t.Errorf("Expected empty non-nil investments, got %v (err %v)", investments, err)
	}
}

func TestSQLiteStore_ExpensesAndInvestments(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	expense := &models.Expense{
		OwnerID:       owner,
		Category:      "fuel",
		Amount:        decimal.RequireFromString("45.20"),
		Description:   "diesel",
		PaymentMethod: models.PaymentMethodCard,
		Date:          time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("Failed to create expense: %v", err)
	}
	expense.Location = "highway"
	if err := s.UpdateExpense(ctx, expense); err != nil {
		t.Fatalf("Failed to update expense: %v", err)
	}
	expenses, err := s.ListExpenses(ctx, owner)
	if err != nil {
		t.Fatalf("Failed to list expenses: %v", err)
	}
	if len(expenses) != 1 || expenses[0].Location != "highway" {
		t.Fatalf("Expected one updated expense, got %+v", expenses)
	}

	investment := &models.Investment{
		OwnerID:       owner,
		Name:          "index fund",
		Amount:        decimal.NewFromInt(5000),
		Status:        models.InvestmentStatusActive,
		PaymentMethod: models.PaymentMethodNetBanking,
		Date:          time.Now(),
	}
	if err := s.CreateInvestment(ctx, investment); err != nil {
		t.Fatalf("Failed to create investment: %v", err)
	}
	investment.Status = models.InvestmentStatusSold
	if err := s.UpdateInvestment(ctx, investment); err != nil {
		t.Fatalf("Failed to update investment: %v", err)
	}
	fetched, err := s.GetInvestment(ctx, investment.ID)
	if err != nil {
		t.Fatalf("Failed to get investment: %v", err)
	}
	if fetched.Status != models.InvestmentStatusSold {
		t.Errorf("Expected status sold, got %s", fetched.Status)
	}
	if err := s.DeleteInvestment(ctx, investment.ID); err != nil {
		t.Fatalf("Failed to delete investment: %v", err)
	}
	investments, err := s.ListInvestments(ctx, owner)
	if err != nil {
		t.Fatalf("Failed to list investments: %v", err)
	}
	if len(investments) != 0 {
		t.Errorf("Expected no investments, got %d", len(investments))
	}
}
