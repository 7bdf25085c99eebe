package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func record(customer string, createdOffset time.Duration, date time.Time, due decimal.NullDecimal) *models.PaymentRecord {
	return &models.PaymentRecord{
		ID:           uuid.New(),
		CustomerName: customer,
		Amount:       decimal.NewFromInt(1),
		DueAmount:    due,
		Date:         date,
		CreatedAt:    t0.Add(createdOffset),
	}
}

func due(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestCustomersWithDueUsesMostRecentlyCreated(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	payments := []*models.PaymentRecord{
		record("Alice", 1*time.Minute, day, due("500")),
		record("Alice", 2*time.Minute, day, due("200")),
		record("Alice", 3*time.Minute, day, due("0")),
	}

	if got := CustomersWithDue(payments); len(got) != 0 {
		t.Fatalf("Expected Alice excluded, got %+v", got)
	}

	// Without the settling record the previous due applies.
	got := CustomersWithDue(payments[:2])
	if len(got) != 1 || !got[0].TotalDue.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("Expected Alice due 200, got %+v", got)
	}
}

func TestCustomersWithDueIgnoresPaymentDateForRecency(t *testing.T) {
	early := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	payments := []*models.PaymentRecord{
		// Created last but dated earliest: still authoritative.
		record("Alice", 5*time.Minute, early, due("75")),
		record("Alice", 1*time.Minute, late, due("0")),
	}

	got := CustomersWithDue(payments)
	if len(got) != 1 {
		t.Fatalf("Expected one customer, got %+v", got)
	}
	if !got[0].TotalDue.Equal(decimal.NewFromInt(75)) {
		t.Errorf("Expected due 75, got %s", got[0].TotalDue)
	}
	if !got[0].LastPaymentDate.Equal(late) {
		t.Errorf("Expected last payment date %s, got %s", late, got[0].LastPaymentDate)
	}
	if got[0].PaymentCount != 2 {
		t.Errorf("Expected 2 payments, got %d", got[0].PaymentCount)
	}
}

func TestCustomersWithDueSortedAndFiltered(t *testing.T) {
	day := t0
	payments := []*models.PaymentRecord{
		record("Bob", time.Minute, day, due("100")),
		record("Carol", time.Minute, day, decimal.NullDecimal{}),
		record("Alice", time.Minute, day, due("250.75")),
		record("Dave", time.Minute, day, due("-5")),
		record("Erin", time.Minute, day, due("100")),
	}

	got := CustomersWithDue(payments)
	want := []string{"Alice", "Bob", "Erin"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d customers, got %+v", len(want), got)
	}
	for i, name := range want {
		if got[i].CustomerName != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, got[i].CustomerName)
		}
		if !got[i].TotalDue.IsPositive() {
			t.Errorf("Customer %s returned with non-positive due %s", name, got[i].TotalDue)
		}
	}
}

func TestCustomersWithDueNamesAreNotNormalized(t *testing.T) {
	payments := []*models.PaymentRecord{
		record("Alice", time.Minute, t0, due("10")),
		record("alice ", 2*time.Minute, t0, due("20")),
	}

	got := CustomersWithDue(payments)
	if len(got) != 2 {
		t.Fatalf("Expected two distinct customers, got %+v", got)
	}
	if CustomerDueAmount(got, "Alice").String() != "10" {
		t.Errorf("Expected Alice due 10, got %s", CustomerDueAmount(got, "Alice"))
	}
	if CustomerDueAmount(got, "alice ").String() != "20" {
		t.Errorf("Expected 'alice ' due 20, got %s", CustomerDueAmount(got, "alice "))
	}
}

func TestCustomersWithDueTieBreakIsOrderIndependent(t *testing.T) {
	a := record("Alice", time.Minute, t0, due("30"))
	b := record("Alice", time.Minute, t0, due("40"))

	first := CustomersWithDue([]*models.PaymentRecord{a, b})
	second := CustomersWithDue([]*models.PaymentRecord{b, a})
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("Expected one customer each, got %+v / %+v", first, second)
	}
	if !first[0].TotalDue.Equal(second[0].TotalDue) {
		t.Errorf("Expected same due regardless of input order, got %s and %s", first[0].TotalDue, second[0].TotalDue)
	}
}

func TestCustomersWithDueEmpty(t *testing.T) {
	if got := CustomersWithDue(nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %+v", got)
	}
	if got := CustomerDueAmount(nil, "Alice"); !got.IsZero() {
		t.Errorf("Expected zero due for absent customer, got %s", got)
	}
}

func TestSummarizeDue(t *testing.T) {
	empty := SummarizeDue(nil)
	if !empty.TotalDueAmount.IsZero() || empty.CustomersWithDue != 0 || !empty.AveragePerCustomerDue.IsZero() {
		t.Errorf("Expected zero summary, got %+v", empty)
	}

	summary := SummarizeDue([]models.CustomerDue{
		{CustomerName: "Alice", TotalDue: decimal.NewFromInt(600)},
		{CustomerName: "Bob", TotalDue: decimal.NewFromInt(150)},
	})
	if !summary.TotalDueAmount.Equal(decimal.NewFromInt(750)) {
		t.Errorf("Expected total 750, got %s", summary.TotalDueAmount)
	}
	if summary.CustomersWithDue != 2 {
		t.Errorf("Expected 2 customers, got %d", summary.CustomersWithDue)
	}
	if !summary.AveragePerCustomerDue.Equal(decimal.NewFromInt(375)) {
		t.Errorf("Expected average 375, got %s", summary.AveragePerCustomerDue)
	}
}
