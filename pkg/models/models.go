package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "net_banking"
	PaymentMethodWallet     PaymentMethod = "wallet"
	PaymentMethodCheque     PaymentMethod = "cheque"
	PaymentMethodOther      PaymentMethod = "other"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetBanking,
		PaymentMethodWallet, PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentRecord is a single customer payment. TotalAmount and DueAmount are only
// set for payments that settle part of a larger transaction.
type PaymentRecord struct {
	ID               uuid.UUID           `json:"id"`
	OwnerID          uuid.UUID           `json:"owner_id"`
	CustomerName     string              `json:"customer_name"` // Not normalized, "Alice" and "alice " are different customers
	Amount           decimal.Decimal     `json:"amount"`
	TotalAmount      decimal.NullDecimal `json:"total_amount"`
	DueAmount        decimal.NullDecimal `json:"due_amount"` // Always derived from TotalAmount - Amount
	IsPartialPayment bool                `json:"is_partial_payment"`
	ParentPaymentID  *uuid.UUID          `json:"parent_payment_id,omitempty"` // Record whose due this payment settles
	PaymentMethod    PaymentMethod       `json:"payment_method"`
	Description      string              `json:"description,omitempty"`
	Date             time.Time           `json:"date"`       // Calendar date supplied by the user
	CreatedAt        time.Time           `json:"created_at"` // Assigned by the store, orders a customer's history
	UpdatedAt        time.Time           `json:"updated_at"`
}

// NewPayment is the user-supplied part of a PaymentRecord.
type NewPayment struct {
	CustomerName     string              `json:"customer_name"`
	Amount           decimal.Decimal     `json:"amount"`
	TotalAmount      decimal.NullDecimal `json:"total_amount"`
	IsPartialPayment bool                `json:"is_partial_payment"`
	ParentPaymentID  *uuid.UUID          `json:"parent_payment_id,omitempty"`
	PaymentMethod    PaymentMethod       `json:"payment_method"`
	Description      string              `json:"description,omitempty"`
	Date             time.Time           `json:"date"`
}

// PaymentPatch carries the fields of an update. Nil fields are left untouched.
// A non-nil TotalAmount with Valid=false clears the total.
type PaymentPatch struct {
	CustomerName     *string              `json:"customer_name,omitempty"`
	Amount           *decimal.Decimal     `json:"amount,omitempty"`
	TotalAmount      *decimal.NullDecimal `json:"total_amount,omitempty"`
	IsPartialPayment *bool                `json:"is_partial_payment,omitempty"`
	PaymentMethod    *PaymentMethod       `json:"payment_method,omitempty"`
	Description      *string              `json:"description,omitempty"`
	Date             *time.Time           `json:"date,omitempty"`
}

// CustomerDue summarizes what one customer still owes.
type CustomerDue struct {
	CustomerName    string          `json:"customer_name"`
	PaymentCount    int             `json:"payment_count"`
	LastPaymentDate time.Time       `json:"last_payment_date"`
	TotalDue        decimal.Decimal `json:"total_due"`
}

type DueSummary struct {
	TotalDueAmount        decimal.Decimal `json:"total_due_amount"`
	CustomersWithDue      int             `json:"customers_with_due"`
	AveragePerCustomerDue decimal.Decimal `json:"average_due_per_customer"`
}

// PaymentTotals sums a list of payments, as shown under a filtered list.
type PaymentTotals struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type Expense struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	Category      string          `json:"category"`
	Subcategory   string          `json:"subcategory,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Location      string          `json:"location,omitempty"`
	Date          time.Time       `json:"date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type InvestmentStatus string

const (
	InvestmentStatusActive  InvestmentStatus = "active"
	InvestmentStatusSold    InvestmentStatus = "sold"
	InvestmentStatusMatured InvestmentStatus = "matured"
)

type Investment struct {
	ID            uuid.UUID        `json:"id"`
	OwnerID       uuid.UUID        `json:"owner_id"`
	Name          string           `json:"name"`
	Amount        decimal.Decimal  `json:"amount"`
	Description   string           `json:"description,omitempty"`
	Status        InvestmentStatus `json:"status"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	Date          time.Time        `json:"date"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type FinancialSummary struct {
	TotalInvestments      decimal.Decimal `json:"total_investments"`
	TotalExpenses         decimal.Decimal `json:"total_expenses"`
	TotalCustomerPayments decimal.Decimal `json:"total_customer_payments"`
	NetWorth              decimal.Decimal `json:"net_worth"`
	MonthlyExpenses       decimal.Decimal `json:"monthly_expenses"`
	MonthlyIncome         decimal.Decimal `json:"monthly_income"`
}

// TrendPoint is one dated amount in an income or expense trend.
type TrendPoint struct {
	Date     time.Time       `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category,omitempty"`
}

// DateOnly truncates t to its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
