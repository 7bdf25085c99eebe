package ledger

import (
	"strings"

	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/shopspring/decimal"
)

// Money columns are NUMERIC(20,4): at most 16 integer digits and 4 decimals.
const (
	moneyIntDigits = 16
	moneyScale     = 4
	maxCoefficient = 40
)

// inMoneyRange reports whether d fits a money column. It only inspects the
// coefficient length and exponent, so oversized input is never expanded.
func inMoneyRange(d decimal.Decimal) bool {
	digits := d.NumDigits()
	exp := int(d.Exponent())
	if digits > maxCoefficient || exp < -maxCoefficient {
		return false
	}
	if digits+exp > moneyIntDigits {
		return false
	}
	return d.Equal(d.Truncate(moneyScale))
}

func checkAmount(amount decimal.Decimal) error {
	if !inMoneyRange(amount) {
		return &ValidationError{Code: CodeInvalidAmount, Field: "amount", Message: "amount must have at most 16 integer digits and 4 decimals"}
	}
	if !amount.IsPositive() {
		return &ValidationError{Code: CodeInvalidAmount, Field: "amount", Message: "amount must be greater than zero"}
	}
	return nil
}

// ValidatePayment checks the amount invariants of a candidate record and
// returns its derived DueAmount. The caller must store exactly the returned
// value; DueAmount is never taken from user input.
func ValidatePayment(p *models.PaymentRecord) (decimal.NullDecimal, error) {
	if strings.TrimSpace(p.CustomerName) == "" {
		return decimal.NullDecimal{}, &ValidationError{Code: CodeMissingField, Field: "customer_name", Message: "customer name is required"}
	}
	if err := checkAmount(p.Amount); err != nil {
		return decimal.NullDecimal{}, err
	}
	if !p.PaymentMethod.Valid() {
		return decimal.NullDecimal{}, &ValidationError{Code: CodeInvalidPaymentMethod, Field: "payment_method", Message: "unknown payment method " + string(p.PaymentMethod)}
	}
	if p.Date.IsZero() {
		return decimal.NullDecimal{}, &ValidationError{Code: CodeMissingField, Field: "date", Message: "payment date is required"}
	}

	if !p.TotalAmount.Valid {
		return decimal.NullDecimal{}, nil
	}
	total := p.TotalAmount.Decimal
	if !inMoneyRange(total) {
		return decimal.NullDecimal{}, &ValidationError{Code: CodeInvalidTotal, Field: "total_amount", Message: "total amount must have at most 16 integer digits and 4 decimals"}
	}
	if total.IsNegative() {
		return decimal.NullDecimal{}, &ValidationError{Code: CodeInvalidTotal, Field: "total_amount", Message: "total amount must not be negative"}
	}
	if p.IsPartialPayment && p.Amount.GreaterThan(total) {
		return decimal.NullDecimal{}, &ValidationError{
			Code:    CodeAmountExceedsTotal,
			Field:   "amount",
			Message: "amount " + p.Amount.String() + " exceeds total " + total.String(),
		}
	}

	return decimal.NewNullDecimal(DeriveDue(total, p.Amount)), nil
}

// DeriveDue is max(0, total - amount).
func DeriveDue(total, amount decimal.Decimal) decimal.Decimal {
	due := total.Sub(amount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// ApplyPatch merges patch into a copy of existing. DueAmount is carried over
// unchanged and must be re-derived by ValidatePayment.
func ApplyPatch(existing models.PaymentRecord, patch models.PaymentPatch) models.PaymentRecord {
	merged := existing
	if patch.CustomerName != nil {
		merged.CustomerName = *patch.CustomerName
	}
	if patch.Amount != nil {
		merged.Amount = *patch.Amount
	}
	if patch.TotalAmount != nil {
		merged.TotalAmount = *patch.TotalAmount
	}
	if patch.IsPartialPayment != nil {
		merged.IsPartialPayment = *patch.IsPartialPayment
	}
	if patch.PaymentMethod != nil {
		merged.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Date != nil {
		merged.Date = models.DateOnly(*patch.Date)
	}
	return merged
}

func validateExpense(e *models.Expense) error {
	if strings.TrimSpace(e.Category) == "" {
		return &ValidationError{Code: CodeMissingField, Field: "category", Message: "category is required"}
	}
	if err := checkAmount(e.Amount); err != nil {
		return err
	}
	if !e.PaymentMethod.Valid() {
		return &ValidationError{Code: CodeInvalidPaymentMethod, Field: "payment_method", Message: "unknown payment method " + string(e.PaymentMethod)}
	}
	if e.Date.IsZero() {
		return &ValidationError{Code: CodeMissingField, Field: "date", Message: "expense date is required"}
	}
	return nil
}

func validateInvestment(inv *models.Investment) error {
	if strings.TrimSpace(inv.Name) == "" {
		return &ValidationError{Code: CodeMissingField, Field: "name", Message: "name is required"}
	}
	if err := checkAmount(inv.Amount); err != nil {
		return err
	}
	if !inv.PaymentMethod.Valid() {
		return &ValidationError{Code: CodeInvalidPaymentMethod, Field: "payment_method", Message: "unknown payment method " + string(inv.PaymentMethod)}
	}
	switch inv.Status {
	case models.InvestmentStatusActive, models.InvestmentStatusSold, models.InvestmentStatusMatured:
	default:
		return &ValidationError{Code: CodeInvalidStatus, Field: "status", Message: "unknown investment status " + string(inv.Status)}
	}
	if inv.Date.IsZero() {
		return &ValidationError{Code: CodeMissingField, Field: "date", Message: "investment date is required"}
	}
	return nil
}
