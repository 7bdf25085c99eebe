package ledger

import (
	"errors"
	"fmt"
)

type ValidationCode string

const (
	CodeAmountExceedsTotal   ValidationCode = "amount_exceeds_total"
	CodeMissingField         ValidationCode = "missing_field"
	CodeInvalidAmount        ValidationCode = "invalid_amount"
	CodeInvalidTotal         ValidationCode = "invalid_total"
	CodeInvalidPaymentMethod ValidationCode = "invalid_payment_method"
	CodeInvalidStatus        ValidationCode = "invalid_status"
	CodeNoOutstandingDue     ValidationCode = "no_outstanding_due"
	CodeInvalidDate          ValidationCode = "invalid_date"
	CodeInvalidParent        ValidationCode = "invalid_parent"
)

// ValidationError rejects a record before anything is written.
type ValidationError struct {
	Code    ValidationCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// PersistenceError wraps a failure reported by the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsPersistence reports whether err is, or wraps, a PersistenceError.
func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}
