package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/ledgerbook/pkg/logger"
	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/mcclellann/ledgerbook/pkg/store"
	"github.com/shopspring/decimal"
)

// Ledger validates and records payments, expenses and investments, and
// computes customer due balances from whatever the store currently holds.
// It keeps no state between calls.
type Ledger struct {
	storage store.Storage
	now     func() time.Time
}

// NewLedger creates a new Ledger with a given Storage implementation.
func NewLedger(s store.Storage) *Ledger {
	return &Ledger{
		storage: s,
		now:     time.Now,
	}
}

// CreatePayment validates a new payment, derives its due amount and stores it.
// Nothing is written when validation fails.
func (l *Ledger) CreatePayment(ctx context.Context, ownerID uuid.UUID, in models.NewPayment) (*models.PaymentRecord, error) {
	logger.Info("ledger create payment", logger.Fields{
		"ownerId":      ownerID,
		"customerName": in.CustomerName,
		"isPartial":    in.IsPartialPayment,
	})

	date := in.Date
	if date.IsZero() {
		date = l.now()
	}
	payment := &models.PaymentRecord{
		OwnerID:          ownerID,
		CustomerName:     in.CustomerName,
		Amount:           in.Amount,
		TotalAmount:      in.TotalAmount,
		IsPartialPayment: in.IsPartialPayment,
		ParentPaymentID:  in.ParentPaymentID,
		PaymentMethod:    in.PaymentMethod,
		Description:      in.Description,
		Date:             models.DateOnly(date),
	}
	if payment.PaymentMethod == "" {
		payment.PaymentMethod = models.PaymentMethodCash
	}

	due, err := ValidatePayment(payment)
	if err != nil {
		logger.Error("ledger create payment validation failed", err, logger.Fields{"ownerId": ownerID})
		return nil, err
	}
	payment.DueAmount = due

	if payment.ParentPaymentID != nil {
		if err := l.checkParent(ctx, payment); err != nil {
			logger.Error("ledger create payment parent check failed", err, logger.Fields{"ownerId": ownerID})
			return nil, err
		}
	}

	if err := l.storage.CreatePayment(ctx, payment); err != nil {
		logger.Error("ledger create payment failed", err, logger.Fields{"ownerId": ownerID})
		return nil, persistenceError("create payment", err)
	}

	logger.Info("ledger create payment success", logger.Fields{
		"paymentId": payment.ID,
		"amount":    payment.Amount,
		"dueAmount": payment.DueAmount,
	})
	return payment, nil
}

// checkParent requires the linked parent to be a payment of the same owner
// and customer. A parent of another owner is indistinguishable from a
// missing one.
func (l *Ledger) checkParent(ctx context.Context, payment *models.PaymentRecord) error {
	parent, err := l.storage.GetPayment(ctx, *payment.ParentPaymentID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return persistenceError("get parent payment", err)
	}
	if err != nil || parent.OwnerID != payment.OwnerID || parent.CustomerName != payment.CustomerName {
		return &ValidationError{
			Code:    CodeInvalidParent,
			Field:   "parent_payment_id",
			Message: "parent payment not found for this customer",
		}
	}
	return nil
}

// UpdatePayment merges patch into the stored record, re-validates the result
// and re-derives its due amount before writing it back.
func (l *Ledger) UpdatePayment(ctx context.Context, id uuid.UUID, patch models.PaymentPatch) (*models.PaymentRecord, error) {
	logger.Info("ledger update payment", logger.Fields{"paymentId": id})

	existing, err := l.storage.GetPayment(ctx, id)
	if err != nil {
		logger.Error("ledger update payment lookup failed", err, logger.Fields{"paymentId": id})
		return nil, persistenceError("get payment", err)
	}

	merged := ApplyPatch(*existing, patch)
	due, err := ValidatePayment(&merged)
	if err != nil {
		logger.Error("ledger update payment validation failed", err, logger.Fields{"paymentId": id})
		return nil, err
	}
	merged.DueAmount = due

	if err := l.storage.UpdatePayment(ctx, &merged); err != nil {
		logger.Error("ledger update payment failed", err, logger.Fields{"paymentId": id})
		return nil, persistenceError("update payment", err)
	}

	logger.Info("ledger update payment success", logger.Fields{
		"paymentId": id,
		"dueAmount": merged.DueAmount,
	})
	return &merged, nil
}

// DeletePayment permanently removes a payment. Due balances reflect the
// deletion on the next read.
func (l *Ledger) DeletePayment(ctx context.Context, id uuid.UUID) error {
	if err := l.storage.DeletePayment(ctx, id); err != nil {
		logger.Error("ledger delete payment failed", err, logger.Fields{"paymentId": id})
		return persistenceError("delete payment", err)
	}
	logger.Info("ledger delete payment success", logger.Fields{"paymentId": id})
	return nil
}

// GetPayment retrieves a payment by its ID.
func (l *Ledger) GetPayment(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, error) {
	p, err := l.storage.GetPayment(ctx, id)
	if err != nil {
		return nil, persistenceError("get payment", err)
	}
	return p, nil
}

// GetOwnedPayment is GetPayment restricted to one owner. A payment of another
// owner is reported as not found.
func (l *Ledger) GetOwnedPayment(ctx context.Context, ownerID, id uuid.UUID) (*models.PaymentRecord, error) {
	p, err := l.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, persistenceError("get payment", store.ErrNotFound)
	}
	return p, nil
}

// ListPayments returns an owner's payments, newest first. An empty method
// returns every payment.
func (l *Ledger) ListPayments(ctx context.Context, ownerID uuid.UUID, method models.PaymentMethod) ([]*models.PaymentRecord, error) {
	payments, err := l.storage.ListPayments(ctx, ownerID)
	if err != nil {
		logger.Error("ledger list payments failed", err, logger.Fields{"ownerId": ownerID})
		return nil, persistenceError("list payments", err)
	}
	if method == "" {
		return payments, nil
	}

	filtered := make([]*models.PaymentRecord, 0, len(payments))
	for _, p := range payments {
		if p.PaymentMethod == method {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// PaymentMethodCounts counts an owner's payments per payment method.
func (l *Ledger) PaymentMethodCounts(ctx context.Context, ownerID uuid.UUID) (map[models.PaymentMethod]int, error) {
	payments, err := l.ListPayments(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.PaymentMethod]int)
	for _, p := range payments {
		counts[p.PaymentMethod]++
	}
	return counts, nil
}

// PaymentTotals counts and sums the payments ListPayments returns for the
// same method filter.
func (l *Ledger) PaymentTotals(ctx context.Context, ownerID uuid.UUID, method models.PaymentMethod) (models.PaymentTotals, error) {
	payments, err := l.ListPayments(ctx, ownerID, method)
	if err != nil {
		return models.PaymentTotals{}, err
	}
	return TotalPaid(payments), nil
}

// ListCustomersWithDue recomputes every customer's due from the store.
func (l *Ledger) ListCustomersWithDue(ctx context.Context, ownerID uuid.UUID) ([]models.CustomerDue, error) {
	payments, err := l.storage.ListPayments(ctx, ownerID)
	if err != nil {
		logger.Error("ledger list customers with due failed", err, logger.Fields{"ownerId": ownerID})
		return nil, persistenceError("list payments", err)
	}
	return CustomersWithDue(payments), nil
}

// GetCustomerDueAmount returns what one customer still owes, zero when
// nothing is outstanding.
func (l *Ledger) GetCustomerDueAmount(ctx context.Context, ownerID uuid.UUID, customerName string) (decimal.Decimal, error) {
	customers, err := l.ListCustomersWithDue(ctx, ownerID)
	if err != nil {
		return decimal.Zero, err
	}
	return CustomerDueAmount(customers, customerName), nil
}

func (l *Ledger) GetDueAmountSummary(ctx context.Context, ownerID uuid.UUID) (models.DueSummary, error) {
	customers, err := l.ListCustomersWithDue(ctx, ownerID)
	if err != nil {
		return models.DueSummary{}, err
	}
	return SummarizeDue(customers), nil
}

// FollowUp is a payment made against a customer's outstanding due.
type FollowUp struct {
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Description   string               `json:"description,omitempty"`
	Date          time.Time            `json:"date"`
}

// AddFollowUpPayment records a partial payment whose total is the customer's
// current due, linked to the record that carried that due.
func (l *Ledger) AddFollowUpPayment(ctx context.Context, ownerID uuid.UUID, customerName string, in FollowUp) (*models.PaymentRecord, error) {
	payments, err := l.storage.ListPayments(ctx, ownerID)
	if err != nil {
		return nil, persistenceError("list payments", err)
	}

	latest := latestPayment(payments, customerName)
	due := dueOf(latest)
	if !due.IsPositive() {
		return nil, &ValidationError{
			Code:    CodeNoOutstandingDue,
			Field:   "customer_name",
			Message: "customer " + customerName + " has no outstanding due",
		}
	}

	return l.CreatePayment(ctx, ownerID, models.NewPayment{
		CustomerName:     customerName,
		Amount:           in.Amount,
		TotalAmount:      decimal.NewNullDecimal(due),
		IsPartialPayment: true,
		ParentPaymentID:  &latest.ID,
		PaymentMethod:    in.PaymentMethod,
		Description:      in.Description,
		Date:             in.Date,
	})
}

func latestPayment(payments []*models.PaymentRecord, customerName string) *models.PaymentRecord {
	var latest *models.PaymentRecord
	for _, p := range payments {
		if p == nil || p.CustomerName != customerName {
			continue
		}
		if latest == nil || createdAfter(p, latest) {
			latest = p
		}
	}
	return latest
}
