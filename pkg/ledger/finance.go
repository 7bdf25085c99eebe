package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcclellann/ledgerbook/pkg/logger"
	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/mcclellann/ledgerbook/pkg/store"
)

func (l *Ledger) CreateExpense(ctx context.Context, ownerID uuid.UUID, expense *models.Expense) error {
	expense.OwnerID = ownerID
	if expense.Date.IsZero() {
		expense.Date = l.now()
	}
	if expense.PaymentMethod == "" {
		expense.PaymentMethod = models.PaymentMethodCash
	}
	if err := validateExpense(expense); err != nil {
		return err
	}
	if err := l.storage.CreateExpense(ctx, expense); err != nil {
		logger.Error("ledger create expense failed", err, logger.Fields{"ownerId": ownerID})
		return persistenceError("create expense", err)
	}
	return nil
}

// GetExpense returns one of the owner's expenses. Expenses of other owners
// are reported as not found.
func (l *Ledger) GetExpense(ctx context.Context, ownerID, id uuid.UUID) (*models.Expense, error) {
	expense, err := l.storage.GetExpense(ctx, id)
	if err != nil {
		return nil, persistenceError("get expense", err)
	}
	if expense.OwnerID != ownerID {
		return nil, persistenceError("get expense", store.ErrNotFound)
	}
	return expense, nil
}

// ListExpenses returns the owner's expenses, newest first. A non-empty
// category keeps only expenses of exactly that category.
func (l *Ledger) ListExpenses(ctx context.Context, ownerID uuid.UUID, category string) ([]*models.Expense, error) {
	expenses, err := l.storage.ListExpenses(ctx, ownerID)
	if err != nil {
		return nil, persistenceError("list expenses", err)
	}
	if category == "" {
		return expenses, nil
	}

	filtered := make([]*models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Category == category {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// UpdateExpense merges the non-empty fields of update into the owner's
// expense and stores the result. update is overwritten with the stored record.
func (l *Ledger) UpdateExpense(ctx context.Context, ownerID uuid.UUID, update *models.Expense) error {
	existing, err := l.GetExpense(ctx, ownerID, update.ID)
	if err != nil {
		return err
	}
	merged := mergeExpense(*existing, update)
	if err := validateExpense(&merged); err != nil {
		return err
	}
	if err := l.storage.UpdateExpense(ctx, &merged); err != nil {
		logger.Error("ledger update expense failed", err, logger.Fields{"expenseId": merged.ID})
		return persistenceError("update expense", err)
	}
	*update = merged
	return nil
}

func (l *Ledger) DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := l.GetExpense(ctx, ownerID, id); err != nil {
		return err
	}
	if err := l.storage.DeleteExpense(ctx, id); err != nil {
		logger.Error("ledger delete expense failed", err, logger.Fields{"expenseId": id})
		return persistenceError("delete expense", err)
	}
	return nil
}

func (l *Ledger) CreateInvestment(ctx context.Context, ownerID uuid.UUID, investment *models.Investment) error {
	investment.OwnerID = ownerID
	if investment.Date.IsZero() {
		investment.Date = l.now()
	}
	if investment.Status == "" {
		investment.Status = models.InvestmentStatusActive
	}
	if investment.PaymentMethod == "" {
		investment.PaymentMethod = models.PaymentMethodCash
	}
	if err := validateInvestment(investment); err != nil {
		return err
	}
	if err := l.storage.CreateInvestment(ctx, investment); err != nil {
		logger.Error("ledger create investment failed", err, logger.Fields{"ownerId": ownerID})
		return persistenceError("create investment", err)
	}
	return nil
}

func (l *Ledger) GetInvestment(ctx context.Context, ownerID, id uuid.UUID) (*models.Investment, error) {
	investment, err := l.storage.GetInvestment(ctx, id)
	if err != nil {
		return nil, persistenceError("get investment", err)
	}
	if investment.OwnerID != ownerID {
		return nil, persistenceError("get investment", store.ErrNotFound)
	}
	return investment, nil
}

func (l *Ledger) ListInvestments(ctx context.Context, ownerID uuid.UUID) ([]*models.Investment, error) {
	investments, err := l.storage.ListInvestments(ctx, ownerID)
	if err != nil {
		return nil, persistenceError("list investments", err)
	}
	return investments, nil
}

// UpdateInvestment is UpdateExpense for investments.
func (l *Ledger) UpdateInvestment(ctx context.Context, ownerID uuid.UUID, update *models.Investment) error {
	existing, err := l.GetInvestment(ctx, ownerID, update.ID)
	if err != nil {
		return err
	}
	merged := mergeInvestment(*existing, update)
	if err := validateInvestment(&merged); err != nil {
		return err
	}
	if err := l.storage.UpdateInvestment(ctx, &merged); err != nil {
		logger.Error("ledger update investment failed", err, logger.Fields{"investmentId": merged.ID})
		return persistenceError("update investment", err)
	}
	*update = merged
	return nil
}

func (l *Ledger) DeleteInvestment(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := l.GetInvestment(ctx, ownerID, id); err != nil {
		return err
	}
	if err := l.storage.DeleteInvestment(ctx, id); err != nil {
		logger.Error("ledger delete investment failed", err, logger.Fields{"investmentId": id})
		return persistenceError("delete investment", err)
	}
	return nil
}

// Zero values in an update mean "unchanged". Owner, ID and CreatedAt always
// come from the stored record.
func mergeExpense(existing models.Expense, update *models.Expense) models.Expense {
	merged := existing
	if update.Category != "" {
		merged.Category = update.Category
	}
	if update.Subcategory != "" {
		merged.Subcategory = update.Subcategory
	}
	if !update.Amount.IsZero() {
		merged.Amount = update.Amount
	}
	if update.Description != "" {
		merged.Description = update.Description
	}
	if update.PaymentMethod != "" {
		merged.PaymentMethod = update.PaymentMethod
	}
	if update.Location != "" {
		merged.Location = update.Location
	}
	if !update.Date.IsZero() {
		merged.Date = models.DateOnly(update.Date)
	}
	return merged
}

func mergeInvestment(existing models.Investment, update *models.Investment) models.Investment {
	merged := existing
	if update.Name != "" {
		merged.Name = update.Name
	}
	if !update.Amount.IsZero() {
		merged.Amount = update.Amount
	}
	if update.Description != "" {
		merged.Description = update.Description
	}
	if update.Status != "" {
		merged.Status = update.Status
	}
	if update.PaymentMethod != "" {
		merged.PaymentMethod = update.PaymentMethod
	}
	if !update.Date.IsZero() {
		merged.Date = models.DateOnly(update.Date)
	}
	return merged
}
