// Package analytics aggregates an owner's payments, expenses and investments
// into the figures shown on the dashboard.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/mcclellann/ledgerbook/pkg/store"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Source is the read side of the store that analytics needs.
type Source interface {
	ListPayments(ctx context.Context, ownerID uuid.UUID) ([]*models.PaymentRecord, error)
	ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]*models.Expense, error)
	ListInvestments(ctx context.Context, ownerID uuid.UUID) ([]*models.Investment, error)
}

var _ Source = (store.Storage)(nil)

// trendMonth is the month length used for trend windows.
const trendMonth = 30 * 24 * time.Hour

type Service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

// FinancialSummary loads the three record sets concurrently and totals them.
// Net worth is investments plus customer payments minus expenses.
func (s *Service) FinancialSummary(ctx context.Context, ownerID uuid.UUID) (models.FinancialSummary, error) {
	var (
		payments    []*models.PaymentRecord
		expenses    []*models.Expense
		investments []*models.Investment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, err = s.source.ListPayments(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.source.ListExpenses(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		investments, err = s.source.ListInvestments(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list investments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.FinancialSummary{}, err
	}

	totalPayments := decimal.Zero
	for _, p := range payments {
		totalPayments = totalPayments.Add(p.Amount)
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}
	totalInvestments := decimal.Zero
	for _, inv := range investments {
		totalInvestments = totalInvestments.Add(inv.Amount)
	}

	// TODO: restrict MonthlyExpenses and MonthlyIncome to the current calendar month.
	return models.FinancialSummary{
		TotalInvestments:      totalInvestments,
		TotalExpenses:         totalExpenses,
		TotalCustomerPayments: totalPayments,
		NetWorth:              totalInvestments.Add(totalPayments).Sub(totalExpenses),
		MonthlyExpenses:       totalExpenses,
		MonthlyIncome:         totalPayments,
	}, nil
}

// ExpenseBreakdown sums expense amounts per category.
func (s *Service) ExpenseBreakdown(ctx context.Context, ownerID uuid.UUID) (map[string]decimal.Decimal, error) {
	expenses, err := s.source.ListExpenses(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	breakdown := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		breakdown[e.Category] = breakdown[e.Category].Add(e.Amount)
	}
	return breakdown, nil
}

// IncomeTrend returns customer payments dated within the last months*30 days,
// oldest first.
func (s *Service) IncomeTrend(ctx context.Context, ownerID uuid.UUID, months int) ([]models.TrendPoint, error) {
	payments, err := s.source.ListPayments(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	since := s.since(months)
	points := make([]models.TrendPoint, 0, len(payments))
	for _, p := range payments {
		if !p.Date.Before(since) {
			points = append(points, models.TrendPoint{Date: p.Date, Amount: p.Amount})
		}
	}
	sortPoints(points)
	return points, nil
}

// ExpenseTrend is IncomeTrend for expenses, keeping the category of each point.
func (s *Service) ExpenseTrend(ctx context.Context, ownerID uuid.UUID, months int) ([]models.TrendPoint, error) {
	expenses, err := s.source.ListExpenses(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	since := s.since(months)
	points := make([]models.TrendPoint, 0, len(expenses))
	for _, e := range expenses {
		if !e.Date.Before(since) {
			points = append(points, models.TrendPoint{Date: e.Date, Amount: e.Amount, Category: e.Category})
		}
	}
	sortPoints(points)
	return points, nil
}

func (s *Service) since(months int) time.Time {
	if months <= 0 {
		months = 12
	}
	return models.DateOnly(s.now().Add(-time.Duration(months) * trendMonth))
}

func sortPoints(points []models.TrendPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
}
