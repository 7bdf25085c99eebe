package ledger

import (
	"sort"
	"strings"

	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/shopspring/decimal"
)

// CustomersWithDue groups payments by exact customer name and returns the
// customers that still owe money, largest due first.
//
// A customer's due is the DueAmount of their most recently created record,
// not a sum over history and not the record with the latest Date. Each
// follow-up partial payment supersedes the due carried by the one before it.
func CustomersWithDue(payments []*models.PaymentRecord) []models.CustomerDue {
	type group struct {
		summary models.CustomerDue
		latest  *models.PaymentRecord
	}

	groups := make(map[string]*group)
	for _, p := range payments {
		if p == nil {
			continue
		}
		g, ok := groups[p.CustomerName]
		if !ok {
			g = &group{summary: models.CustomerDue{CustomerName: p.CustomerName, LastPaymentDate: p.Date}}
			groups[p.CustomerName] = g
		}
		g.summary.PaymentCount++
		if p.Date.After(g.summary.LastPaymentDate) {
			g.summary.LastPaymentDate = p.Date
		}
		if g.latest == nil || createdAfter(p, g.latest) {
			g.latest = p
		}
	}

	result := make([]models.CustomerDue, 0, len(groups))
	for _, g := range groups {
		g.summary.TotalDue = dueOf(g.latest)
		if g.summary.TotalDue.IsPositive() {
			result = append(result, g.summary)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if c := result[i].TotalDue.Cmp(result[j].TotalDue); c != 0 {
			return c > 0
		}
		return result[i].CustomerName < result[j].CustomerName
	})
	return result
}

// createdAfter orders records by CreatedAt. Equal timestamps fall back to the
// ID so the choice does not depend on the order the store returned rows in.
func createdAfter(a, b *models.PaymentRecord) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return strings.Compare(a.ID.String(), b.ID.String()) > 0
}

func dueOf(p *models.PaymentRecord) decimal.Decimal {
	if p == nil || !p.DueAmount.Valid || !p.DueAmount.Decimal.IsPositive() {
		return decimal.Zero
	}
	return p.DueAmount.Decimal
}

// CustomerDueAmount returns the due of a single customer, zero when the
// customer has nothing outstanding or no payments at all.
func CustomerDueAmount(customers []models.CustomerDue, customerName string) decimal.Decimal {
	for _, c := range customers {
		if c.CustomerName == customerName {
			return c.TotalDue
		}
	}
	return decimal.Zero
}

// SummarizeDue aggregates the output of CustomersWithDue.
func SummarizeDue(customers []models.CustomerDue) models.DueSummary {
	total := decimal.Zero
	for _, c := range customers {
		total = total.Add(c.TotalDue)
	}

	summary := models.DueSummary{
		TotalDueAmount:        total,
		CustomersWithDue:      len(customers),
		AveragePerCustomerDue: decimal.Zero,
	}
	if len(customers) > 0 {
		summary.AveragePerCustomerDue = total.Div(decimal.NewFromInt(int64(len(customers))))
	}
	return summary
}

// TotalPaid sums the amounts actually paid, ignoring totals and dues.
func TotalPaid(payments []*models.PaymentRecord) models.PaymentTotals {
	totals := models.PaymentTotals{TotalAmount: decimal.Zero}
	for _, p := range payments {
		if p == nil {
			continue
		}
		totals.Count++
		totals.TotalAmount = totals.TotalAmount.Add(p.Amount)
	}
	return totals
}
