package main

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/shopspring/decimal"
)

type expenseRequest struct {
	Category      string               `json:"category"`
	Subcategory   string               `json:"subcategory"`
	Amount        decimal.Decimal      `json:"amount"`
	Description   string               `json:"description"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Location      string               `json:"location"`
	Date          string               `json:"date"`
}

func (req expenseRequest) expense() (*models.Expense, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	return &models.Expense{
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Location:      req.Location,
		Date:          date,
	}, nil
}

type investmentRequest struct {
	Name          string                  `json:"name"`
	Amount        decimal.Decimal         `json:"amount"`
	Description   string                  `json:"description"`
	Status        models.InvestmentStatus `json:"status"`
	PaymentMethod models.PaymentMethod    `json:"payment_method"`
	Date          string                  `json:"date"`
}

func (req investmentRequest) investment() (*models.Investment, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	return &models.Investment{
		Name:          req.Name,
		Amount:        req.Amount,
		Description:   req.Description,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		Date:          date,
	}, nil
}

func (s *Server) createExpenseHandler(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	expense, err := req.expense()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.CreateExpense(r.Context(), ownerFrom(r.Context()), expense); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "expense recorded", expense)
}

func (s *Server) listExpensesHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	expenses, err := s.ledger.ListExpenses(r.Context(), ownerFrom(r.Context()), category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "expenses fetched", expenses)
}

func (s *Server) getExpenseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.ledger.GetExpense(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "expense fetched", expense)
}

func (s *Server) updateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	expense, err := req.expense()
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense.ID = id

	if err := s.ledger.UpdateExpense(r.Context(), ownerFrom(r.Context()), expense); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "expense updated", expense)
}

func (s *Server) deleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteExpense(r.Context(), ownerFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	investment, err := req.investment()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.CreateInvestment(r.Context(), ownerFrom(r.Context()), investment); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "investment recorded", investment)
}

func (s *Server) listInvestmentsHandler(w http.ResponseWriter, r *http.Request) {
	investments, err := s.ledger.ListInvestments(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "investments fetched", investments)
}

func (s *Server) getInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	investment, err := s.ledger.GetInvestment(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "investment fetched", investment)
}

func (s *Server) updateInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req investmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	investment, err := req.investment()
	if err != nil {
		writeError(w, r, err)
		return
	}
	investment.ID = id

	if err := s.ledger.UpdateInvestment(r.Context(), ownerFrom(r.Context()), investment); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "investment updated", investment)
}

func (s *Server) deleteInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteInvestment(r.Context(), ownerFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) financialSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analytics.FinancialSummary(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "financial summary fetched", summary)
}

func (s *Server) expenseBreakdownHandler(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.analytics.ExpenseBreakdown(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "expense breakdown fetched", breakdown)
}

func (s *Server) trendHandler(w http.ResponseWriter, r *http.Request) {
	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeMessage(w, http.StatusBadRequest, "validation failed", "months must be a positive integer")
			return
		}
		months = n
	}

	var (
		points []models.TrendPoint
		err    error
	)
	switch mux.Vars(r)["kind"] {
	case "income":
		points, err = s.analytics.IncomeTrend(r.Context(), ownerFrom(r.Context()), months)
	case "expenses":
		points, err = s.analytics.ExpenseTrend(r.Context(), ownerFrom(r.Context()), months)
	default:
		writeMessage(w, http.StatusNotFound, "unknown trend")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "trend fetched", points)
}
