package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mcclellann/ledgerbook/pkg/ledger"
	"github.com/mcclellann/ledgerbook/pkg/models"
	"github.com/shopspring/decimal"
)

// Dates are accepted as calendar days or RFC 3339 timestamps. An empty date
// is left zero so the ledger applies its default.
func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, &ledger.ValidationError{
		Code:    ledger.CodeInvalidDate,
		Field:   field,
		Message: "date must be YYYY-MM-DD or RFC 3339",
	}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, &ledger.ValidationError{
			Code:    ledger.CodeMissingField,
			Field:   "id",
			Message: "invalid id",
		}
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

type paymentRequest struct {
	CustomerName     string               `json:"customer_name"`
	Amount           decimal.Decimal      `json:"amount"`
	TotalAmount      decimal.NullDecimal  `json:"total_amount"`
	IsPartialPayment bool                 `json:"is_partial_payment"`
	ParentPaymentID  *uuid.UUID           `json:"parent_payment_id"`
	PaymentMethod    models.PaymentMethod `json:"payment_method"`
	Description      string               `json:"description"`
	Date             string               `json:"date"`
}

// paymentPatchRequest keeps total_amount raw so an explicit null, which
// clears the total, can be told apart from an absent field.
type paymentPatchRequest struct {
	CustomerName     *string               `json:"customer_name"`
	Amount           *decimal.Decimal      `json:"amount"`
	TotalAmount      json.RawMessage       `json:"total_amount"`
	IsPartialPayment *bool                 `json:"is_partial_payment"`
	PaymentMethod    *models.PaymentMethod `json:"payment_method"`
	Description      *string               `json:"description"`
	Date             *string               `json:"date"`
}

func (req paymentPatchRequest) patch() (models.PaymentPatch, error) {
	patch := models.PaymentPatch{
		CustomerName:     req.CustomerName,
		Amount:           req.Amount,
		IsPartialPayment: req.IsPartialPayment,
		PaymentMethod:    req.PaymentMethod,
		Description:      req.Description,
	}
	if len(req.TotalAmount) > 0 {
		var total decimal.NullDecimal
		if !bytes.Equal(req.TotalAmount, []byte("null")) {
			if err := json.Unmarshal(req.TotalAmount, &total); err != nil {
				return patch, &ledger.ValidationError{
					Code:    ledger.CodeInvalidTotal,
					Field:   "total_amount",
					Message: "total_amount must be a number or null",
				}
			}
		}
		patch.TotalAmount = &total
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			return patch, err
		}
		if !date.IsZero() {
			patch.Date = &date
		}
	}
	return patch, nil
}

func (s *Server) createPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payment, err := s.ledger.CreatePayment(r.Context(), ownerFrom(r.Context()), models.NewPayment{
		CustomerName:     req.CustomerName,
		Amount:           req.Amount,
		TotalAmount:      req.TotalAmount,
		IsPartialPayment: req.IsPartialPayment,
		ParentPaymentID:  req.ParentPaymentID,
		PaymentMethod:    req.PaymentMethod,
		Description:      req.Description,
		Date:             date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "payment recorded", payment)
}

func (s *Server) listPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	method := models.PaymentMethod(r.URL.Query().Get("method"))
	if method != "" && !method.Valid() {
		writeMessage(w, http.StatusBadRequest, "validation failed", string(ledger.CodeInvalidPaymentMethod))
		return
	}

	payments, err := s.ledger.ListPayments(r.Context(), ownerFrom(r.Context()), method)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "payments fetched", payments)
}

func (s *Server) paymentTotalsHandler(w http.ResponseWriter, r *http.Request) {
	method := models.PaymentMethod(r.URL.Query().Get("method"))
	if method != "" && !method.Valid() {
		writeMessage(w, http.StatusBadRequest, "validation failed", string(ledger.CodeInvalidPaymentMethod))
		return
	}

	totals, err := s.ledger.PaymentTotals(r.Context(), ownerFrom(r.Context()), method)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "payment totals fetched", totals)
}

func (s *Server) paymentMethodCountsHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := s.ledger.PaymentMethodCounts(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "payment method counts fetched", counts)
}

func (s *Server) getPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payment, err := s.ledger.GetOwnedPayment(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "payment fetched", payment)
}

func (s *Server) updatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req paymentPatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.ledger.GetOwnedPayment(r.Context(), ownerFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := s.ledger.UpdatePayment(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "payment updated", payment)
}

func (s *Server) deletePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.ledger.GetOwnedPayment(r.Context(), ownerFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeletePayment(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) followUpPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount        decimal.Decimal      `json:"amount"`
		PaymentMethod models.PaymentMethod `json:"payment_method"`
		Description   string               `json:"description"`
		Date          string               `json:"date"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payment, err := s.ledger.AddFollowUpPayment(r.Context(), ownerFrom(r.Context()), mux.Vars(r)["name"], ledger.FollowUp{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
		Date:          date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "payment recorded", payment)
}

func (s *Server) customersWithDueHandler(w http.ResponseWriter, r *http.Request) {
	customers, err := s.ledger.ListCustomersWithDue(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "customers with due fetched", customers)
}

func (s *Server) customerDueHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	due, err := s.ledger.GetCustomerDueAmount(r.Context(), ownerFrom(r.Context()), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "customer due fetched", struct {
		CustomerName string          `json:"customer_name"`
		TotalDue     decimal.Decimal `json:"total_due"`
	}{name, due})
}

func (s *Server) dueSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.GetDueAmountSummary(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "due summary fetched", summary)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.sessions.End(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}
