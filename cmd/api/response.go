package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcclellann/ledgerbook/pkg/ledger"
	"github.com/mcclellann/ledgerbook/pkg/logger"
	"github.com/mcclellann/ledgerbook/pkg/store"
)

// Response is the envelope every endpoint answers with.
type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func successResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func errorResponse(message string, errs ...string) Response[struct{}] {
	return Response[struct{}]{
		Success: false,
		Message: message,
		Errors:  errs,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encode response failed", err, nil)
	}
}

func writeOK[T any](w http.ResponseWriter, status int, message string, data T) {
	writeJSON(w, status, successResponse(message, data))
}

func writeMessage(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, errorResponse(message, errs...))
}

// writeError maps ledger and store errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, "validation failed", string(verr.Code), verr.Message)
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "record not found")
	default:
		logger.Error("request failed", err, logger.Fields{"method": r.Method, "path": r.URL.Path})
		writeMessage(w, http.StatusInternalServerError, "internal error", "Unable to process the request right now")
	}
}
