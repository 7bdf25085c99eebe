package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mcclellann/ledgerbook/pkg/analytics"
	"github.com/mcclellann/ledgerbook/pkg/config"
	"github.com/mcclellann/ledgerbook/pkg/ledger"
	"github.com/mcclellann/ledgerbook/pkg/logger"
	"github.com/mcclellann/ledgerbook/pkg/session"
	"github.com/mcclellann/ledgerbook/pkg/store"
)

// Server holds the ledger and the services built on the same storage.
type Server struct {
	ledger       *ledger.Ledger
	analytics    *analytics.Service
	sessions     *session.Tracker
	storage      store.Storage // Keep a reference to the storage to close it
	secret       []byte
	storeTimeout time.Duration
}

func NewServer(s store.Storage, cfg config.Config) *Server {
	return &Server{
		ledger:       ledger.NewLedger(s),
		analytics:    analytics.NewService(s),
		sessions:     session.NewTracker(cfg.IdleTimeout, logSessionEnd),
		storage:      s,
		secret:       []byte(cfg.JWTSecret),
		storeTimeout: cfg.StoreTimeout,
	}
}

func logSessionEnd(sess *session.Session) {
	logger.Info("session ended", logger.Fields{
		"ownerId":  sess.Owner,
		"started":  sess.Started,
		"lastSeen": sess.LastSeen(),
	})
}

func (s *Server) routes() *mux.Router {
	api := mux.NewRouter()
	api.Use(s.authenticate)

	api.HandleFunc("/payments", s.listPaymentsHandler).Methods("GET")
	api.HandleFunc("/payments", s.createPaymentHandler).Methods("POST")
	api.HandleFunc("/payments/methods", s.paymentMethodCountsHandler).Methods("GET")
	api.HandleFunc("/payments/total", s.paymentTotalsHandler).Methods("GET")
	api.HandleFunc("/payments/{id}", s.getPaymentHandler).Methods("GET")
	api.HandleFunc("/payments/{id}", s.updatePaymentHandler).Methods("PUT")
	api.HandleFunc("/payments/{id}", s.deletePaymentHandler).Methods("DELETE")

	api.HandleFunc("/customers/due", s.customersWithDueHandler).Methods("GET")
	api.HandleFunc("/customers/due/summary", s.dueSummaryHandler).Methods("GET")
	api.HandleFunc("/customers/{name}/due", s.customerDueHandler).Methods("GET")
	api.HandleFunc("/customers/{name}/payments", s.followUpPaymentHandler).Methods("POST")

	api.HandleFunc("/expenses", s.listExpensesHandler).Methods("GET")
	api.HandleFunc("/expenses", s.createExpenseHandler).Methods("POST")
	api.HandleFunc("/expenses/{id}", s.getExpenseHandler).Methods("GET")
	api.HandleFunc("/expenses/{id}", s.updateExpenseHandler).Methods("PUT")
	api.HandleFunc("/expenses/{id}", s.deleteExpenseHandler).Methods("DELETE")

	api.HandleFunc("/investments", s.listInvestmentsHandler).Methods("GET")
	api.HandleFunc("/investments", s.createInvestmentHandler).Methods("POST")
	api.HandleFunc("/investments/{id}", s.getInvestmentHandler).Methods("GET")
	api.HandleFunc("/investments/{id}", s.updateInvestmentHandler).Methods("PUT")
	api.HandleFunc("/investments/{id}", s.deleteInvestmentHandler).Methods("DELETE")

	api.HandleFunc("/analytics/summary", s.financialSummaryHandler).Methods("GET")
	api.HandleFunc("/analytics/expenses/breakdown", s.expenseBreakdownHandler).Methods("GET")
	api.HandleFunc("/analytics/trends/{kind}", s.trendHandler).Methods("GET")

	api.HandleFunc("/logout", s.logoutHandler).Methods("POST")
	return api
}

func openStore(ctx context.Context, cfg config.Config) (store.Storage, error) {
	if cfg.StoreDriver == "postgres" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	lite, err := store.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return lite, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	storage, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.StoreDriver, err)
	}
	defer storage.Close()

	server := NewServer(storage, cfg)

	logger.Info("server starting", logger.Fields{
		"addr":        cfg.HTTPAddr,
		"store":       cfg.StoreDriver,
		"idleTimeout": cfg.IdleTimeout.String(),
	})
	if err := http.ListenAndServe(cfg.HTTPAddr, server.routes()); err != nil {
		logger.Error("server stopped", err, nil)
	}
}
