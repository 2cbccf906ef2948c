package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"

	"github.com/segyhp/chama-engine/pkg/response"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Members   *MemberHandler
	Ledger    *LedgerHandler
	Loans     *LoanHandler
	Dividends *DividendHandler
	Health    *HealthHandler
}

// NewRouter wires the API routes. limiter may be nil to disable rate limiting.
func NewRouter(h Handlers, logger *slog.Logger, rateLimiter *limiter.Limiter) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	// Health check
	if h.Health != nil {
		router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
		router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)
	}

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	if rateLimiter != nil {
		api.Use(RateLimitMiddleware(rateLimiter))
	}

	api.HandleFunc("/members", h.Members.Register).Methods(http.MethodPost)
	api.HandleFunc("/members", h.Members.List).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberId}/role", h.Members.ChangeRole).Methods(http.MethodPatch)

	api.HandleFunc("/contributions", h.Ledger.RecordContribution).Methods(http.MethodPost)
	api.HandleFunc("/income", h.Ledger.RecordIncome).Methods(http.MethodPost)
	api.HandleFunc("/expenses", h.Ledger.RecordExpense).Methods(http.MethodPost)

	api.HandleFunc("/loans", h.Loans.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}", h.Loans.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/schedule", h.Loans.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/statement", h.Loans.GetStatement).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/repayments", h.Loans.RecordRepayment).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}/status/refresh", h.Loans.RefreshStatus).Methods(http.MethodPost)

	api.HandleFunc("/dividends/pool", h.Dividends.GetPool).Methods(http.MethodGet)
	api.HandleFunc("/dividends/calculations", h.Dividends.Calculate).Methods(http.MethodPost)
	api.HandleFunc("/dividends/calculations", h.Dividends.ListCalculations).Methods(http.MethodGet)
	api.HandleFunc("/dividends/calculations/{calculationId}", h.Dividends.GetCalculation).Methods(http.MethodGet)
	api.HandleFunc("/dividends/calculations/{calculationId}/transition", h.Dividends.Transition).Methods(http.MethodPost)
	api.HandleFunc("/dividends/calculations/{calculationId}/distribute", h.Dividends.Distribute).Methods(http.MethodPost)

	return router
}
