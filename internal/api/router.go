package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"splitfair/internal/auth"
	"splitfair/internal/middleware"
)

// NewRouter builds the HTTP route table. Routes under /api (except
// register and login) require a valid bearer token.
func NewRouter(h *Handler, jwtManager *auth.JWTManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics, middleware.Logging)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/webhooks/identity", h.IdentityWebhook).Methods(http.MethodPost)

	r.HandleFunc("/api/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/login", h.Login).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuth(jwtManager))

	protected.HandleFunc("/dashboard/balances", h.GetUserBalances).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard/spending/total", h.GetTotalSpent).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard/spending/monthly", h.GetMonthlySpending).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard/groups", h.GetUserGroups).Methods(http.MethodGet)

	protected.HandleFunc("/contacts", h.GetAllContacts).Methods(http.MethodGet)
	protected.HandleFunc("/groups", h.CreateGroup).Methods(http.MethodPost)
	protected.HandleFunc("/expenses", h.CreateExpense).Methods(http.MethodPost)
	protected.HandleFunc("/settlements", h.CreateSettlement).Methods(http.MethodPost)
	protected.HandleFunc("/users/search", h.SearchUsers).Methods(http.MethodGet)

	return r
}
