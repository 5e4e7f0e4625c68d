package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"splitfair/internal/auth"
	"splitfair/internal/models"
	"splitfair/internal/service"
)

// Handler bundles the application services behind HTTP endpoints.
type Handler struct {
	dashboard *service.DashboardService
	contacts  *service.ContactService
	expenses  *service.ExpenseService
	users     *service.UserService
	auth      *service.AuthService
	verifier  *auth.WebhookVerifier
}

// NewHandler creates a Handler over the given services. verifier may be
// nil, which disables the identity webhook endpoint.
func NewHandler(
	dashboard *service.DashboardService,
	contacts *service.ContactService,
	expenses *service.ExpenseService,
	users *service.UserService,
	authSvc *service.AuthService,
	verifier *auth.WebhookVerifier,
) *Handler {
	return &Handler{
		dashboard: dashboard,
		contacts:  contacts,
		expenses:  expenses,
		users:     users,
		auth:      authSvc,
		verifier:  verifier,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{ID: user.ID, Name: user.Name, Email: user.Email, ImageURL: user.ImageURL}
}

// Register handles local account creation.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: session.Token, User: toUserResponse(session.User)})
}

// Login handles local authentication.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: session.Token, User: toUserResponse(session.User)})
}

// IdentityWebhook receives user lifecycle events from the identity
// provider, verifies their signature and applies them to the user table.
func (h *Handler) IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		http.Error(w, "webhook not configured", http.StatusNotFound)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	err = h.verifier.Verify(payload,
		r.Header.Get("svix-id"),
		r.Header.Get("svix-timestamp"),
		r.Header.Get("svix-signature"),
	)
	if err != nil {
		slog.Warn("Identity webhook rejected", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var event auth.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	if err := h.users.SyncProviderUser(r.Context(), &event); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetUserBalances returns the viewer's personal balance report.
func (h *Handler) GetUserBalances(w http.ResponseWriter, r *http.Request) {
	report, err := h.dashboard.GetUserBalances(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetTotalSpent returns the viewer's share of spending this calendar year.
func (h *Handler) GetTotalSpent(w http.ResponseWriter, r *http.Request) {
	total, err := h.dashboard.GetTotalSpent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"totalSpent": total})
}

// GetMonthlySpending returns the viewer's 12 monthly spending buckets.
func (h *Handler) GetMonthlySpending(w http.ResponseWriter, r *http.Request) {
	months, err := h.dashboard.GetMonthlySpending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, months)
}

// GetUserGroups returns the viewer's groups, each annotated with balance.
func (h *Handler) GetUserGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.dashboard.GetUserGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// GetAllContacts returns the viewer's contacts and groups.
func (h *Handler) GetAllContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.GetAllContacts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

type createGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members"`
}

// CreateGroup creates a group with the viewer as admin.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.contacts.CreateGroup(r.Context(), req.Name, req.Description, req.Members)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": group.ID})
}

// CreateExpense records a new expense.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var input service.CreateExpenseInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, err)
		return
	}

	expense, err := h.expenses.CreateExpense(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": expense.ID})
}

// CreateSettlement records a direct payment.
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var input service.CreateSettlementInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.expenses.CreateSettlement(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": settlement.ID})
}

// SearchUsers returns users whose name matches the q prefix.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	results, err := h.users.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
