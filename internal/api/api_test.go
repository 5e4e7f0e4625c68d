package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"splitfair/internal/auth"
	"splitfair/internal/service"
	"splitfair/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitfair-api-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	handler := NewHandler(
		service.NewDashboardService(store),
		service.NewContactService(store),
		service.NewExpenseService(store),
		service.NewUserService(store),
		service.NewAuthService(authenticator, jwtManager),
		nil,
	)

	server := httptest.NewServer(NewRouter(handler, jwtManager))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, url, token string, out any) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if out != nil && resp.StatusCode == http.StatusOK {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp
}

func registerUser(t *testing.T, serverURL, name string) (token, userID string) {
	t.Helper()

	resp := postJSON(t, serverURL+"/api/register", "", map[string]string{
		"email":    name + "@example.com",
		"name":     name,
		"password": "correct-horse",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Register returned %d, want 201", resp.StatusCode)
	}

	var session struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("Failed to decode session: %v", err)
	}
	return session.Token, session.User.ID
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	server := newTestServer(t)

	token, userID := registerUser(t, server.URL, "Alice")
	if token == "" || userID == "" {
		t.Fatal("Register returned empty token or user ID")
	}

	t.Run("login with right password", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/login", "", map[string]string{
			"email":    "Alice@example.com",
			"password": "correct-horse",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Login returned %d, want 200", resp.StatusCode)
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/login", "", map[string]string{
			"email":    "Alice@example.com",
			"password": "wrong",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Login returned %d, want 401", resp.StatusCode)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/register", "", map[string]string{
			"email":    "short@example.com",
			"password": "short",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Register returned %d, want 400", resp.StatusCode)
		}
	})
}

func TestAPI_AuthRequired(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{
		"/api/dashboard/balances",
		"/api/dashboard/spending/total",
		"/api/dashboard/spending/monthly",
		"/api/dashboard/groups",
		"/api/contacts",
		"/api/users/search?q=a",
	} {
		resp := getJSON(t, server.URL+path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s returned %d without token, want 401", path, resp.StatusCode)
		}
	}

	resp := getJSON(t, server.URL+"/healthz", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz returned %d, want 200", resp.StatusCode)
	}
}

func TestAPI_ExpenseToBalanceFlow(t *testing.T) {
	server := newTestServer(t)

	aliceToken, aliceID := registerUser(t, server.URL, "Alice")
	bobToken, bobID := registerUser(t, server.URL, "Bob")

	resp := postJSON(t, server.URL+"/api/expenses", aliceToken, map[string]any{
		"description":  "Dinner",
		"amount":       100.0,
		"paidByUserId": aliceID,
		"splits": []map[string]any{
			{"userId": aliceID, "amount": 50.0},
			{"userId": bobID, "amount": 50.0},
		},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("CreateExpense returned %d, want 201", resp.StatusCode)
	}

	var report struct {
		YouAreOwed   float64 `json:"youAreOwed"`
		TotalBalance float64 `json:"totalBalance"`
		OweDetails   struct {
			YouAreOwedBy []struct {
				UserID string  `json:"userId"`
				Name   string  `json:"name"`
				Amount float64 `json:"amount"`
			} `json:"youAreOwedBy"`
		} `json:"oweDetails"`
	}
	resp = getJSON(t, server.URL+"/api/dashboard/balances", aliceToken, &report)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetUserBalances returned %d, want 200", resp.StatusCode)
	}
	if report.YouAreOwed != 50 || report.TotalBalance != 50 {
		t.Errorf("Report = %+v, want YouAreOwed/TotalBalance 50/50", report)
	}
	if len(report.OweDetails.YouAreOwedBy) != 1 || report.OweDetails.YouAreOwedBy[0].Name != "Bob" {
		t.Errorf("YouAreOwedBy = %+v, want [Bob 50]", report.OweDetails.YouAreOwedBy)
	}

	t.Run("settlement shifts the balance", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/settlements", bobToken, map[string]any{
			"paidByUserId":     bobID,
			"receivedByUserId": aliceID,
			"amount":           20.0,
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("CreateSettlement returned %d, want 201", resp.StatusCode)
		}

		var after struct {
			YouAreOwed float64 `json:"youAreOwed"`
		}
		resp = getJSON(t, server.URL+"/api/dashboard/balances", aliceToken, &after)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GetUserBalances returned %d, want 200", resp.StatusCode)
		}
		if after.YouAreOwed != 30 {
			t.Errorf("YouAreOwed = %v, want 30", after.YouAreOwed)
		}
	})

	t.Run("invalid expense rejected", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/expenses", aliceToken, map[string]any{
			"description":  "Broken",
			"amount":       100.0,
			"paidByUserId": aliceID,
			"splits": []map[string]any{
				{"userId": aliceID, "amount": 10.0},
			},
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("CreateExpense returned %d, want 400", resp.StatusCode)
		}
	})
}

func TestAPI_GroupsAndContacts(t *testing.T) {
	server := newTestServer(t)

	aliceToken, aliceID := registerUser(t, server.URL, "Alice")
	_, bobID := registerUser(t, server.URL, "Bob")

	resp := postJSON(t, server.URL+"/api/groups", aliceToken, map[string]any{
		"name":    "Trip",
		"members": []string{bobID},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("CreateGroup returned %d, want 201", resp.StatusCode)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode group: %v", err)
	}
	resp.Body.Close()

	expenseResp := postJSON(t, server.URL+"/api/expenses", aliceToken, map[string]any{
		"description":  "Hotel",
		"amount":       200.0,
		"paidByUserId": aliceID,
		"groupId":      created.ID,
		"splits": []map[string]any{
			{"userId": aliceID, "amount": 100.0},
			{"userId": bobID, "amount": 100.0},
		},
	})
	expenseResp.Body.Close()
	if expenseResp.StatusCode != http.StatusCreated {
		t.Fatalf("CreateExpense returned %d, want 201", expenseResp.StatusCode)
	}

	var groups []struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Balance float64 `json:"balance"`
	}
	listResp := getJSON(t, server.URL+"/api/dashboard/groups", aliceToken, &groups)
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("GetUserGroups returned %d, want 200", listResp.StatusCode)
	}
	if len(groups) != 1 || groups[0].Name != "Trip" {
		t.Fatalf("Groups = %+v, want [Trip]", groups)
	}
	if groups[0].Balance != 100 {
		t.Errorf("Group balance = %v, want 100", groups[0].Balance)
	}

	var contacts struct {
		Users []struct {
			Name string `json:"name"`
		} `json:"users"`
		Groups []struct {
			Name string `json:"name"`
		} `json:"groups"`
	}
	contactsResp := getJSON(t, server.URL+"/api/contacts", aliceToken, &contacts)
	if contactsResp.StatusCode != http.StatusOK {
		t.Fatalf("GetAllContacts returned %d, want 200", contactsResp.StatusCode)
	}
	if len(contacts.Groups) != 1 || contacts.Groups[0].Name != "Trip" {
		t.Errorf("Contact groups = %+v, want [Trip]", contacts.Groups)
	}
}
