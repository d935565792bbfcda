package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leoperezgr/Leofy/internal/auth"
	"github.com/leoperezgr/Leofy/internal/service"
	"github.com/leoperezgr/Leofy/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := storage.NewMemoryStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	hasher := auth.NewHasher(10)

	srv := NewServer(Options{
		Tokens:  tokens,
		Auth:    service.NewAuthService(store, hasher, tokens),
		Finance: service.NewFinanceService(store, nil),
	})
	t.Cleanup(func() { srv.authLimiter.Stop() })

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func doJSONList(t *testing.T, ts *httptest.Server, path, token string) (int, []map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func registerUser(t *testing.T, ts *httptest.Server, email string) (token, userID string) {
	t.Helper()

	status, body := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	userID, _ = user["id"].(string)
	require.NotEmpty(t, userID)
	return token, userID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["ok"])
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	_, userID := registerUser(t, ts, "alice@example.com")

	status, body := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	require.Equal(t, userID, user["id"])
	require.Nil(t, user["password_hash"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	registerUser(t, ts, "dup@example.com")

	status, body := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    "dup@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusConflict, status)
	require.NotEmpty(t, body["error"])
}

func TestRegisterValidationFields(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, status)

	fields, _ := body["fields"].([]any)
	require.ElementsMatch(t, []any{"email", "password"}, fields)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)

	registerUser(t, ts, "carol@example.com")

	for name, creds := range map[string]map[string]any{
		"wrong password": {"email": "carol@example.com", "password": "wrong-password"},
		"unknown email":  {"email": "nobody@example.com", "password": "password123"},
	} {
		status, body := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", creds)
		require.Equal(t, http.StatusUnauthorized, status, name)
		require.Equal(t, "invalid credentials", body["error"], name)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/auth/me",
		"/api/transactions",
		"/api/cards",
		"/api/stats/summary",
		"/api/stats/dashboard",
	} {
		status, _ := doJSON(t, ts, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, status, path)
	}

	status, _ := doJSON(t, ts, http.MethodGet, "/api/auth/me", "not-a-real-token", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestProfileRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	token, userID := registerUser(t, ts, "dave@example.com")

	status, body := doJSON(t, ts, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, userID, body["id"])
	require.Equal(t, "dave@example.com", body["email"])

	status, body = doJSON(t, ts, http.MethodPut, "/api/auth/me", token, map[string]any{
		"full_name": "Dave Grohl",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Dave Grohl", body["full_name"])

	status, body = doJSON(t, ts, http.MethodPut, "/api/auth/me", token, map[string]any{})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "nothing to update", body["error"])
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	ts := newTestServer(t)

	registerUser(t, ts, "taken@example.com")
	token, _ := registerUser(t, ts, "mover@example.com")

	status, _ := doJSON(t, ts, http.MethodPut, "/api/auth/me", token, map[string]any{
		"email": "taken@example.com",
	})
	require.Equal(t, http.StatusConflict, status)
}

func TestCompleteOnboarding(t *testing.T) {
	ts := newTestServer(t)

	token, _ := registerUser(t, ts, "newbie@example.com")

	status, body := doJSON(t, ts, http.MethodPost, "/api/onboarding/complete", token, map[string]any{
		"name": "Newbie",
	})
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]any)
	require.Equal(t, true, user["onboarded"])
	require.Equal(t, "Newbie", user["full_name"])
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	token, userID := registerUser(t, ts, "spender@example.com")

	status, body := doJSON(t, ts, http.MethodPost, "/api/transactions", token, map[string]any{
		"type":     "expense",
		"amount":   12.50,
		"category": "groceries",
		"date":     "2026-08-30",
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, userID, body["user_id"])
	require.Equal(t, "EXPENSE", body["type"])
	require.Equal(t, 12.50, body["amount"])

	status, list := doJSONList(t, ts, "/api/transactions", token)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	require.Equal(t, 12.50, list[0]["amount"])
}

func TestTransactionValidation(t *testing.T) {
	ts := newTestServer(t)

	token, _ := registerUser(t, ts, "strict@example.com")

	cases := map[string]map[string]any{
		"bad type":         {"type": "transfer", "amount": 10, "category": "x", "date": "2026-01-01"},
		"negative amount":  {"type": "expense", "amount": -5, "category": "x", "date": "2026-01-01"},
		"missing date":     {"type": "expense", "amount": 10, "category": "x"},
		"missing category": {"type": "expense", "amount": 10, "date": "2026-01-01"},
	}
	for name, payload := range cases {
		status, _ := doJSON(t, ts, http.MethodPost, "/api/transactions", token, payload)
		require.Equal(t, http.StatusBadRequest, status, name)
	}
}

func TestOwnerScoping(t *testing.T) {
	ts := newTestServer(t)

	tokenA, _ := registerUser(t, ts, "a@example.com")
	tokenB, _ := registerUser(t, ts, "b@example.com")

	status, _ := doJSON(t, ts, http.MethodPost, "/api/transactions", tokenA, map[string]any{
		"type":     "income",
		"amount":   100,
		"category": "salary",
		"date":     "2026-08-01",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = doJSON(t, ts, http.MethodPost, "/api/cards", tokenA, map[string]any{
		"name": "A's card",
	})
	require.Equal(t, http.StatusCreated, status)

	status, txs := doJSONList(t, ts, "/api/transactions", tokenB)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, txs)

	status, cards := doJSONList(t, ts, "/api/cards", tokenB)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, cards)
}

func TestCardCreation(t *testing.T) {
	ts := newTestServer(t)

	token, _ := registerUser(t, ts, "cardholder@example.com")

	status, body := doJSON(t, ts, http.MethodPost, "/api/cards", token, map[string]any{
		"name":         "Daily driver",
		"last4":        "4242",
		"brand":        "VISA",
		"credit_limit": 5000,
		"closing_day":  15,
		"due_day":      25,
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "4242", body["last4"])
	require.Equal(t, "VISA", body["brand"])
	require.Equal(t, float64(5000), body["credit_limit"])

	status, _ = doJSON(t, ts, http.MethodPost, "/api/cards", token, map[string]any{
		"name":  "Bad",
		"last4": "12",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestStatsSummary(t *testing.T) {
	ts := newTestServer(t)

	token, _ := registerUser(t, ts, "stats@example.com")

	for _, tx := range []map[string]any{
		{"type": "income", "amount": 100, "category": "salary", "date": "2026-08-01"},
		{"type": "expense", "amount": 40, "category": "rent", "date": "2026-08-02"},
		{"type": "expense", "amount": 10, "category": "food", "date": "2026-08-03"},
	} {
		status, _ := doJSON(t, ts, http.MethodPost, "/api/transactions", token, tx)
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := doJSON(t, ts, http.MethodGet, "/api/stats/summary", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(100), body["income"])
	require.Equal(t, float64(50), body["expense"])
	require.Equal(t, float64(50), body["balance"])
	require.Equal(t, float64(3), body["count"])
}

func TestStatsDashboard(t *testing.T) {
	ts := newTestServer(t)

	token, userID := registerUser(t, ts, "dash@example.com")

	for i := 1; i <= 7; i++ {
		status, _ := doJSON(t, ts, http.MethodPost, "/api/transactions", token, map[string]any{
			"type":     "expense",
			"amount":   i,
			"category": "misc",
			"date":     fmt.Sprintf("2026-08-%02d", i),
		})
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := doJSON(t, ts, http.MethodGet, "/api/stats/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(0), body["income"])
	require.Equal(t, float64(28), body["expenses"])
	require.Equal(t, float64(-28), body["balance"])

	recent, _ := body["recentTransactions"].([]any)
	require.Len(t, recent, 5)
	first := recent[0].(map[string]any)
	require.Equal(t, float64(7), first["amount"])

	// A userId parameter naming someone else is rejected outright.
	status, _ = doJSON(t, ts, http.MethodGet, "/api/stats/dashboard?userId=someone-else", token, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, ts, http.MethodGet, "/api/stats/dashboard?userId="+userID, token, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestStatsCategories(t *testing.T) {
	ts := newTestServer(t)

	token, _ := registerUser(t, ts, "cat@example.com")

	for _, tx := range []map[string]any{
		{"type": "expense", "amount": 30, "category": "rent", "date": "2026-08-01"},
		{"type": "expense", "amount": 50, "category": "food", "date": "2026-08-02"},
		{"type": "expense", "amount": 20, "category": "rent", "date": "2026-08-03"},
	} {
		status, _ := doJSON(t, ts, http.MethodPost, "/api/transactions", token, tx)
		require.Equal(t, http.StatusCreated, status)
	}

	// Both labels sum to 50; the tie keeps first-seen order.
	status, list := doJSONList(t, ts, "/api/stats/categories", token)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 2)
	require.Equal(t, "rent", list[0]["name"])
	require.Equal(t, float64(50), list[0]["amount"])
	require.Equal(t, "food", list[1]["name"])
	require.Equal(t, float64(50), list[1]["amount"])
}

func TestAmountRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	token, _ := registerUser(t, ts, "precise@example.com")

	for i := 0; i < 5; i++ {
		status, body := doJSON(t, ts, http.MethodPost, "/api/transactions", token, map[string]any{
			"type":     "expense",
			"amount":   12.50,
			"category": "repeat",
			"date":     "2026-08-15",
		})
		require.Equal(t, http.StatusCreated, status)
		require.Equal(t, 12.50, body["amount"])
	}

	status, list := doJSONList(t, ts, "/api/transactions", token)
	require.Equal(t, http.StatusOK, status)
	for _, tx := range list {
		require.Equal(t, 12.50, tx["amount"])
	}
}
