package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pftrack/internal/auth"
	"pftrack/internal/core"
	"pftrack/internal/export"
	"pftrack/internal/ledger"
	"pftrack/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.New(store.NewMemoryKV())
	svc := ledger.New(st, nil)
	srv := NewServer(":0", auth.New(st), svc, st)
	t.Cleanup(func() {
		srv.cacheManager.Stop()
		srv.rateLimiter.stop()
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server, email string) {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/login", fmt.Sprintf(`{"email":%q,"password":"secret"}`, email))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
	}
}

func TestAnonymousRequestsRejected(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct{ method, path, body string }{
		{http.MethodGet, "/api/transactions", ""},
		{http.MethodPost, "/api/transactions", `{"date":"2025-01-02","amount":1,"type":"expense"}`},
		{http.MethodDelete, "/api/transactions/t1", ""},
		{http.MethodPost, "/api/transactions/seed", ""},
		{http.MethodGet, "/api/transactions/export", ""},
		{http.MethodGet, "/api/dashboard", ""},
	}
	for _, tc := range cases {
		rec := doJSON(t, srv, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestLoginSession(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/session", "")
	var sess sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if sess.Authenticated {
		t.Fatalf("fresh server reports authenticated")
	}

	login(t, srv, "A@B.com")

	rec = doJSON(t, srv, http.MethodGet, "/api/session", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if !sess.Authenticated || sess.User == nil || sess.User.ID != "a@b.com" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if rec := doJSON(t, srv, http.MethodPost, "/api/logout", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: status %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/session", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if sess.Authenticated {
		t.Fatalf("session survived logout")
	}
}

func TestAuthValidationStatus(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name, path, body string
	}{
		{"login empty password", "/api/login", `{"email":"u@v.com","password":""}`},
		{"signup short password", "/api/signup", `{"email":"u@v.com","password":"12345","confirm":"12345"}`},
		{"signup mismatch", "/api/signup", `{"email":"u@v.com","password":"123456","confirm":"1234567"}`},
	}
	for _, tc := range cases {
		rec := doJSON(t, srv, http.MethodPost, tc.path, tc.body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: status %d, want 422", tc.name, rec.Code)
		}
	}

	if rec := doJSON(t, srv, http.MethodPost, "/api/login", `{"email":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: status %d, want 400", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/login", `{"email":"u@v.com","password":"x","extra":true}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: status %d, want 400", rec.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	login(t, srv, "u@v.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2025-01-02","description":"Coffee","category":"","amount":3.5,"type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	var created core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("no id assigned")
	}
	if created.Category != core.DefaultCategory {
		t.Fatalf("category = %q, want default", created.Category)
	}

	// Update keeps the id and returns 200.
	rec = doJSON(t, srv, http.MethodPost, "/api/transactions",
		fmt.Sprintf(`{"id":%q,"date":"2025-01-02","description":"Espresso","category":"Food","amount":3.5,"type":"expense"}`, created.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var listed []core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].Description != "Espresso" {
		t.Fatalf("update not visible in list: %+v", listed)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("list after delete = %s, want []", body)
	}
}

func TestSaveTransactionValidation(t *testing.T) {
	srv := newTestServer(t)
	login(t, srv, "u@v.com")

	cases := []struct{ name, body string }{
		{"bad date", `{"date":"02/01/2025","amount":1,"type":"expense"}`},
		{"bad type", `{"date":"2025-01-02","amount":1,"type":"transfer"}`},
	}
	for _, tc := range cases {
		rec := doJSON(t, srv, http.MethodPost, "/api/transactions", tc.body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: status %d, want 422", tc.name, rec.Code)
		}
	}
}

func TestSeedAndDashboard(t *testing.T) {
	srv := newTestServer(t)
	login(t, srv, "u@v.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions/seed", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d", rec.Code)
	}
	var result core.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if result.Total != 3 || len(result.Items) != 3 {
		t.Fatalf("total = %d, items = %d, want 3 each", result.Total, len(result.Items))
	}
	if result.Summary.Balance.String() != "2394.5" {
		t.Fatalf("balance = %s, want 2394.5", result.Summary.Balance)
	}

	// Filter narrows the set; summary follows the filtered set.
	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard?query=food", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode filtered dashboard: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("filtered total = %d, want 1", result.Total)
	}
	if result.Summary.TotalExpense.String() != "85.5" {
		t.Fatalf("filtered expense = %s, want 85.5", result.Summary.TotalExpense)
	}
}

func TestDashboardEmptyUser(t *testing.T) {
	srv := newTestServer(t)
	login(t, srv, "empty@v.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d", rec.Code)
	}
	body := rec.Body.String()
	// Items and series serialize as empty arrays, never null.
	if strings.Contains(body, "null") {
		t.Fatalf("dashboard leaked null: %s", body)
	}
}

func TestDashboardPagination(t *testing.T) {
	srv := newTestServer(t)
	login(t, srv, "u@v.com")

	for i := 0; i < 17; i++ {
		body := fmt.Sprintf(`{"date":"2025-01-02","description":"tx %d","amount":1,"type":"expense"}`, i)
		if rec := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
			t.Fatalf("create %d: status %d", i, rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard?page=3", "")
	var result core.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Pages != 3 || len(result.Items) != 1 {
		t.Fatalf("pages = %d, page 3 items = %d", result.Pages, len(result.Items))
	}

	// Out-of-range pages clamp to the last page instead of going empty.
	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard?page=99", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Page != 3 || len(result.Items) != 1 {
		t.Fatalf("page = %d, items = %d, want clamp to last page", result.Page, len(result.Items))
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)
	login(t, srv, "u@v.com")

	if rec := doJSON(t, srv, http.MethodPost, "/api/transactions/seed", ""); rec.Code != http.StatusCreated {
		t.Fatalf("seed: status %d", rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/transactions/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "transactions.csv") {
		t.Fatalf("content disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	if lines[0] != export.Header {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus 3 rows", len(lines))
	}
}

func TestTheme(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/theme", "")
	var theme themePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &theme); err != nil {
		t.Fatalf("decode theme: %v", err)
	}
	if theme.Theme != "light" {
		t.Fatalf("default theme = %q", theme.Theme)
	}

	if rec := doJSON(t, srv, http.MethodPut, "/api/theme", `{"theme":"dark"}`); rec.Code != http.StatusOK {
		t.Fatalf("set theme: status %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/theme", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &theme); err != nil {
		t.Fatalf("decode theme: %v", err)
	}
	if theme.Theme != "dark" {
		t.Fatalf("theme = %q, want dark", theme.Theme)
	}

	if rec := doJSON(t, srv, http.MethodPut, "/api/theme", `{"theme":"neon"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid theme: status %d, want 422", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/session", "")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing frame options header")
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t)

	var last int
	for i := 0; i < 70; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/logout", "")
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("70th mutating request: status %d, want 429", last)
	}

	// GETs are never rate limited.
	if rec := doJSON(t, srv, http.MethodGet, "/api/session", ""); rec.Code != http.StatusOK {
		t.Fatalf("GET after limit: status %d", rec.Code)
	}
}
