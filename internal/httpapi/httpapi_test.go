package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/config"
	"github.com/bebsa/ledger/internal/events"
	"github.com/bebsa/ledger/internal/ledger"
	"github.com/bebsa/ledger/internal/service/account"
	"github.com/bebsa/ledger/internal/service/due"
	"github.com/bebsa/ledger/internal/service/entry"
	"github.com/bebsa/ledger/internal/service/reconcile"
	"github.com/bebsa/ledger/internal/service/user"
	"github.com/bebsa/ledger/internal/storage/memory"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func newTestServer(requireAuth bool) (http.Handler, *memory.Store) {
	store := memory.New()
	cfg := &config.Config{
		Companies:   config.DefaultCompanies,
		Clerks:      config.DefaultClerks,
		JWTSecret:   "test-secret",
		RequireAuth: requireAuth,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := reconcile.New(store, events.Nop{}, logger)
	srv := New(logger, cfg,
		entry.New(engine, store, cfg),
		account.New(store, cfg),
		due.New(engine, store),
		user.New(store, cfg.JWTSecret),
		store,
	)
	return srv.Router(), store
}

func seedAccount(store *memory.Store, company, number string) {
	now := time.Now().UTC()
	store.SeedAccount(ledger.MobileAccount{
		ID:           uuid.New(),
		Company:      company,
		MobileNumber: number,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func seedCustomer(store *memory.Store, name, phone string) {
	now := time.Now().UTC()
	store.SeedCustomer(ledger.DueCustomer{
		ID:           uuid.New(),
		CustomerName: name,
		MobileNumber: phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestWelcome(t *testing.T) {
	h, _ := newTestServer(false)
	rec := doJSON(t, h, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env["message"] != "Welcome to Bebsa API" {
		t.Fatalf("message = %v", env["message"])
	}
}

func TestCreateCredit(t *testing.T) {
	h, store := newTestServer(false)
	seedAccount(store, "Bkash Personal", "01712345678")

	rec := doJSON(t, h, http.MethodPost, "/api/credit/", map[string]any{
		"customerName":   "Rahim",
		"customerNumber": "01811111111",
		"company":        "Bkash Personal",
		"accountNumber":  "01712345678",
		"amount":         500,
		"entryBy":        "Rony",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env["success"] != true {
		t.Fatalf("success = %v", env["success"])
	}
	data := env["data"].(map[string]any)
	if data["amount"] != float64(500) {
		t.Fatalf("amount = %v, want 500 as a JSON number", data["amount"])
	}
}

func TestCreateCreditForbiddenClerk(t *testing.T) {
	h, store := newTestServer(false)
	seedAccount(store, "Bkash Personal", "01712345678")

	rec := doJSON(t, h, http.MethodPost, "/api/credit/", map[string]any{
		"customerName":   "Rahim",
		"customerNumber": "01811111111",
		"company":        "Bkash Personal",
		"accountNumber":  "01712345678",
		"amount":         500,
		"entryBy":        "Mallory",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env["success"] != false {
		t.Fatalf("success = %v", env["success"])
	}
	if _, ok := env["allowedValues"].([]any); !ok {
		t.Fatalf("allowedValues missing: %v", env)
	}
}

func TestCreateCreditMissingFields(t *testing.T) {
	h, _ := newTestServer(false)

	rec := doJSON(t, h, http.MethodPost, "/api/credit/", map[string]any{"entryBy": "Rony"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	fields, ok := env["requiredFields"].([]any)
	if !ok || len(fields) == 0 {
		t.Fatalf("requiredFields missing: %v", env)
	}
}

func TestUpdateCreditMalformedID(t *testing.T) {
	h, _ := newTestServer(false)

	rec := doJSON(t, h, http.MethodPut, "/api/credit/not-a-uuid", map[string]any{"amount": 10})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env["message"] != "Invalid id format" {
		t.Fatalf("message = %v", env["message"])
	}
}

func TestDeleteCreditNotFound(t *testing.T) {
	h, _ := newTestServer(false)

	rec := doJSON(t, h, http.MethodDelete, "/api/credit/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListPersonalEnvelope(t *testing.T) {
	h, store := newTestServer(false)
	seedAccount(store, "Bkash Personal", "01712345678")

	for _, amount := range []int{100, 200, 300} {
		rec := doJSON(t, h, http.MethodPost, "/api/credit/", map[string]any{
			"customerName":   "Rahim",
			"customerNumber": uuid.NewString(),
			"company":        "Bkash Personal",
			"accountNumber":  "01712345678",
			"amount":         amount,
			"entryBy":        "Rony",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed create: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/api/credit/personal?page=1&limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	pg, ok := env["pagination"].(map[string]any)
	if !ok {
		t.Fatalf("pagination missing: %v", env)
	}
	if pg["totalCount"] != float64(3) || pg["totalPages"] != float64(2) {
		t.Fatalf("pagination = %v", pg)
	}
	data := env["data"].(map[string]any)
	if data["totalAmount"] != float64(600) {
		t.Fatalf("totalAmount = %v, want 600", data["totalAmount"])
	}
	if got := len(data["entries"].([]any)); got != 2 {
		t.Fatalf("page size = %d, want 2", got)
	}
}

func TestGiveAndTake(t *testing.T) {
	h, store := newTestServer(false)
	seedCustomer(store, "Karim", "01911111111")

	rec := doJSON(t, h, http.MethodPost, "/api/transactions/give/01911111111", map[string]any{
		"amount": 100, "notes": "advance",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("give: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	if data["balance"] != float64(100) {
		t.Fatalf("give balance = %v, want 100", data["balance"])
	}

	rec = doJSON(t, h, http.MethodPost, "/api/transactions/take/01911111111", map[string]any{
		"amount": 30,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("take: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env = decodeEnvelope(t, rec)
	data = env["data"].(map[string]any)
	if data["balance"] != float64(70) {
		t.Fatalf("take balance = %v, want 70", data["balance"])
	}
}

func TestGiveUnknownCustomer(t *testing.T) {
	h, _ := newTestServer(false)

	rec := doJSON(t, h, http.MethodPost, "/api/transactions/give/01900000000", map[string]any{
		"amount": 10,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	h, _ := newTestServer(false)

	rec := doJSON(t, h, http.MethodPost, "/api/user/register", map[string]any{
		"name": "admin", "password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/user/login", map[string]any{
		"name": "admin", "password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	if token, _ := data["token"].(string); token == "" {
		t.Fatalf("token missing: %v", data)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/user/login", map[string]any{
		"name": "admin", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status = %d, want 401", rec.Code)
	}
}

func TestAuthGuardsAPI(t *testing.T) {
	h, store := newTestServer(true)
	seedAccount(store, "Bkash Personal", "01712345678")

	// No token.
	rec := doJSON(t, h, http.MethodGet, "/api/credit/personal", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	// User routes stay open so login is reachable.
	rec = doJSON(t, h, http.MethodPost, "/api/user/register", map[string]any{
		"name": "admin", "password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodPost, "/api/user/login", map[string]any{
		"name": "admin", "password": "secret123",
	})
	env := decodeEnvelope(t, rec)
	token := env["data"].(map[string]any)["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/credit/personal", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("with token: status = %d, body = %s", out.Code, out.Body.String())
	}
}

func TestRouteNotFound(t *testing.T) {
	h, _ := newTestServer(false)
	rec := doJSON(t, h, http.MethodGet, "/api/nothing-here", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env["message"] != "Route not found" {
		t.Fatalf("message = %v", env["message"])
	}
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(false)
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
