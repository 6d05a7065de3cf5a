package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rockman-logistics/staffdesk/internal/application/service"
	"github.com/rockman-logistics/staffdesk/internal/config"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/backend"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/database"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/repository"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/handler"
	"github.com/rockman-logistics/staffdesk/internal/websocket"
	"github.com/rockman-logistics/staffdesk/pkg/utils"
	"github.com/rockman-logistics/staffdesk/pkg/wakeup"
)

type instantClock struct{}

func (instantClock) Now() time.Time { return time.Now() }

func (instantClock) Sleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

// djangoStub answers like the logistics backend for one staff account.
type djangoStub struct {
	mu       sync.Mutex
	receipts []map[string]any
	revoked  bool
}

func (s *djangoStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.URL.Path != "/api/auth/login/" && (s.revoked || r.Header.Get("Authorization") != "Token t0k3n") {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token."})
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login/":
		var body struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "t0k3n",
			"user":  map[string]any{"id": 3, "username": body.Username, "first_name": "Kofi", "last_name": "Mensah", "is_staff": true},
			"staff": map[string]any{"id": 1, "role": "manager", "is_active_staff": true},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout/":
		writeJSON(w, http.StatusOK, map[string]any{})
	case r.URL.Path == "/api/categories/":
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "Normal Goods", "unit_price": "230.00", "is_active": true},
			{"id": 2, "name": "Electronics", "unit_price": "30.00", "is_active": true},
		})
	case r.URL.Path == "/api/customers/":
		writeJSON(w, http.StatusOK, map[string]any{
			"count": 1,
			"results": []map[string]any{
				{"id": 7, "company_name": "Acme Ltd", "customer_code": "AC01"},
			},
		})
	case r.URL.Path == "/api/customers/create_or_get/":
		writeJSON(w, http.StatusCreated, map[string]any{"id": 8, "company_name": "Beta Co", "customer_code": "BC01"})
	case r.Method == http.MethodPost && r.URL.Path == "/api/receipts/":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.receipts = append(s.receipts, body)
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":               501,
			"receipt_number":   "RCP-000501",
			"customer":         body["customer"],
			"customer_name":    "Acme Ltd",
			"customer_code":    "AC01",
			"created_by_name":  "Kofi Mensah",
			"total_amount":     "75.00",
			"payment_status":   "pending",
			"loading_date":     nil,
			"eta":              nil,
			"container_number": "",
			"created_at":       "2026-03-14T09:30:00Z",
			"updated_at":       "2026-03-14T09:30:00Z",
			"items": []map[string]any{
				{"id": 1, "receipt": 501, "category": 2, "category_name": "Electronics", "description": "TVs", "cbm": "2.500", "unit_price": "30.00", "total_price": "75.00"},
			},
		})
	case strings.HasPrefix(r.URL.Path, "/api/receipts/"):
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
	case r.URL.Path == "/api/staff/dashboard_stats/":
		writeJSON(w, http.StatusOK, map[string]any{"total_staff": 4, "total_customers": 12, "total_shipments": 3, "total_receipts": 40})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type testServer struct {
	router *gin.Engine
	stub   *djangoStub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stub := &djangoStub{}
	upstream := httptest.NewServer(stub)
	t.Cleanup(upstream.Close)

	db, err := database.NewSQLiteDB(":memory:", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := websocket.NewHub(logger)
	caller := wakeup.NewCaller(nil, wakeup.Policy{MaxRetries: 0}, instantClock{})
	caller.Observe(hub)
	client := backend.NewClient(upstream.URL+"/api", 5*time.Second, caller)

	sessionRepo := repository.NewSessionRepository(db)
	archiveRepo := repository.NewReceiptArchiveRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	guard := service.NewSessionGuard(sessionRepo)

	sealer, err := utils.NewSealer("test-passphrase", "test-salt")
	if err != nil {
		t.Fatal(err)
	}
	authService := service.NewAuthService(client, sessionRepo, utils.NewJWTManager("secret", time.Hour), sealer, guard)
	drafts := service.NewDraftStore(repository.NewDraftRepository(db))
	catalog := service.NewCatalogService(client, guard, time.Minute)
	customers := service.NewCustomerService(client, drafts, guard, instantClock{})
	receipts := service.NewReceiptService(client, drafts, catalog, customers, archiveRepo, guard)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "staffdesk"},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 1},
	}

	router := Setup(&Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(client, archiveRepo, guard)),
		Category:  handler.NewCategoryHandler(catalog),
		Draft:     handler.NewDraftHandler(receipts),
		Customer:  handler.NewCustomerHandler(customers),
		Receipt: handler.NewReceiptHandler(receipts,
			service.NewDocumentService(receipts, service.DefaultInvoiceOptions()),
			service.NewReportService(archiveRepo)),
		Status: handler.NewStatusHandler(cfg.App.Name, caller),
	}, &Deps{
		AuthService:     authService,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Hub:             hub,
		Logger:          logger,
	})

	return &testServer{router: router, stub: stub}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "kofi", "password": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var data struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
		DisplayName string `json:"display_name"`
	}
	decode(t, w, &data)
	if data.Role != "manager" || data.DisplayName != "Kofi Mensah" {
		t.Errorf("login data = %+v", data)
	}
	return data.AccessToken
}

func TestLoginRejections(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
		code int
	}{
		{"missing fields", map[string]string{"username": "kofi"}, http.StatusBadRequest},
		{"wrong password", map[string]string{"username": "kofi", "password": "nope"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)

	for _, token := range []string{"", "garbage"} {
		w := s.do(t, http.MethodGet, "/api/v1/drafts", token, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("token %q: status = %d", token, w.Code)
		}
	}
}

func TestReceiptFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/v1/drafts", token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create draft = %d: %s", w.Code, w.Body.String())
	}
	var draft struct {
		ID         string `json:"id"`
		GrandTotal string `json:"grand_total"`
		Candidates []struct {
			ID int64 `json:"id"`
		} `json:"candidates"`
		Items []struct {
			Total string `json:"total"`
		} `json:"items"`
	}
	decode(t, w, &draft)
	base := "/api/v1/drafts/" + draft.ID

	w = s.do(t, http.MethodPost, base+"/submit", token, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("submit without customer = %d", w.Code)
	}

	w = s.do(t, http.MethodGet, base+"/customers?search=acme", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &draft)
	if len(draft.Candidates) != 1 || draft.Candidates[0].ID != 7 {
		t.Fatalf("candidates = %+v", draft.Candidates)
	}

	steps := []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, base + "/customer", map[string]any{"customer_id": 7}},
		{http.MethodPut, base + "/items/0/category", map[string]any{"category_id": 2}},
		{http.MethodPatch, base + "/items/0", map[string]any{"description": "TVs", "cbm": "2.5"}},
		{http.MethodPut, base + "/shipment", map[string]any{"container_number": "MSCU1234567"}},
	}
	for _, st := range steps {
		w = s.do(t, st.method, st.path, token, st.body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s %s = %d: %s", st.method, st.path, w.Code, w.Body.String())
		}
	}
	decode(t, w, &draft)
	if draft.GrandTotal != "75" || draft.Items[0].Total != "75" {
		t.Errorf("totals = %s / %+v", draft.GrandTotal, draft.Items)
	}

	w = s.do(t, http.MethodPost, base+"/submit", token, nil, "Idempotency-Key", "submit-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("submit = %d: %s", w.Code, w.Body.String())
	}
	var receipt struct {
		ID            int64  `json:"id"`
		ReceiptNumber string `json:"receipt_number"`
	}
	decode(t, w, &receipt)
	if receipt.ID != 501 || receipt.ReceiptNumber != "RCP-000501" {
		t.Errorf("receipt = %+v", receipt)
	}

	replay := s.do(t, http.MethodPost, base+"/submit", token, nil, "Idempotency-Key", "submit-1")
	if replay.Code != http.StatusCreated || replay.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Errorf("replay = %d %q", replay.Code, replay.Header().Get("X-Idempotency-Replayed"))
	}
	if n := len(s.stub.receipts); n != 1 {
		t.Fatalf("backend received %d receipts", n)
	}
	sent := s.stub.receipts[0]
	if sent["customer"] != float64(7) || sent["total_amount"] != "75" || sent["container_number"] != "MSCU1234567" {
		t.Errorf("payload = %v", sent)
	}

	if w = s.do(t, http.MethodGet, base, token, nil); w.Code != http.StatusNotFound {
		t.Errorf("submitted draft still there: %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/receipts?search=acme", token, nil)
	var page struct {
		Items []struct {
			ReceiptNumber string `json:"receipt_number"`
		} `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	decode(t, w, &page)
	if page.Pagination.Total != 1 || len(page.Items) != 1 || page.Items[0].ReceiptNumber != "RCP-000501" {
		t.Errorf("archive page = %+v", page)
	}

	w = s.do(t, http.MethodGet, "/api/v1/receipts/501/pdf", token, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "receipt_RCP-000501_") {
		t.Errorf("content-disposition = %q", cd)
	}

	w = s.do(t, http.MethodGet, "/api/v1/receipts/export", token, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), ".xlsx") {
		t.Errorf("export = %d %q", w.Code, w.Header().Get("Content-Disposition"))
	}

	if w = s.do(t, http.MethodGet, "/api/v1/receipts/999", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown receipt = %d", w.Code)
	}
}

func TestItemRoutesValidateParams(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/v1/drafts", token, nil)
	var draft struct {
		ID string `json:"id"`
	}
	decode(t, w, &draft)
	base := "/api/v1/drafts/" + draft.ID

	tests := []struct {
		name         string
		method, path string
		body         any
		code         int
	}{
		{"bad draft id", http.MethodGet, "/api/v1/drafts/not-a-uuid", nil, http.StatusBadRequest},
		{"bad index", http.MethodPatch, base + "/items/x", map[string]any{}, http.StatusBadRequest},
		{"index out of range", http.MethodDelete, base + "/items/5", nil, http.StatusBadRequest},
		{"bad date", http.MethodPut, base + "/shipment", map[string]any{"eta": "14/03/2026"}, http.StatusUnprocessableEntity},
		{"unknown category", http.MethodPut, base + "/items/0/category", map[string]any{"category_id": 42}, http.StatusNotFound},
		{"unknown customer", http.MethodPut, base + "/customer", map[string]any{"customer_id": 3}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, token, tt.body)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestBackendRevocationEndsSession(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	if w := s.do(t, http.MethodGet, "/api/v1/dashboard", token, nil); w.Code != http.StatusOK {
		t.Fatalf("dashboard = %d: %s", w.Code, w.Body.String())
	}

	s.stub.mu.Lock()
	s.stub.revoked = true
	s.stub.mu.Unlock()

	w := s.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("dashboard after revoke = %d", w.Code)
	}
	env := decode(t, w, nil)
	if env.Message != "Session expired, please log in again" {
		t.Errorf("message = %q", env.Message)
	}

	if w = s.do(t, http.MethodGet, "/api/v1/profile", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("session survived teardown: %d", w.Code)
	}
}

func TestLogoutAndStatus(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	if w := s.do(t, http.MethodGet, "/api/v1/categories", token, nil); w.Code != http.StatusOK {
		t.Fatalf("categories = %d", w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/v1/backend/status", "", nil)
	var status wakeup.Status
	decode(t, w, &status)
	if status.LastEvent == nil || status.LastEvent.Kind != wakeup.EventSucceeded {
		t.Errorf("status = %+v", status)
	}

	if w = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout = %d", w.Code)
	}
	if w = s.do(t, http.MethodGet, "/api/v1/profile", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("profile after logout = %d", w.Code)
	}
}
