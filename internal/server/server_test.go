package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vestora/internal/config"
	"vestora/internal/store"
	"vestora/internal/testutil"
	"vestora/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

const (
	adminEmail    = "boss@vestora.io"
	adminPasscode = "open-sesame"
	opsKey        = "ops-key"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:              "test",
		JWTSecret:        "server-test-secret",
		JWTExpirationDur: 15 * time.Minute,
		AdminEmails:      []string{adminEmail},
		AdminPasscodes:   []string{adminPasscode},
		AdminSessionTTL:  30 * time.Minute,
		StoreBackend:     config.StoreBackendDatabase,
		StoreTimeout:     time.Second,
		OpsAPIKey:        opsKey,
		Currency:         "USD",
	}
}

type harness struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	srv, err := New(cfg, db)
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	return &harness{t: t, db: db, router: srv.Router}
}

func (h *harness) do(method, path, token string, body interface{}, headers ...string) (int, map[string]interface{}) {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var result map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			h.t.Fatalf("failed to parse response (%d): %v\nbody: %s", rec.Code, err, rec.Body.String())
		}
	}
	return rec.Code, result
}

// register creates a user and returns its access token and id.
func (h *harness) register(email string) (string, string) {
	h.t.Helper()
	code, body := h.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	if code != http.StatusCreated {
		h.t.Fatalf("register %s: expected 201, got %d: %v", email, code, body)
	}
	user := body["user"].(map[string]interface{})
	return body["access_token"].(string), user["id"].(string)
}

func (h *harness) unlock(token string) string {
	h.t.Helper()
	code, body := h.do("POST", "/api/v1/admin/unlock", token, map[string]string{"passcode": adminPasscode})
	if code != http.StatusOK {
		h.t.Fatalf("unlock: expected 200, got %d: %v", code, body)
	}
	return body["admin_token"].(string)
}

func errorCode(body map[string]interface{}) string {
	errObj, _ := body["error"].(map[string]interface{})
	code, _ := errObj["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	h := newHarness(t, testConfig())

	code, body := h.do("GET", "/api/health", "", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["record_store"] != StoreStatusDatabase || body["auth"] != "available" {
		t.Errorf("unexpected health %v", body)
	}
}

func TestOwnerFlow(t *testing.T) {
	h := newHarness(t, testConfig())
	token, userID := h.register("owner@example.com")

	code, body := h.do("POST", "/api/v1/assets", token, map[string]interface{}{
		"name":              "Bitcoin",
		"symbol":            "btc",
		"category":          "cryptocurrency",
		"investment_amount": "1000",
		"current_value":     "1500",
		"status":            "active",
	})
	if code != http.StatusCreated {
		t.Fatalf("create asset: expected 201, got %d: %v", code, body)
	}
	asset := body["asset"].(map[string]interface{})
	if asset["status"] != "pending" {
		t.Errorf("owner requests must start pending, got %v", asset["status"])
	}
	if asset["symbol"] != "btc" {
		t.Errorf("expected symbol as submitted, got %v", asset["symbol"])
	}
	if body["balance_stale"] != false {
		t.Errorf("expected fresh balance, got %v", body)
	}
	assetID := asset["id"].(string)

	code, body = h.do("GET", "/api/v1/dashboard", token, nil)
	if code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", code)
	}
	summary := body["summary"].(map[string]interface{})
	if summary["profit_loss"] != "500" || summary["profit_loss_percentage"] != "50" {
		t.Errorf("unexpected summary %v", summary)
	}
	if body["balance_stale"] != false {
		t.Error("balance row should match the live summary after a mutation")
	}

	code, body = h.do("PUT", "/api/v1/assets/"+assetID, token, map[string]interface{}{"current_value": "800"})
	if code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %v", code, body)
	}
	balance := body["balance"].(map[string]interface{})
	if balance["total_profit_loss"] != "-200" {
		t.Errorf("expected synchronized loss of -200, got %v", balance["total_profit_loss"])
	}

	code, body = h.do("PUT", "/api/v1/assets/"+assetID, token, map[string]interface{}{"status": "sold"})
	if code != http.StatusBadRequest {
		t.Errorf("owner status change: expected 400, got %d: %v", code, body)
	}

	code, body = h.do("GET", "/api/v1/balance", token, nil)
	if code != http.StatusOK || body["owner_id"] != userID {
		t.Errorf("balance: expected own row, got %d %v", code, body)
	}

	code, body = h.do("POST", "/api/v1/transactions", token, map[string]interface{}{
		"asset_id": assetID,
		"type":     "purchase",
		"amount":   "1000",
	})
	if code != http.StatusCreated {
		t.Fatalf("transaction: expected 201, got %d: %v", code, body)
	}
	code, body = h.do("GET", "/api/v1/transactions", token, nil)
	if code != http.StatusOK || body["total_items"] != float64(1) {
		t.Errorf("expected one transaction, got %d %v", code, body)
	}

	code, _ = h.do("DELETE", "/api/v1/assets/"+assetID, token, nil)
	if code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", code)
	}
	code, body = h.do("DELETE", "/api/v1/assets/"+assetID, token, nil)
	if code != http.StatusNotFound || errorCode(body) != "ASSET_NOT_FOUND" {
		t.Errorf("second delete: expected ASSET_NOT_FOUND, got %d %v", code, body)
	}
}

func TestAmountPrecision(t *testing.T) {
	h := newHarness(t, testConfig())
	token, _ := h.register("owner@example.com")

	code, body := h.do("POST", "/api/v1/assets", token, map[string]interface{}{
		"name": "Bitcoin", "symbol": "BTC", "category": "cryptocurrency",
		"investment_amount": "1000.123456789012345678",
	})
	if code != http.StatusBadRequest || errorCode(body) != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT for nine decimal places, got %d %v", code, body)
	}

	code, body = h.do("POST", "/api/v1/assets", token, map[string]interface{}{
		"name": "Bitcoin", "symbol": "BTC", "category": "cryptocurrency",
		"investment_amount": "1000000000000",
	})
	if code != http.StatusBadRequest || errorCode(body) != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT for thirteen integer digits, got %d %v", code, body)
	}

	code, body = h.do("POST", "/api/v1/assets", token, map[string]interface{}{
		"name": "Bitcoin", "symbol": "BTC", "category": "cryptocurrency",
		"investment_amount": "1000.12345678",
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", code, body)
	}
	created := body["asset"].(map[string]interface{})

	_, body = h.do("GET", "/api/v1/assets", token, nil)
	listed := body["assets"].([]interface{})[0].(map[string]interface{})
	if listed["investment_amount"] != "1000.12345678" || created["investment_amount"] != listed["investment_amount"] {
		t.Errorf("expected amount to read back unchanged, created %v listed %v", created["investment_amount"], listed["investment_amount"])
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	h := newHarness(t, testConfig())
	alice, _ := h.register("alice@example.com")
	bob, _ := h.register("bob@example.com")

	_, body := h.do("POST", "/api/v1/assets", alice, map[string]interface{}{
		"name": "Gold", "symbol": "XAU", "category": "commodity", "investment_amount": 10,
	})
	assetID := body["asset"].(map[string]interface{})["id"].(string)

	code, body := h.do("GET", "/api/v1/assets/"+assetID, bob, nil)
	if code != http.StatusNotFound || errorCode(body) != "ASSET_NOT_FOUND" {
		t.Errorf("expected foreign asset to be hidden, got %d %v", code, body)
	}
	code, _ = h.do("DELETE", "/api/v1/assets/"+assetID, bob, nil)
	if code != http.StatusNotFound {
		t.Errorf("expected foreign delete to be rejected, got %d", code)
	}
}

func TestAdminFlow(t *testing.T) {
	h := newHarness(t, testConfig())
	ownerToken, ownerID := h.register("owner@example.com")
	adminAccess, _ := h.register(adminEmail)

	h.do("POST", "/api/v1/assets", ownerToken, map[string]interface{}{
		"name": "Apple", "symbol": "AAPL", "category": "stock", "investment_amount": 200, "current_value": 260,
	})

	t.Run("access_token_cannot_reach_admin_routes", func(t *testing.T) {
		code, body := h.do("GET", "/api/v1/admin/owners", adminAccess, nil)
		if code != http.StatusForbidden || errorCode(body) != "ADMIN_ACCESS_DENIED" {
			t.Errorf("expected 403, got %d %v", code, body)
		}
	})

	t.Run("non_admin_cannot_unlock", func(t *testing.T) {
		code, body := h.do("POST", "/api/v1/admin/unlock", ownerToken, map[string]string{"passcode": adminPasscode})
		if code != http.StatusForbidden || errorCode(body) != "ADMIN_ACCESS_DENIED" {
			t.Errorf("expected 403, got %d %v", code, body)
		}
	})

	t.Run("wrong_passcode", func(t *testing.T) {
		code, _ := h.do("POST", "/api/v1/admin/unlock", adminAccess, map[string]string{"passcode": "guess"})
		if code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", code)
		}
	})

	adminToken := h.unlock(adminAccess)

	t.Run("lists_owners", func(t *testing.T) {
		code, body := h.do("GET", "/api/v1/admin/owners", adminToken, nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", code, body)
		}
		found := false
		for _, o := range body["owners"].([]interface{}) {
			owner := o.(map[string]interface{})
			if owner["owner_id"] == ownerID {
				found = true
				display := owner["display"].(map[string]interface{})
				if display["current_value"] != "$260.00" {
					t.Errorf("expected formatted value $260.00, got %v", display["current_value"])
				}
			}
		}
		if !found {
			t.Errorf("expected owner %s in listing", ownerID)
		}
	})

	t.Run("cash_survives_synchronization", func(t *testing.T) {
		code, body := h.do("PUT", "/api/v1/admin/owners/"+ownerID+"/cash", adminToken, map[string]string{"available_cash": "75.5"})
		if code != http.StatusOK {
			t.Fatalf("set cash: expected 200, got %d: %v", code, body)
		}

		code, body = h.do("POST", "/api/v1/admin/owners/"+ownerID+"/assets", adminToken, map[string]interface{}{
			"name": "Euro", "symbol": "EURUSD", "category": "forex", "investment_amount": 100,
		})
		if code != http.StatusCreated {
			t.Fatalf("admin create: expected 201, got %d: %v", code, body)
		}
		if body["asset"].(map[string]interface{})["status"] != "active" {
			t.Error("admin-created assets default to active")
		}

		code, body = h.do("POST", "/api/v1/admin/owners/"+ownerID+"/sync", adminToken, nil)
		if code != http.StatusOK {
			t.Fatalf("sync: expected 200, got %d", code)
		}
		if body["available_cash"] != "75.5" || body["total_invested"] != "300" {
			t.Errorf("unexpected balance after sync %v", body)
		}
	})

	t.Run("profile_flag_grants_the_gate", func(t *testing.T) {
		code, body := h.do("PUT", "/api/v1/admin/profiles/"+ownerID, adminToken, map[string]bool{"is_admin": true})
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", code, body)
		}
		_, body = h.do("GET", "/api/v1/profile", ownerToken, nil)
		if body["user"].(map[string]interface{})["is_admin"] != true {
			t.Error("expected profile flag to make the owner an admin")
		}
		h.unlock(ownerToken)
	})
}

func TestOpsReconcile(t *testing.T) {
	h := newHarness(t, testConfig())
	token, _ := h.register("owner@example.com")
	h.do("POST", "/api/v1/assets", token, map[string]interface{}{
		"name": "Index", "symbol": "SPX", "category": "index", "investment_amount": 50,
	})

	code, _ := h.do("POST", "/api/v1/ops/reconcile", "", nil, "X-API-Key", "wrong")
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong key, got %d", code)
	}

	code, body := h.do("POST", "/api/v1/ops/reconcile", "", nil, "X-API-Key", opsKey)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, body)
	}
	if body["owners"] != float64(1) || body["synchronized"] != float64(1) {
		t.Errorf("unexpected run summary %v", body)
	}
}

func TestUnconfiguredStore(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = config.StoreBackendREST

	h := newHarness(t, cfg)

	_, body := h.do("GET", "/api/health", "", nil)
	if body["record_store"] != StoreStatusUnconfigured {
		t.Errorf("expected unconfigured store in health, got %v", body)
	}

	// Identity lives in the database and keeps working.
	token, _ := h.register("owner@example.com")

	code, body := h.do("GET", "/api/v1/assets", token, nil)
	if code != http.StatusServiceUnavailable || errorCode(body) != "STORE_UNAVAILABLE" {
		t.Errorf("expected STORE_UNAVAILABLE, got %d %v", code, body)
	}
	code, body = h.do("GET", "/api/v1/dashboard", token, nil)
	if code != http.StatusServiceUnavailable {
		t.Errorf("dashboard must not render zeros, got %d %v", code, body)
	}
}

func TestAuthUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""
	h := newHarness(t, cfg)

	_, body := h.do("GET", "/api/health", "", nil)
	if body["auth"] != "unavailable" {
		t.Errorf("expected auth unavailable in health, got %v", body)
	}

	code, body := h.do("POST", "/api/v1/auth/login", "", map[string]string{"email": "a@example.com", "password": "password123"})
	if code != http.StatusServiceUnavailable || errorCode(body) != "AUTH_UNAVAILABLE" {
		t.Errorf("login: expected AUTH_UNAVAILABLE, got %d %v", code, body)
	}
	code, body = h.do("GET", "/api/v1/assets", "anything", nil)
	if code != http.StatusServiceUnavailable || errorCode(body) != "AUTH_UNAVAILABLE" {
		t.Errorf("assets: expected AUTH_UNAVAILABLE, got %d %v", code, body)
	}
}

func TestNewStore(t *testing.T) {
	cfg := testConfig()

	if _, status := NewStore(cfg, nil); status != StoreStatusDatabase {
		t.Errorf("expected database store, got %s", status)
	}

	cfg.StoreBackend = config.StoreBackendREST
	st, status := NewStore(cfg, nil)
	if status != StoreStatusUnconfigured {
		t.Errorf("expected unconfigured store, got %s", status)
	}
	if _, ok := st.(*store.Unconfigured); !ok {
		t.Errorf("expected *store.Unconfigured, got %T", st)
	}

	cfg.ServiceURL = "https://records.example"
	cfg.ServicePublicKey = "anon"
	if _, status := NewStore(cfg, nil); status != StoreStatusREST {
		t.Errorf("expected rest store, got %s", status)
	}
}

func TestInvalidResetKey(t *testing.T) {
	cfg := testConfig()
	cfg.ResetTokenKey = "not-base64!"

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	if _, err := New(cfg, db); err == nil {
		t.Error("expected an invalid reset key to be rejected")
	}
}
