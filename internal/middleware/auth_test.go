package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "vestora/internal/errors"
	"vestora/internal/models"
)

const testSecret = "test-secret"

func testUser() *models.User {
	u := &models.User{Email: "owner@example.com"}
	u.ID = "0190a5f0-0000-7000-8000-000000000001"
	return u
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func authRouter(m *TokenManager) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(m))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserID)})
	})
	return r
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager(testSecret, 0, 0)
	user := testUser()

	t.Run("access_round_trip", func(t *testing.T) {
		token, err := m.GenerateAccessToken(user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		claims, err := m.Parse(token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.UserID != user.ID || claims.TokenType != TokenTypeAccess {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("refresh_validation", func(t *testing.T) {
		refresh, _ := m.GenerateRefreshToken(user)
		if _, err := m.ValidateRefreshToken(refresh); err != nil {
			t.Errorf("expected valid refresh token: %v", err)
		}
		access, _ := m.GenerateAccessToken(user)
		if _, err := m.ValidateRefreshToken(access); err == nil {
			t.Error("access token must not validate as refresh token")
		}
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token, _ := NewTokenManager("other", 0, 0).GenerateAccessToken(user)
		if _, err := m.Parse(token); err == nil {
			t.Error("expected token signed with another secret to be rejected")
		}
	})

	t.Run("expired", func(t *testing.T) {
		short := NewTokenManager(testSecret, time.Minute, 0)
		short.currentTime = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _ := short.GenerateAccessToken(user)
		if _, err := m.Parse(token); err == nil {
			t.Error("expected expired token to be rejected")
		}
	})

	t.Run("admin_token_expiry", func(t *testing.T) {
		_, expires, err := m.GenerateAdminToken(user.Identity())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d := time.Until(expires); d <= 29*time.Minute || d > 30*time.Minute {
			t.Errorf("expected ~30m admin session, got %v", d)
		}
	})

	t.Run("unavailable_without_secret", func(t *testing.T) {
		empty := NewTokenManager("", 0, 0)
		if empty.Available() {
			t.Fatal("expected manager without secret to be unavailable")
		}
		_, err := empty.GenerateAccessToken(user)
		if !errors.Is(err, apperrors.ErrAuthUnavailable) {
			t.Errorf("expected AUTH_UNAVAILABLE, got %v", err)
		}
	})
}

func TestHashToken(t *testing.T) {
	if HashToken("a") == HashToken("b") {
		t.Error("different tokens must hash differently")
	}
	if len(HashToken("a")) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(HashToken("a")))
	}
}

func TestAuthMiddleware(t *testing.T) {
	m := NewTokenManager(testSecret, 0, 0)
	user := testUser()
	access, _ := m.GenerateAccessToken(user)
	refresh, _ := m.GenerateRefreshToken(user)
	admin, _, _ := m.GenerateAdminToken(user.Identity())

	tests := []struct {
		name     string
		manager  *TokenManager
		headers  map[string]string
		wantCode int
		wantErr  string
	}{
		{"valid_access", m, bearer(access), http.StatusOK, ""},
		{"missing_header", m, nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad_format", m, map[string]string{"Authorization": "Token " + access}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage", m, bearer("garbage"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"refresh_rejected", m, bearer(refresh), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"admin_rejected", m, bearer(admin), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"no_secret", NewTokenManager("", 0, 0), bearer(access), http.StatusServiceUnavailable, "AUTH_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(authRouter(tt.manager), http.MethodGet, "/me", tt.headers)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantErr != "" {
				if code := errorCode(t, rec); code != tt.wantErr {
					t.Errorf("expected error code %s, got %s", tt.wantErr, code)
				}
				return
			}
			if got := parseBody(t, rec)["user_id"]; got != user.ID {
				t.Errorf("expected user id %s in context, got %v", user.ID, got)
			}
		})
	}
}

type stubUsers struct {
	user *models.User
	err  error
}

func (s stubUsers) GetUserByID(string) (*models.User, error) { return s.user, s.err }

type stubGate struct {
	ok  bool
	err error
}

func (s stubGate) IsAdmin(context.Context, models.Identity) (bool, error) { return s.ok, s.err }

func TestAdminMiddleware(t *testing.T) {
	m := NewTokenManager(testSecret, 0, 0)
	user := testUser()
	access, _ := m.GenerateAccessToken(user)
	admin, _, _ := m.GenerateAdminToken(user.Identity())

	tests := []struct {
		name     string
		headers  map[string]string
		users    stubUsers
		gate     stubGate
		wantCode int
		wantErr  string
	}{
		{"admin_session", bearer(admin), stubUsers{user: user}, stubGate{ok: true}, http.StatusOK, ""},
		{"access_token_denied", bearer(access), stubUsers{user: user}, stubGate{ok: true}, http.StatusForbidden, "ADMIN_ACCESS_DENIED"},
		{"revoked_admin", bearer(admin), stubUsers{user: user}, stubGate{ok: false}, http.StatusForbidden, "ADMIN_ACCESS_DENIED"},
		{"gate_store_error", bearer(admin), stubUsers{user: user}, stubGate{err: apperrors.StoreFailure(errors.New("boom"))}, http.StatusBadGateway, "STORE_ERROR"},
		{"deleted_user", bearer(admin), stubUsers{err: apperrors.ErrUserNotFound}, stubGate{ok: true}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"no_token", nil, stubUsers{user: user}, stubGate{ok: true}, http.StatusUnauthorized, "UNAUTHORIZED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(AdminMiddleware(m, tt.users, tt.gate))
			r.GET("/admin", func(c *gin.Context) {
				identity, _ := c.Get(ContextIdentity)
				c.JSON(http.StatusOK, gin.H{"email": identity.(models.Identity).Email})
			})

			rec := doRequest(r, http.MethodGet, "/admin", tt.headers)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantErr != "" {
				if code := errorCode(t, rec); code != tt.wantErr {
					t.Errorf("expected error code %s, got %s", tt.wantErr, code)
				}
			}
		})
	}
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	t.Run("generates_id", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/ping", nil)
		id := rec.Header().Get("X-Request-ID")
		if id == "" || rec.Body.String() != id {
			t.Errorf("expected generated request id echoed, header=%q body=%q", id, rec.Body.String())
		}
	})

	t.Run("reuses_valid_incoming_id", func(t *testing.T) {
		incoming := "3f1c9a52-4c55-4c0e-9a53-2f7b9d2f6b10"
		rec := doRequest(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": incoming})
		if got := rec.Header().Get("X-Request-ID"); got != incoming {
			t.Errorf("expected %s, got %s", incoming, got)
		}
	})

	t.Run("replaces_malformed_id", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "<script>"})
		if got := rec.Header().Get("X-Request-ID"); got == "<script>" {
			t.Error("malformed request id must be replaced")
		}
	})
}

func TestErrorHandlerAppAndRawErrors(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrAssetNotFound)
	})
	r.GET("/raw", func(c *gin.Context) {
		_ = c.Error(errors.New("database exploded"))
	})

	rec := doRequest(r, http.MethodGet, "/app", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "ASSET_NOT_FOUND" {
		t.Errorf("expected 404 ASSET_NOT_FOUND, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/raw", nil)
	if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != "INTERNAL_ERROR" {
		t.Errorf("expected 500 INTERNAL_ERROR, got %d %s", rec.Code, rec.Body.String())
	}
}
