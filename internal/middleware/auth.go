package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "vestora/internal/errors"
	"vestora/internal/logger"
	"vestora/internal/models"
)

const (
	defaultAccessTokenExpiry = 15 * time.Minute
	refreshTokenExpiry       = 7 * 24 * time.Hour
	defaultAdminTokenExpiry  = 30 * time.Minute
	issuer                   = "vestora-api"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeAdmin   = "admin"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID   = "userID"
	ContextEmail    = "email"
	ContextIdentity = "identity"
)

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens. A manager without a
// secret is unavailable: it issues nothing and every check reports
// AUTH_UNAVAILABLE.
type TokenManager struct {
	secret      []byte
	accessTTL   time.Duration
	adminTTL    time.Duration
	refreshTTL  time.Duration
	currentTime func() time.Time
}

// NewTokenManager creates a TokenManager. Zero durations use the defaults.
func NewTokenManager(secret string, accessTTL, adminTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTokenExpiry
	}
	if adminTTL <= 0 {
		adminTTL = defaultAdminTokenExpiry
	}
	return &TokenManager{
		secret:      []byte(secret),
		accessTTL:   accessTTL,
		adminTTL:    adminTTL,
		refreshTTL:  refreshTokenExpiry,
		currentTime: time.Now,
	}
}

// Available reports whether a signing secret is configured.
func (m *TokenManager) Available() bool {
	return m != nil && len(m.secret) > 0
}

// AccessTTL returns the lifetime of access tokens.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// AdminTTL returns the lifetime of admin session tokens.
func (m *TokenManager) AdminTTL() time.Duration { return m.adminTTL }

func (m *TokenManager) sign(userID, email, tokenType string, ttl time.Duration) (string, time.Time, error) {
	if !m.Available() {
		return "", time.Time{}, apperrors.ErrAuthUnavailable
	}

	now := m.currentTime()
	expires := now.Add(ttl)
	claims := &JWTClaims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// GenerateAccessToken generates a short-lived JWT access token for a user.
func (m *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	token, _, err := m.sign(user.ID, user.Email, TokenTypeAccess, m.accessTTL)
	return token, err
}

// GenerateRefreshToken generates a long-lived JWT refresh token for a user.
func (m *TokenManager) GenerateRefreshToken(user *models.User) (string, error) {
	token, _, err := m.sign(user.ID, user.Email, TokenTypeRefresh, m.refreshTTL)
	return token, err
}

// GenerateAdminToken issues the admin session token returned by a
// successful unlock, together with its expiry.
func (m *TokenManager) GenerateAdminToken(identity models.Identity) (string, time.Time, error) {
	return m.sign(identity.ID, identity.Email, TokenTypeAdmin, m.adminTTL)
}

// Parse verifies a token's signature and expiry and returns its claims.
func (m *TokenManager) Parse(tokenString string) (*JWTClaims, error) {
	if !m.Available() {
		return nil, apperrors.ErrAuthUnavailable
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.currentTime))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// ValidateRefreshToken parses and validates a refresh token JWT.
// Returns the claims if valid, or an error if the token is invalid,
// expired, or not a refresh token.
func (m *TokenManager) ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	claims, err := m.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, fmt.Errorf("token is not a refresh token")
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest of a token string.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// abortWithError writes the standard error body and stops the chain.
func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	RespondError(c, appErr)
}

// bearerClaims extracts and verifies the bearer token of the request.
func bearerClaims(c *gin.Context, m *TokenManager) (*JWTClaims, *apperrors.AppError) {
	if !m.Available() {
		return nil, apperrors.ErrAuthUnavailable
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format")
	}

	claims, err := m.Parse(parts[1])
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}

// AuthMiddleware verifies an access token and sets the user in the context.
func AuthMiddleware(m *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, appErr := bearerClaims(c, m)
		if appErr != nil {
			abortWithError(c, appErr)
			return
		}

		// Refresh and admin tokens are not access tokens.
		if claims.TokenType != TokenTypeAccess {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// IdentityResolver loads the current identity of a user.
type IdentityResolver interface {
	GetUserByID(id string) (*models.User, error)
}

// AdminGate decides whether an identity is an admin.
type AdminGate interface {
	IsAdmin(ctx context.Context, identity models.Identity) (bool, error)
}

// AdminMiddleware requires an admin session token and re-checks the admin
// gate on every request, so revoking a user's admin status takes effect
// before their session expires.
func AdminMiddleware(m *TokenManager, users IdentityResolver, gate AdminGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, appErr := bearerClaims(c, m)
		if appErr != nil {
			abortWithError(c, appErr)
			return
		}
		if claims.TokenType != TokenTypeAdmin {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrAdminDenied, "Admin session required"))
			return
		}

		user, err := users.GetUserByID(claims.UserID)
		if err != nil {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}
		identity := user.Identity()

		ok, err := gate.IsAdmin(c.Request.Context(), identity)
		if err != nil {
			var gateErr *apperrors.AppError
			if !errors.As(err, &gateErr) {
				gateErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			abortWithError(c, gateErr)
			return
		}
		if !ok {
			logger.Named("admin").Warnw("admin session rejected", "user_id", identity.ID)
			abortWithError(c, apperrors.ErrAdminDenied)
			return
		}

		c.Set(ContextUserID, identity.ID)
		c.Set(ContextEmail, identity.Email)
		c.Set(ContextIdentity, identity)
		c.Next()
	}
}
