package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "vestora/internal/errors"
	"vestora/internal/logger"
	"vestora/internal/middleware"
	"vestora/internal/models"
	"vestora/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService  services.UserServicer
	tokens       *middleware.TokenManager
	adminGate    middleware.AdminGate
	auditService services.AuditServicer
	// exposeResetTokens returns reset tokens in the response body. There is
	// no mail delivery, so this is how non-production setups complete a reset.
	exposeResetTokens bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, tokens *middleware.TokenManager, adminGate middleware.AdminGate, auditService services.AuditServicer, exposeResetTokens bool) *AuthHandler {
	return &AuthHandler{
		userService:       userService,
		tokens:            tokens,
		adminGate:         adminGate,
		auditService:      auditService,
		exposeResetTokens: exposeResetTokens,
	}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// PasswordResetRequest starts a password reset
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest completes a password reset
type PasswordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	IsAdmin   bool                   `json:"is_admin"`
}

// AuthResponse represents the authentication response with tokens
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Metadata:  map[string]interface{}(user.Metadata),
	}
}

// requireTokens fails every auth route when no signing secret is configured.
func (h *AuthHandler) requireTokens(c *gin.Context) bool {
	if !h.tokens.Available() {
		respondWithError(c, apperrors.ErrAuthUnavailable)
		return false
	}
	return true
}

// issueTokens signs a token pair and stores the refresh token hash.
func (h *AuthHandler) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := h.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	refreshToken, err := h.tokens.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refreshToken)); err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.tokens.AccessTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and tokens generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     503 {object} ErrorResponse "Authentication unavailable"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	if !h.requireTokens(c) {
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.CreateUser(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, user.ID, "auth.register", "user", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusCreated, resp)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and tokens generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     503 {object} ErrorResponse "Authentication unavailable"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.requireTokens(c) {
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, user.ID, "auth.login", "user", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token
// @Summary     Refresh tokens
// @Description Exchange a refresh token for a new token pair. The old refresh token stops working.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} AuthResponse "New token pair"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid or revoked refresh token"
// @Failure     503 {object} ErrorResponse "Authentication unavailable"
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	if !h.requireTokens(c) {
		return
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	invalid := apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired refresh token")

	claims, err := h.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, invalid)
		return
	}

	stored, err := h.userService.GetRefreshTokenHash(claims.UserID)
	if err != nil {
		respondWithError(c, invalid)
		return
	}
	presented := middleware.HashToken(req.RefreshToken)
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		logger.Named("auth").Warnw("refresh token reuse or revoked token", "user_id", claims.UserID)
		respondWithError(c, invalid)
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil {
		respondWithError(c, invalid)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout revokes the stored refresh token
// @Summary     Logout
// @Description Revoke the current refresh token. Access tokens expire on their own.
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     204 "Logged out"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.ClearRefreshTokenHash(userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, userID, "auth.logout", "user", userID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}

// RequestPasswordReset issues a password reset token
// @Summary     Request a password reset
// @Description Issue a one-hour reset token. The response is identical for unknown emails.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body PasswordResetRequest true "Account email"
// @Success     202 {object} map[string]string "Reset requested"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /auth/password-reset/request [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	if !h.requireTokens(c) {
		return
	}

	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	token, err := h.userService.RequestPasswordReset(req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := gin.H{"status": "reset_requested"}
	if token != "" && h.exposeResetTokens {
		logger.Named("auth").Debugw("password reset token issued", "email", req.Email, "token", token)
		resp["reset_token"] = token
	}
	c.JSON(http.StatusAccepted, resp)
}

// ConfirmPasswordReset sets a new password from a reset token
// @Summary     Confirm a password reset
// @Description Set a new password using a reset token. Signs out every session.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body PasswordResetConfirmRequest true "Reset token and new password"
// @Success     204 "Password updated"
// @Failure     400 {object} ErrorResponse "Invalid input or token"
// @Router      /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	if !h.requireTokens(c) {
		return
	}

	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.userService.ConfirmPasswordReset(req.Token, req.Password); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's identity, including whether it may unlock the admin surface
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Record store error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := toUserResponse(user)
	isAdmin, err := h.adminGate.IsAdmin(c.Request.Context(), user.Identity())
	if err != nil {
		respondWithError(c, err)
		return
	}
	resp.IsAdmin = isAdmin

	c.JSON(http.StatusOK, gin.H{"user": resp})
}
