// Package errors provides custom error types for the Vestora API.
// All service-layer errors should use AppError so every failure reaches the
// caller as a distinguishable code rather than a generic boolean.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// StoreFailure wraps a record-store error. Unlike other internal errors the
// underlying message is kept in the client-facing message.
func StoreFailure(err error) *AppError {
	return &AppError{
		Code:       ErrStore.Code,
		Message:    ErrStore.Message + ": " + err.Error(),
		StatusCode: ErrStore.StatusCode,
		Internal:   err,
	}
}

// Authentication & authorization errors.
var (
	ErrAuthUnavailable    = &AppError{Code: "AUTH_UNAVAILABLE", Message: "Authentication is not available", StatusCode: http.StatusServiceUnavailable}
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidResetToken  = &AppError{Code: "INVALID_RESET_TOKEN", Message: "Password reset token is invalid or expired", StatusCode: http.StatusBadRequest}
	ErrAdminDenied        = &AppError{Code: "ADMIN_ACCESS_DENIED", Message: "Admin access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Record store errors.
var (
	ErrStore            = &AppError{Code: "STORE_ERROR", Message: "record store error", StatusCode: http.StatusBadGateway}
	ErrStoreUnavailable = &AppError{Code: "STORE_UNAVAILABLE", Message: "Record store is not configured", StatusCode: http.StatusServiceUnavailable}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Portfolio errors.
var (
	ErrAssetNotFound   = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
	ErrBalanceNotFound = &AppError{Code: "BALANCE_NOT_FOUND", Message: "Balance has not been synchronized yet", StatusCode: http.StatusNotFound}
)
