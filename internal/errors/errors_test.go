package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrInternalServer, cause)

	if err.Code != "INTERNAL_ERROR" {
		t.Errorf("expected code INTERNAL_ERROR, got %s", err.Code)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected wrapped error to unwrap to cause")
	}
	if err.Message != ErrInternalServer.Message {
		t.Errorf("internal details should not leak into message, got %q", err.Message)
	}
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "amount must be non-negative")
	if err.Message != "amount must be non-negative" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.StatusCode)
	}
}

func TestStoreFailure(t *testing.T) {
	cause := stderrors.New("relation \"assets\" does not exist")
	err := StoreFailure(cause)

	if err.Code != "STORE_ERROR" {
		t.Errorf("expected STORE_ERROR, got %s", err.Code)
	}
	if err.Message != `record store error: relation "assets" does not exist` {
		t.Errorf("expected underlying message to surface, got %q", err.Message)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected store failure to unwrap to cause")
	}

	var appErr *AppError
	if !stderrors.As(error(err), &appErr) || appErr.StatusCode != http.StatusBadGateway {
		t.Error("expected *AppError with 502 status")
	}
}
