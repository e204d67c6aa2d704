package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFound_WrapsSentinel(t *testing.T) {
	err := NotFound("account", "abc123")

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound() should wrap ErrNotFound")
	}
	if err.Message != "account not found with id abc123" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestConflict_WrapsSentinel(t *testing.T) {
	err := Conflict("account", "alice")

	if !errors.Is(err, ErrConflict) {
		t.Error("Conflict() should wrap ErrConflict")
	}
}

func TestValidationFailed_CarriesField(t *testing.T) {
	err := ValidationFailed("username", "username must not be empty")

	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationFailed() should wrap ErrValidation")
	}
	if err.Field != "username" {
		t.Errorf("Field = %q, want %q", err.Field, "username")
	}
	if err.Error() != "username must not be empty" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestUnauthorized_WrapsSentinel(t *testing.T) {
	err := Unauthorized("sign in required")

	if !errors.Is(err, ErrUnauthorized) {
		t.Error("Unauthorized() should wrap ErrUnauthorized")
	}
}

// errors.Is must see through additional fmt.Errorf %w wrapping — the service
// layer wraps repository errors with context before handlers inspect them.
func TestSentinel_SurvivesWrapping(t *testing.T) {
	inner := Conflict("account", "alice")
	outer := fmt.Errorf("service/auth: registering account: %w", inner)

	if !errors.Is(outer, ErrConflict) {
		t.Error("wrapped AppError should still match ErrConflict")
	}

	var appErr *AppError
	if !errors.As(outer, &appErr) {
		t.Fatal("errors.As should extract *AppError from the chain")
	}
	if appErr.Message == "" {
		t.Error("extracted AppError has no message")
	}
}

func TestLoginFailureSentinels_AreDistinct(t *testing.T) {
	if errors.Is(ErrUnknownUsername, ErrCredentialMismatch) {
		t.Error("login failure sentinels must be distinguishable")
	}
}
