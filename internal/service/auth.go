// Package service holds the business rules, between the HTTP handlers and
// the repository:
//
//	handlers (HTTP) → services (rules) → AccountRepository (DB)
//	                ↘ credential.Codec / auth.SessionManager
//
// Services never touch HTTP and never build SQL. Handlers set cookies and
// pick redirects; services decide whether a login is good.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/whisperwall/internal/apperror"
	"github.com/sakif/whisperwall/internal/auth"
	"github.com/sakif/whisperwall/internal/credential"
	"github.com/sakif/whisperwall/internal/model"
	"github.com/sakif/whisperwall/internal/repository"
)

// AuthService handles registration and login.
type AuthService struct {
	accounts repository.AccountRepository
	codec    credential.Codec
	logger   *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	accounts repository.AccountRepository,
	codec credential.Codec,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		codec:    codec,
		logger:   logger,
	}
}

// Register derives a credential for the password and creates the account.
//
// A taken username surfaces as an error wrapping apperror.ErrConflict and
// leaves the existing account untouched — the UNIQUE constraint guarantees
// that, not a lookup.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.Account, error) {
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username must not be empty")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password must not be empty")
	}

	stored, err := s.codec.Derive(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: deriving credential: %w", err)
	}

	account := &model.Account{
		Username:   username,
		Credential: stored,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("service/auth: registering %q: %w", username, err)
	}

	// The username is fine to log; the password and credential never are.
	s.logger.Info("account registered",
		slog.String("accountID", account.ID),
		slog.String("username", account.Username),
	)

	return account, nil
}

// Login resolves the username and verifies the password against the stored
// credential.
//
// FAILURE REASONS:
// The two failure cases are distinguishable to the caller — the login form
// shows "Username does not exist." for one and "Incorrect username or
// password." for the other — but both re-render the same form with the same
// status, so nothing about the response shape aids enumeration beyond the
// message text the original design already chose to show.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: login for %q: %w", username, apperror.ErrUnknownUsername)
		}
		return nil, fmt.Errorf("service/auth: resolving %q: %w", username, err)
	}

	// Accounts created via Google sign-in have no local credential; an empty
	// stored value can never verify, which is the behavior we want.
	if err := s.codec.Verify(account.Credential, password); err != nil {
		s.logger.Info("login failed",
			slog.String("username", username),
		)
		return nil, fmt.Errorf("service/auth: login for %q: %w", username, apperror.ErrCredentialMismatch)
	}

	s.logger.Info("login succeeded",
		slog.String("accountID", account.ID),
		slog.String("username", account.Username),
	)

	return account, nil
}

// LoginOrRegisterGoogle resolves a Google identity to a local account,
// creating one on first sign-in. The repository's uniqueness constraint on
// the subject guarantees repeated callbacks converge on one account.
func (s *AuthService) LoginOrRegisterGoogle(ctx context.Context, gUser *auth.GoogleUser) (*model.Account, error) {
	if gUser == nil || gUser.Subject == "" {
		return nil, fmt.Errorf("service/auth: Google user must have a subject")
	}

	account, err := s.accounts.FindOrCreateByGoogleSubject(ctx, gUser.Subject, gUser.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: resolving Google identity: %w", err)
	}

	s.logger.Info("google sign-in",
		slog.String("accountID", account.ID),
	)

	return account, nil
}

// GetAccountByID returns the account for the given internal ID. Used by
// handlers after the session middleware has attached the ID to the context.
func (s *AuthService) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: account ID must not be empty")
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching account %s: %w", id, err)
	}

	return account, nil
}
