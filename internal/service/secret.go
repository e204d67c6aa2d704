package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/whisperwall/internal/repository"
)

// SecretService handles the wall of secrets.
type SecretService struct {
	accounts repository.AccountRepository
	logger   *slog.Logger
}

// NewSecretService creates a SecretService.
func NewSecretService(accounts repository.AccountRepository, logger *slog.Logger) *SecretService {
	return &SecretService{
		accounts: accounts,
		logger:   logger,
	}
}

// Submit overwrites the account's secret. One secret per account — no
// append, no history. A storage failure is returned, never swallowed: the
// handler must not redirect as if the write happened.
func (s *SecretService) Submit(ctx context.Context, accountID, secret string) error {
	if accountID == "" {
		return fmt.Errorf("service/secret: account ID must not be empty")
	}

	if err := s.accounts.UpdateSecret(ctx, accountID, secret); err != nil {
		return fmt.Errorf("service/secret: submitting for account %s: %w", accountID, err)
	}

	// Log the event, never the secret itself.
	s.logger.Info("secret submitted", slog.String("accountID", accountID))

	return nil
}

// List returns every non-empty secret across all accounts, unattributed.
// The listing deliberately carries no pairing of secret to owner.
func (s *SecretService) List(ctx context.Context) ([]string, error) {
	secrets, err := s.accounts.ListSecrets(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/secret: listing: %w", err)
	}
	return secrets, nil
}
