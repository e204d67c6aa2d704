package repository

import (
	"context"

	"github.com/sakif/whisperwall/internal/model"
)

// AccountRepository is the storage contract for accounts.
//
// Two lookup paths exist and are deliberately NOT unified: an account created
// by local registration (found by username) and one created by Google
// sign-in (found by google_subject) stay separate even when they belong to
// the same person. Each path carries its own uniqueness constraint.
type AccountRepository interface {
	// Create inserts a new account. Returns an error wrapping
	// apperror.ErrConflict if the username is already taken; the existing
	// account is left untouched.
	Create(ctx context.Context, account *model.Account) error

	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByGoogleSubject(ctx context.Context, subject string) (*model.Account, error)

	// FindOrCreateByGoogleSubject returns the account linked to the given
	// Google subject, creating it on first sign-in. Created accounts have no
	// usable local credential. The UNIQUE constraint on google_subject makes
	// concurrent first sign-ins converge on a single account.
	FindOrCreateByGoogleSubject(ctx context.Context, subject, email string) (*model.Account, error)

	// UpdateSecret overwrites the account's secret. No append, no history.
	UpdateSecret(ctx context.Context, id, secret string) error

	// ListSecrets returns every non-empty secret across all accounts, with
	// no attribution to the accounts that own them.
	ListSecrets(ctx context.Context) ([]string, error)
}
