package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/whisperwall/internal/apperror"
	"github.com/sakif/whisperwall/internal/model"
	"github.com/sakif/whisperwall/internal/repository"
)

// compile-time check that *DB implements repository.AccountRepository
var _ repository.AccountRepository = (*DB)(nil)

const accountColumns = `id, username, credential, google_subject, secret, created_at, updated_at`

// Create inserts a new account with a freshly generated ID.
//
// DUPLICATE DETECTION:
// The UNIQUE constraint on username is the source of truth — a conflicting
// insert fails atomically and the existing row is never touched. The driver
// error is translated to apperror.ErrConflict so the service layer can tell
// "name taken" apart from "storage broken".
func (db *DB) Create(ctx context.Context, account *model.Account) error {
	// Generated values go into locals first — a failed insert must leave the
	// caller's struct exactly as it was passed in.
	id := xid.New().String()
	now := time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (id, username, credential, google_subject, secret, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		account.Username,
		account.Credential,
		account.GoogleSubject,
		account.Secret,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: inserting account: %w",
				apperror.Conflict("account", account.Username))
		}
		return fmt.Errorf("sqlite: inserting account %q: %w", account.Username, err)
	}

	account.ID = id
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

// GetByID retrieves an account by its internal ID.
// Returns an error wrapping apperror.ErrNotFound if no such account exists.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return db.getBy(ctx, "id", id)
}

// GetByUsername retrieves an account by its login name.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return db.getBy(ctx, "username", username)
}

// GetByGoogleSubject retrieves an account by its linked Google subject.
func (db *DB) GetByGoogleSubject(ctx context.Context, subject string) (*model.Account, error) {
	return db.getBy(ctx, "google_subject", subject)
}

// getBy fetches a single account by one indexed column. The column name is
// one of three compile-time constants above, never caller input.
func (db *DB) getBy(ctx context.Context, column, value string) (*model.Account, error) {
	var a model.Account

	err := db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM accounts WHERE %s = ?`, accountColumns, column),
		value,
	).Scan(
		&a.ID,
		&a.Username,
		&a.Credential,
		&a.GoogleSubject,
		&a.Secret,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("account", value)
		}
		return nil, fmt.Errorf("sqlite: getting account by %s %q: %w", column, value, err)
	}

	return &a, nil
}

// FindOrCreateByGoogleSubject resolves a Google identity to a local account,
// creating one on first sign-in.
//
// RACE HANDLING:
// Two concurrent first-time sign-ins from the same Google account both miss
// the lookup and both try to insert. The UNIQUE constraint on google_subject
// lets exactly one win; the loser re-reads and returns the winner's row, so
// both callers see the same account ID.
//
// The account's username is the asserted email. If a local account already
// holds that name, the Google account falls back to a subject-qualified name
// — the two identification paths stay separate rather than silently merging.
func (db *DB) FindOrCreateByGoogleSubject(ctx context.Context, subject, email string) (*model.Account, error) {
	existing, err := db.GetByGoogleSubject(ctx, subject)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	account := &model.Account{
		Username:      email,
		GoogleSubject: &subject,
		// Credential stays empty — Google-created accounts have no usable
		// local password until one is explicitly set.
	}
	if account.Username == "" {
		account.Username = "google:" + subject
	}

	err = db.Create(ctx, account)
	if err == nil {
		return account, nil
	}
	if !isConflict(err) {
		return nil, err
	}

	// Conflict. Either we lost the race on google_subject, or the email is
	// already taken as a local username. Re-check the subject first.
	if existing, lookupErr := db.GetByGoogleSubject(ctx, subject); lookupErr == nil {
		return existing, nil
	}

	// Username collision with a local account — keep the paths separate.
	account.Username = "google:" + subject
	if err := db.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateSecret overwrites the account's secret unconditionally.
func (db *DB) UpdateSecret(ctx context.Context, id, secret string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE accounts SET secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating secret for account %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking secret update for account %s: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("account", id)
	}

	return nil
}

// ListSecrets returns all non-empty secrets with no account attribution.
// Newest submissions first.
func (db *DB) ListSecrets(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT secret FROM accounts
		 WHERE secret IS NOT NULL AND secret != ''
		 ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing secrets: %w", err)
	}
	defer rows.Close()

	var secrets []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("sqlite: scanning secret: %w", err)
		}
		secrets = append(secrets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating secrets: %w", err)
	}

	return secrets, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite doesn't export a typed error for this, so we match the
// stable SQLite error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, apperror.ErrConflict)
}
