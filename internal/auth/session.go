// Package auth provides the session lifecycle and the Google sign-in pieces.
//
// SESSION MODEL:
// State machine per visitor: Anonymous → Authenticated (successful login or
// Google callback) → Anonymous (logout). Authenticated state persists across
// requests via an opaque cookie; the cookie's payload is signed and
// encrypted by gorilla/sessions, so the browser holds a token it cannot read
// or forge, and the server needs no session table.
//
// The session records the account's internal ID plus a denormalized username
// snapshot — enough to resolve the full account on any later request without
// re-authenticating.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/sakif/whisperwall/internal/model"
)

const (
	sessionName = "ww_session"

	sessionKeyAccountID = "account_id"
	sessionKeyUsername  = "username"

	// A week. Expiry beyond that is the cookie store's business, not ours.
	sessionMaxAge = 7 * 24 * 60 * 60
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values we store.
type contextKey string

const accountIDKey contextKey = "accountID"

// SessionManager issues, reads, and destroys authenticated sessions.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager creates a SessionManager signing cookies with the given
// secret. The secret must be non-empty; key strength is the operator's
// responsibility (32+ random bytes).
func NewSessionManager(secret string) (*SessionManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: session secret must not be empty")
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true in production (requires HTTPS)
	}

	return &SessionManager{store: store}, nil
}

// Establish transitions the request from Anonymous to Authenticated.
//
// A save failure here is a hard failure: the caller must abort with an error
// rather than redirect onward, or the user would land on an
// authenticated-only page without a session and bounce back to login.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, account *model.Account) error {
	// Get never fails fatally — an undecodable cookie yields a fresh session,
	// which is exactly what we want when establishing a new identity.
	session, _ := m.store.Get(r, sessionName)

	session.Values[sessionKeyAccountID] = account.ID
	session.Values[sessionKeyUsername] = account.Username

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("auth: saving session for account %s: %w", account.ID, err)
	}
	return nil
}

// Clear destroys the session. Idempotent: clearing when no session exists is
// a successful no-op, so logging out twice never errors.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)

	for k := range session.Values {
		delete(session.Values, k)
	}
	session.Options.MaxAge = -1 // tells the browser to drop the cookie

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("auth: clearing session: %w", err)
	}
	return nil
}

// AccountID reads the authenticated account's ID from the request's session.
// Returns ("", false) for anonymous requests.
func (m *SessionManager) AccountID(r *http.Request) (string, bool) {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		// Undecodable cookie (e.g. rotated secret) — treat as anonymous.
		return "", false
	}

	id, ok := session.Values[sessionKeyAccountID].(string)
	return id, ok && id != ""
}

// RequireAuth guards authenticated-only routes. Anonymous requests are
// redirected to the login form; authenticated ones proceed with the account
// ID stored in the request context.
func (m *SessionManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.AccountID(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountIDFromContext retrieves the authenticated account's ID placed in the
// context by RequireAuth. Returns ("", false) on anonymous requests.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}
