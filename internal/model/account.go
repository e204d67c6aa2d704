// Package model defines the data structures used throughout the application.
package model

import "time"

// Account represents a registered identity.
//
// An account is reachable two ways: by Username (local registration with a
// password) or by GoogleSubject (Google sign-in). The two paths are NOT
// unified — an account registered locally with alice@example.com and a
// Google login asserting the same address are two separate rows. Each path
// has its own UNIQUE constraint in the database.
//
// WHY GoogleSubject *string AND NOT string?
// Most accounts never sign in with Google, and the column carries a UNIQUE
// constraint. A nil pointer maps to SQL NULL, which SQLite excludes from
// uniqueness checks — two local accounts with no Google identity don't
// collide. An empty string would.
//
// Secret is likewise *string: "never submitted a secret" and "submitted the
// empty string" are different states, and the listing only shows non-empty
// values.
type Account struct {
	ID            string    `json:"id"            db:"id"`
	Username      string    `json:"username"      db:"username"`       // login name; email for Google-created accounts
	Credential    string    `json:"-"             db:"credential"`     // stored password representation; never serialized
	GoogleSubject *string   `json:"-"             db:"google_subject"` // Google's stable subject identifier, if linked
	Secret        *string   `json:"-"             db:"secret"`         // the account's submitted secret, if any
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt"     db:"updated_at"`
}

// HasSecret reports whether the account has submitted a non-empty secret.
func (a *Account) HasSecret() bool {
	return a.Secret != nil && *a.Secret != ""
}
