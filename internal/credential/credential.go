// Package credential converts plaintext passwords to and from their stored
// representation.
//
// Three mutually exclusive policies exist:
//
//   - plaintext: stored as-is. The documented insecure baseline.
//   - encrypted: AES-GCM under a process-wide key. Reversible — anyone
//     holding the key can recover the original password.
//   - hashed: bcrypt with a per-derivation random salt. Irreversible.
//
// Exactly one policy is active per process, chosen by configuration at
// startup. There is no migration path between policies: switching the policy
// of a running deployment makes every previously stored credential fail
// verification (except where the formats happen to be distinguishable, which
// this package does not attempt to exploit).
package credential

import (
	"errors"
	"fmt"

	"github.com/sakif/whisperwall/internal/config"
)

// ErrMismatch is returned by Verify when the plaintext does not match the
// stored credential. Any other error from Verify means the credential could
// not be checked at all (corrupt blob, wrong key, ...) — callers treat both
// as a failed login but may log them differently.
var ErrMismatch = errors.New("credential: mismatch")

// Codec derives stored credentials from plaintext passwords and verifies
// plaintext against them.
type Codec interface {
	// Derive converts a plaintext password into its stored representation.
	Derive(plaintext string) (string, error)

	// Verify checks plaintext against a stored representation. Returns nil
	// on match and ErrMismatch (possibly wrapped) otherwise.
	Verify(stored, plaintext string) error
}

// New returns the codec for the configured policy.
//
// The encrypted policy needs key material; the others don't. Unknown
// policies fail here, at startup — never at request time.
func New(policy config.CredentialPolicy, secret string) (Codec, error) {
	switch policy {
	case config.PolicyPlaintext:
		return PlaintextCodec{}, nil
	case config.PolicyEncrypted:
		return NewAESCodec(secret)
	case config.PolicyHashed:
		return NewBcryptCodec(), nil
	default:
		return nil, fmt.Errorf("credential: unknown policy %q", policy)
	}
}
