package credential

import "crypto/subtle"

// PlaintextCodec stores passwords exactly as submitted.
//
// This is the insecure baseline the site started with: anyone who can read
// the accounts table can read every password. It exists so the policy can be
// demonstrated and tested against the others — do not deploy it.
type PlaintextCodec struct{}

// Derive is the identity function.
func (PlaintextCodec) Derive(plaintext string) (string, error) {
	return plaintext, nil
}

// Verify is byte equality. subtle.ConstantTimeCompare keeps even the
// baseline free of trivial timing leaks.
func (PlaintextCodec) Verify(stored, plaintext string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(plaintext)) != 1 {
		return ErrMismatch
	}
	return nil
}
