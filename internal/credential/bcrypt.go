package credential

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor.
//
// Cost 12 takes roughly 250ms on current server hardware — negligible for a
// login, expensive for an attacker grinding through a stolen table.
const defaultCost = 12

// BcryptCodec stores passwords as salted bcrypt hashes.
//
// bcrypt generates a random salt per call and embeds it (with the cost) in
// the output string, so no separate salt column is needed and deriving the
// same password twice yields different hashes that both verify. The
// plaintext is never recoverable, even by the operator.
type BcryptCodec struct {
	cost int
}

// NewBcryptCodec returns a codec with the default cost (12).
func NewBcryptCodec() *BcryptCodec {
	return &BcryptCodec{cost: defaultCost}
}

// NewBcryptCodecForTest returns a codec with a caller-chosen cost. Tests use
// the bcrypt minimum (4) to avoid paying ~250ms per derivation. Do not use
// in production.
func NewBcryptCodecForTest(cost int) *BcryptCodec {
	return &BcryptCodec{cost: cost}
}

// Derive hashes the plaintext with bcrypt.
//
// Returns an error for passwords over 72 bytes — bcrypt silently truncates
// beyond that, and we'd rather reject than surprise.
func (c *BcryptCodec) Derive(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("credential: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	if err != nil {
		return "", fmt.Errorf("credential: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify recomputes the hash with the salt embedded in the stored value and
// compares digests. bcrypt's comparison is constant-time internally.
func (c *BcryptCodec) Verify(stored, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("%w: %v", ErrMismatch, err)
	}
	return nil
}
