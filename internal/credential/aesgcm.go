package credential

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// AESCodec stores passwords encrypted with AES-256-GCM under a single
// process-wide key.
//
// REVERSIBLE BY DESIGN:
// Unlike a hash, encryption can be undone — anyone holding the key can
// recover every original password. Losing the key is fatal the other way:
// every stored credential becomes unverifiable and those accounts can never
// log in locally again.
//
// STORED FORMAT:
// base64(nonce || ciphertext). A fresh random 12-byte nonce is generated per
// derivation, so deriving the same password twice yields different blobs.
type AESCodec struct {
	aead cipher.AEAD
}

// NewAESCodec builds the codec from the configured secret. The secret is an
// arbitrary string; SHA-256 stretches it to the 32 bytes AES-256 requires.
func NewAESCodec(secret string) (*AESCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("credential: encryption secret must not be empty")
	}

	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("credential: creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("credential: creating GCM: %w", err)
	}

	return &AESCodec{aead: aead}, nil
}

// Derive encrypts the plaintext under the process key.
func (c *AESCodec) Derive(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("credential: generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Verify decrypts the stored blob and compares it to the plaintext.
//
// A decryption failure (corrupt blob, or the process key changed since the
// credential was derived) is indistinguishable from a wrong password to the
// user; both return ErrMismatch, the decryption failure with context.
func (c *AESCodec) Verify(stored, plaintext string) error {
	recovered, err := c.Decrypt(stored)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMismatch, err)
	}

	if subtle.ConstantTimeCompare([]byte(recovered), []byte(plaintext)) != 1 {
		return ErrMismatch
	}
	return nil
}

// Decrypt recovers the original plaintext from a stored blob. Exposed so the
// round-trip property is testable; nothing in the request path renders it.
func (c *AESCodec) Decrypt(stored string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("credential: decoding stored blob: %w", err)
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", fmt.Errorf("credential: stored blob too short")
	}

	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("credential: decrypting: %w", err)
	}

	return string(plaintext), nil
}
