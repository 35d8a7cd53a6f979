package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	operatorKeyBytes = 32
	bcryptCost       = 12
)

// ErrOperatorAccessDisabled is returned when no operator key hash is configured.
var ErrOperatorAccessDisabled = errors.New("operator access is not configured")

// GenerateOperatorKey generates a cryptographically secure operator API key.
// The key is 32 random bytes, hex-encoded to 64 characters.
func GenerateOperatorKey() (string, error) {
	b := make([]byte, operatorKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate operator key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashOperatorKey hashes a plaintext operator key using bcrypt with cost factor 12.
// The result is what goes into auth.operator_key_hash.
func HashOperatorKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash operator key: %w", err)
	}
	return string(hash), nil
}

// OperatorKey verifies presented keys against a configured bcrypt hash.
type OperatorKey struct {
	hash string
}

// NewOperatorKey returns a verifier for the given bcrypt hash. An empty hash
// disables operator access entirely.
func NewOperatorKey(hash string) *OperatorKey {
	return &OperatorKey{hash: hash}
}

// Enabled reports whether an operator key hash is configured.
func (k *OperatorKey) Enabled() bool {
	return k != nil && k.hash != ""
}

// Verify checks a plaintext key against the configured hash.
func (k *OperatorKey) Verify(key string) error {
	if !k.Enabled() {
		return ErrOperatorAccessDisabled
	}
	return bcrypt.CompareHashAndPassword([]byte(k.hash), []byte(key))
}
