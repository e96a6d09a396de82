package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes = 32 // 256 bits of entropy
	keyBytes  = 32

	// MinHashIterations is the floor for the PBKDF2 work factor.
	MinHashIterations = 10000
)

// GenerateSalt produces a cryptographically random salt, base64 encoded.
// RNG failure is fatal to the operation that requested the salt.
func GenerateSalt() (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("security.GenerateSalt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// Hasher derives password hashes with PBKDF2-SHA256. The iteration count is
// the tunable work factor.
type Hasher struct {
	iterations int
}

func NewHasher(iterations int) *Hasher {
	if iterations < MinHashIterations {
		iterations = MinHashIterations
	}
	return &Hasher{iterations: iterations}
}

// Hash is deterministic for a given (password, salt) pair and one-way.
func (h *Hasher) Hash(password, salt string) (string, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("security.Hasher.Hash: malformed salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), rawSalt, h.iterations, keyBytes, sha256.New)
	return base64.StdEncoding.EncodeToString(key), nil
}

// Verify recomputes the hash and compares in constant time. Malformed salt
// or hash input can never match; it is reported as false, not an error.
func (h *Hasher) Verify(password, salt, hash string) bool {
	expected, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	computed := pbkdf2.Key([]byte(password), rawSalt, h.iterations, keyBytes, sha256.New)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
