package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is used when no cost is configured.
	DefaultBcryptCost = 12

	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
)

// Password schemes accepted in configuration.
const (
	SchemeBcrypt = "bcrypt"
	SchemeSHA256 = "sha256"
)

// PasswordHasher hashes new passwords with bcrypt. It still verifies digests
// written in the legacy unsalted SHA-256 format so existing accounts keep
// working, and reports them through NeedsRehash.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a bcrypt hasher. A zero cost selects DefaultBcryptCost.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Hash returns a bcrypt digest of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("password exceeds %d bytes", MaxPasswordBytes)
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(digest), nil
}

// Verify checks password against a bcrypt or legacy digest.
func (h *PasswordHasher) Verify(password, digest string) bool {
	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	}
	return LegacyHasher{}.Verify(password, digest)
}

// NeedsRehash reports whether digest should be replaced by a fresh bcrypt hash.
func (h *PasswordHasher) NeedsRehash(digest string) bool {
	if !isBcrypt(digest) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(digest))
	return err != nil || cost != h.cost
}

// LegacyHasher produces base64(sha256(password)), the credential format of
// the system this service replaces. Use only for compatibility testing.
type LegacyHasher struct{}

// Hash returns the legacy digest.
func (LegacyHasher) Hash(password string) (string, error) {
	return legacyDigest(password), nil
}

// Verify compares in constant time.
func (LegacyHasher) Verify(password, digest string) bool {
	want := legacyDigest(password)
	return subtle.ConstantTimeCompare([]byte(want), []byte(digest)) == 1
}

// NeedsRehash is always false; legacy mode never upgrades.
func (LegacyHasher) NeedsRehash(string) bool {
	return false
}

func legacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") || strings.HasPrefix(digest, "$2b$") || strings.HasPrefix(digest, "$2y$")
}
