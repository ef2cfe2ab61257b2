// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. The iteration count is configurable; each stored record
// carries the count it was derived with, so changing the default only affects
// new registrations.
const (
	// DefaultKDFIterations is the default PBKDF2 round count.
	DefaultKDFIterations = 100_000

	kdfSaltLen = 16 // salt length in bytes
	kdfKeyLen  = 32 // derived key length in bytes

	// MinKDFIterations guards against configurations weak enough to defeat
	// the point of a slow KDF.
	MinKDFIterations = 1_000
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher derives and verifies password hashes.
type PasswordHasher interface {
	// Hash derives a key from the password with a fresh random salt.
	// Returns the derived key, the salt, and the iteration count used.
	Hash(password string) (hash, salt []byte, iterations int, err error)

	// Verify re-derives the key from password, salt, and iterations and
	// compares it to hash in constant time.
	Verify(password string, salt, hash []byte, iterations int) bool

	// Iterations reports the count used for new hashes.
	Iterations() int
}

// PBKDF2Hasher implements PasswordHasher using PBKDF2-SHA256.
type PBKDF2Hasher struct {
	iterations int
}

// NewPBKDF2Hasher creates a PBKDF2Hasher. A non-positive iteration count
// falls back to DefaultKDFIterations; positive counts below MinKDFIterations
// are raised to that floor.
func NewPBKDF2Hasher(iterations int) *PBKDF2Hasher {
	switch {
	case iterations <= 0:
		iterations = DefaultKDFIterations
	case iterations < MinKDFIterations:
		iterations = MinKDFIterations
	}
	return &PBKDF2Hasher{iterations: iterations}
}

// Hash derives a key from the password with a fresh random salt.
func (h *PBKDF2Hasher) Hash(password string) ([]byte, []byte, int, error) {
	if password == "" {
		return nil, nil, 0, ErrEmptyPassword
	}

	salt := make([]byte, kdfSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, 0, oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := pbkdf2.Key([]byte(password), salt, h.iterations, kdfKeyLen, sha256.New)
	return hash, salt, h.iterations, nil
}

// Iterations reports the count used for new hashes.
func (h *PBKDF2Hasher) Iterations() int {
	return h.iterations
}

// Verify re-derives the key and compares it to the stored hash in constant
// time. The full derivation always runs; there is no fast-path shortcut.
func (h *PBKDF2Hasher) Verify(password string, salt, hash []byte, iterations int) bool {
	if len(salt) == 0 || len(hash) == 0 || iterations <= 0 {
		return false
	}
	computed := pbkdf2.Key([]byte(password), salt, iterations, len(hash), sha256.New)
	return subtle.ConstantTimeCompare(computed, hash) == 1
}
