package app

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 10000
	hashKeyLength  = 64
	saltLength     = 16
)

// newSalt returns a fresh random hex salt. It is never derived from the
// password, so repeated calls for the same password differ.
func newSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// hashPassword derives the stored hash for a password and salt. The exact
// KDF is an internal detail; it only has to be deterministic and one-way.
func hashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), hashIterations, hashKeyLength, sha512.New)
	return hex.EncodeToString(key)
}

// verifyPassword compares a candidate password against the stored hash in
// constant time.
func verifyPassword(password, salt, storedHash string) bool {
	candidate := hashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}
