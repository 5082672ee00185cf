// Package cryptox implements the credential-hashing protocol: per-user salt
// generation and one-way password hashing parameterized by that salt.
//
// Salts and hashes are handled as hex-encoded text so they can be persisted
// in plain VARCHAR columns and compared byte-for-byte.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"

	"github.com/fhirmeds/fhirmeds/internal/common"
)

// SaltSize is the number of random bytes in a freshly generated salt
// (the encoded form is twice as long).
const SaltSize = 16

// Argon2id parameters. Changing these invalidates every stored hash.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// NewSalt generates a fresh random salt, hex-encoded.
func NewSalt() (string, error) {
	return common.MakeRandHexString(SaltSize)
}

// HashPassword derives a one-way hash of the raw password under the given
// encoded salt and returns it hex-encoded. The same (password, salt) pair
// always produces the same output.
func HashPassword(password, salt string) string {
	sum := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(sum)
}

// VerifyPassword recomputes the hash of the submitted password under the
// stored salt and compares it with the stored hash in constant time.
func VerifyPassword(password, salt, storedHash string) bool {
	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}
