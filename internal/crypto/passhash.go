// Package crypto implements server-side password hashing and reset-code
// generation.
package crypto

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt digest of the password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// VerifyPassword reports whether the password matches the stored digest.
func VerifyPassword(password string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(password)) == nil
}

// resetCodeSpan covers the 6-digit range [100000, 999999].
const (
	resetCodeMin  = 100000
	resetCodeSpan = 900000
)

// GenerateResetCode returns a 6-digit numeric code drawn uniformly from
// [100000, 999999] using a cryptographically secure source.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(resetCodeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+resetCodeMin, 10), nil
}
