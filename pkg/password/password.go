package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the 10 rounds the accounts table was seeded with.
const DefaultCost = bcrypt.DefaultCost

// ErrTooLong is returned by Hash for inputs over 72 bytes, which bcrypt
// would otherwise truncate.
var ErrTooLong = bcrypt.ErrPasswordTooLong

type Hasher struct {
	Cost int
}

func NewHasher() *Hasher {
	return &Hasher{Cost: DefaultCost}
}

// Hash returns a salted bcrypt hash. Each call draws a fresh salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed. Malformed hashes never match.
func (h *Hasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
