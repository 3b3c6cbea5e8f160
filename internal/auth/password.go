// Package auth hashes user passwords before they reach the user store, which
// only keeps the opaque hash.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns passwords into storable hashes and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) error
}

// BcryptPasswordHasher implements PasswordHasher with bcrypt.
type BcryptPasswordHasher struct {
	Cost int
}

// NewBcryptPasswordHasher uses bcrypt.DefaultCost when cost <= 0.
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{Cost: cost}
}

func (h *BcryptPasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash generation failed: %w", err)
	}
	return string(hashed), nil
}

// Verify returns bcrypt.ErrMismatchedHashAndPassword when password does not match.
func (h *BcryptPasswordHasher) Verify(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

var _ PasswordHasher = (*BcryptPasswordHasher)(nil)
