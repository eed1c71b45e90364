package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/lojista-hq/lojista/internal/apperr"
)

// Hasher wraps the password hashing primitive. Callers only ever see
// hash and verify; the algorithm and cost stay behind this boundary.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the default bcrypt cost.
func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash returns the stored form of a plaintext password.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}
	return string(hash), nil
}

// Verify checks a plaintext password against a stored hash. A mismatch
// returns an Auth error indistinguishable from an unknown email.
func (h *Hasher) Verify(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperr.New(apperr.Auth, "invalid credentials")
		}
		return apperr.Wrap(apperr.Internal, "failed to verify password", err)
	}
	return nil
}
