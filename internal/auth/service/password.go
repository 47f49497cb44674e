package service

//go:generate mockgen -destination=../../mocks/mock_password_hasher.go -package=mocks github.com/AnthoniusHendriyanto/travel-auth/internal/auth/service PasswordHasher

import (
	autherror "github.com/AnthoniusHendriyanto/travel-auth/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) error
}

// BcryptHasher hashes passwords with bcrypt at a fixed work factor.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify returns ErrNoPasswordSet for an empty digest and ErrInvalidCredentials
// on any mismatch.
func (h *BcryptHasher) Verify(plaintext, digest string) error {
	if digest == "" {
		return autherror.ErrNoPasswordSet
	}
	// A malformed digest counts as a failed login, not a server error.
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)); err != nil {
		return autherror.ErrInvalidCredentials
	}
	return nil
}
