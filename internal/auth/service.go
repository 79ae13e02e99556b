package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates a failed admin login.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Service checks the single admin password against its bcrypt hash.
type Service struct {
	passwordHash string
}

// NewService constructs the auth service from the configured hash.
func NewService(passwordHash string) *Service {
	return &Service{passwordHash: passwordHash}
}

// Verify compares the supplied password with the stored hash.
func (s *Service) Verify(password string) error {
	if s.passwordHash == "" {
		return errors.New("auth: admin password not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword produces a bcrypt hash for configuration bootstrap.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
