package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"jobboard/internal/domain"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLength = 72
)

// Credentials hashes and checks passwords. The raw password never leaves this type.
type Credentials struct {
	cost int
}

func NewCredentials(cost int) *Credentials {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Credentials{cost: cost}
}

func (c *Credentials) Hash(raw string) (string, error) {
	if err := validatePassword(raw); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether raw is the password the user's hash was computed from.
func (c *Credentials) Verify(user *domain.User, raw string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(raw)) == nil
}

func validatePassword(raw string) error {
	switch {
	case len(raw) < MinPasswordLength:
		return fieldError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	case len(raw) > MaxPasswordLength:
		return fieldError("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordLength))
	}
	return nil
}
