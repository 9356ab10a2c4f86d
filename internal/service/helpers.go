package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"jobboard/internal/apperr"
	"jobboard/internal/domain"
	"jobboard/internal/repository"
)

// tokenBytes is the entropy of verification and reset tokens.
const tokenBytes = 32

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func fieldError(field, message string) error {
	return apperr.Validation(field + " " + message).WithDetails(map[string]string{field: message})
}

// sanitizeUser returns a copy without the password hash and pending tokens.
func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func sanitizeUsers(users []domain.User) []domain.User {
	out := make([]domain.User, 0, len(users))
	for i := range users {
		out = append(out, *sanitizeUser(&users[i]))
	}
	return out
}

// notFoundAs maps repository.ErrNotFound to target and anything else to an internal error.
func notFoundAs(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return apperr.Internal(err)
}
