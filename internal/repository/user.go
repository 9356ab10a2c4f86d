package repository

import (
	"context"

	"jobboard/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// ConsumeVerification marks the user verified and clears the verification token, but only
	// while token is still the pending one. Otherwise it returns ErrNotFound.
	ConsumeVerification(ctx context.Context, id, token string) error
	// ConsumeReset stores passwordHash and clears the reset request, but only while token is
	// still the pending one. Otherwise it returns ErrNotFound.
	ConsumeReset(ctx context.Context, id, token, passwordHash string) error
}
