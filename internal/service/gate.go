package service

import (
	"context"
	"strings"

	"jobboard/internal/domain"
	"jobboard/internal/repository"
)

// TokenValidator resolves a bearer token to the user id it was issued for.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Gate authenticates requests and enforces role checks.
type Gate struct {
	tokens TokenValidator
	users  repository.UserRepository
}

func NewGate(tokens TokenValidator, users repository.UserRepository) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate resolves a bearer token to the current user record, without its password hash.
// Missing and invalid tokens, and tokens of users that no longer exist, are all Unauthenticated.
func (g *Gate) Authenticate(ctx context.Context, bearer string) (*domain.User, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := g.tokens.Validate(bearer)
	if err != nil {
		return nil, ErrUnauthenticated.Wrap(err)
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUnauthenticated)
	}
	return sanitizeUser(user), nil
}

// RequireRole fails with Forbidden unless user holds one of roles exactly. A nil user is
// Unauthenticated.
func RequireRole(user *domain.User, roles ...domain.Role) error {
	if user == nil {
		return ErrUnauthenticated
	}
	for _, role := range roles {
		if user.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// canManage reports whether actor may act on a resource owned by ownerID.
func canManage(actor *domain.User, ownerID string) bool {
	return actor != nil && (actor.ID == ownerID || actor.Role == domain.RoleAdmin)
}
