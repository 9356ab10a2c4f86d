package service

import (
	"context"
	"errors"
	"strings"

	"jobboard/internal/apperr"
	"jobboard/internal/domain"
	"jobboard/internal/repository"
)

// ProfileUpdate changes the caller's own account. Empty fields keep their current value.
type ProfileUpdate struct {
	Name     string
	Email    string
	Password string
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error)
	MyApplications(ctx context.Context, userID string) ([]domain.ApplicationDetail, error)
}

type profileService struct {
	users repository.UserRepository
	apps  repository.ApplicationRepository
	creds *Credentials
}

func NewProfileService(users repository.UserRepository, apps repository.ApplicationRepository, creds *Credentials) ProfileService {
	return &profileService{
		users: users,
		apps:  apps,
		creds: creds,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return sanitizeUser(user), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(in.Email); email != "" && email != user.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return nil, ErrDuplicateEmail
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Internal(err)
		}
		user.Email = email
	}
	if in.Password != "" {
		hash, err := s.creds.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail.Wrap(err)
		}
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return sanitizeUser(user), nil
}

func (s *profileService) MyApplications(ctx context.Context, userID string) ([]domain.ApplicationDetail, error) {
	apps, err := s.apps.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return apps, nil
}
