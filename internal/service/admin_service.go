package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/clock"
	"jobboard/internal/domain"
	"jobboard/internal/repository"
)

// DeletePolicy decides what happens to a deleted user's jobs and applications.
type DeletePolicy string

const (
	// DeleteKeep removes only the user; their jobs and applications stay behind.
	DeleteKeep DeletePolicy = "keep"
	// DeleteCascade removes the user's applications and jobs along with the user.
	DeleteCascade DeletePolicy = "cascade"
	// DeleteRestrict refuses to delete users that still own jobs or applications.
	DeleteRestrict DeletePolicy = "restrict"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DeleteKeep, DeleteCascade, DeleteRestrict:
		return p, nil
	case "":
		return DeleteKeep, nil
	default:
		return "", fmt.Errorf("unknown user delete policy %q", s)
	}
}

type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// AdminService holds the moderation operations. Callers must have passed RequireRole(admin).
type AdminService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListApplications(ctx context.Context) ([]domain.ApplicationDetail, error)
	DeleteUser(ctx context.Context, actor *domain.User, userID string) (Outcome, error)
	SeedAdmin(ctx context.Context, seed AdminSeed) (bool, error)
}

type adminService struct {
	users  repository.UserRepository
	jobs   repository.JobRepository
	apps   repository.ApplicationRepository
	jobSvc JobService
	creds  *Credentials
	clock  clock.Clock
	policy DeletePolicy
}

func NewAdminService(users repository.UserRepository, jobs repository.JobRepository, apps repository.ApplicationRepository, jobSvc JobService, creds *Credentials, clk clock.Clock, policy DeletePolicy) AdminService {
	if policy == "" {
		policy = DeleteKeep
	}
	if clk == nil {
		clk = clock.System()
	}
	return &adminService{
		users:  users,
		jobs:   jobs,
		apps:   apps,
		jobSvc: jobSvc,
		creds:  creds,
		clock:  clk,
		policy: policy,
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return sanitizeUsers(users), nil
}

func (s *adminService) ListApplications(ctx context.Context) ([]domain.ApplicationDetail, error) {
	apps, err := s.apps.ListDetails(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return apps, nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor *domain.User, userID string) (Outcome, error) {
	var out Outcome
	if err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return out, err
	}
	if actor.ID == userID {
		return out, ErrForbidden.WithDetails(map[string]string{"id": "admins cannot delete their own account"})
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return out, notFoundAs(err, ErrUserNotFound)
	}

	switch s.policy {
	case DeleteRestrict:
		owned, err := s.ownsContent(ctx, userID)
		if err != nil {
			return out, apperr.Internal(err)
		}
		if owned {
			return out, ErrUserHasContent
		}
	case DeleteCascade:
		if err := s.apps.DeleteByUser(ctx, userID); err != nil {
			return out, apperr.Internal(err)
		}
		jobs, err := s.jobs.ListByRecruiter(ctx, userID)
		if err != nil {
			return out, apperr.Internal(err)
		}
		for _, job := range jobs {
			jobOut, err := s.jobSvc.DeleteJob(ctx, actor, job.ID)
			if err != nil && !errors.Is(err, ErrJobNotFound) {
				return out, err
			}
			out.merge(jobOut)
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return out, notFoundAs(err, ErrUserNotFound)
	}
	return out, nil
}

func (s *adminService) ownsContent(ctx context.Context, userID string) (bool, error) {
	n, err := s.apps.CountByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	jobs, err := s.jobs.ListByRecruiter(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(jobs) > 0, nil
}

// SeedAdmin makes sure a verified admin with the seed email exists. An existing account with that
// email is left untouched. It reports whether an account was created.
func (s *adminService) SeedAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	email := strings.TrimSpace(seed.Email)
	if email == "" || seed.Password == "" {
		return false, nil
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	hash, err := s.creds.Hash(seed.Password)
	if err != nil {
		return false, fmt.Errorf("admin password: %w", err)
	}
	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "Administrator"
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsVerified:   true,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
