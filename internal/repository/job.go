package repository

import (
	"context"

	"jobboard/internal/domain"
)

// JobRepository exposes persistence operations for job postings.
type JobRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
	ListByRecruiter(ctx context.Context, recruiterID string) ([]domain.Job, error)
	UpdateLogo(ctx context.Context, id, logoKey string) error
	// Delete removes the job together with its applications.
	Delete(ctx context.Context, id string) error
}

// ApplicationRepository manages job applications. Create must fail with ErrDuplicate when an
// application for the same (job, user) pair already exists.
type ApplicationRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, app *domain.Application) error
	Exists(ctx context.Context, jobID, userID string) (bool, error)
	ListDetails(ctx context.Context) ([]domain.ApplicationDetail, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ApplicationDetail, error)
	ListByJob(ctx context.Context, jobID string) ([]domain.ApplicationDetail, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteByUser(ctx context.Context, userID string) error
}
