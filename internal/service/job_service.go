package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/clock"
	"jobboard/internal/domain"
	"jobboard/internal/repository"
)

// MaxLogoSize is the largest accepted company logo.
const MaxLogoSize = 2 << 20

var logoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// ObjectStore keeps company logos.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
	KeyPrefix() string
}

type JobInput struct {
	Title       string
	Description string
	Company     string
	Location    string
}

type LogoUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// Outcome carries non-fatal problems of an operation that otherwise succeeded. Warnings are safe
// to show to clients; Errs hold the underlying causes for logging.
type Outcome struct {
	Warnings []string
	Errs     []error
}

func (o *Outcome) warn(message string, err error) {
	o.Warnings = append(o.Warnings, message)
	o.Errs = append(o.Errs, err)
}

func (o *Outcome) merge(other Outcome) {
	o.Warnings = append(o.Warnings, other.Warnings...)
	o.Errs = append(o.Errs, other.Errs...)
}

// JobService enforces ownership and application uniqueness over job postings.
type JobService interface {
	PostJob(ctx context.Context, actor *domain.User, in JobInput) (*domain.Job, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
	ApplyToJob(ctx context.Context, actor *domain.User, jobID string) (*domain.Application, error)
	DeleteJob(ctx context.Context, actor *domain.User, jobID string) (Outcome, error)
	ListApplicants(ctx context.Context, actor *domain.User, jobID string) ([]domain.ApplicationDetail, error)
	UploadLogo(ctx context.Context, actor *domain.User, jobID string, logo LogoUpload) (*domain.Job, Outcome, error)
	LogoURL(ctx context.Context, jobID string) (string, error)
}

type jobService struct {
	jobs  repository.JobRepository
	apps  repository.ApplicationRepository
	store ObjectStore
	clock clock.Clock
}

// NewJobService wires the job service. store may be nil, which disables logos.
func NewJobService(jobs repository.JobRepository, apps repository.ApplicationRepository, store ObjectStore, clk clock.Clock) JobService {
	if clk == nil {
		clk = clock.System()
	}
	return &jobService{
		jobs:  jobs,
		apps:  apps,
		store: store,
		clock: clk,
	}
}

func (s *jobService) PostJob(ctx context.Context, actor *domain.User, in JobInput) (*domain.Job, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !actor.Role.CanPostJobs() {
		return nil, ErrForbidden
	}

	job := &domain.Job{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		RecruiterID: actor.ID,
		CreatedAt:   s.clock.Now(),
	}
	for _, f := range []struct{ name, value string }{
		{"title", job.Title},
		{"description", job.Description},
		{"company", job.Company},
		{"location", job.Location},
	} {
		if f.value == "" {
			return nil, fieldError(f.name, "is required")
		}
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperr.Internal(err)
	}
	return job, nil
}

func (s *jobService) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrJobNotFound)
	}
	return job, nil
}

func (s *jobService) ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return jobs, nil
}

func (s *jobService) ApplyToJob(ctx context.Context, actor *domain.User, jobID string) (*domain.Application, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	exists, err := s.apps.Exists(ctx, jobID, actor.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	app := &domain.Application{
		ID:        uuid.NewString(),
		JobID:     jobID,
		UserID:    actor.ID,
		AppliedAt: s.clock.Now(),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyApplied.Wrap(err)
		}
		// the job can disappear between the lookup and the insert
		if _, getErr := s.jobs.Get(ctx, jobID); errors.Is(getErr, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, apperr.Internal(err)
	}
	return app, nil
}

func (s *jobService) DeleteJob(ctx context.Context, actor *domain.User, jobID string) (Outcome, error) {
	var out Outcome
	job, err := s.managedJob(ctx, actor, jobID)
	if err != nil {
		return out, err
	}

	if err := s.jobs.Delete(ctx, job.ID); err != nil {
		return out, notFoundAs(err, ErrJobNotFound)
	}
	s.removeLogo(ctx, job.LogoKey, &out)
	return out, nil
}

func (s *jobService) ListApplicants(ctx context.Context, actor *domain.User, jobID string) ([]domain.ApplicationDetail, error) {
	job, err := s.managedJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return apps, nil
}

func (s *jobService) UploadLogo(ctx context.Context, actor *domain.User, jobID string, logo LogoUpload) (*domain.Job, Outcome, error) {
	var out Outcome
	if s.store == nil {
		return nil, out, ErrStorageDisabled
	}
	job, err := s.managedJob(ctx, actor, jobID)
	if err != nil {
		return nil, out, err
	}

	ext, ok := logoExtensions[logo.ContentType]
	if !ok {
		return nil, out, fieldError("logo", "must be a png, jpeg or webp image")
	}
	if logo.Size <= 0 || logo.Size > MaxLogoSize {
		return nil, out, fieldError("logo", fmt.Sprintf("must be between 1 and %d bytes", MaxLogoSize))
	}

	key := fmt.Sprintf("%s/%s/%s%s", s.store.KeyPrefix(), job.ID, uuid.NewString(), ext)
	if err := s.store.Upload(ctx, key, logo.ContentType, io.LimitReader(logo.Body, MaxLogoSize)); err != nil {
		return nil, out, apperr.Internal(err)
	}
	if err := s.jobs.UpdateLogo(ctx, job.ID, key); err != nil {
		s.removeLogo(ctx, key, &out)
		return nil, out, notFoundAs(err, ErrJobNotFound)
	}

	s.removeLogo(ctx, job.LogoKey, &out)
	job.LogoKey = key
	return job, out, nil
}

func (s *jobService) LogoURL(ctx context.Context, jobID string) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.LogoKey == "" {
		return "", ErrLogoNotFound
	}
	url, err := s.store.PresignGet(ctx, job.LogoKey)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return url, nil
}

// managedJob loads a job the actor owns, or any job for an admin.
func (s *jobService) managedJob(ctx context.Context, actor *domain.User, jobID string) (*domain.Job, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, job.RecruiterID) {
		return nil, ErrForbidden
	}
	return job, nil
}

func (s *jobService) removeLogo(ctx context.Context, key string, out *Outcome) {
	if key == "" || s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		out.warn("company logo could not be removed from storage", fmt.Errorf("delete logo %s: %w", key, err))
	}
}
