package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/domain"
	"jobboard/internal/repository"
)

const createJobsTable = `
CREATE TABLE IF NOT EXISTS jobs (
	id VARCHAR(36) NOT NULL PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	description TEXT NOT NULL,
	company VARCHAR(200) NOT NULL,
	location VARCHAR(200) NOT NULL,
	recruiter_id VARCHAR(36) NOT NULL,
	logo_key VARCHAR(512) NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const selectJobColumns = `
SELECT id, title, description, company, location, recruiter_id, logo_key, created_at, updated_at
FROM jobs`

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ repository.JobRepository = (*JobRepository)(nil)

func (r *JobRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createJobsTable); err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}
	return nil
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO jobs (id, title, description, company, location, recruiter_id, logo_key, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Title,
		job.Description,
		job.Company,
		job.Location,
		job.RecruiterID,
		job.LogoKey,
		job.CreatedAt.UTC(),
		job.UpdatedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("insert job: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx, selectJobColumns+`
WHERE id = ?`, id)
	return scanJob(row)
}

func (r *JobRepository) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	where, args := jobFilterWhere(filter)
	query := selectJobColumns + where + "\nORDER BY created_at DESC, id ASC"
	return r.queryJobs(ctx, query, args...)
}

// likeEscape is the LIKE escape character. A backslash would need different quoting in sqlite
// and mysql string literals; '!' reads the same in both.
const likeEscape = "!"

// jobFilterWhere builds the WHERE clause for filter, or "" when it matches everything.
func jobFilterWhere(filter domain.JobFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	contains := func(column string) string {
		return column + " LIKE ? ESCAPE '" + likeEscape + "'"
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + escapeLike(q) + "%"
		clauses = append(clauses, "("+contains("title")+" OR "+contains("description")+" OR "+contains("company")+")")
		args = append(args, like, like, like)
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		clauses = append(clauses, contains("location"))
		args = append(args, "%"+escapeLike(loc)+"%")
	}
	if company := strings.TrimSpace(filter.Company); company != "" {
		clauses = append(clauses, contains("company"))
		args = append(args, "%"+escapeLike(company)+"%")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(clauses, " AND "), args
}

func (r *JobRepository) ListByRecruiter(ctx context.Context, recruiterID string) ([]domain.Job, error) {
	return r.queryJobs(ctx, selectJobColumns+`
WHERE recruiter_id = ?
ORDER BY created_at DESC, id ASC`, recruiterID)
}

func (r *JobRepository) UpdateLogo(ctx context.Context, id, logoKey string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE jobs
SET logo_key=?, updated_at=?
WHERE id=?`,
		logoKey,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update job logo: %w", err)
	}
	return requireAffected(res, "update job logo")
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE job_id=?`, id); err != nil {
		return fmt.Errorf("delete job applications: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if err := requireAffected(res, "delete job"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit job delete: %w", err)
	}
	return nil
}

func (r *JobRepository) queryJobs(ctx context.Context, query string, args ...any) ([]domain.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.Company,
		&job.Location,
		&job.RecruiterID,
		&job.LogoKey,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	job.CreatedAt = job.CreatedAt.UTC()
	job.UpdatedAt = job.UpdatedAt.UTC()
	return &job, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_").Replace(s)
}
