package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jobboard/internal/domain"
	"jobboard/internal/repository"
)

const createApplicationsTable = `
CREATE TABLE IF NOT EXISTS applications (
	id VARCHAR(36) NOT NULL PRIMARY KEY,
	job_id VARCHAR(36) NOT NULL,
	user_id VARCHAR(36) NOT NULL,
	applied_at DATETIME NOT NULL,
	UNIQUE (job_id, user_id),
	FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE
);
`

const selectApplicationDetails = `
SELECT a.id, a.job_id, a.user_id, a.applied_at,
	COALESCE(j.title, ''), COALESCE(j.company, ''), COALESCE(u.name, ''), COALESCE(u.email, '')
FROM applications a
LEFT JOIN jobs j ON j.id = a.job_id
LEFT JOIN users u ON u.id = a.user_id`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)

func (r *ApplicationRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createApplicationsTable); err != nil {
		return fmt.Errorf("create applications table: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO applications (id, job_id, user_id, applied_at)
VALUES (?, ?, ?, ?)`,
		app.ID,
		app.JobID,
		app.UserID,
		app.AppliedAt.UTC(),
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("insert application: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) Exists(ctx context.Context, jobID, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1) FROM applications WHERE job_id = ? AND user_id = ?`, jobID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return n > 0, nil
}

func (r *ApplicationRepository) ListDetails(ctx context.Context) ([]domain.ApplicationDetail, error) {
	return r.queryDetails(ctx, selectApplicationDetails+`
ORDER BY a.applied_at DESC, a.id ASC`)
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]domain.ApplicationDetail, error) {
	return r.queryDetails(ctx, selectApplicationDetails+`
WHERE a.user_id = ?
ORDER BY a.applied_at DESC, a.id ASC`, userID)
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]domain.ApplicationDetail, error) {
	return r.queryDetails(ctx, selectApplicationDetails+`
WHERE a.job_id = ?
ORDER BY a.applied_at ASC, a.id ASC`, jobID)
}

func (r *ApplicationRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM applications WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

func (r *ApplicationRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete user applications: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) queryDetails(ctx context.Context, query string, args ...any) ([]domain.ApplicationDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	details := []domain.ApplicationDetail{}
	for rows.Next() {
		var d domain.ApplicationDetail
		if err := rows.Scan(
			&d.ID,
			&d.JobID,
			&d.UserID,
			&d.AppliedAt,
			&d.JobTitle,
			&d.Company,
			&d.UserName,
			&d.UserEmail,
		); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		d.AppliedAt = d.AppliedAt.UTC()
		details = append(details, d)
	}
	return details, rows.Err()
}
