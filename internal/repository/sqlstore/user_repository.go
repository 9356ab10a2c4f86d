package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobboard/internal/domain"
	"jobboard/internal/repository"
)

// mysql compares with a case-insensitive collation by default; emails and tokens must match exactly
const mysqlBinaryText = " CHARACTER SET utf8mb4 COLLATE utf8mb4_bin"

func createUsersTable(forMySQL bool) string {
	exact := ""
	if forMySQL {
		exact = mysqlBinaryText
	}
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(36) NOT NULL PRIMARY KEY,
	email VARCHAR(255)%[1]s NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(16) NOT NULL,
	is_verified BOOLEAN NOT NULL DEFAULT FALSE,
	verification_token VARCHAR(64)%[1]s NULL UNIQUE,
	verification_issued_at DATETIME NULL,
	reset_token VARCHAR(64)%[1]s NULL UNIQUE,
	reset_expires_at DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`, exact)
}

const selectUserColumns = `
SELECT id, email, name, password_hash, role, is_verified, verification_token, verification_issued_at, reset_token, reset_expires_at, created_at, updated_at
FROM users`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable(isMySQL(r.db))); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	token, issuedAt := verificationColumns(user.Verification)
	resetToken, resetExpires := resetColumns(user.Reset)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, email, name, password_hash, role, is_verified, verification_token, verification_issued_at, reset_token, reset_expires_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		string(user.Role),
		user.IsVerified,
		token,
		issuedAt,
		resetToken,
		resetExpires,
		user.CreatedAt.UTC(),
		user.UpdatedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	token, issuedAt := verificationColumns(user.Verification)
	resetToken, resetExpires := resetColumns(user.Reset)

	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET email=?, name=?, password_hash=?, role=?, is_verified=?, verification_token=?, verification_issued_at=?, reset_token=?, reset_expires_at=?, updated_at=?
WHERE id=?`,
		user.Email,
		user.Name,
		user.PasswordHash,
		string(user.Role),
		user.IsVerified,
		token,
		issuedAt,
		resetToken,
		resetExpires,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("update user: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res, "update user")
}

func (r *UserRepository) ConsumeVerification(ctx context.Context, id, token string) error {
	if token == "" {
		return fmt.Errorf("consume verification: %w", repository.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET is_verified=?, verification_token=NULL, verification_issued_at=NULL, updated_at=?
WHERE id=? AND verification_token=?`,
		true,
		time.Now().UTC(),
		id,
		token,
	)
	if err != nil {
		return fmt.Errorf("consume verification: %w", err)
	}
	return requireAffected(res, "consume verification")
}

func (r *UserRepository) ConsumeReset(ctx context.Context, id, token, passwordHash string) error {
	if token == "" {
		return fmt.Errorf("consume reset: %w", repository.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET password_hash=?, reset_token=NULL, reset_expires_at=NULL, updated_at=?
WHERE id=? AND reset_token=?`,
		passwordHash,
		time.Now().UTC(),
		id,
		token,
	)
	if err != nil {
		return fmt.Errorf("consume reset: %w", err)
	}
	return requireAffected(res, "consume reset")
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, "delete user")
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE email = ?`, email)
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, fmt.Errorf("user by verification token: %w", repository.ErrNotFound)
	}
	return r.getOne(ctx, `WHERE verification_token = ?`, token)
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, fmt.Errorf("user by reset token: %w", repository.ErrNotFound)
	}
	return r.getOne(ctx, `WHERE reset_token = ?`, token)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+`
ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+"\n"+where, arg)
	return scanUser(row)
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user         domain.User
		role         string
		token        sql.NullString
		issuedAt     sql.NullTime
		resetToken   sql.NullString
		resetExpires sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&role,
		&user.IsVerified,
		&token,
		&issuedAt,
		&resetToken,
		&resetExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.Role = domain.Role(role)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	if token.Valid && token.String != "" {
		user.Verification = &domain.EmailVerification{
			Token:    token.String,
			IssuedAt: issuedAt.Time.UTC(),
		}
	}
	if resetToken.Valid && resetToken.String != "" && resetExpires.Valid {
		user.Reset = &domain.PasswordReset{
			Token:     resetToken.String,
			ExpiresAt: resetExpires.Time.UTC(),
		}
	}
	return &user, nil
}

func verificationColumns(v *domain.EmailVerification) (any, any) {
	if v == nil || v.Token == "" {
		return nil, nil
	}
	issued := v.IssuedAt
	return v.Token, nullTime(&issued)
}

func resetColumns(p *domain.PasswordReset) (any, any) {
	if p == nil || p.Token == "" {
		return nil, nil
	}
	expires := p.ExpiresAt
	return p.Token, nullTime(&expires)
}

func requireAffected(res sql.Result, op string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if aff == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}
