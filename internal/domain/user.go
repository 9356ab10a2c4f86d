package domain

import "time"

// Role is the closed set of account roles. Role checks are exact matches, never hierarchical.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleRecruiter, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanPostJobs reports whether the role carries posting rights.
func (r Role) CanPostJobs() bool {
	switch r {
	case RoleRecruiter, RoleAdmin:
		return true
	default:
		return false
	}
}

// EmailVerification is a pending email verification. A nil pointer on User means none is pending.
type EmailVerification struct {
	Token    string
	IssuedAt time.Time
}

// PasswordReset is a pending password reset request. Token and expiry always travel together.
type PasswordReset struct {
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the request is no longer usable at now.
func (p PasswordReset) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// User represents an account of the job board.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	IsVerified   bool
	Verification *EmailVerification
	Reset        *PasswordReset
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
