package domain

import "time"

// Job is a posting owned by the recruiter (or admin) who created it.
type Job struct {
	ID          string
	Title       string
	Description string
	Company     string
	Location    string
	RecruiterID string
	LogoKey     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JobFilter narrows job listings. Empty fields match everything.
type JobFilter struct {
	Query    string
	Location string
	Company  string
}

// Application records that a user applied to a job. At most one exists per (JobID, UserID).
type Application struct {
	ID        string
	JobID     string
	UserID    string
	AppliedAt time.Time
}

// ApplicationDetail is an application joined with the job and applicant it references.
// JobTitle and UserEmail are empty when the referenced row no longer exists.
type ApplicationDetail struct {
	Application
	JobTitle  string
	Company   string
	UserName  string
	UserEmail string
}
