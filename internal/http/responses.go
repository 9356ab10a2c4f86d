package http

import (
	"time"

	"jobboard/internal/domain"
)

type UserResponse struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Role       domain.Role `json:"role"`
	IsVerified bool        `json:"is_verified"`
	CreatedAt  string      `json:"created_at"`
}

type JobResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Recruiter   string  `json:"recruiter"`
	LogoURL     *string `json:"logo_url,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type ApplicationResponse struct {
	ID        string `json:"id"`
	JobID     string `json:"job_id"`
	UserID    string `json:"user_id"`
	AppliedAt string `json:"applied_at"`
	JobTitle  string `json:"job_title,omitempty"`
	Company   string `json:"company,omitempty"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
}

func usersToResponse(users []domain.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	return resp
}

func jobToResponse(job domain.Job) JobResponse {
	resp := JobResponse{
		ID:          job.ID,
		Title:       job.Title,
		Description: job.Description,
		Company:     job.Company,
		Location:    job.Location,
		Recruiter:   job.RecruiterID,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
	}
	if job.LogoKey != "" {
		v := "/api/jobs/" + job.ID + "/logo"
		resp.LogoURL = &v
	}
	return resp
}

func jobsToResponse(jobs []domain.Job) []JobResponse {
	resp := make([]JobResponse, len(jobs))
	for i := range jobs {
		resp[i] = jobToResponse(jobs[i])
	}
	return resp
}

func applicationToResponse(app domain.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:        app.ID,
		JobID:     app.JobID,
		UserID:    app.UserID,
		AppliedAt: app.AppliedAt.Format(time.RFC3339),
	}
}

func applicationDetailsToResponse(details []domain.ApplicationDetail) []ApplicationResponse {
	resp := make([]ApplicationResponse, len(details))
	for i, d := range details {
		r := applicationToResponse(d.Application)
		r.JobTitle = d.JobTitle
		r.Company = d.Company
		r.UserName = d.UserName
		r.UserEmail = d.UserEmail
		resp[i] = r
	}
	return resp
}
