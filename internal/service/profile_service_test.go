package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/domain"
)

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	ctx := context.Background()
	user := f.register(t, "kate@example.com", domain.RoleCandidate)
	f.register(t, "taken@example.com", domain.RoleCandidate)

	updated, err := f.profile.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: "Kate B"})
	require.NoError(t, err)
	assert.Equal(t, "Kate B", updated.Name)
	assert.Equal(t, "kate@example.com", updated.Email)

	_, err = f.profile.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: "taken@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = f.profile.UpdateProfile(ctx, user.ID, ProfileUpdate{Password: "short"})
	assert.Equal(t, "VALIDATION_FAILED", asAppErr(t, err).Code)

	_, err = f.profile.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: "kate.b@example.com", Password: "another-pass"})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, "kate.b@example.com", "another-pass")
	assert.NoError(t, err)
	_, err = f.auth.Login(ctx, "kate@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfileAndApplications(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	ctx := context.Background()
	rec := f.register(t, "rec@example.com", domain.RoleRecruiter)
	cand := f.register(t, "cand@example.com", domain.RoleCandidate)
	job := f.postJob(t, rec, "Go Engineer")

	profile, err := f.profile.GetProfile(ctx, cand.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.PasswordHash)

	mine, err := f.profile.MyApplications(ctx, cand.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = f.jobSvc.ApplyToJob(ctx, cand, job.ID)
	require.NoError(t, err)

	mine, err = f.profile.MyApplications(ctx, cand.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Go Engineer", mine[0].JobTitle)

	_, err = f.profile.GetProfile(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
