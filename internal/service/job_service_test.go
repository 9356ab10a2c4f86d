package service

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/domain"
)

func TestPostJobSetsRecruiterFromActor(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	rec := f.register(t, "rec@example.com", domain.RoleRecruiter)

	job := f.postJob(t, rec, "  Go Engineer ")
	assert.Equal(t, rec.ID, job.RecruiterID)
	assert.Equal(t, "Go Engineer", job.Title)

	stored, err := f.jobSvc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.RecruiterID)
}

func TestPostJobRequiresPostingRights(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	cand := f.register(t, "cand@example.com", domain.RoleCandidate)

	_, err := f.jobSvc.PostJob(context.Background(), cand, JobInput{Title: "t", Description: "d", Company: "c", Location: "l"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.jobSvc.PostJob(context.Background(), nil, JobInput{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	admin := f.seedAdmin(t, "root@example.com")
	job := f.postJob(t, admin, "Platform Lead")
	assert.Equal(t, admin.ID, job.RecruiterID)
}

func TestPostJobRequiresFields(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	rec := f.register(t, "rec@example.com", domain.RoleRecruiter)

	_, err := f.jobSvc.PostJob(context.Background(), rec, JobInput{Title: "Go", Description: "d", Company: " "})
	appErr := asAppErr(t, err)
	assert.Equal(t, "VALIDATION_FAILED", appErr.Code)
	assert.Contains(t, appErr.Details, "company")
}

func TestApplyToJobOnlyOnce(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	ctx := context.Background()
	rec := f.register(t, "rec@example.com", domain.RoleRecruiter)
	cand := f.register(t, "cand@example.com", domain.RoleCandidate)
	job := f.postJob(t, rec, "Go Engineer")

	app, err := f.jobSvc.ApplyToJob(ctx, cand, job.ID)
	require.NoError(t, err)
	assert.Equal(t, cand.ID, app.UserID)

	_, err = f.jobSvc.ApplyToJob(ctx, cand, job.ID)
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	apps, err := f.apps.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestApplyToJobConcurrentRequestsCreateOneApplication(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	ctx := context.Background()
	rec := f.register(t, "rec@example.com", domain.RoleRecruiter)
	cand := f.register(t, "cand@example.com", domain.RoleCandidate)
	job := f.postJob(t, rec, "Go Engineer")

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.jobSvc.ApplyToJob(ctx, cand, job.ID)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrAlreadyApplied)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	count, err := f.apps.CountByUser(ctx, cand.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyToMissingJob(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	cand := f.register(t, "cand@example.com", domain.RoleCandidate)

	_, err := f.jobSvc.ApplyToJob(context.Background(), cand, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestDeleteJobOwnership(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com", domain.RoleRecruiter)
	other := f.register(t, "other@example.com", domain.RoleRecruiter)
	admin := f.seedAdmin(t, "admin@example.com")

	first := f.postJob(t, owner, "First")
	second := f.postJob(t, owner, "Second")

	_, err := f.jobSvc.DeleteJob(ctx, other, first.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.jobSvc.DeleteJob(ctx, owner, first.ID)
	require.NoError(t, err)
	_, err = f.jobSvc.GetJob(ctx, first.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = f.jobSvc.DeleteJob(ctx, admin, second.ID)
	require.NoError(t, err)
	_, err = f.jobSvc.GetJob(ctx, second.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = f.jobSvc.DeleteJob(ctx, owner, first.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestListApplicantsOwnerOnly(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com", domain.RoleRecruiter)
	cand := f.register(t, "cand@example.com", domain.RoleCandidate)
	job := f.postJob(t, owner, "Go Engineer")

	_, err := f.jobSvc.ApplyToJob(ctx, cand, job.ID)
	require.NoError(t, err)

	apps, err := f.jobSvc.ListApplicants(ctx, owner, job.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "cand@example.com", apps[0].UserEmail)

	_, err = f.jobSvc.ListApplicants(ctx, cand, job.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogoLifecycle(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com", domain.RoleRecruiter)
	job := f.postJob(t, owner, "Go Engineer")

	_, err := f.jobSvc.LogoURL(ctx, job.ID)
	assert.ErrorIs(t, err, ErrLogoNotFound)

	data := []byte("\x89PNG fake")
	updated, out, err := f.jobSvc.UploadLogo(ctx, owner, job.ID, LogoUpload{
		ContentType: "image/png",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)
	assert.True(t, strings.HasPrefix(updated.LogoKey, "company-logos/"+job.ID+"/"))
	assert.True(t, strings.HasSuffix(updated.LogoKey, ".png"))
	firstKey := updated.LogoKey
	assert.True(t, f.store.has(firstKey))

	url, err := f.jobSvc.LogoURL(ctx, job.ID)
	require.NoError(t, err)
	assert.Contains(t, url, firstKey)

	replaced, _, err := f.jobSvc.UploadLogo(ctx, owner, job.ID, LogoUpload{
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	require.NoError(t, err)
	assert.False(t, f.store.has(firstKey))
	assert.True(t, f.store.has(replaced.LogoKey))

	f.store.deleteErr = errBoom
	out, err = f.jobSvc.DeleteJob(ctx, owner, job.ID)
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.NotContains(t, out.Warnings[0], replaced.LogoKey)
	assert.ErrorIs(t, out.Errs[0], errBoom)
}

func TestUploadLogoValidation(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com", domain.RoleRecruiter)
	other := f.register(t, "other@example.com", domain.RoleRecruiter)
	job := f.postJob(t, owner, "Go Engineer")

	_, _, err := f.jobSvc.UploadLogo(ctx, owner, job.ID, LogoUpload{ContentType: "image/gif", Size: 10, Body: strings.NewReader("gif")})
	assert.Equal(t, "VALIDATION_FAILED", asAppErr(t, err).Code)

	_, _, err = f.jobSvc.UploadLogo(ctx, owner, job.ID, LogoUpload{ContentType: "image/png", Size: MaxLogoSize + 1, Body: strings.NewReader("x")})
	assert.Equal(t, "VALIDATION_FAILED", asAppErr(t, err).Code)

	_, _, err = f.jobSvc.UploadLogo(ctx, other, job.ID, LogoUpload{ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogoWithoutStorage(t *testing.T) {
	f := newFixture(t, DeleteKeep)
	svc := NewJobService(f.jobs, f.apps, nil, f.clock)
	owner := f.register(t, "owner@example.com", domain.RoleRecruiter)
	job := f.postJob(t, owner, "Go Engineer")

	_, _, err := svc.UploadLogo(context.Background(), owner, job.ID, LogoUpload{ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrStorageDisabled)

	_, err = svc.LogoURL(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}
