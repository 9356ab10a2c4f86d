package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jobboard/internal/clock"
	"jobboard/internal/domain"
	"jobboard/internal/mailer"
	"jobboard/internal/repository/sqlstore"
	"jobboard/internal/token"
)

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string) (string, error) {
	return "https://bucket.example.com/" + key + "?sig=1", nil
}

func (f *fakeStore) KeyPrefix() string { return "company-logos" }

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

type fixture struct {
	clock  *clock.Manual
	mail   *mailer.Recorder
	store  *fakeStore
	tokens *token.Service
	users  *sqlstore.UserRepository
	jobs   *sqlstore.JobRepository
	apps   *sqlstore.ApplicationRepository
	creds  *Credentials

	auth    AuthService
	gate    *Gate
	jobSvc  JobService
	profile ProfileService
	admin   AdminService
}

func newFixture(t *testing.T, policy DeletePolicy) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		clock: clock.NewManual(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)),
		mail:  &mailer.Recorder{},
		store: newFakeStore(),
		users: sqlstore.NewUserRepository(db),
		jobs:  sqlstore.NewJobRepository(db),
		apps:  sqlstore.NewApplicationRepository(db),
		creds: NewCredentials(bcrypt.MinCost),
	}
	require.NoError(t, sqlstore.InitAll(ctx, f.users, f.jobs, f.apps))

	f.tokens, err = token.NewService("test-secret", token.DefaultTTL, f.clock)
	require.NoError(t, err)

	f.auth = NewAuthService(f.users, f.creds, f.tokens, f.mail, f.clock, AuthConfig{
		BaseURL:  "http://app.test/",
		ResetTTL: time.Hour,
	})
	f.gate = NewGate(f.tokens, f.users)
	f.jobSvc = NewJobService(f.jobs, f.apps, f.store, f.clock)
	f.profile = NewProfileService(f.users, f.apps, f.creds)
	f.admin = NewAdminService(f.users, f.jobs, f.apps, f.jobSvc, f.creds, f.clock, policy)
	return f
}

func (f *fixture) register(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	user, delivery, err := f.auth.Register(context.Background(), RegisterInput{
		Name:     "User " + email,
		Email:    email,
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	require.False(t, delivery.Failed())
	return user
}

func (f *fixture) seedAdmin(t *testing.T, email string) *domain.User {
	t.Helper()
	created, err := f.admin.SeedAdmin(context.Background(), AdminSeed{Email: email, Password: "adminpass123"})
	require.NoError(t, err)
	require.True(t, created)
	user, err := f.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return sanitizeUser(user)
}

func (f *fixture) postJob(t *testing.T, actor *domain.User, title string) *domain.Job {
	t.Helper()
	job, err := f.jobSvc.PostJob(context.Background(), actor, JobInput{
		Title:       title,
		Description: "Build things",
		Company:     "Acme",
		Location:    "Remote",
	})
	require.NoError(t, err)
	return job
}

// tokenFromLink extracts the last path segment of the link in the most recent email to addr.
func (f *fixture) tokenFromLink(t *testing.T, addr, path string) string {
	t.Helper()
	msg, ok := f.mail.Last(addr)
	require.True(t, ok, "no email sent to %s", addr)
	marker := "http://app.test/" + path + "/"
	idx := strings.Index(msg.Body, marker)
	require.GreaterOrEqual(t, idx, 0, "no %s link in email", path)
	rest := msg.Body[idx+len(marker):]
	end := strings.IndexAny(rest, `"<`)
	require.Greater(t, end, 0)
	return rest[:end]
}

var errBoom = errors.New("boom")
