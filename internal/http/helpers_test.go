package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jobboard/internal/clock"
	"jobboard/internal/mailer"
	"jobboard/internal/repository/sqlstore"
	"jobboard/internal/service"
	"jobboard/internal/token"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) PresignGet(_ context.Context, key string) (string, error) {
	return "https://logos.example.com/" + key, nil
}

func (m *memoryStore) KeyPrefix() string { return "company-logos" }

type testServer struct {
	t      *testing.T
	router *gin.Engine
	mail   *mailer.Recorder
	clock  *clock.Manual
	store  *memoryStore
	admin  service.AdminService
}

type serverOption func(*Options)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlstore.NewUserRepository(db)
	jobs := sqlstore.NewJobRepository(db)
	apps := sqlstore.NewApplicationRepository(db)
	require.NoError(t, sqlstore.InitAll(ctx, users, jobs, apps))

	clk := clock.NewManual(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	tokens, err := token.NewService("http-test-secret", token.DefaultTTL, clk)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mail := &mailer.Recorder{}
	store := &memoryStore{objects: map[string][]byte{}}
	creds := service.NewCredentials(bcrypt.MinCost)
	jobSvc := service.NewJobService(jobs, apps, store, clk)
	adminSvc := service.NewAdminService(users, jobs, apps, jobSvc, creds, clk, service.DeleteKeep)

	options := Options{
		Auth: service.NewAuthService(users, creds, tokens, mail, clk, service.AuthConfig{
			BaseURL: "http://app.test",
		}),
		Gate:    service.NewGate(tokens, users),
		Jobs:    jobSvc,
		Profile: service.NewProfileService(users, apps, creds),
		Admin:   adminSvc,
		Logger:  logger,
	}
	for _, opt := range opts {
		opt(&options)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	NewHandler(options).RegisterRoutes(router)

	return &testServer{
		t:      t,
		router: router,
		mail:   mail,
		clock:  clk,
		store:  store,
		admin:  adminSvc,
	}
}

type response struct {
	*httptest.ResponseRecorder
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &body), r.Body.String())
	return body
}

func (r response) list(t *testing.T) []map[string]any {
	t.Helper()
	var body []map[string]any
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &body), r.Body.String())
	return body
}

func (s *testServer) do(method, path, bearer string, body any) response {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return response{rec}
}

// register creates an account through the API and logs it in.
func (s *testServer) register(name, email, role string) (bearer, id string) {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "password123", "role": role,
	})
	require.Equal(s.t, http.StatusCreated, res.Code, res.Body.String())
	return s.login(email, "password123")
}

func (s *testServer) login(email, password string) (bearer, id string) {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, res.Code, res.Body.String())
	body := res.json(s.t)
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func (s *testServer) seedAdmin() (bearer, id string) {
	s.t.Helper()
	created, err := s.admin.SeedAdmin(context.Background(), service.AdminSeed{Email: "admin@example.com", Password: "adminpass123"})
	require.NoError(s.t, err)
	require.True(s.t, created)
	return s.login("admin@example.com", "adminpass123")
}

func (s *testServer) postJob(bearer, title string) string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/jobs", bearer, map[string]string{
		"title": title, "description": "Build things", "company": "Acme", "location": "Remote",
	})
	require.Equal(s.t, http.StatusCreated, res.Code, res.Body.String())
	return res.json(s.t)["id"].(string)
}

// linkToken pulls the token out of the last email sent to addr.
func (s *testServer) linkToken(addr, path string) string {
	s.t.Helper()
	msg, ok := s.mail.Last(addr)
	require.True(s.t, ok)
	marker := "http://app.test/" + path + "/"
	idx := strings.Index(msg.Body, marker)
	require.GreaterOrEqual(s.t, idx, 0)
	rest := msg.Body[idx+len(marker):]
	return rest[:strings.IndexAny(rest, `"<`)]
}
