package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	body   string
	ctype  string
}

type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method: r.Method,
		path:   r.URL.Path,
		body:   string(body),
		ctype:  r.Header.Get("Content-Type"),
	})
	f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestStore(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{}
	srv := httptest.NewTLSServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:           "us-east-1",
		Credentials:      credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		BaseEndpoint:     aws.String(srv.URL),
		UsePathStyle:     true,
		HTTPClient:       srv.Client(),
		RetryMaxAttempts: 1,
	})
	store, err := NewS3Store(client, Options{Bucket: "logos", KeyPrefix: "/company-logos/", URLTTL: time.Minute})
	require.NoError(t, err)
	return store, fake
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(s3.New(s3.Options{Region: "us-east-1"}), Options{})
	assert.Error(t, err)
}

func TestUploadAndDelete(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()
	assert.Equal(t, "company-logos", store.KeyPrefix())

	require.NoError(t, store.Upload(ctx, "company-logos/job/logo.png", "image/png", strings.NewReader("png-bytes")))
	put := fake.last()
	assert.Equal(t, http.MethodPut, put.method)
	assert.Equal(t, "/logos/company-logos/job/logo.png", put.path)
	assert.Equal(t, "image/png", put.ctype)
	assert.Contains(t, put.body, "png-bytes")

	require.NoError(t, store.Delete(ctx, "company-logos/job/logo.png"))
	del := fake.last()
	assert.Equal(t, http.MethodDelete, del.method)
	assert.Equal(t, "/logos/company-logos/job/logo.png", del.path)

	assert.Error(t, store.Delete(ctx, ""))
	assert.Error(t, store.Upload(ctx, "", "image/png", strings.NewReader("x")))
}

func TestPresignGet(t *testing.T) {
	store, _ := newTestStore(t)

	raw, err := store.PresignGet(context.Background(), "company-logos/job/logo.png")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/logos/company-logos/job/logo.png", u.Path)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}
