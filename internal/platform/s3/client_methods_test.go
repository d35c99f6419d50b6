package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// s3Request is one request seen by fakeBucketServer.
type s3Request struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

// fakeBucketServer answers every request with status and, for errors, an
// S3 XML error document carrying code.
type fakeBucketServer struct {
	status int
	code   string

	mu       sync.Mutex
	requests []s3Request
}

func (f *fakeBucketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, s3Request{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
	})
	f.mu.Unlock()

	if f.code == "" {
		w.WriteHeader(f.status)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>`+f.code+`</Code><Message>`+f.code+`</Message></Error>`)
}

func (f *fakeBucketServer) seen() []s3Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]s3Request(nil), f.requests...)
}

// newTestClient returns a Client talking path-style to fake.
func newTestClient(t *testing.T, fake *fakeBucketServer) (*Client, string) {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	api := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
	})
	return &Client{s3: api, region: "us-east-1", endpoint: server.URL}, server.URL
}

func TestBucketExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		code    string
		want    bool
		wantErr string
	}{
		{name: "present", status: http.StatusOK, want: true},
		{name: "missing", status: http.StatusNotFound, code: "NotFound"},
		{name: "forbidden", status: http.StatusForbidden, code: "AccessDenied", wantErr: "failed to check bucket templates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fake := &fakeBucketServer{status: tt.status, code: tt.code}
			client, _ := newTestClient(t, fake)

			got, err := client.BucketExists(context.Background(), "templates")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NotEmpty(t, fake.seen())
			assert.Equal(t, http.MethodHead, fake.seen()[0].Method)
		})
	}
}

func TestPutTemplate(t *testing.T) {
	t.Parallel()
	fake := &fakeBucketServer{status: http.StatusOK}
	client, base := newTestClient(t, fake)

	body := []byte("AWSTemplateFormatVersion: '2010-09-09'\n")
	url, err := client.PutTemplate(context.Background(), "templates", "kmecs/z1/vpc-abc.yaml", body)
	require.NoError(t, err)
	assert.Equal(t, base+"/templates/kmecs/z1/vpc-abc.yaml", url)

	reqs := fake.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/templates/kmecs/z1/vpc-abc.yaml", reqs[0].Path)
	assert.Equal(t, templateContentType, reqs[0].ContentType)
	assert.Contains(t, reqs[0].Body, string(body))
}

func TestPutTemplate_Denied(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, &fakeBucketServer{status: http.StatusForbidden, code: "AccessDenied"})

	_, err := client.PutTemplate(context.Background(), "templates", "kmecs/z1/vpc.yaml", []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put object kmecs/z1/vpc.yaml in bucket templates")
}

func TestDeleteObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		code    string
		wantErr string
	}{
		{name: "deleted", status: http.StatusNoContent},
		{name: "bucket gone", status: http.StatusNotFound, code: "NoSuchBucket"},
		{name: "denied", status: http.StatusForbidden, code: "AccessDenied", wantErr: "failed to delete object kmecs/z1/vpc.yaml from bucket templates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fake := &fakeBucketServer{status: tt.status, code: tt.code}
			client, _ := newTestClient(t, fake)

			err := client.DeleteObject(context.Background(), "templates", "kmecs/z1/vpc.yaml")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.MethodDelete, fake.seen()[0].Method)
		})
	}
}
