package storage

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"diarykeeper/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"diary-backups", "backup-2024-03-01T12-34-56-789Z.zip", "diary-backups/backup-2024-03-01T12-34-56-789Z.zip"},
		{"diary-backups", "../../etc/passwd", "diary-backups/passwd"},
		{"", "backup.zip", "backup.zip"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, objectKey(tt.prefix, tt.name))
	}
}

func TestNewMinioMirror_RequiresEndpointAndBucket(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewMinioMirror(config.MirrorConfig{BucketName: "b"}, logger)
	assert.Error(t, err)

	_, err = NewMinioMirror(config.MirrorConfig{Endpoint: "localhost:9000"}, logger)
	assert.Error(t, err)
}

func TestNewMinioMirror_DoesNotDial(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m, err := NewMinioMirror(config.MirrorConfig{
		Endpoint:        "127.0.0.1:1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "diary",
		Region:          "us-east-1",
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, DefaultObjectPrefix, m.prefix)
	assert.False(t, m.bucketReady)
}

// s3Stub answers the few S3 calls the mirror makes and records them.
type s3Stub struct {
	mu       sync.Mutex
	calls    []string
	buckets  map[string]bool
	objects  map[string]int64
	failPuts bool
}

func newS3Stub(t *testing.T) (*s3Stub, *httptest.Server) {
	t.Helper()
	stub := &s3Stub{buckets: map[string]bool{}, objects: map[string]int64{}}
	server := httptest.NewServer(http.HandlerFunc(stub.serve))
	t.Cleanup(server.Close)
	return stub, server
}

func (s *s3Stub) serve(w http.ResponseWriter, r *http.Request) {
	n, _ := io.Copy(io.Discard, r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	// Path-style bucket URLs may end in a slash.
	p := strings.TrimSuffix(r.URL.Path, "/")
	s.calls = append(s.calls, r.Method+" "+p)

	bucket, key, _ := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	switch {
	case r.Method == http.MethodHead && key == "":
		if !s.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && key == "":
		s.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		if s.failPuts {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		s.objects[bucket+"/"+key] = n
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (s *s3Stub) snapshot() ([]string, map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	objects := make(map[string]int64, len(s.objects))
	for k, v := range s.objects {
		objects[k] = v
	}
	return append([]string(nil), s.calls...), objects
}

func newStubMirror(t *testing.T, server *httptest.Server) *MinioMirror {
	t.Helper()
	m, err := NewMinioMirror(config.MirrorConfig{
		Endpoint:        strings.TrimPrefix(server.URL, "http://"),
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "diary",
		Region:          "us-east-1",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return m
}

func writeArchiveFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("PK fake archive"), 0o644))
	return p
}

func TestMinioMirror_UploadCreatesBucketOnce(t *testing.T) {
	stub, server := newS3Stub(t)
	m := newStubMirror(t, server)
	ctx := context.Background()

	first := writeArchiveFile(t, "backup-1.zip")
	second := writeArchiveFile(t, "backup-2.zip")

	require.NoError(t, m.Upload(ctx, "backup-1.zip", first))
	require.NoError(t, m.Upload(ctx, "backup-2.zip", second))

	calls, objects := stub.snapshot()
	assert.Contains(t, objects, "diary/diary-backups/backup-1.zip")
	assert.Contains(t, objects, "diary/diary-backups/backup-2.zip")
	assert.True(t, m.bucketReady)

	var bucketChecks, bucketCreates int
	for _, c := range calls {
		switch c {
		case "HEAD /diary":
			bucketChecks++
		case "PUT /diary":
			bucketCreates++
		}
	}
	assert.Equal(t, 1, bucketChecks)
	assert.Equal(t, 1, bucketCreates)
}

func TestMinioMirror_UploadFailure(t *testing.T) {
	stub, server := newS3Stub(t)
	stub.failPuts = true
	m := newStubMirror(t, server)

	err := m.Upload(context.Background(), "backup-1.zip", writeArchiveFile(t, "backup-1.zip"))
	assert.Error(t, err)
}

func TestMinioMirror_UploadHonoursContext(t *testing.T) {
	_, server := newS3Stub(t)
	m := newStubMirror(t, server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Upload(ctx, "backup-1.zip", writeArchiveFile(t, "backup-1.zip"))
	assert.Error(t, err)
	assert.False(t, m.bucketReady)
}
