package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashvaddapelli/Resumeiq/internal/config"
)

// fakeS3 keeps objects in memory, keyed by request path.
type fakeS3 struct {
	mu          sync.Mutex
	objects     map[string][]byte
	contentType map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.contentType[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, contentType: map[string]string{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := New(context.Background(), config.StorageConfig{
		Bucket:          "resumes",
		Region:          "auto",
		Endpoint:        server.URL,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	return store, fake
}

func TestUploadAndDownload(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)

	require.NoError(t, store.Upload(ctx, "resumes/user-1/cv.txt", "text/plain", []byte("hello")))
	assert.Equal(t, "hello", string(fake.objects["/resumes/resumes/user-1/cv.txt"]))
	assert.True(t, strings.HasPrefix(fake.contentType["/resumes/resumes/user-1/cv.txt"], "text/plain"))

	data, err := store.Download(ctx, "resumes/user-1/cv.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDownloadMissing(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Download(context.Background(), "missing.txt")
	assert.Error(t, err)
}
