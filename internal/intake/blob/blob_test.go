package blob_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/blob"
	"github.com/stretchr/testify/require"
)

var locatorRE = regexp.MustCompile(`^documents/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}(\.[a-z0-9]+)?$`)

func TestNewLocator(t *testing.T) {
	at := time.Date(2024, 2, 9, 23, 0, 0, 0, time.FixedZone("AEST", 10*3600))

	loc := blob.NewLocator(at, "Payslip March.PDF")
	require.Regexp(t, locatorRE, loc)
	require.True(t, strings.HasPrefix(loc, "documents/2024/02/09/"), loc)
	require.True(t, strings.HasSuffix(loc, ".pdf"), loc)

	require.Regexp(t, locatorRE, blob.NewLocator(at, "no-extension"))
	require.Regexp(t, locatorRE, blob.NewLocator(at, `C:\Users\jane\scan.png`))
	require.NotEqual(t, blob.NewLocator(at, "a.pdf"), blob.NewLocator(at, "a.pdf"))
}

// exercise runs the shared contract against a driver.
func exercise(t *testing.T, s blob.Store) {
	ctx := context.Background()

	obj, err := s.Put(ctx, []byte("%PDF-1.7 hello"), "application/pdf", "statement.pdf")
	require.NoError(t, err)
	require.Regexp(t, locatorRE, obj.Locator)
	require.EqualValues(t, 14, obj.Size)

	data, err := s.Get(ctx, obj.Locator)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7 hello", string(data))

	require.NoError(t, s.Delete(ctx, obj.Locator))
	require.ErrorIs(t, s.Delete(ctx, obj.Locator), blob.ErrNotFound)

	_, err = s.Get(ctx, obj.Locator)
	require.ErrorIs(t, err, blob.ErrNotFound)
}

func TestMemory(t *testing.T) {
	t.Parallel()
	exercise(t, blob.NewMemory())
}

func TestDir(t *testing.T) {
	t.Parallel()
	d, err := blob.NewDir(t.TempDir())
	require.NoError(t, err)
	exercise(t, d)

	_, err = d.Get(context.Background(), "documents/../../etc/passwd")
	require.ErrorIs(t, err, blob.ErrNotFound)
}

func TestS3(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newFakeS3("intake-docs"))
	t.Cleanup(srv.Close)

	s, err := blob.NewS3(context.Background(), blob.S3Config{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		Bucket:    "intake-docs",
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	exercise(t, s)
}

func TestS3UnavailableIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	s, err := blob.NewS3(context.Background(), blob.S3Config{
		Endpoint: srv.URL, Region: "us-east-1", Bucket: "b", AccessKey: "k", SecretKey: "s",
	})
	require.NoError(t, err)

	_, err = s.Put(context.Background(), []byte("x"), "text/plain", "x.txt")
	require.ErrorIs(t, err, blob.ErrUnavailable)
}

type slowStore struct{ blob.Store }

func (slowStore) Get(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	s := blob.WithTimeout(slowStore{blob.NewMemory()}, 20*time.Millisecond)
	_, err := s.Get(context.Background(), "documents/2024/01/01/x.pdf")
	require.ErrorIs(t, err, blob.ErrUnavailable)

	// Permanent errors pass through untouched.
	err = s.Delete(context.Background(), "documents/2024/01/01/x.pdf")
	require.True(t, errors.Is(err, blob.ErrNotFound))
}

// fakeS3 implements the handful of path-style object calls the driver uses.
type fakeS3 struct {
	bucket string
	mu     sync.Mutex
	objs   map[string][]byte
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{bucket: bucket, objs: make(map[string][]byte)}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutPrefix(r.URL.Path, "/"+f.bucket+"/")
	if !ok {
		http.Error(w, "no such bucket", http.StatusNotFound)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objs[key] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		body, ok := f.objs[key]
		if !ok {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(body)
		}
	case http.MethodDelete:
		delete(f.objs, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
