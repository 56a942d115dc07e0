// Package blob stores document bytes behind opaque locators.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is permanent: nothing is stored at the locator.
	ErrNotFound = errors.New("blob: not found")

	// ErrUnavailable is transient: the backend could not be reached or
	// timed out. The operation may be retried.
	ErrUnavailable = errors.New("blob: unavailable")
)

// Object describes a stored blob.
type Object struct {
	Locator string
	Size    int64
}

type Store interface {
	Put(ctx context.Context, data []byte, mimeType, filename string) (Object, error)
	Get(ctx context.Context, locator string) ([]byte, error)

	// Delete removes the blob. Deleting a missing blob returns ErrNotFound,
	// which callers treat as already deleted.
	Delete(ctx context.Context, locator string) error
}

// NewLocator returns documents/YYYY/MM/DD/<uuid><ext> for filename.
func NewLocator(now time.Time, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	if len(ext) > 16 || strings.ContainsAny(ext, " /") {
		ext = ""
	}
	return fmt.Sprintf("documents/%s/%s%s", now.UTC().Format("2006/01/02"), uuid.NewString(), ext)
}

// validLocator rejects locators that could escape the documents prefix.
func validLocator(loc string) bool {
	if !strings.HasPrefix(loc, "documents/") || strings.Contains(loc, "..") {
		return false
	}
	return path.Clean(loc) == loc
}

// WithTimeout bounds every call on s. A call cut off by the deadline
// returns ErrUnavailable.
func WithTimeout(s Store, d time.Duration) Store {
	if d <= 0 {
		return s
	}
	return &timeoutStore{next: s, d: d}
}

type timeoutStore struct {
	next Store
	d    time.Duration
}

func (t *timeoutStore) Put(ctx context.Context, data []byte, mimeType, filename string) (Object, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	obj, err := t.next.Put(ctx, data, mimeType, filename)
	return obj, deadline(ctx, err)
}

func (t *timeoutStore) Get(ctx context.Context, locator string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	data, err := t.next.Get(ctx, locator)
	return data, deadline(ctx, err)
}

func (t *timeoutStore) Delete(ctx context.Context, locator string) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return deadline(ctx, t.next.Delete(ctx, locator))
}

func deadline(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
