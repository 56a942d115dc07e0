package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/blob"
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	"github.com/aussiebroadwan/leadflow/internal/intake/idempotency"
	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/internal/intake/store/drivers/sqlite"
	"github.com/aussiebroadwan/leadflow/internal/intake/store/storetest"
	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// faultyBlob wraps the in-memory store and can be told to fail.
type faultyBlob struct {
	*blob.Memory
	failPut    atomic.Bool
	failDelete atomic.Bool
}

func (f *faultyBlob) Put(ctx context.Context, data []byte, mimeType, filename string) (blob.Object, error) {
	if f.failPut.Load() {
		return blob.Object{}, blob.ErrUnavailable
	}
	return f.Memory.Put(ctx, data, mimeType, filename)
}

func (f *faultyBlob) Delete(ctx context.Context, locator string) error {
	if f.failDelete.Load() {
		return blob.ErrUnavailable
	}
	return f.Memory.Delete(ctx, locator)
}

type harness struct {
	store  store.Store
	blob   *faultyBlob
	events *events.Recorder
	clock  *clock

	challenges *service.ChallengeService
	documents  *service.DocumentService
	identity   *service.IdentityService
	users      *service.UserService
	intake     *service.IntakeService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	h := &harness{
		store:  st,
		blob:   &faultyBlob{Memory: blob.NewMemory()},
		events: &events.Recorder{},
		clock:  &clock{t: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)},
	}
	idx := search.Disabled{}

	h.challenges = &service.ChallengeService{Store: st, Events: h.events, Search: idx, Now: h.clock.Now}
	h.documents = &service.DocumentService{Store: st, Blob: h.blob, Events: h.events, Now: h.clock.Now}
	h.identity = &service.IdentityService{Store: st, Events: h.events, Search: idx, Now: h.clock.Now}
	h.users = &service.UserService{Store: st, Search: idx, Now: h.clock.Now}
	h.intake = &service.IntakeService{
		Documents:   h.documents,
		Challenges:  h.challenges,
		Identity:    h.identity,
		Idempotency: idempotency.NewMemory(time.Hour),
		Events:      h.events,
	}
	return h
}

func (h *harness) seedUser(t *testing.T, email, username string, role domain.Role) domain.User {
	t.Helper()
	u := storetest.User(email, username)
	u.Role = role
	require.NoError(t, h.store.Users().CreateUser(context.Background(), u))
	return u
}

func (h *harness) challenge(t *testing.T, id string) domain.Challenge {
	t.Helper()
	c, err := h.store.Challenges().GetChallengeByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (h *harness) document(t *testing.T, id string) domain.Document {
	t.Helper()
	d, err := h.store.Documents().GetDocumentByID(context.Background(), id)
	require.NoError(t, err)
	return d
}

// requireLinked checks both edges of the document/challenge relation.
func (h *harness) requireLinked(t *testing.T, challengeID string, docIDs ...string) {
	t.Helper()
	c := h.challenge(t, challengeID)
	require.Len(t, c.Documents, len(docIDs))
	for i, id := range docIDs {
		require.Equal(t, id, c.Documents[i].DocumentID)
		require.Equal(t, challengeID, h.document(t, id).RelatedChallengeID)
	}
}

func pdf(name string, size int) service.Upload {
	data := make([]byte, size)
	copy(data, "%PDF-1.7")
	return service.Upload{Filename: name, MimeType: "application/pdf", Data: data}
}

func admin(u domain.User) domain.Principal {
	return domain.Authenticated{ID: u.ID, Role: domain.RoleAdmin}
}

func client(u domain.User) domain.Principal {
	return domain.Authenticated{ID: u.ID, Role: domain.RoleClient}
}

func isValidation(err error, field string) bool {
	var ve *service.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	_, ok := ve.Fields[field]
	return ok
}
