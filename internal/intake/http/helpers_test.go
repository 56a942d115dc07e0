package http_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/blob"
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	intakehttp "github.com/aussiebroadwan/leadflow/internal/intake/http"
	"github.com/aussiebroadwan/leadflow/internal/intake/idempotency"
	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/internal/intake/store/drivers/sqlite"
	"github.com/aussiebroadwan/leadflow/internal/intake/store/storetest"
	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://auth.test"
	testAudience = "leadflow-intake"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type harness struct {
	store     store.Store
	blob      *blob.Memory
	events    *events.Recorder
	documents *service.DocumentService
	router    *intakehttp.Router
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	h := &harness{store: st, blob: blob.NewMemory(), events: &events.Recorder{}}
	index := search.Disabled{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	challenges := &service.ChallengeService{Store: st, Events: h.events, Search: index}
	h.documents = &service.DocumentService{Store: st, Blob: h.blob, Events: h.events}
	identity := &service.IdentityService{Store: st, Events: h.events, Search: index}

	r := intakehttp.NewRouter(jwtx.NewVerifierHS256(testSecret, testIssuer, []string{testAudience}), "test", st, index, logger)
	r.EventsMode = "log"
	r.ChallengeService = challenges
	r.DocumentService = h.documents
	r.IdentityService = identity
	r.UserService = &service.UserService{Store: st, Search: index}
	r.IntakeService = &service.IntakeService{
		Documents:   h.documents,
		Challenges:  challenges,
		Identity:    identity,
		Idempotency: idempotency.NewMemory(time.Hour),
		Events:      h.events,
	}
	r.OrphanAuditService = service.NewOrphanAuditService(st, logger, 0, 0)
	h.router = r
	return h
}

// apply registers routes after a test has adjusted the services.
func (h *harness) apply() *harness {
	h.router.ApplyRoutes()
	return h
}

// client returns an SDK client talking to a live server for h.
func (h *harness) client(t *testing.T) *intakesdk.Client {
	t.Helper()
	srv := httptest.NewServer(h.router)
	t.Cleanup(srv.Close)
	c := intakesdk.NewClient(srv.URL)
	c.Backoff = time.Millisecond
	return c
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

func token(t *testing.T, u domain.User) string {
	t.Helper()
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	raw, err := signer.Sign(jwtx.NewClaims(u.ID, string(u.Role), testIssuer, []string{testAudience}, time.Minute, time.Now()))
	require.NoError(t, err)
	return raw
}

// serve runs one request through the router without a network round trip.
func (h *harness) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func request(method, path, bearer string, body io.Reader, contentType string) *http.Request {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req
}

func pdfBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, "%PDF-1.7")
	return data
}

type part struct {
	field, filename, mimeType string
	data                      []byte
}

// multipartBody builds a form from plain fields and file parts.
func multipartBody(t *testing.T, fields map[string]string, files ...part) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		hdr.Set("Content-Type", f.mimeType)
		pw, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = pw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
