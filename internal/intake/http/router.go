package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/access"
	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"

	_ "github.com/aussiebroadwan/leadflow/api/intake" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store  store.Store
	search search.Index

	// EventsMode names the configured event sink for /readyz ("kafka", "log").
	EventsMode string

	IntakeService      *service.IntakeService
	IdentityService    *service.IdentityService
	ChallengeService   *service.ChallengeService
	DocumentService    *service.DocumentService
	UserService        *service.UserService
	OrphanAuditService *service.OrphanAuditService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	index search.Index,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		search:       index,
		logger:       logger,
	}

	// Bearer verification is optional at this level: anonymous requests pass
	// through and individual routes demand a token where needed.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Bearer(r.verifier),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerIntake()
	r.registerChallenges()
	r.registerDocuments()
	r.registerUsers()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Leadflow Intake Service API
//	@version		0.1.0
//	@description	Anonymous mortgage lead intake, identity resolution and document management.
//	@description
//	@description				Submissions are accepted without an account; the submitter's email decides whether the challenge is linked to an existing user or offered for claiming.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/leadflow
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token issued by the auth service. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerIntake() {
	intakeHandler := &IntakeHandler{IntakeService: r.IntakeService, Limits: r.DocumentService.Limits}
	claimHandler := &ClaimHandler{IdentityService: r.IdentityService}

	// POST /intake/submissions - strict rate limit by IP (anonymous form)
	r.Mux.Handle("POST /v1/intake/submissions",
		httpx.Chain(intakeHandler,
			httpx.Limit(httpx.IntakeLimit, httpx.ClientIP),
		),
	)

	// POST /challenges/{id}/claim - strict rate limit by IP and challenge
	// to slow down guessing of challenge ids
	r.Mux.Handle("POST /v1/challenges/{id}/claim",
		httpx.Chain(claimHandler,
			httpx.Limit(httpx.ClaimLimit, httpx.Keys(httpx.ClientIP, httpx.PathValue("id"))),
		),
	)
}

// secured wraps h for routes that need a bearer token, rate limited per subject.
func (r *Router) secured(h http.HandlerFunc, mws ...httpx.Middleware) http.Handler {
	chain := append([]httpx.Middleware{httpx.RequireBearer()}, mws...)
	chain = append(chain, httpx.Limit(httpx.APILimit, httpx.Subject))
	return httpx.Chain(h, chain...)
}

func (r *Router) registerChallenges() {
	h := &ChallengesHandler{ChallengeService: r.ChallengeService, DocumentService: r.DocumentService}

	r.Mux.Handle("GET /v1/challenges", r.secured(h.HandleList))
	r.Mux.Handle("GET /v1/challenges/{id}", r.secured(h.HandleGet))
	r.Mux.Handle("PATCH /v1/challenges/{id}/status", r.secured(h.HandleUpdateStatus, permit(access.Challenge, access.Update)))
	r.Mux.Handle("GET /v1/challenges/{id}/documents", r.secured(h.HandleDocuments))
}

func (r *Router) registerDocuments() {
	h := &DocumentsHandler{DocumentService: r.DocumentService}

	r.Mux.Handle("POST /v1/documents", r.secured(h.HandleUpload))
	r.Mux.Handle("POST /v1/documents/bulk", r.secured(h.HandleBulkUpload))
	r.Mux.Handle("GET /v1/documents/{id}", r.secured(h.HandleGet))
	r.Mux.Handle("GET /v1/documents/{id}/content", r.secured(h.HandleContent))
	r.Mux.Handle("PATCH /v1/documents/{id}", r.secured(h.HandleUpdate))
	r.Mux.Handle("DELETE /v1/documents/{id}", r.secured(h.HandleDelete))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService, DocumentService: r.DocumentService}

	r.Mux.Handle("GET /v1/users/me", r.secured(h.HandleMe))
	r.Mux.Handle("GET /v1/users/{id}", r.secured(h.HandleGet))
	r.Mux.Handle("PATCH /v1/users/{id}", r.secured(h.HandleUpdate))
	r.Mux.Handle("GET /v1/users/{id}/documents", r.secured(h.HandleDocuments))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{
		UserService:        r.UserService,
		ChallengeService:   r.ChallengeService,
		OrphanAuditService: r.OrphanAuditService,
	}

	r.Mux.Handle("GET /v1/admin/users", r.secured(h.HandleListUsers, permit(access.User, access.List)))
	r.Mux.Handle("POST /v1/admin/users", r.secured(h.HandleCreateUser, permit(access.User, access.Create)))
	r.Mux.Handle("GET /v1/admin/challenges", r.secured(h.HandleListChallenges, permit(access.Challenge, access.List)))
	r.Mux.Handle("GET /v1/admin/orphans", r.secured(h.HandleOrphans, permit(access.Document, access.List)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.Limit(httpx.PublicLimit, httpx.ClientIP),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.search, r.EventsMode),
			httpx.Limit(httpx.PublicLimit, httpx.ClientIP),
		),
	)
}
