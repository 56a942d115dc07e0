package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/leadflow/internal/intake/blob"
	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	httpapi "github.com/aussiebroadwan/leadflow/internal/intake/http"
	"github.com/aussiebroadwan/leadflow/internal/intake/idempotency"
	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/internal/intake/store/drivers/postgres"
	"github.com/aussiebroadwan/leadflow/internal/intake/store/drivers/sqlite"
	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the intake service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// ctx is cancelled on shutdown and stops background loops.
	ctx    context.Context
	cancel context.CancelFunc

	// Core dependencies
	db          store.Store
	blobs       blob.Store
	publisher   events.Publisher
	eventsMode  string
	index       search.Index
	redis       *redis.Client
	idempotency idempotency.Store
	verifier    jwtx.Verifier

	// Services
	challengeService   *service.ChallengeService
	documentService    *service.DocumentService
	identityService    *service.IdentityService
	intakeService      *service.IntakeService
	userService        *service.UserService
	orphanAuditService *service.OrphanAuditService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		logger: NewLogger(cfg),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"database", app.initDatabase},
		{"blob store", app.initBlob},
		{"events", app.initEvents},
		{"search", app.initSearch},
		{"idempotency", app.initIdempotency},
		{"verifier", app.initVerifier},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			_ = app.close()
			return nil, fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// NewLogger builds the service logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "intake-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.orphanAuditService.Start()

	app.logger.Info("intake service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			app.orphanAuditService.Stop()
			_ = app.close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down intake service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.orphanAuditService.Stop()

	if err := app.close(); err != nil {
		return err
	}

	app.logger.Info("intake service stopped")
	return nil
}

// close releases every initialized dependency. Only the database error is
// returned; the rest are logged.
func (app *Application) close() error {
	app.cancel()

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing event publisher", "error", err)
		}
	}
	if app.index != nil {
		app.index.Close()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			return err
		}
	}
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase() error {
	db, err := OpenStore(app.ctx, app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// OpenStore opens the store selected by cfg.DatabaseDriver and migrates it
// to the latest schema.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	type migrator interface {
		store.Store
		ApplyMigrations() error
	}

	var (
		db  migrator
		err error
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", cfg.DatabaseFile)
		db, err = sqlite.NewStore(host)
	}
	if err != nil {
		return nil, err
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// OpenSearch returns the Meilisearch index, or search.Disabled when no URL
// is configured.
func OpenSearch(cfg Config, logger *slog.Logger) search.Index {
	if cfg.MeiliURL == "" {
		return search.Disabled{}
	}
	return search.NewMeili(cfg.MeiliURL, cfg.MeiliAPIKey, 0, logger)
}

func (app *Application) initBlob() error {
	var (
		bs  blob.Store
		err error
	)
	switch app.cfg.BlobDriver {
	case "memory":
		app.logger.Warn("documents are kept in memory and lost on restart")
		bs = blob.NewMemory()
	case "s3":
		bs, err = blob.NewS3(app.ctx, blob.S3Config{
			Endpoint:  app.cfg.S3Endpoint,
			Region:    app.cfg.S3Region,
			Bucket:    app.cfg.S3Bucket,
			AccessKey: app.cfg.S3AccessKey,
			SecretKey: app.cfg.S3SecretKey,
		})
	default:
		bs, err = blob.NewDir(app.cfg.BlobDir)
	}
	if err != nil {
		return err
	}

	app.blobs = blob.WithTimeout(bs, app.cfg.BlobTimeout)
	app.logger.Info("blob store ready", "driver", app.cfg.BlobDriver, "timeout", app.cfg.BlobTimeout)
	return nil
}

func (app *Application) initEvents() error {
	if len(app.cfg.KafkaBrokers) == 0 {
		app.publisher = events.NewLoggingPublisher(app.logger)
		app.eventsMode = "log"
		return nil
	}

	p, err := events.NewKafkaPublisher(app.cfg.KafkaBrokers, app.cfg.KafkaTopicPrefix)
	if err != nil {
		return err
	}
	app.publisher = p
	app.eventsMode = "kafka"
	app.logger.Info("publishing events to kafka",
		"brokers", app.cfg.KafkaBrokers,
		"topic_prefix", app.cfg.KafkaTopicPrefix,
	)
	return nil
}

func (app *Application) initSearch() error {
	app.index = OpenSearch(app.cfg, app.logger)
	if _, disabled := app.index.(search.Disabled); disabled {
		app.logger.Info("search disabled, admin queries use the database")
	}
	return nil
}

func (app *Application) initIdempotency() error {
	if app.cfg.RedisURL == "" {
		app.logger.Warn("idempotency keys are kept in process memory")
		app.idempotency = idempotency.NewMemory(app.cfg.IdempotencyTTL)
		return nil
	}

	client, err := idempotency.Connect(app.ctx, app.cfg.RedisURL)
	if err != nil {
		return err
	}
	app.redis = client
	app.idempotency = idempotency.NewRedis(client, app.cfg.IdempotencyTTL)
	return nil
}

func (app *Application) initVerifier() error {
	v, err := InitVerifier(app.ctx, app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.verifier = v
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.challengeService = &service.ChallengeService{
		Store:  app.db,
		Events: app.publisher,
		Search: app.index,
	}
	app.documentService = &service.DocumentService{
		Store:  app.db,
		Blob:   app.blobs,
		Events: app.publisher,
		Limits: service.UploadLimits{
			Anonymous:     app.cfg.UploadMaxBytesAnonymous,
			Authenticated: app.cfg.UploadMaxBytesAuthenticated,
		},
	}
	app.identityService = &service.IdentityService{
		Store:     app.db,
		Events:    app.publisher,
		Search:    app.index,
		LoginPath: app.cfg.LoginPath,
		ClaimPath: app.cfg.ClaimPath,
	}
	app.intakeService = &service.IntakeService{
		Documents:   app.documentService,
		Challenges:  app.challengeService,
		Identity:    app.identityService,
		Idempotency: app.idempotency,
		Events:      app.publisher,
	}
	app.userService = &service.UserService{Store: app.db, Search: app.index}

	app.orphanAuditService = service.NewOrphanAuditService(
		app.db,
		app.logger,
		app.cfg.OrphanAuditInterval,
		app.cfg.OrphanGracePeriod,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.index,
		app.logger,
	)

	// Wire services to router
	router.EventsMode = app.eventsMode
	router.IntakeService = app.intakeService
	router.IdentityService = app.identityService
	router.ChallengeService = app.challengeService
	router.DocumentService = app.documentService
	router.UserService = app.userService
	router.OrphanAuditService = app.orphanAuditService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
