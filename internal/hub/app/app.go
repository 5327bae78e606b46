package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/accesshub/accesshub/internal/hub/http"
	"github.com/accesshub/accesshub/internal/hub/obs"
	"github.com/accesshub/accesshub/internal/hub/service"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/internal/hub/store/drivers/postgres"
	"github.com/accesshub/accesshub/internal/hub/store/drivers/sqlite"
	"github.com/accesshub/accesshub/pkg/jwtx"
	"github.com/accesshub/accesshub/pkg/slogx"
)

// BuildVersion is overridable at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the hub with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   jwtx.Signer
	verifier jwtx.Verifier
	keys     *jwtx.KeySet

	tokenService        *service.TokenService
	syncService         *service.EndpointSyncService
	queryService        *service.EndpointQueryService
	permissionService   *service.PermissionService
	roleService         *service.RoleService
	revocationService   *service.RevocationService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accesshub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, verifier, keys, err := InitSigning(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing: %w", err)
	}
	app.signer = signer
	app.verifier = verifier
	app.keys = keys

	obs.Init()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("accesshub starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accesshub...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accesshub stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.StoreDriver {
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseDSN)
		db, err = sqlite.NewStore(dsn)
	case "postgres":
		db, err = postgres.NewStore(app.cfg.DatabaseDSN)
	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.StoreDriver)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	policy := service.SessionPolicy(app.cfg.SessionPolicy)
	if !policy.Valid() {
		app.logger.Warn("unknown session policy, falling back to single", "value", app.cfg.SessionPolicy)
		policy = service.SingleSession
	}

	app.tokenService = &service.TokenService{
		Signer:        app.signer,
		Verifier:      app.verifier,
		Store:         app.db,
		Issuer:        app.cfg.Issuer,
		AccessTTL:     app.cfg.AccessTTL,
		RefreshTTL:    app.cfg.RefreshTTL,
		SessionPolicy: policy,
	}

	app.syncService = &service.EndpointSyncService{Store: app.db}
	app.queryService = &service.EndpointQueryService{Store: app.db}
	app.permissionService = &service.PermissionService{Store: app.db}
	app.roleService = &service.RoleService{Store: app.db}
	app.revocationService = &service.RevocationService{
		Store:      app.db,
		SweepLimit: app.cfg.BlacklistSweepLimit,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.revocationService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP wires the router and HTTP server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		app.cfg.Issuer,
		BuildVersion,
		app.db,
		app.logger,
	)
	router.TokenService = app.tokenService
	router.SyncService = app.syncService
	router.QueryService = app.queryService
	router.PermissionService = app.permissionService
	router.RoleService = app.roleService
	router.Revocation = app.revocationService
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
