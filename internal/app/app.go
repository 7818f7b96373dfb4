package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bizreport/internal/config"
	apperrors "bizreport/internal/errors"
	"bizreport/internal/infrastructure"
	customMiddleware "bizreport/internal/middleware"
	"bizreport/internal/operations"
	"bizreport/internal/services"
	"bizreport/internal/storage"
	handlers "bizreport/internal/transport/http"
	"bizreport/pkg/contracts"
)

const AppName = "bizreport cleaner"

// ServiceContainer holds the services shared by the CLI and the HTTP API
type ServiceContainer struct {
	Store    *storage.Store
	Tracer   *operations.OperationTracer
	Cleaning *services.CleaningService
	Health   *services.HealthService
}

// NewServiceContainer wires the services for cfg. A nil providers value
// falls back to the global otel providers.
func NewServiceContainer(cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger) (*ServiceContainer, error) {
	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize operation tracer: %w", err)
	}

	store := storage.NewStore(cfg.Storage, storage.WithLogger(logger))
	return &ServiceContainer{
		Store:    store,
		Tracer:   tracer,
		Cleaning: services.NewCleaningService(cfg, store, tracer, logger),
		Health:   services.NewHealthService(contracts.Version, logger),
	}, nil
}

// Application represents the API server container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	ErrorHandler  *apperrors.ErrorHandler

	listener net.Listener
}

// NewApplication initializes telemetry and services and builds the router
// and server for cfg
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	container, err := NewServiceContainer(cfg, otelProviders, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Services:      container,
		OTelProviders: otelProviders,
		ErrorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer
		otelMiddleware := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Services.Tracer.Metrics())
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(a.ErrorHandler.Recoverer)
		r.Use(customMiddleware.SecurityHeaders)

		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, a.ErrorHandler).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Outside the middleware group so scrapes are not traced
	metrics := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler)
	if metrics.Enabled() {
		r.Handle("/metrics", metrics)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		handlers.NewHealthHandler(a.Services.Health, a.Logger).Routes(r)

		r.Route("/v1", func(r chi.Router) {
			handlers.NewCleanHandler(a.Services.Cleaning, a.Config.Pipeline, a.ErrorHandler, a.Logger).
				Routes(r, a.Config.Server.MaxBodyBytes)
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Addr returns the address the server listens on once started
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the server address and serves in the background. Serve
// failures cancel the application through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Addr()),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run serves until ctx is cancelled or an interrupt arrives
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")

	return a.Stop(ctx)
}
