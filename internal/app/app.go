package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"salescli/internal/config"
	"salescli/internal/dataprocessing"
	apperrors "salescli/internal/errors"
	"salescli/internal/files"
	"salescli/internal/infrastructure"
	customMiddleware "salescli/internal/middleware"
	"salescli/internal/services"
	handlers "salescli/internal/transport/http"
	ws "salescli/internal/websocket"
)

const (
	Version = "1.2.0"
	AppName = "Territory Sales Service"
)

// BuildTime is set at compile time via ldflags
var BuildTime = ""

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Paths            *config.Paths
	Router           *chi.Mux
	Server           *http.Server
	WebSocketHub     *ws.Hub
	SnapshotStore    *files.SnapshotStore
	TerritoryService *services.TerritoryService
	HealthService    *services.HealthService
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	BusinessMetrics  *infrastructure.BusinessMetrics
	SystemMetrics    *infrastructure.SystemMetricsCollector

	otelMiddleware *customMiddleware.OTelMiddleware
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	// OTel middleware owns the shared business metrics instance
	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}
	a.otelMiddleware = otelMiddleware
	a.BusinessMetrics = otelMiddleware.Metrics()

	hub := ws.NewHub(a.Logger)
	hub.Start()
	a.WebSocketHub = hub

	a.SnapshotStore = files.NewSnapshotStore(a.Config.GetSnapshotPath(), a.Logger)

	parser := dataprocessing.NewParser(a.Logger)
	a.TerritoryService = services.NewTerritoryService(parser, a.SnapshotStore, hub, a.BusinessMetrics, a.Logger)

	systemMetrics, err := infrastructure.NewSystemMetricsCollector(
		a.OTelProviders.Meter,
		30*time.Second,
		infrastructure.CollectorSources{
			WebSocketClients: hub.ClientCount,
			DatasetCustomers: a.TerritoryService.CustomerCount,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create system metrics collector: %w", err)
	}
	a.SystemMetrics = systemMetrics

	a.HealthService = services.NewHealthService(Version, BuildTime, a.Paths, a.TerritoryService, hub, a.Logger)

	// Restore the previous dataset, if one was saved. A missing or corrupt
	// snapshot just means we start empty.
	restored, err := a.TerritoryService.LoadFromStorage(infrastructure.EnsureTraceID(context.Background()))
	if err != nil {
		return fmt.Errorf("failed to restore dataset snapshot: %w", err)
	}
	a.Logger.Info("Snapshot restore attempted",
		slog.Bool("restored", restored),
		slog.String("path", a.Config.GetSnapshotPath()))

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that does not wrap the ResponseWriter, so the
	// WebSocket upgrade still works
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).HandleFunc("/ws", a.handleWebSocket)

	// Prometheus metrics stay outside the full middleware chain
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(a.otelMiddleware.Handler)
		r.Use(customMiddleware.BusinessMetricsMiddleware(a.BusinessMetrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apperrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)
	r.Get("/healthz/live", healthHandler.LivenessCheck)
	r.Get("/healthz/ready", healthHandler.ReadinessCheck)

	validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)
	validation.SetMaxBodySize(a.Config.Ingest.MaxUploadSize)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(chimiddleware.Timeout(a.Config.Server.ReadTimeout))
		r.Use(validation.ValidateRequest)

		r.Get("/version", healthHandler.Version)
		r.Get("/stats", healthHandler.Stats)

		datasetHandler := handlers.NewDatasetHandler(
			a.TerritoryService,
			a.Config.Ingest.MaxUploadSize,
			a.Logger,
			errorHandler,
		)
		r.Mount("/territory", datasetHandler.Routes())

		dataHandler := handlers.NewDataHandler(a.TerritoryService, a.BusinessMetrics, a.Logger, errorHandler)
		r.Mount("/", dataHandler.Routes())
	})
}

// getCORSConfig returns the CORS configuration from application config
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// handleWebSocket upgrades the connection and hands it to the hub
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = "ws-" + infrastructure.GenerateTraceID()
	}
	ctx := infrastructure.WithTraceID(r.Context(), reqID)

	a.Logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// No origin means a non-browser client or same-origin request
			if origin == "" {
				return true
			}
			for _, allowed := range a.Config.Security.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			a.Logger.WarnContext(ctx, "WebSocket origin rejected",
				slog.String("origin", origin))
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.ErrorContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	client := ws.NewClientWithTrace(a.WebSocketHub, conn, reqID, a.Logger)
	a.WebSocketHub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// Start starts the HTTP server and background collectors
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_dir", a.Paths.DataDir))

	a.SystemMetrics.Start(ctx)

	if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.SystemMetrics.Stop()
	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Start(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Stop(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
