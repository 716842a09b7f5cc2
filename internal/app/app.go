package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gripulse/internal/agent"
	"gripulse/internal/config"
	"gripulse/internal/dataprocessing"
	apierrors "gripulse/internal/errors"
	"gripulse/internal/infrastructure"
	"gripulse/internal/llm"
	"gripulse/internal/mailer"
	customMiddleware "gripulse/internal/middleware"
	"gripulse/internal/report"
	"gripulse/internal/services"
	handlers "gripulse/internal/transport/http"
	ws "gripulse/internal/websocket"
	"gripulse/pkg/contracts"
)

// AppName identifies the service in startup logs.
const AppName = "GRI Pulse - Sustainability Reporting Service"

// Application is the main application container. All services are wired
// together here at startup.
type Application struct {
	Config   *config.Config
	Paths    *config.Paths
	Router   *chi.Mux
	Server   *http.Server
	Logger   *slog.Logger
	OTel     *infrastructure.OTelProviders
	Metrics  *infrastructure.AppMetrics
	Services *ServiceContainer

	completer llm.Completer
}

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Data      *services.DataService
	Analytics *services.AnalyticsService
	Reports   *services.ReportService
	Agent     *services.AgentService
	Health    *services.HealthService
}

// NewApplication creates a new application instance with dependency
// injection.
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
		slog.String("version", contracts.Version))

	paths, err := config.GetPathsFromConfig(&cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewAppMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create application metrics: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		OTel:    otelProviders,
		Metrics: metrics,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the data, analytics, report and agent
// services.
func (a *Application) initializeServices() {
	loader := dataprocessing.NewLoader(a.Paths.ExcelDir, a.Paths.CompaniesDir, a.Logger, a.Metrics)
	completer := llm.NewClient(a.Config.LLM, a.Logger)
	a.completer = completer

	if !completer.Configured() {
		a.Logger.Warn("LLM API key not configured",
			slog.String("action", "agent answers will fall back to computed KPI summaries"))
	}
	if !a.Config.EmailConfigured() {
		a.Logger.Warn("SMTP credentials not configured",
			slog.String("action", "report email delivery is disabled"))
	}

	generator := report.NewGenerator(loader, a.Paths, a.Config.Report, a.Logger, a.Metrics)
	mail := mailer.NewMailer(a.Config.SMTP, a.Logger, a.Metrics)

	kpiAgent := agent.NewAgent(loader, completer, a.Logger, a.Metrics)
	docAgent := agent.NewDocumentAgent(completer)

	a.Services = &ServiceContainer{
		Data:      services.NewDataService(loader, a.Paths, a.Logger),
		Analytics: services.NewAnalyticsService(loader, a.Logger),
		Reports:   services.NewReportService(generator, mail, a.Paths, a.Logger),
		Agent:     services.NewAgentService(kpiAgent, docAgent, completer, a.Logger),
		Health:    services.NewHealthService(a.Config, a.Paths, completer, mail, a.Logger),
	}
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware only; these do not wrap the ResponseWriter and
	// are safe for the WebSocket upgrade.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// WebSocket chat stream must bypass the compressing/recovering group
	chatSocket := ws.NewChatHandler(a.completer, a.Logger)
	r.Handle("/api/agent/ws", chatSocket)

	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r.Group(func(r chi.Router) {
		if httpMetrics, err := customMiddleware.NewHTTPMetrics(a.OTel); err != nil {
			a.Logger.Error("Failed to create HTTP metrics middleware",
				slog.String("error", err.Error()))
		} else {
			r.Use(httpMetrics.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r, errorHandler)
	})

	// Prometheus scrape endpoint stays outside the middleware group
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures the API endpoints.
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	validator := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		dataHandler := handlers.NewDataHandler(a.Services.Data, a.Logger, errorHandler)
		r.Mount("/data", dataHandler.Routes())

		analyticsHandler := handlers.NewAnalyticsHandler(a.Services.Analytics, validator, a.Logger, errorHandler)
		r.Mount("/analytics", analyticsHandler.Routes())

		reportHandler := handlers.NewReportHandler(a.Services.Reports, validator, a.Logger, errorHandler)
		r.Mount("/reports", reportHandler.Routes())

		agentHandler := handlers.NewAgentHandler(a.Services.Agent, validator, a.Logger, errorHandler)
		r.Mount("/agent", agentHandler.Routes())
	})
}

// createServer creates the HTTP server.
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

// Start starts the HTTP server. The cancel function is invoked when the
// listener fails so main can unwind.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting HTTP server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("excel_dir", a.Paths.ExcelDir),
		slog.String("companies_dir", a.Paths.CompaniesDir),
		slog.String("reports_dir", a.Paths.ReportsDir))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := a.OTel.Shutdown(otelCtx); err != nil {
		a.Logger.Warn("OpenTelemetry shutdown error", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application stopped")
	return nil
}

// Run starts the application and blocks until the context is cancelled,
// then performs a graceful shutdown.
func (a *Application) Run(ctx context.Context, cancel context.CancelFunc) error {
	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	return a.Stop(context.Background())
}
