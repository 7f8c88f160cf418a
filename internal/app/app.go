package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ovsidee/UniversityApp/internal/auth"
	"github.com/ovsidee/UniversityApp/internal/bootstrap"
	"github.com/ovsidee/UniversityApp/internal/config"
	"github.com/ovsidee/UniversityApp/internal/course"
	"github.com/ovsidee/UniversityApp/internal/db"
	"github.com/ovsidee/UniversityApp/internal/enrollment"
	"github.com/ovsidee/UniversityApp/internal/events"
	"github.com/ovsidee/UniversityApp/internal/health"
	"github.com/ovsidee/UniversityApp/internal/i18n"
	"github.com/ovsidee/UniversityApp/internal/logger"
	"github.com/ovsidee/UniversityApp/internal/metrics"
	"github.com/ovsidee/UniversityApp/internal/middleware"
	"github.com/ovsidee/UniversityApp/internal/policy"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/spa"
	"github.com/ovsidee/UniversityApp/internal/student"
	"github.com/ovsidee/UniversityApp/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
)

const sessionSweepInterval = 15 * time.Minute

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	telemetry *telemetry.Telemetry
	publisher events.Publisher
	sessions  *session.Repository
	stopSweep context.CancelFunc
}

// New loads configuration and builds the application.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)
	slogLogger.Info("config loaded", "env", cfg.Env, "database", cfg.Database.Driver, "events", cfg.Events.Driver)

	return NewWithConfig(ctx, cfg, slogLogger)
}

// NewWithConfig wires every component from an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config, slogLogger *slog.Logger) (*App, error) {
	slogLogger.Info("initializing application", "version", Version, "commit", GitCommit, "built", BuildTime)

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		return nil, err
	}
	m := tel.Metrics

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	meter := tel.MeterProvider.Meter(ServiceName)
	if err := m.Database.RegisterDB(database.DB, meter); err != nil {
		slogLogger.Warn("failed to register database metrics", "error", err)
	}
	if m.Runtime, err = metrics.NewRuntimeMetrics(meter, ServiceName, Version, cfg.Env, health.Dependency); err != nil {
		slogLogger.Warn("failed to register runtime metrics", "error", err)
	}

	if err := bootstrap.Seed(ctx, database, cfg.Seed, m, slogLogger); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to bootstrap database: %w", err)
	}

	publisher, err := events.New(cfg.Events, slogLogger)
	if err != nil {
		slogLogger.Warn("event publisher unavailable, events disabled", "driver", cfg.Events.Driver, "error", err)
		publisher = events.Noop{}
	}

	app := &App{
		config:    cfg,
		router:    chi.NewRouter(),
		logger:    slogLogger,
		db:        database,
		telemetry: tel,
		publisher: publisher,
	}

	guard := policy.NewGuard(slogLogger, m)
	manager := session.NewManager(cfg.Session)
	app.sessions = session.NewRepository(database, m)

	enrollmentRepo := enrollment.NewRepository(database, m)
	enrollmentService := enrollment.NewService(enrollmentRepo, publisher, m, slogLogger)

	studentService := student.NewService(student.NewRepository(database, m), enrollmentService)
	courseService := course.NewService(course.NewRepository(database, m), enrollmentService)

	authRepo := auth.NewRepository(database, m)
	authService := auth.NewService(authRepo, app.sessions, manager, publisher, m, slogLogger)

	app.router.Use(chimw.RequestID)
	app.router.Use(chimw.Recoverer)
	app.router.Use(middleware.RequestLogger(slogLogger))
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.router.Use(session.Middleware(manager, app.sessions, slogLogger))

	// Health endpoints (no auth required)
	health.NewHandler(database, m, slogLogger).RegisterRoutes(app.router)

	app.router.Route("/api", func(r chi.Router) {
		auth.NewHandler(authService, manager, slogLogger).RegisterRoutes(r)
		i18n.NewHandler(slogLogger).RegisterRoutes(r)
		student.NewHandler(studentService, guard, slogLogger).RegisterRoutes(r)
		course.NewHandler(courseService, guard, slogLogger).RegisterRoutes(r)
		enrollment.NewHandler(enrollmentService, guard, slogLogger).RegisterRoutes(r)
	})

	spa.NewHandler(cfg.Server.StaticDir, slogLogger).RegisterRoutes(app.router)

	slogLogger.Info("application initialized successfully")
	return app, nil
}

// Router exposes the HTTP handler, mainly for tests.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.stopSweep = cancel
	go a.sweepSessions(ctx)

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sweepSessions removes expired session rows until ctx is cancelled.
func (a *App) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.sessions.DeleteExpired(ctx)
			if err != nil {
				a.logger.Error("failed to delete expired sessions", "error", err)
				continue
			}
			if n > 0 {
				a.logger.Info("expired sessions deleted", "count", n)
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.stopSweep != nil {
		a.stopSweep()
	}

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	errs = append(errs, a.Close(ctx))
	return errors.Join(errs...)
}

// Close releases the publisher, telemetry and database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}
	if err := db.Close(a.db); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	return errors.Join(errs...)
}
