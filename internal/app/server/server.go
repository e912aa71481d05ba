package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/core"
	"hrdesk/internal/domain/helpdesk"
	"hrdesk/internal/domain/notifications"
	"hrdesk/internal/domain/performance"
	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/db"
	"hrdesk/internal/platform/email"
	"hrdesk/internal/platform/metrics"
	"hrdesk/internal/transport/http/api"
	audithandler "hrdesk/internal/transport/http/handlers/audit"
	authhandler "hrdesk/internal/transport/http/handlers/auth"
	corehandler "hrdesk/internal/transport/http/handlers/core"
	helpdeskhandler "hrdesk/internal/transport/http/handlers/helpdesk"
	notificationshandler "hrdesk/internal/transport/http/handlers/notifications"
	performancehandler "hrdesk/internal/transport/http/handlers/performance"
	"hrdesk/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New connects to the database, applies migrations and seed data as
// configured, and builds the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	slog.SetDefault(newLogger(cfg))

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  NewRouter(cfg, pool, collector),
		Metrics: collector,
	}, nil
}

// NewRouter wires stores, services and handlers onto a chi router.
func NewRouter(cfg config.Config, pool *db.Pool, collector *metrics.Collector) http.Handler {
	perms := auth.StaticPermissions{}

	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.SessionTTL)
	coreService := core.NewService(core.NewStore(pool))
	auditService := audit.New(pool)

	notificationService := notifications.New(notifications.NewStore(pool), email.New(cfg))
	notificationService.DefaultFrom = cfg.EmailFrom

	helpdeskService := helpdesk.NewService(helpdesk.NewStore(pool), notificationService)
	performanceService := performance.NewService(performance.NewStore(pool), notificationService, coreService)
	idempotency := middleware.NewIdempotencyStore(pool)

	router := chi.NewRouter()
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(cfg.JWTSecret, authService))
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(cfg.RequestTimeout))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authService, coreService, auditService)
		authHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			authHandler.RegisterRoutes(r)
			corehandler.NewHandler(coreService, perms).RegisterRoutes(r)
			helpdeskhandler.NewHandler(helpdeskService, perms, auditService, idempotency).RegisterRoutes(r)
			performancehandler.NewHandler(performanceService, perms, auditService).RegisterRoutes(r)
			notificationshandler.NewHandler(notificationService, perms).RegisterRoutes(r)
			audithandler.NewHandler(auditService, perms).RegisterRoutes(r)
		})
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("hrdesk server listening", "addr", a.Config.Addr, "environment", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
