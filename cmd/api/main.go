// Package main is the entrypoint for the event catalog API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/venuedash/catalog/internal/cache"
	"github.com/venuedash/catalog/internal/config"
	"github.com/venuedash/catalog/internal/handler"
	"github.com/venuedash/catalog/internal/metrics"
	"github.com/venuedash/catalog/internal/middleware"
	"github.com/venuedash/catalog/internal/model"
	"github.com/venuedash/catalog/internal/repository"
	"github.com/venuedash/catalog/internal/server"
	"github.com/venuedash/catalog/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Validated by config.Load.
	loc, _ := cfg.Location()

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	repo.SetLocation(loc)
	logger.Info("connected to database")

	var cacheClient *cache.Client
	if cfg.RedisEnabled() {
		cacheClient, err = cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set; invalidation bus and rate limiting disabled")
	}

	a := newApp(cfg, logger, loc, repo, cacheClient)

	srv := server.New(a.router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
		srv.Go("invalidation-bus", a.runBus)
	}
	srv.OnShutdown("cache", func(context.Context) error {
		return a.close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"timezone", loc.String(),
		"metrics_backend", cfg.MetricsBackend,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// app is the wired catalog: both cache stores, the service over them and
// the router serving it.
type app struct {
	events  *cache.Store[model.EventSet]
	options *cache.Store[model.FilterOptions]
	bus     *cache.Bus
	service *service.CatalogService
	router  *chi.Mux
}

func newApp(cfg *config.Config, logger *slog.Logger, loc *time.Location, repo *repository.Repository, cacheClient *cache.Client) *app {
	recorder, metricsHandler := initMetrics(cfg)

	a := &app{}
	a.events = cache.New(cache.Options[model.EventSet]{
		Name:     "events",
		TTL:      cfg.EventsTTL,
		Logger:   logger,
		Observer: recorder,
		SizeOf:   func(s model.EventSet) int { return len(s.Events) },
	})
	a.options = cache.New(cache.Options[model.FilterOptions]{
		Name:     "filter_options",
		TTL:      cfg.FilterOptionsTTL,
		Logger:   logger,
		Observer: recorder,
		SizeOf:   func(o model.FilterOptions) int { return len(o.Genres) + len(o.Cities) },
	})

	invalidator := service.NewInvalidator(logger, recorder, a.events, a.options)
	if cacheClient != nil {
		a.bus = cache.NewBus(cacheClient, cfg.InvalidationChannel, logger)
		invalidator.SetPublisher(a.bus)
	}

	a.service = service.NewCatalogService(service.CatalogConfig{
		Origin:      repo,
		Events:      a.events,
		Options:     a.options,
		Invalidator: invalidator,
		Metrics:     recorder,
		Logger:      logger,
		Location:    loc,
	})

	a.router = setupRouter(cfg, logger, a.service, repo, cacheClient, metricsHandler)
	return a
}

// runBus applies invalidations from other instances until ctx is cancelled.
func (a *app) runBus(ctx context.Context) error {
	if a.bus == nil {
		<-ctx.Done()
		return nil
	}
	return a.bus.Run(ctx, a.events, a.options)
}

func (a *app) close() error {
	return errors.Join(a.events.Close(), a.options.Close())
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initMetrics picks the recorder and the /metrics handler that exposes it.
func initMetrics(cfg *config.Config) (metrics.Recorder, http.Handler) {
	if cfg.MetricsBackend == config.MetricsPrometheus {
		rec := metrics.NewPrometheus()
		return rec, rec.Handler()
	}
	rec := metrics.NewInMemory()
	return rec, http.HandlerFunc(handler.NewMetricsHandler(rec).Metrics)
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	cfg *config.Config,
	logger *slog.Logger,
	catalogService handler.Catalog,
	repo *repository.Repository,
	cacheClient *cache.Client,
	metricsHandler http.Handler,
) *chi.Mux {
	h := handler.New()
	eventHandler := handler.NewEventHandler(catalogService, logger)

	redisCheck := handler.HealthCheck{Name: "redis", Optional: true}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Enabled: cfg.RateLimitEnabled,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	}
	if cacheClient != nil {
		redisCheck.Checker = cacheClient
		rateLimitCfg.Limiter = cacheClient
	}
	healthHandler := handler.NewHealthHandler(
		handler.HealthCheck{Name: "postgres", Checker: repo},
		redisCheck,
	)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(cfg.IsDevelopment()))
	r.Use(middleware.CORS(corsCfg))

	r.Get("/", h.Index)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Get("/scopes/{kind}/{id}/events", eventHandler.ScopedEvents)
		r.Get("/filter-options", eventHandler.FilterOptions)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.AdminEvents)
			r.Post("/", eventHandler.Create)
			r.Patch("/{id}", eventHandler.Update)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
