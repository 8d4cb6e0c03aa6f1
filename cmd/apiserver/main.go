// API server entry point for the MedMuse backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/medmuse/medmuse-backend/internal/application/reporting"
	"github.com/medmuse/medmuse-backend/internal/config"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/database/postgres"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/database/redis"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/prometheus"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/storage"
	"github.com/medmuse/medmuse-backend/internal/intelligence/provider"
	"github.com/medmuse/medmuse-backend/internal/interfaces/http/handlers"
	"github.com/medmuse/medmuse-backend/internal/interfaces/http/middleware"
	"github.com/medmuse/medmuse-backend/internal/render"

	httpserver "github.com/medmuse/medmuse-backend/internal/interfaces/http"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	flag.Parse()

	if err := run(*configPath, *migrateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, migrateOnly bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.Named("medmuse")

	if err := postgres.Migrate(cfg.Database, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if migrateOnly {
		logger.Info("migrations applied, exiting")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewClient(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	artifacts, err := buildArtifactStore(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}

	providers, err := provider.NewRegistry(cfg.Providers.Default, buildProviders(cfg.Providers, logger), logger)
	if err != nil {
		return fmt.Errorf("init provider registry: %w", err)
	}
	renderers, err := render.NewRegistry(cfg.Report.DefaultRenderer, []render.DocumentRenderer{render.NewPDFRenderer()}, logger)
	if err != nil {
		return fmt.Errorf("init renderer registry: %w", err)
	}

	var (
		metrics        reporting.Metrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		prom := prommetrics.NewMetrics()
		metrics = prom
		metricsHandler = prom.Handler()
	}

	svc := reporting.NewService(
		postgres.NewReportStore(db, logger),
		postgres.NewObservationSource(db),
		postgres.NewDemographicsSource(db),
		providers,
		renderers,
		artifacts,
		reporting.Config{
			MinObservations: cfg.Report.MinObservations,
			RenderWorkers:   cfg.Report.RenderWorkers,
			RenderQueueSize: cfg.Report.RenderQueueSize,
			RenderTimeout:   cfg.Report.RenderTimeout,
		},
		metrics,
		logger,
	)

	checkers := map[string]handlers.Checker{
		"database": db.HealthCheck,
	}

	var rateLimitMW *middleware.RateLimitMiddleware
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		var limiter middleware.RateLimiter
		if cfg.Redis.Addr != "" {
			redisClient, err = redis.NewClient(ctx, cfg.Redis, logger)
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			defer redisClient.Close()
			checkers["redis"] = redisClient.HealthCheck
			limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimit.RequestsPerMinute)
		} else {
			logger.Warn("redis not configured, rate limits are per replica")
			limiter = middleware.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute)
		}
		rateLimitMW = middleware.NewRateLimitMiddleware(limiter, logger)
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ReportHandler:       handlers.NewReportHandler(svc, logger),
		HealthHandler:       handlers.NewHealthHandler(checkers, providers),
		AuthMiddleware:      middleware.NewAuthMiddleware(logger),
		LoggingMiddleware:   middleware.NewLoggingMiddleware(logger),
		RateLimitMiddleware: rateLimitMW,
		CORS:                middleware.NewCORS(cfg.Server.CORSOrigins),
		MetricsHandler:      metricsHandler,
		MetricsPath:         cfg.Metrics.Path,
		MaxBodySize:         cfg.Server.MaxBodySize,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("http server shutdown", logging.Err(err))
	}
	// Let queued renders finish before the process exits.
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Error("render queue drain", logging.Err(err))
	}
	logger.Info("shutdown complete")
	return nil
}

// loadConfig reads the config file when it exists and falls back to
// environment variables and defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return config.LoadFromEnv()
		}
		return nil, err
	}
	return config.Load(path)
}

// buildProviders assembles the provider chain in preference order.  Remote
// providers are registered only when their API key is configured; the
// heuristic provider is always registered last so analysis cannot fail for
// lack of external services.
func buildProviders(cfg config.ProvidersConfig, logger logging.Logger) []provider.AnalysisProvider {
	var providers []provider.AnalysisProvider
	if cfg.OpenAI.APIKey != "" {
		providers = append(providers, provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.OpenAI.Timeout,
		}, logger))
	}
	if cfg.Gemini.APIKey != "" {
		providers = append(providers, provider.NewGeminiProvider(provider.GeminiConfig{
			APIKey:   cfg.Gemini.APIKey,
			Endpoint: cfg.Gemini.Endpoint,
			Timeout:  cfg.Gemini.Timeout,
		}, logger))
	}
	return append(providers, provider.NewHeuristicProvider())
}

func buildArtifactStore(cfg config.StorageConfig, logger logging.Logger) (storage.ArtifactStore, error) {
	switch cfg.Backend {
	case "minio":
		return storage.NewMinIOStore(storage.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Region:          cfg.MinIO.Region,
			Bucket:          cfg.MinIO.Bucket,
		}, logger)
	case "fs", "":
		return storage.NewFSStore(cfg.BaseDir, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
