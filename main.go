package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"opsdash/config"
	"opsdash/db"
	"opsdash/handlers"
	"opsdash/metrics"
	"opsdash/middleware"
	"opsdash/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogFormat == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Caller().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func loadRegistry(cfg config.Config) (services.Registry, error) {
	if cfg.RegistryFile != "" {
		return services.LoadRegistryFile(cfg.RegistryFile)
	}
	return services.NewRegistry(services.DefaultJobs)
}

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	registry, err := loadRegistry(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("job registry rejected")
	}
	log.Info().Int("jobs", registry.Len()).Str("file", cfg.RegistryFile).Msg("job registry loaded")

	if err := db.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	log.Info().
		Bool("auth", cfg.Features.AuthEnabled).
		Bool("metrics", cfg.Features.MetricsEnabled).
		Dur("sample_interval", cfg.SampleInterval).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Msg("features")

	var m *metrics.Metrics
	promRegistry := prometheus.NewRegistry()
	if cfg.Features.MetricsEnabled {
		m = metrics.New(promRegistry)
	}

	svc := services.NewHealthService(registry, services.NewPostgresSource(db.GetDB()), cfg.FetchTimeout, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go services.NewSampler(svc, cfg.SampleInterval).Run(ctx)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/healthz", handlers.Healthz(db.GetDB()))
	if cfg.Features.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler(promRegistry)))
	}

	api := r.Group("/api", middleware.AuthRequired(cfg.Features, []byte(cfg.JWTSecret)))
	{
		api.GET("/health/overview", handlers.GetHealthOverview(svc))
		api.GET("/health/jobs", handlers.GetJobHealth(svc))
		api.GET("/health/registry", handlers.GetRegistry(registry))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := db.GetDB().Close(); err != nil {
		log.Error().Err(err).Msg("closing database")
	}
}
