package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/econext/catalog-engine/internal/config"
	"github.com/econext/catalog-engine/internal/db"
	"github.com/econext/catalog-engine/internal/db/memory"
	dbRedis "github.com/econext/catalog-engine/internal/db/redis"
	"github.com/econext/catalog-engine/internal/imaging"
	logpkg "github.com/econext/catalog-engine/internal/logger"
	"github.com/econext/catalog-engine/internal/metrics"
	catalogrepo "github.com/econext/catalog-engine/internal/repository/catalog"
	featurerepo "github.com/econext/catalog-engine/internal/repository/feature"
	forecastrepo "github.com/econext/catalog-engine/internal/repository/forecast"
	chiTransport "github.com/econext/catalog-engine/internal/transport/chi"
	"github.com/econext/catalog-engine/internal/transport/imagefetch"
	forecastuc "github.com/econext/catalog-engine/internal/usecase/forecast"
	healthuc "github.com/econext/catalog-engine/internal/usecase/health"
	"github.com/econext/catalog-engine/internal/usecase/lexical"
	"github.com/econext/catalog-engine/internal/usecase/visual"
	"github.com/econext/catalog-engine/internal/version"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic("failed to load .env: " + err.Error())
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalog engine",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := newStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Explicit registration, no init()
	metrics.RegisterCatalogMetrics()

	prefix := cfg.Storage.KeyPrefix
	catalog := catalogrepo.New(store, prefix)
	results := forecastrepo.New(store, prefix).WithRetention(cfg.Forecast.HistoryRetention)
	features := featurerepo.New(store, prefix)

	breaker := cfg.ImageFetch.Breaker
	fetcher := imagefetch.New(imagefetch.Config{
		Timeout:      time.Duration(cfg.ImageFetch.TimeoutSec) * time.Second,
		MaxBytes:     cfg.ImageFetch.MaxBytes,
		MaxRequests:  breaker.MaxRequests,
		Interval:     time.Duration(breaker.IntervalSec) * time.Second,
		OpenTimeout:  time.Duration(breaker.OpenTimeoutSec) * time.Second,
		MinRequests:  breaker.MinRequests,
		FailureRatio: breaker.FailureRatio,
	}, logpkg.Component(logger, "imagefetch")).WithMetrics(metrics.ImageFetchTotal)

	forecaster := forecastuc.NewForecaster(cfg.Forecast.HorizonDays, cfg.Forecast.MinPoints)
	forecastSvc := forecastuc.New(catalog, catalog, results, forecaster, logpkg.Component(logger, "forecast")).
		WithLookback(cfg.Forecast.LookbackDays).
		WithMetrics(metrics.ForecastRunsTotal)
	lexicalSvc := lexical.New(catalog, logpkg.Component(logger, "lexical")).
		WithLimits(cfg.Lexical.MaxFeatures, cfg.Lexical.MinSimilarity, cfg.Lexical.GroupTopN).
		WithMetrics(metrics.LexicalRebuildsTotal, metrics.LexicalDocuments, metrics.SearchDuration)
	visualSvc := visual.New(catalog, fetcher, imaging.NewExtractor(), features, logpkg.Component(logger, "visual")).
		WithMetrics(metrics.VisualIndexWritesTotal, metrics.SearchDuration)
	healthSvc := healthuc.New(store, fetcher)

	// Warm the lexical model so the first query does not pay for the build.
	if err := lexicalSvc.Refresh(ctx); err != nil {
		logger.Warn("Initial lexical build failed", zap.Error(err))
	}

	server := chiTransport.NewServer(forecastSvc, lexicalSvc, visualSvc, healthSvc, logger).
		WithMaxUploadBytes(cfg.HTTP.MaxUploadBytes).
		WithDefaultTopK(cfg.Lexical.DefaultTopK, cfg.Visual.DefaultTopK)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func newStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		return s, nil
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
