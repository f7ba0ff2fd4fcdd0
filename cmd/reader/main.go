package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/config"
	"github.com/alexeyproskuryakov/read/internal/health"
	"github.com/alexeyproskuryakov/read/internal/metrics"
	"github.com/alexeyproskuryakov/read/internal/queue"
	"github.com/alexeyproskuryakov/read/internal/service"
	"github.com/alexeyproskuryakov/read/internal/source"
	"github.com/alexeyproskuryakov/read/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting reader service",
		zap.String("actor", cfg.Reader.Actor),
		zap.String("queue_backend", cfg.Queue.Backend),
		zap.String("source", cfg.Source.BaseURL))

	// Initialize metrics
	m := metrics.NewMetrics()
	logger.Info("Metrics initialized")

	// Initialize checkpoint store (Redis)
	checkpoints, err := store.NewRedisCheckpointStore(
		cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("Failed to initialize checkpoint store", zap.Error(err))
	}
	logger.Info("Checkpoint store initialized")

	// Initialize lease store (Redis)
	leaseStore, err := store.NewRedisLeaseStore(
		cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("Failed to initialize lease store", zap.Error(err))
	}
	logger.Info("Lease store initialized")

	// Initialize result store (Mongo)
	results, err := store.NewMongoResultStore(
		cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, cfg.Mongo.CappedSize, logger)
	if err != nil {
		logger.Fatal("Failed to initialize result store", zap.Error(err))
	}
	logger.Info("Result store initialized")

	// Initialize archive store (Postgres), optional
	var archiveStore store.ArchiveStore
	if cfg.Archive.Enabled {
		pg, err := store.NewPostgresArchiveStore(
			cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Database,
			cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.MaxConns)
		if err != nil {
			logger.Fatal("Failed to initialize archive store", zap.Error(err))
		}
		archiveStore = pg
		logger.Info("Archive store initialized")
	}

	// Initialize notification queue
	notify, err := queue.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize queue", zap.Error(err))
	}
	logger.Info("Queue initialized", zap.String("backend", cfg.Queue.Backend))

	// Initialize content source
	contentSrc := source.NewHTTPSource(cfg.Source.BaseURL, cfg.Source.Timeout, logger)

	// Initialize services
	owner := fmt.Sprintf("%s-%s", cfg.Reader.Actor, uuid.New().String()[:8])
	groupCache := store.NewInMemoryCache(cfg.Reader.GroupCacheSize)

	leases := service.NewLeaseService(leaseStore, owner, logger)
	planner := service.NewPlannerService(checkpoints, contentSrc, cfg.Reader.DefaultLimit, logger)
	resolver := service.NewResolverService(contentSrc, groupCache,
		cfg.Reader.GroupCacheTTL, cfg.Reader.MinCopyCount, logger)
	selector := service.NewSelectorService(contentSrc,
		cfg.Reader.ShiftPart, cfg.Reader.MinDonorScore, cfg.Reader.MaxDonorScore, logger)
	worker := service.NewWorkerService(planner, resolver, selector, leases,
		checkpoints, results, notify, m, logger)
	dispatcher := service.NewDispatcherService(notify, worker, leases, m, logger)

	var archiver *service.ArchiveService
	if archiveStore != nil {
		archiver = service.NewArchiveService(results, archiveStore,
			cfg.Archive.Interval, cfg.Archive.Lookback, cfg.Archive.BatchSize, m, logger)
		archiver.Start()
	}

	logger.Info("All services initialized", zap.String("owner", owner))

	// Start metrics server
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, promhttp.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			logger.Info("Starting metrics server", zap.String("address", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	// Start health check server
	healthChecker := health.NewHealthChecker(checkpoints, leaseStore, results, archiveStore, logger)
	go func() {
		if err := health.StartHealthServer(healthChecker, cfg.Health.Port, logger); err != nil {
			logger.Error("Health check server failed", zap.Error(err))
		}
	}()

	// Start the dispatcher
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := dispatcher.Start(ctx); err != nil {
		logger.Fatal("Failed to start dispatcher", zap.Error(err))
	}

	// Seed attention requests for statically configured partitions so they
	// get a first pass without waiting for an external producer.
	for _, partition := range cfg.Reader.Partitions {
		if err := notify.RequestAttention(ctx, partition); err != nil {
			logger.Warn("Failed to request attention for partition",
				zap.String("partition", partition), zap.Error(err))
		}
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal", zap.String("signal", sig.String()))

	// Graceful shutdown: stop accepting dispatches, let live workers reach
	// their STOPPING transition.
	logger.Info("Shutting down gracefully")
	cancel()
	dispatcher.Wait()

	if archiver != nil {
		archiver.Stop()
	}

	// Close stores
	if err := notify.Close(); err != nil {
		logger.Warn("Failed to close queue", zap.Error(err))
	}
	checkpoints.Close()
	leaseStore.Close()
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := results.Close(closeCtx); err != nil {
		logger.Warn("Failed to close result store", zap.Error(err))
	}
	if pg, ok := archiveStore.(*store.PostgresArchiveStore); ok && pg != nil {
		pg.Close()
	}

	logger.Info("Reader service stopped")
}

// buildLogger creates a zap logger from the logging configuration.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = level

	return zapCfg.Build()
}
