package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/regionpulse/regionpulse/pkg/api"
	"github.com/regionpulse/regionpulse/pkg/audit"
	"github.com/regionpulse/regionpulse/pkg/config"
	"github.com/regionpulse/regionpulse/pkg/monitor"
	"github.com/regionpulse/regionpulse/pkg/observability"
	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/upstream"
)

const version = "1.0.0"

func main() {
	port := flag.String("port", "", "Port to listen on (overrides REGIONPULSE_PORT)")
	adjacencyPath := flag.String("adjacency", "", "Path to the region adjacency YAML (overrides REGIONPULSE_ADJACENCY_PATH)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *adjacencyPath != "" {
		cfg.Region.AdjacencyPath = *adjacencyPath
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, nil)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audit event store
	var auditDB *sql.DB
	var auditStore *audit.Store
	auditLog := audit.Logger(audit.NopLogger{})
	if cfg.Audit.Driver != "" {
		auditDB, err = sql.Open(cfg.Audit.Driver, cfg.Audit.DSN)
		if err != nil {
			logger.WithError(err).Error("failed to open audit database")
			os.Exit(1)
		}
		defer auditDB.Close()

		auditStore, err = audit.NewStore(auditDB, cfg.Audit.Driver)
		if err != nil {
			logger.WithError(err).Error("failed to initialize audit store")
			os.Exit(1)
		}
		auditLog = auditStore
		logger.WithField("driver", cfg.Audit.Driver).Info("audit store initialized")
	}

	// Upstream response cache, optionally backed by Redis
	var redisClient *redis.Client
	if cfg.Upstream.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Upstream.RedisAddr,
			DB:   cfg.Upstream.RedisDB,
		})
		defer redisClient.Close()
	}
	cache := upstream.NewResponseCache(cfg.Upstream.CacheSize, cfg.Upstream.CacheTTL, redisClient)
	if metrics != nil {
		cache.Instrument(
			func(tier string) { metrics.CacheHitsTotal.WithLabelValues(tier).Inc() },
			func() { metrics.CacheMissesTotal.Inc() },
		)
	}

	dataClient := upstream.NewClient(cfg.Upstream.DataURL, cfg.Upstream.Timeout, cache)
	if metrics != nil {
		dataClient.Instrument(func(target, outcome string) {
			metrics.UpstreamRequestsTotal.WithLabelValues(target, outcome).Inc()
		})
	}

	var forecastClient upstream.ForecastProvider
	if cfg.Upstream.ForecastURL != "" {
		fc := upstream.NewForecastClient(cfg.Upstream.ForecastURL, cfg.Upstream.Timeout)
		if metrics != nil {
			fc.Instrument(func(target, outcome string) {
				metrics.UpstreamRequestsTotal.WithLabelValues(target, outcome).Inc()
			})
		}
		forecastClient = fc
	}

	// Region adjacency topology with live reload
	var adjacency *region.Adjacency
	if cfg.Region.AdjacencyPath != "" {
		adjacency, err = region.LoadAdjacency(cfg.Region.AdjacencyPath)
		if err != nil {
			logger.WithError(err).Error("failed to load adjacency data")
			os.Exit(1)
		}
		go func() {
			if err := adjacency.Watch(ctx, func(err error) {
				logger.WithError(err).Warn("adjacency reload failed")
			}); err != nil {
				logger.WithError(err).Warn("adjacency watcher stopped")
			}
		}()
		logger.WithField("path", cfg.Region.AdjacencyPath).Info("adjacency data loaded")
	} else {
		logger.Warn("no adjacency data configured, spatial statistics use uniform weights")
	}

	// Monitoring job orchestrator
	orch := monitor.NewOrchestrator(ctx, monitor.Config{
		Workers:            cfg.Monitor.Workers,
		JobTimeout:         cfg.Monitor.JobTimeout,
		Retention:          cfg.Monitor.Retention,
		MaxJobs:            cfg.Monitor.MaxJobs,
		DefaultRecordLimit: cfg.Monitor.DefaultRecordLimit,
	}, dataClient, adjacency, auditLog, logger, metrics)

	health := observability.NewHealthChecker(auditDB, redisClient, version)

	server := api.NewServer(api.Options{
		Data:               dataClient,
		Forecast:           forecastClient,
		Adjacency:          adjacency,
		Orchestrator:       orch,
		AuditStore:         auditStore,
		Logger:             logger,
		Metrics:            metrics,
		Health:             health,
		DefaultRecordLimit: cfg.Monitor.DefaultRecordLimit,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("regionpulse analytics server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http server shutdown incomplete")
	}
	if err := orch.Shutdown(cfg.Server.ShutdownTimeout); err != nil {
		logger.WithError(err).Warn("orchestrator shutdown incomplete")
	}
	logger.Info("shutdown complete")
}
