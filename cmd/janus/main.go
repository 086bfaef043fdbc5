package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/janus/internal/api/rest"
	"github.com/fortuna/janus/internal/api/websocket"
	"github.com/fortuna/janus/internal/cache"
	"github.com/fortuna/janus/internal/config"
	"github.com/fortuna/janus/internal/ingest"
	"github.com/fortuna/janus/internal/logger"
	"github.com/fortuna/janus/internal/publisher"
	"github.com/fortuna/janus/internal/scheduler"
	"github.com/fortuna/janus/internal/service"
	"github.com/fortuna/janus/internal/shotzone"
	"github.com/fortuna/janus/internal/store"
	"github.com/fortuna/janus/internal/store/repository"
)

const (
	serviceName    = "janus"
	serviceVersion = "1.0.0"

	connectRetries    = 30
	connectRetryDelay = 2 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.IsDevelopment())
	log.WithFields(logrus.Fields{
		"service": serviceName,
		"version": serviceVersion,
		"env":     cfg.Env,
	}).Info("Starting live pick hedging service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	db, err := store.NewDatabase(ctx, cfg.AtlasDSN, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Atlas database")
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		log.WithError(err).Fatal("Failed to run database migrations")
	}
	log.Info("Database migrations applied")

	// Initialize Redis with retry logic
	redisCache := connectRedis(ctx, cfg, log)
	defer redisCache.Close()

	statsRepo := repository.NewStatsRepository(db)
	baselineRepo := repository.NewBaselineRepository(db)
	zoneTables := shotzone.NewTableCache(repository.NewShotZoneRepository(db), cfg.ZoneCacheTTL)

	hub := websocket.NewHub(log)
	wsServer := websocket.NewServer(cfg.WSPort, hub, cfg.CorsOrigins, log)

	picks := service.NewPickService(service.Dependencies{
		Baselines:   baselineRepo,
		Profiles:    statsRepo,
		Lines:       redisCache,
		Publisher:   publisher.NewRedisStreamPublisher(redisCache.Client(), cfg.HedgeStream),
		Broadcaster: hub,
		ZoneTables:  zoneTables,
	}, service.Options{
		AlertTTL:       cfg.AlertTTL,
		Workers:        cfg.EvalWorkers,
		BreakerTimeout: cfg.BreakerTimeout,
	}, log)

	var sched *scheduler.Orchestrator
	if cfg.EnableScheduler {
		sched = scheduler.NewOrchestrator(scheduler.DefaultConfig(), log)
		jobs := []scheduler.Job{
			scheduler.AlertSweepJob(cfg.AlertSweepSchedule, picks.Alerts(), log),
			scheduler.ZoneRefreshJob(cfg.ZoneRefreshSchedule, picks, log),
			scheduler.BaselineRebuildJob(cfg.BaselineRebuildSchedule, baselineRepo, log),
		}
		for _, job := range jobs {
			if err := sched.Register(job); err != nil {
				log.WithError(err).Fatal("Failed to register scheduler job")
			}
		}
		if err := sched.Start(ctx); err != nil {
			log.WithError(err).Fatal("Failed to start scheduler")
		}
	} else if err := picks.RefreshZoneTables(ctx); err != nil {
		log.WithError(err).Warn("Initial shot zone load failed")
	}

	var consumer *ingest.StreamConsumer
	if cfg.EnableStreamConsumer {
		consumer = ingest.NewStreamConsumer(redisCache.Client(), picks,
			cfg.SnapshotStream, cfg.ConsumerGroup, cfg.ConsumerID, log)
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("Stream consumer stopped")
			}
		}()
	}

	// Initialize REST API server
	var schedStatus rest.SchedulerStatus
	if sched != nil {
		schedStatus = sched
	}
	handler := rest.NewHandler(picks, schedStatus, map[string]rest.HealthChecker{
		"database": db,
		"redis":    redisCache,
	})
	if consumer != nil {
		handler.WithStream(consumer)
	}
	restServer := rest.NewServer(cfg.RESTPort, handler, cfg.CorsOrigins, log)

	go func() {
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("REST server error")
		}
	}()

	go func() {
		if err := wsServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("WebSocket server error")
		}
	}()

	log.WithFields(logrus.Fields{
		"rest_port": cfg.RESTPort,
		"ws_port":   cfg.WSPort,
	}).Info("Janus started successfully")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("REST API server shutdown error")
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("WebSocket server shutdown error")
	}

	cancel()
	if sched != nil {
		sched.Stop()
	}

	log.Info("Janus stopped")
}

// connectRedis retries until Redis answers or the attempts run out
func connectRedis(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) *cache.RedisCache {
	for i := 0; i < connectRetries; i++ {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.HedgeCacheTTL)
		if err == nil {
			log.Info("Connected to Redis")
			return redisCache
		}

		if i == connectRetries-1 {
			log.WithError(err).Fatalf("Failed to connect to Redis after %d attempts", connectRetries)
		}
		log.WithError(err).WithFields(logrus.Fields{
			"attempt": i + 1,
			"retry":   connectRetryDelay.String(),
		}).Warn("Redis connection attempt failed")
		time.Sleep(connectRetryDelay)
	}
	return nil
}
