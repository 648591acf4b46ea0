// @title           Taskflow Board API
// @version         1.0
// @description     Realtime collaborative task boards with ordered lists and tasks
// @termsOfService  http://swagger.io/terms/

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "taskflow-board-api/docs" // Swagger docs import

	"taskflow-board-api/internal/config"
	"taskflow-board-api/internal/database"
	"taskflow-board-api/internal/job"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/realtime"
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/router"
	"taskflow-board-api/internal/telemetry"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Taskflow Board API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	db, err := database.New(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := database.SafeAutoMigrate(db, logger); err != nil {
			logger.Fatal("Failed to run database migrations", zap.Error(err))
		}
	}
	isolation, err := database.IsolationLevel(cfg.Database.Isolation)
	if err != nil {
		logger.Fatal("Invalid isolation level", zap.Error(err))
	}

	m := metrics.NewWithLogger(logger)
	database.RegisterMetricsCallbacks(db, m)
	dbStatsDone := database.StartDBStatsCollector(db, m, 15*time.Second)
	collector := metrics.NewBusinessMetricsCollector(db, m, logger, cfg.Jobs.MetricsInterval)
	collector.Start()

	hub := realtime.NewHub(m, logger)
	redisClient, relay := startRelay(ctx, cfg, hub, m, logger)

	var scheduler *cron.Cron
	if cfg.Jobs.CompactionEnabled {
		scheduler, err = startCompaction(repository.NewStore(db, isolation), cfg.Jobs.CompactionSchedule, m, logger)
		if err != nil {
			logger.Fatal("Failed to schedule compaction job", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: router.Setup(router.Config{
			DB:             db,
			Isolation:      isolation,
			Redis:          redisClient,
			Logger:         logger,
			JWTSecret:      cfg.JWT.Secret,
			BasePath:       cfg.Server.BasePath,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			ServiceName:    cfg.Tracing.ServiceName,
			Metrics:        m,
			Hub:            hub,
			Relay:          relay,
			Board:          cfg.Board,
			Realtime: realtime.ConnConfig{
				SendBuffer:     cfg.Realtime.SendBuffer,
				WriteWait:      cfg.Realtime.WriteWait,
				PongWait:       cfg.Realtime.PongWait,
				MaxMessageSize: cfg.Realtime.MaxMessageSize,
			},
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Taskflow Board API listening",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s%s/swagger/index.html", cfg.Server.Port, cfg.Server.BasePath)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// stop accepting requests first, then the producers, then the stores they write to
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	collector.Stop()
	close(dbStatsDone)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// startRelay connects the hub to redis when enabled. A redis outage at
// startup leaves the instance serving its own sockets only.
func startRelay(ctx context.Context, cfg *config.Config, hub *realtime.Hub, m *metrics.Metrics, logger *zap.Logger) (*redis.Client, *realtime.RedisRelay) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	client, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, events will only reach this instance", zap.Error(err))
		return nil, nil
	}
	relay := realtime.NewRedisRelay(client, hub, realtime.RelayConfig{
		ChannelPrefix:  cfg.Redis.ChannelPrefix,
		MaxFailures:    cfg.Realtime.BreakerMaxFailures,
		OpenTimeout:    cfg.Realtime.BreakerOpenTimeout,
		ReconnectDelay: cfg.Realtime.RelayReconnectDelay,
	}, m, logger)
	go relay.Run(ctx)
	return client, relay
}

func startCompaction(store repository.Store, schedule string, m *metrics.Metrics, logger *zap.Logger) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithSeconds())
	if _, err := job.NewCompactionJob(store, m, logger).Schedule(scheduler, schedule); err != nil {
		return nil, err
	}
	scheduler.Start()
	logger.Info("Compaction job scheduled", zap.String("schedule", schedule))
	return scheduler, nil
}

// initLogger builds the JSON production logger; unknown levels fall back to info
func initLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Development = zapLevel == zapcore.DebugLevel
	cfg.Sampling = nil
	return cfg.Build()
}
