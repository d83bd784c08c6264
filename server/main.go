package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketly/api/routes"
	"ticketly/docs"
	"ticketly/internal/events"
	"ticketly/internal/notifications"
	"ticketly/internal/releases"
	"ticketly/internal/seats"
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/database"
	"ticketly/internal/shared/middleware"
	"ticketly/pkg/logger"
	"ticketly/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title                      Ticketly API
// @version                    1.0
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			logger.GetDefault().Info("Production environment: using container environment variables")
		} else {
			logger.GetDefault().Info("No .env file found, using system environment variables")
		}
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// the logger picks its handler from the gin mode
	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)
	appLogger.Info("starting ticketly",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	if err := events.RegisterValidators(); err != nil {
		appLogger.Error("failed to register validators", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Lua scripts for atomic seat holds
	preloadCtx, preloadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := seats.NewHoldStore(db.Redis, cfg.Redis.SeatHoldTTL).PreloadScripts(preloadCtx); err != nil {
		appLogger.Warn("failed to preload hold scripts, loading on first use", slog.Any("error", err))
	}
	preloadCancel()

	publisher := newPublisher(cfg, appLogger)
	defer publisher.Close()

	deps := routes.Dependencies{
		Config:    cfg,
		DB:        db,
		Publisher: publisher,
	}

	var queueServer *asynq.Server
	if cfg.Queue.Enabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		queueClient := asynq.NewClient(redisOpt)
		defer queueClient.Close()
		deps.Releases = releases.NewScheduler(queueClient)

		queueServer = releases.NewServer(redisOpt, cfg.Queue)
		if err := queueServer.Start(releases.NewServeMux(releases.NewHandler(publisher))); err != nil {
			appLogger.Error("failed to start release worker", slog.Any("error", err))
			os.Exit(1)
		}
		appLogger.Info("release worker started", slog.Int("concurrency", cfg.Queue.Concurrency))
	} else {
		appLogger.Info("task queue disabled, ticket releases will not be scheduled")
	}

	if cfg.RateLimit.Enabled {
		deps.RateLimiter = ratelimit.NewRateLimiter(db.Redis, cfg.RateLimit)
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	}

	appRouter := routes.NewRouter(deps)
	engine := setupEngine(cfg, appRouter, deps.RateLimiter, appLogger)

	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()
	statusJob := events.NewStatusJob(appRouter.EventService(), cfg.Jobs.StatusInterval)
	statusJob.Start(jobCtx)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.Bool("kafka", cfg.Kafka.Enabled),
			slog.Bool("queue", cfg.Queue.Enabled),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	statusJob.Stop()
	if queueServer != nil {
		queueServer.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// newPublisher falls back to logging messages when Kafka is off or unreachable
func newPublisher(cfg *config.Config, appLogger *logger.Logger) notifications.Publisher {
	if !cfg.Kafka.Enabled {
		return notifications.NewLogPublisher()
	}
	publisher, err := notifications.NewKafkaPublisher(notifications.ProducerConfigFrom(cfg.Kafka))
	if err != nil {
		appLogger.Error("failed to create Kafka producer, logging messages instead", slog.Any("error", err))
		return notifications.NewLogPublisher()
	}
	appLogger.Info("Kafka producer ready", slog.Any("brokers", cfg.Kafka.Brokers))
	return publisher
}

func setupEngine(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	docs.SwaggerInfo.BasePath = cfg.GetAPIBasePath()
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	appRouter.SetupRoutes(engine)
	return engine
}
