package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/scholarship-service/internal/cache"
	"github.com/SAP-F-2025/scholarship-service/internal/config"
	"github.com/SAP-F-2025/scholarship-service/internal/events"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/scholarship-service/internal/services"
	"github.com/SAP-F-2025/scholarship-service/internal/validator"
	"github.com/SAP-F-2025/scholarship-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, continuing without it", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:              db,
		RedisClient:     redisClient,
		CatalogCacheTTL: cfg.Matching.CatalogCacheTTL,
		Logger:          logger,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize event publishing
	var rawPublisher message.Publisher
	var publisher events.EventPublisher = events.NoopEventPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		rawPublisher, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, logger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
		publisher = events.NewMessagePublisher(rawPublisher, logger)
	}

	// Initialize services
	matchConfig := services.DefaultMatchServiceConfig()
	matchConfig.Workers = cfg.Matching.Workers
	matchConfig.RefreshTimeout = cfg.Matching.RefreshTimeout

	serviceManager := services.NewServiceManager(
		repoManager.GetRepository(),
		logger,
		validator.New(),
		publisher,
		cache.NewStudentLocker(redisClient, cfg.Matching.LockTTL),
		services.ServiceManagerConfig{Match: matchConfig},
	)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(cfg.Kafka.Brokers) == 0 {
		// Without a broker the worker runs a single catalog-wide refresh
		logger.Warn("Kafka not configured, running one full refresh")
		summary, err := serviceManager.Match().RefreshAll(ctx)
		if err != nil {
			logger.Error("Full refresh failed", "error", err)
		} else {
			logger.Info("Full refresh finished", "processed", summary.Processed, "failed", summary.Failed)
		}
	} else {
		runConsumer(ctx, cfg, logger, rawPublisher, serviceManager.Match())
	}

	logger.Info("Shutting down worker...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := serviceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	if err := repoManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown repositories", "error", err)
	}

	logger.Info("Worker exited")
}

// runConsumer blocks until ctx is cancelled or the router stops
func runConsumer(ctx context.Context, cfg *config.Config, logger *slog.Logger, poison message.Publisher, refresher events.MatchRefresher) {
	subscriber, err := events.NewKafkaSubscriber(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, logger)
	if err != nil {
		log.Fatalf("Failed to initialize event subscriber: %v", err)
	}

	consumer, err := events.NewConsumer(events.ConsumerConfig{
		Subscriber:      subscriber,
		PoisonPublisher: poison,
		Refresher:       refresher,
		Logger:          logger,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		RefreshTimeout:  cfg.Matching.RefreshTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize event consumer: %v", err)
	}

	logger.Info("Starting worker", "environment", cfg.Environment, "brokers", cfg.Kafka.Brokers)
	if err := consumer.Run(ctx); err != nil {
		logger.Error("Event consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		logger.Error("Failed to close event consumer", "error", err)
	}
	if err := subscriber.Close(); err != nil {
		logger.Error("Failed to close event subscriber", "error", err)
	}
}
