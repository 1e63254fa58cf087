package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"github.com/SAP-F-2025/scholarship-service/internal/validator"
)

const TopicPoison = "scholarship.events.poison"

// MatchRefresher is the part of the match service driven by events
type MatchRefresher interface {
	RefreshMatches(ctx context.Context, studentProfileID uint) ([]models.MatchResult, error)
	RefreshAll(ctx context.Context) (*models.RefreshSummary, error)
}

type ConsumerConfig struct {
	Subscriber message.Subscriber
	// Optional. Messages that still fail after retries are forwarded here.
	PoisonPublisher message.Publisher
	Refresher       MatchRefresher
	Logger          *slog.Logger

	MaxRetries     int
	RetryInterval  time.Duration
	RefreshTimeout time.Duration
}

// Consumer routes inbound domain events to the match service
type Consumer struct {
	router         *message.Router
	refresher      MatchRefresher
	logger         *slog.Logger
	refreshTimeout time.Duration
}

// NewKafkaSubscriber creates a consumer-group subscriber backed by watermill-kafka
func NewKafkaSubscriber(brokers []string, consumerGroup string, logger *slog.Logger) (message.Subscriber, error) {
	saramaConfig := kafka.DefaultSaramaSubscriberConfig()

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:               brokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
			ConsumerGroup:         consumerGroup,
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}
	return subscriber, nil
}

func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	if config.Subscriber == nil {
		return nil, errors.New("subscriber is required")
	}
	if config.Refresher == nil {
		return nil, errors.New("match refresher is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = 500 * time.Millisecond
	}

	wmLogger := watermill.NewSlogLogger(config.Logger)
	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	if config.PoisonPublisher != nil {
		poisonQueue, err := middleware.PoisonQueue(config.PoisonPublisher, TopicPoison)
		if err != nil {
			return nil, fmt.Errorf("failed to create poison queue: %w", err)
		}
		router.AddMiddleware(poisonQueue)
	}
	router.AddMiddleware(
		middleware.Retry{
			MaxRetries:      config.MaxRetries,
			InitialInterval: config.RetryInterval,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)

	c := &Consumer{
		router:         router,
		refresher:      config.Refresher,
		logger:         config.Logger,
		refreshTimeout: config.RefreshTimeout,
	}

	router.AddNoPublisherHandler("refresh_on_profile_updated", TopicProfileUpdated, config.Subscriber, c.handleProfileUpdated)
	router.AddNoPublisherHandler("refresh_on_catalog_updated", TopicCatalogUpdated, config.Subscriber, c.handleCatalogUpdated)

	return c, nil
}

// Run blocks until ctx is cancelled or the router is closed
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("Event consumer starting", "topics", []string{TopicProfileUpdated, TopicCatalogUpdated})
	return c.router.Run(ctx)
}

// Running is closed once all handlers are subscribed
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

func (c *Consumer) Close() error {
	return c.router.Close()
}

func (c *Consumer) handleProfileUpdated(msg *message.Message) error {
	var data ProfileUpdatedData
	event, err := DecodeEvent(msg.Payload, &data)
	if err != nil || data.StudentProfileID == 0 {
		c.logger.Warn("Dropping malformed profile event", "message_id", msg.UUID, "error", err)
		return nil
	}

	ctx, cancel := c.handlerContext(msg)
	defer cancel()

	results, err := c.refresher.RefreshMatches(ctx, data.StudentProfileID)
	if err != nil {
		if isPermanent(err) {
			c.logger.Warn("Skipping profile event", "event_id", event.ID, "student_profile_id", data.StudentProfileID, "error", err)
			return nil
		}
		return fmt.Errorf("refresh student %d: %w", data.StudentProfileID, err)
	}

	c.logger.Info("Matches refreshed from event",
		"event_id", event.ID,
		"student_profile_id", data.StudentProfileID,
		"matches", len(results))
	return nil
}

func (c *Consumer) handleCatalogUpdated(msg *message.Message) error {
	var data CatalogUpdatedData
	event, err := DecodeEvent(msg.Payload, &data)
	if err != nil {
		c.logger.Warn("Dropping malformed catalog event", "message_id", msg.UUID, "error", err)
		return nil
	}

	ctx, cancel := c.handlerContext(msg)
	defer cancel()

	summary, err := c.refresher.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh all after scholarship %d %s: %w", data.ScholarshipID, data.Action, err)
	}

	c.logger.Info("Catalog refresh completed",
		"event_id", event.ID,
		"scholarship_id", data.ScholarshipID,
		"action", data.Action,
		"processed", summary.Processed,
		"failed", summary.Failed)
	return nil
}

func (c *Consumer) handlerContext(msg *message.Message) (context.Context, context.CancelFunc) {
	if c.refreshTimeout > 0 {
		return context.WithTimeout(msg.Context(), c.refreshTimeout)
	}
	return context.WithCancel(msg.Context())
}

// isPermanent reports errors that a redelivery cannot fix
func isPermanent(err error) bool {
	var validationErrs validator.ValidationErrors
	return repositories.IsNotFoundError(err) || errors.As(err, &validationErrs)
}
