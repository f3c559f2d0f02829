package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/fooddash-backend/pkg/config"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	pkgmetrics "github.com/angelmondragon/fooddash-backend/pkg/metrics"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	Bury(tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, failedAt time.Time) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherMetrics interface {
	ObserveBatch(elapsed time.Duration)
	IncPublished(eventType string)
	IncFailed(eventType string)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	DLQRepository    dlqRepository
	Metrics          publisherMetrics
	PublisherFactory publisherFactory
}

func (p ServiceParams) validate() error {
	required := []struct {
		name    string
		missing bool
	}{
		{"config", p.Config == nil},
		{"logger", p.Logger == nil},
		{"database client", p.DB == nil},
		{"pubsub client", p.PubSub == nil},
		{"outbox repository", p.Repository == nil},
		{"event registry", p.Registry == nil},
		{"dlq repository", p.DLQRepository == nil},
	}
	for _, dep := range required {
		if dep.missing {
			return fmt.Errorf("outbox publisher: %s is required", dep.name)
		}
	}
	return nil
}

// Service drains outbox_events to Pub/Sub. Delivery is at least once; each
// message carries the order id as its ordering key.
type Service struct {
	logg             *logger.Logger
	db               dbClient
	pubsub           pubSubClient
	repo             outboxRepository
	registry         registryResolver
	dlq              dlqRepository
	metrics          publisherMetrics
	publishers       *topicPublishers
	publisherFactory publisherFactory
	batchSize        int
	maxAttempts      int
	pollInterval     time.Duration
	now              func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	outboxCfg := params.Config.Outbox

	s := &Service{
		logg:             params.Logger,
		db:               params.DB,
		pubsub:           params.PubSub,
		repo:             params.Repository,
		registry:         params.Registry,
		dlq:              params.DLQRepository,
		metrics:          params.Metrics,
		publisherFactory: params.PublisherFactory,
		batchSize:        positiveOr(outboxCfg.BatchSize, defaultBatchSize),
		maxAttempts:      positiveOr(outboxCfg.MaxAttempts, defaultMaxAttempts),
		pollInterval:     time.Duration(positiveOr(outboxCfg.PollIntervalMS, defaultPollMs)) * time.Millisecond,
		now:              time.Now,
	}
	if s.metrics == nil {
		s.metrics = (*pkgmetrics.PublisherMetrics)(nil)
	}
	if s.publisherFactory == nil {
		s.publishers = newTopicPublishers(params.PubSub)
		s.publisherFactory = s.publishers.get
	}
	return s, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Close flushes and stops any topic publishers the service opened.
func (s *Service) Close() {
	if s.publishers != nil {
		s.publishers.stop()
	}
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// the next; an empty one waits a poll interval, and a failed one backs off.
func (s *Service) Run(ctx context.Context) error {
	for name, ping := range map[string]func(context.Context) error{"database": s.db.Ping, "pubsub": s.pubsub.Ping} {
		if err := ping(ctx); err != nil {
			return fmt.Errorf("%s ping: %w", name, err)
		}
	}

	backoff := s.pollInterval
	for ctx.Err() == nil {
		processed, err := s.processBatch(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox.batch.failed", err)
			backoff = nextBackoff(backoff, s.pollInterval, maxBackoff)
			wait = withJitter(backoff)
		case processed:
			backoff = s.pollInterval
			continue
		default:
			backoff = s.pollInterval
			wait = withJitter(s.pollInterval)
		}
		if err := sleepCtx(ctx, wait); err != nil {
			break
		}
	}
	s.logg.Info(ctx, "outbox.publisher.stopped")
	return ctx.Err()
}

// processBatch publishes one page of pending rows inside a transaction and
// reports whether the page held anything.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	started := s.now()
	var processed bool
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil || len(events) == 0 {
			return err
		}
		processed = true

		// Once an order's event fails, its later events wait for the next
		// poll so subscribers never see them out of order.
		held := make(map[uuid.UUID]bool)
		for _, event := range events {
			if held[event.AggregateID] {
				continue
			}
			ok, err := s.dispatch(ctx, tx, event)
			if err != nil {
				return err
			}
			if !ok {
				held[event.AggregateID] = true
			}
		}
		return nil
	})
	if processed {
		s.metrics.ObserveBatch(s.now().Sub(started))
	}
	return processed, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var errNilPublishResult = errors.New("publish result is nil")
