package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"gorm.io/gorm"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox/registry"
)

// dispatch publishes a single row and records the outcome on it. ok is
// false when the row was not published, whether it will be retried or was
// dead-lettered. A non-nil error aborts the batch transaction.
func (s *Service) dispatch(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) (ok bool, err error) {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"order_id":       event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	})

	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return false, s.deadLetter(logCtx, tx, event, reasonFor(err), err)
	}
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"topic":    resolved.Descriptor.Topic,
		"event_id": resolved.Envelope.EventID,
	})

	pubErr := s.publish(ctx, event, resolved)
	if pubErr == nil {
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return false, fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.IncPublished(string(event.EventType))
		s.logg.Debug(logCtx, "outbox.event.published")
		return true, nil
	}

	s.metrics.IncFailed(string(event.EventType))
	var nonRetry registry.NonRetryableError
	switch {
	case errors.As(pubErr, &nonRetry):
		return false, s.deadLetter(logCtx, tx, event, nonRetry.Reason, pubErr)
	case event.AttemptCount+1 >= s.maxAttempts:
		return false, s.deadLetter(logCtx, tx, event, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("gave up after %d attempts: %w", event.AttemptCount+1, pubErr))
	}

	s.logg.Warn(s.logg.WithField(logCtx, "error", pubErr.Error()), "outbox.event.retry")
	if err := s.repo.MarkFailedTx(tx, event.ID, pubErr); err != nil {
		return false, fmt.Errorf("mark failed %s: %w", event.ID, err)
	}
	return false, nil
}

func reasonFor(err error) enums.OutboxDLQErrorReason {
	var nonRetry registry.NonRetryableError
	if errors.As(err, &nonRetry) && nonRetry.Reason.IsValid() {
		return nonRetry.Reason
	}
	return enums.OutboxDLQReasonUnroutable
}

// deadLetter copies the row to outbox_dlq and retires it, in tx.
func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"dlq_reason": reason,
		"error":      cause.Error(),
	}), "outbox.event.dead_lettered")

	if err := s.dlq.Bury(tx, event, reason, cause, s.now()); err != nil {
		return fmt.Errorf("bury %s: %w", event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFactory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic), enums.OutboxDLQReasonUnroutable)
	}

	key := event.AggregateID.String()
	msg := &gcppubsub.Message{
		Data:        event.Payload,
		OrderingKey: key,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   key,
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}

	ctx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(ctx, msg)
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("topic %s: %w", topic, errNilPublishResult), enums.OutboxDLQReasonUnroutable)
	}
	if _, err := result.Get(ctx); err != nil {
		// An ordered publisher refuses the key until it is resumed.
		pub.ResumePublish(key)
		return err
	}
	return nil
}
