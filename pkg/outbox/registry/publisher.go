// Package registry routes outbox rows to their Pub/Sub topic and decodes
// their typed payloads.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/pkg/config"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox/payloads"
)

type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() any
}

type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError marks a row that will never publish; Reason becomes the
// dead-letter reason.
type NonRetryableError struct {
	Err    error
	Reason enums.OutboxDLQErrorReason
}

func NewNonRetryableError(err error, reason enums.OutboxDLQErrorReason) NonRetryableError {
	return NonRetryableError{Err: err, Reason: reason}
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable: " + string(e.Reason)
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error { return e.Err }

var orderPayloads = map[enums.OutboxEventType]func() any{
	enums.EventOrderCreated:       func() any { return &payloads.OrderCreatedEvent{} },
	enums.EventOrderStatusChanged: func() any { return &payloads.OrderStatusChangedEvent{} },
	enums.EventOrderCancelled:     func() any { return &payloads.OrderCancelledEvent{} },
	enums.EventOrderDeleted:       func() any { return &payloads.OrderDeletedEvent{} },
}

// NewEventRegistry routes every order event to cfg.OrdersTopic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.OrdersTopic == "" {
		return nil, errors.New("registry: orders topic is required")
	}
	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor, len(orderPayloads))}
	for eventType, factory := range orderPayloads {
		reg.entries[eventType] = EventDescriptor{
			EventType:      eventType,
			AggregateType:  enums.AggregateOrder,
			Topic:          cfg.OrdersTopic,
			PayloadFactory: factory,
		}
	}
	return reg, nil
}

// Resolve checks the row's routing columns and decodes its payload. Every
// error it returns is a NonRetryableError.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType), enums.OutboxDLQReasonUnroutable)
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType), enums.OutboxDLQReasonUnroutable)
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(errors.New("missing aggregate_id"), enums.OutboxDLQReasonBadPayload)
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("%s: %w", event.EventType, err), enums.OutboxDLQReasonBadPayload)
	}
	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err), enums.OutboxDLQReasonBadPayload)
	}
	return &ResolvedEvent{Descriptor: desc, Envelope: envelope, Payload: payload}, nil
}
