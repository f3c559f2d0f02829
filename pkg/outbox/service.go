package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

// CurrentVersion is the envelope version written by Emit when none is given.
const CurrentVersion = 1

// DomainEvent is a state change to publish once the surrounding transaction
// commits.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

type inserter interface {
	Insert(tx *gorm.DB, event models.OutboxEvent) error
}

type Service struct {
	repo inserter
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg, now: time.Now}
}

// Emit writes event to the outbox inside tx, so it is only published if the
// caller's transaction commits.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errTxRequired
	}
	row, eventID, err := event.seal(s.now().UTC())
	if err != nil {
		return err
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"event_id":       eventID,
			"event_type":     row.EventType,
			"aggregate_type": row.AggregateType,
			"aggregate_id":   row.AggregateID.String(),
		}), "outbox.event.queued")
	}
	return nil
}

// seal wraps the event data in a versioned envelope and builds the row.
func (e DomainEvent) seal(now time.Time) (models.OutboxEvent, string, error) {
	if !e.EventType.IsValid() {
		return models.OutboxEvent{}, "", fmt.Errorf("unknown outbox event type %q", e.EventType)
	}
	if !e.AggregateType.IsValid() {
		return models.OutboxEvent{}, "", fmt.Errorf("unknown outbox aggregate type %q", e.AggregateType)
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return models.OutboxEvent{}, "", fmt.Errorf("encode %s data: %w", e.EventType, err)
	}

	env := PayloadEnvelope{
		Version:    e.Version,
		EventID:    uuid.NewString(),
		OccurredAt: e.OccurredAt,
		Actor:      e.Actor,
		Data:       data,
	}
	if env.Version == 0 {
		env.Version = CurrentVersion
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = now
	}
	body, err := json.Marshal(env)
	if err != nil {
		return models.OutboxEvent{}, "", fmt.Errorf("encode %s envelope: %w", e.EventType, err)
	}

	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Payload:       json.RawMessage(body),
	}, env.EventID, nil
}
