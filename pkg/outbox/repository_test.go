package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox/payloads"
)

func openOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`).Error)
	require.NoError(t, conn.Exec(`CREATE TABLE outbox_dlq (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		reason TEXT NOT NULL,
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		failed_at DATETIME
	)`).Error)
	return conn
}

func TestEmitWritesEnvelope(t *testing.T) {
	conn := openOutboxDB(t)
	repo := NewRepository(conn)
	svc := NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))

	orderID := uuid.New()
	actor := &ActorRef{UserID: uuid.New(), Role: "customer"}
	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         actor,
			Data:          payloads.OrderCreatedEvent{OrderID: orderID},
		})
	})
	require.NoError(t, err)

	rows, err := repo.ListForAggregate(nil, enums.AggregateOrder, orderID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, CurrentVersion, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, actor.UserID, envelope.Actor.UserID)

	var data payloads.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, orderID, data.OrderID)
}

func TestEmitRejectsUnknownTypesAndMissingTx(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder})
	require.Error(t, err)

	conn := openOutboxDB(t)
	err = svc.Emit(context.Background(), conn, DomainEvent{EventType: "nope", AggregateType: enums.AggregateOrder})
	require.Error(t, err)
}

func TestPublishLifecycle(t *testing.T) {
	conn := openOutboxDB(t)
	repo := NewRepository(conn)

	first := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`), CreatedAt: time.Now().Add(-time.Minute)}
	second := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventOrderCancelled, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`), CreatedAt: time.Now()}
	exhausted := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventOrderDeleted, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`), AttemptCount: 3}
	for _, e := range []models.OutboxEvent{first, second, exhausted} {
		require.NoError(t, repo.Insert(conn, e))
	}

	err := conn.Transaction(func(tx *gorm.DB) error {
		rows, err := repo.FetchUnpublishedForPublish(tx, 10, 3)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, first.ID, rows[0].ID)

		require.NoError(t, repo.MarkPublishedTx(tx, first.ID))
		require.NoError(t, repo.MarkFailedTx(tx, second.ID, errors.New("pubsub unavailable")))
		return nil
	})
	require.NoError(t, err)

	var reloaded models.OutboxEvent
	require.NoError(t, conn.First(&reloaded, "id = ?", second.ID).Error)
	assert.Equal(t, 1, reloaded.AttemptCount)
	require.NotNil(t, reloaded.LastError)
	assert.Equal(t, "pubsub unavailable", *reloaded.LastError)

	require.NoError(t, repo.MarkTerminalTx(conn, second.ID, errors.New("gave up"), 3))
	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDLQRepositoryInsertAndFind(t *testing.T) {
	conn := openOutboxDB(t)
	dlq := NewDLQRepository(conn)
	eventID := uuid.New()

	found, err := dlq.FindByEventID(context.Background(), eventID)
	require.NoError(t, err)
	assert.Nil(t, found)

	long := strings.Repeat("x", 2048)
	event := models.OutboxEvent{
		ID:            eventID,
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		AttemptCount:  3,
	}
	require.Error(t, dlq.Bury(conn, event, enums.OutboxDLQErrorReason("nope"), errors.New(long), time.Now()))
	require.NoError(t, dlq.Bury(conn, event, enums.OutboxDLQReasonMaxAttempts, errors.New(long), time.Now()))

	found, err = dlq.FindByEventID(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, found.Reason)
	require.NotNil(t, found.ErrorMessage)
	assert.Len(t, *found.ErrorMessage, maxLastErrorLen)
	assert.Equal(t, 3, found.AttemptCount)
}

func TestDeletePublishedBeforeKeepsPendingRows(t *testing.T) {
	conn := openOutboxDB(t)
	repo := NewRepository(conn)
	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	old := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	recent := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	pending := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`), CreatedAt: cutoff.AddDate(0, 0, -5)}
	for _, e := range []models.OutboxEvent{old, recent, pending} {
		require.NoError(t, repo.Insert(conn, e))
	}
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("id = ?", old.ID).Update("published_at", cutoff.Add(-time.Hour)).Error)
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("id = ?", recent.ID).Update("published_at", cutoff.Add(time.Hour)).Error)

	deleted, err := repo.DeletePublishedBefore(conn, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.OutboxEvent
	require.NoError(t, conn.Order("created_at ASC").Find(&remaining).Error)
	ids := []uuid.UUID{}
	for _, row := range remaining {
		ids = append(ids, row.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{recent.ID, pending.ID}, ids)

	_, err = repo.DeletePublishedBefore(nil, cutoff)
	assert.Error(t, err)
}

func TestSealStampsDefaults(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	row, eventID, err := DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Data:          map[string]string{"k": "v"},
	}.seal(now)
	require.NoError(t, err)

	env, err := DecodeEnvelope(row.Payload)
	require.NoError(t, err)
	assert.Equal(t, eventID, env.EventID)
	assert.Equal(t, CurrentVersion, env.Version)
	assert.True(t, env.OccurredAt.Equal(now))
	assert.NotEqual(t, uuid.Nil, row.ID)

	_, _, err = DomainEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, Data: func() {}}.seal(now)
	require.Error(t, err)
}
