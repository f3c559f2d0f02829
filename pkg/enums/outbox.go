package enums

// OutboxAggregateType is outbox_events.aggregate_type.
type OutboxAggregateType string

const AggregateOrder OutboxAggregateType = "order"

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateOrder
}

// OutboxEventType is outbox_events.event_type. Every type is published to
// the orders topic with the order id as ordering key.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventOrderCancelled     OutboxEventType = "order_cancelled"
	EventOrderDeleted       OutboxEventType = "order_deleted"
)

var outboxEventTypes = map[OutboxEventType]struct{}{
	EventOrderCreated:       {},
	EventOrderStatusChanged: {},
	EventOrderCancelled:     {},
	EventOrderDeleted:       {},
}

func (e OutboxEventType) IsValid() bool {
	_, ok := outboxEventTypes[e]
	return ok
}
