package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fooddash-backend/pkg/enums"
)

// OrderCreatedEvent is emitted when checkout persists a priced order.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID       `json:"order_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	StoreID          uuid.UUID       `json:"store_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	GrandTotalAmount decimal.Decimal `json:"grand_total_amount"`
	DistanceKm       decimal.Decimal `json:"distance_km"`
}

// OrderStatusChangedEvent is emitted on every delivery status transition.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID            `json:"order_id"`
	CustomerID uuid.UUID            `json:"customer_id"`
	RiderID    *uuid.UUID           `json:"rider_id,omitempty"`
	From       enums.DeliveryStatus `json:"from"`
	To         enums.DeliveryStatus `json:"to"`
}

// OrderCancelledEvent is emitted when a customer or admin cancels.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID            `json:"order_id"`
	CustomerID  uuid.UUID            `json:"customer_id"`
	CancelledBy uuid.UUID            `json:"cancelled_by"`
	From        enums.DeliveryStatus `json:"from"`
}

// OrderDeletedEvent is emitted when a pending or cancelled order is removed.
type OrderDeletedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	DeletedBy  uuid.UUID `json:"deleted_by"`
}
