// Package tracking relays rider positions for an active delivery. Updates are
// fire-and-forget: nothing is stored and a missed update is simply lost.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Publisher sends one location message keyed by order id.
type Publisher interface {
	Publish(ctx context.Context, orderingKey string, data []byte, attrs map[string]string)
}

type orderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// LocationUpdate is the broadcast payload.
type LocationUpdate struct {
	OrderID   uuid.UUID `json:"orderId"`
	RiderID   uuid.UUID `json:"riderId"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	At        time.Time `json:"at"`
}

// Service validates and forwards rider location updates.
type Service struct {
	orders    orderLoader
	publisher Publisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the tracking relay.
func NewService(orders orderLoader, publisher Publisher, logg *logger.Logger) (*Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("location publisher required")
	}
	return &Service{orders: orders, publisher: publisher, logg: logg, now: time.Now}, nil
}

// Broadcast publishes the rider's position for an order that rider is
// currently delivering.
func (s *Service) Broadcast(ctx context.Context, riderID, orderID uuid.UUID, at types.Coordinates) (*LocationUpdate, error) {
	if riderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !at.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coordinates").
			WithDetails(map[string]any{"lat": at.Latitude, "lng": at.Longitude})
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if !order.IsAssignedTo(riderID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to caller")
	}
	status := order.Delivery.Status
	if status != enums.DeliveryStatusDispatched && status != enums.DeliveryStatusOnTheWay {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not being delivered").
			WithDetails(map[string]any{"status": status})
	}

	update := &LocationUpdate{
		OrderID:   order.ID,
		RiderID:   riderID,
		Latitude:  at.Latitude,
		Longitude: at.Longitude,
		At:        s.now().UTC(),
	}
	data, err := json.Marshal(update)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode location")
	}
	s.publisher.Publish(ctx, order.ID.String(), data, map[string]string{
		"order_id": order.ID.String(),
		"rider_id": riderID.String(),
	})
	if s.logg != nil {
		s.logg.Debug(s.logg.WithOrderID(ctx, order.ID.String()), "tracking.location.published")
	}
	return update, nil
}
