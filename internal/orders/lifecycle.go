package orders

import (
	"context"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patchable order fields. Status is deliberately absent: it only moves through
// Accept, Transition and Cancel.
const (
	fieldNotes           = "notes"
	fieldPaymentMethodID = "paymentMethodId"
	fieldStatus          = "status"
	fieldDeliveryDetails = "deliveryDetails"
)

// mutation changes a locked order in place and returns the event to emit, if
// any.
type mutation func(ctx context.Context, order *models.Order) (*outbox.DomainEvent, error)

// CanTransition reports whether actor may move order to next.
func CanTransition(actor Actor, order *models.Order, next enums.DeliveryStatus) error {
	current := order.Delivery.Status
	switch next {
	case enums.DeliveryStatusDispatched:
		if actor.Role != enums.UserRoleRider {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only riders can accept orders")
		}
		if current == enums.DeliveryStatusPending && order.Delivery.RiderID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already has a rider").
				WithDetails(map[string]any{"riderId": *order.Delivery.RiderID})
		}
	case enums.DeliveryStatusCancelled:
		if !actor.isAdmin() && order.CustomerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the customer or an administrator can cancel")
		}
	case enums.DeliveryStatusOnTheWay, enums.DeliveryStatusDelivered:
		if !actor.isAdmin() && !(actor.Role == enums.UserRoleRider && order.IsAssignedTo(actor.UserID)) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned rider or an administrator can update delivery")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported target status").
			WithDetails(map[string]any{"status": next})
	}
	if !current.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": current, "to": next})
	}
	return nil
}

// Accept assigns a pending, unassigned order to the calling rider and moves it
// to dispatched.
func (s *Service) Accept(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if actor.Role != enums.UserRoleRider {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only riders can accept orders")
	}
	return s.moveTo(ctx, actor, orderID, enums.DeliveryStatusDispatched)
}

// Transition moves an order along the delivery state machine. Dispatch is
// treated as an accept and cancellation follows the cancel rules.
func (s *Service) Transition(ctx context.Context, actor Actor, orderID uuid.UUID, next enums.DeliveryStatus) (*OrderDTO, error) {
	switch next {
	case enums.DeliveryStatusDispatched:
		return s.Accept(ctx, actor, orderID)
	case enums.DeliveryStatusCancelled:
		return s.Cancel(ctx, actor, orderID)
	case enums.DeliveryStatusPending:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "orders cannot return to pending")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status").
			WithDetails(map[string]any{"status": next})
	}
	return s.moveTo(ctx, actor, orderID, next)
}

// Cancel cancels a pending or dispatched order on behalf of its customer or an
// administrator.
func (s *Service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	return s.moveTo(ctx, actor, orderID, enums.DeliveryStatusCancelled)
}

// Patch applies a partial update of non-status fields while the order is
// still pending.
func (s *Service) Patch(ctx context.Context, actor Actor, orderID uuid.UUID, input PatchInput) (*OrderDTO, error) {
	for _, field := range input.Fields {
		switch field {
		case fieldNotes, fieldPaymentMethodID:
		case fieldStatus, fieldDeliveryDetails:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status changes must use the status transition endpoint").
				WithDetails(map[string]any{"field": field})
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "field cannot be updated").
				WithDetails(map[string]any{"field": field})
		}
	}
	if input.PaymentMethodID != nil {
		if err := s.checkPaymentMethod(ctx, *input.PaymentMethodID); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, actor, orderID, func(_ context.Context, order *models.Order) (*outbox.DomainEvent, error) {
		if !actor.isAdmin() && order.CustomerID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
		}
		if order.Delivery.Status != enums.DeliveryStatusPending {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be edited").
				WithDetails(map[string]any{"status": order.Delivery.Status})
		}
		if input.Notes != nil {
			order.Notes = input.Notes
		}
		if input.PaymentMethodID != nil {
			order.PaymentMethodID = *input.PaymentMethodID
		}
		return nil, nil
	})
}

func (s *Service) moveTo(ctx context.Context, actor Actor, orderID uuid.UUID, next enums.DeliveryStatus) (*OrderDTO, error) {
	var from enums.DeliveryStatus
	dto, err := s.mutate(ctx, actor, orderID, func(_ context.Context, order *models.Order) (*outbox.DomainEvent, error) {
		if err := CanTransition(actor, order, next); err != nil {
			return nil, err
		}
		from = order.Delivery.Status
		order.Delivery.Status = next
		if next == enums.DeliveryStatusDispatched {
			riderID := actor.UserID
			order.Delivery.RiderID = &riderID
		}
		return statusEvent(actor, order, from, next), nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(from), string(next))
	s.logInfo(ctx, "orders.status_changed", map[string]any{
		"order_id": orderID.String(),
		"from":     string(from),
		"to":       string(next),
		"actor_id": actor.UserID.String(),
	})
	return dto, nil
}

// mutate locks the order, applies fn, appends a history entry for the
// flattened diff and writes the event, all in one transaction.
func (s *Service) mutate(ctx context.Context, actor Actor, orderID uuid.UUID, fn mutation) (*OrderDTO, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "order", "load order")
		}
		before := FromModel(order)

		event, err := fn(ctx, order)
		if err != nil {
			return err
		}

		changes, err := types.Diff(before, FromModel(order), historyIgnoredPaths...)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "diff order")
		}
		if len(changes) == 0 {
			updated = order
			return nil
		}
		updater := actor.UserID
		order.UpdatedBy = &updater
		order.History = order.History.Append(types.HistoryEntry{
			Updater:   updater,
			Timestamp: s.now().UTC(),
			Changes:   changes,
		})
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
		}
		if event != nil {
			if err := s.outbox.Emit(ctx, tx, *event); err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "update order")
	}
	return FromModel(updated), nil
}

func statusEvent(actor Actor, order *models.Order, from, to enums.DeliveryStatus) *outbox.DomainEvent {
	if to == enums.DeliveryStatusCancelled {
		return &outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(actor),
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				CustomerID:  order.CustomerID,
				CancelledBy: actor.UserID,
				From:        from,
			},
		}
	}
	return &outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         buildActor(actor),
		Data: payloads.OrderStatusChangedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			RiderID:    order.Delivery.RiderID,
			From:       from,
			To:         to,
		},
	}
}
