package orders

import (
	"context"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/fooddash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Get returns an order visible to actor: its customer, its rider, any rider
// while it is still open for acceptance, or an administrator.
func (s *Service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not visible to caller")
	}
	return FromModel(order), nil
}

// ListAll pages through every order. Administrators only.
func (s *Service) ListAll(ctx context.Context, actor Actor, filter ListFilter, params pagination.Params) (*OrderList, error) {
	if !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	return s.list(ctx, filter, params)
}

// ListPending pages through pending orders that no rider has accepted yet.
func (s *Service) ListPending(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error) {
	if actor.Role != enums.UserRoleRider && !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "rider role required")
	}
	return s.list(ctx, ListFilter{PendingUnassigned: true}, params)
}

// ListMine pages through the caller's own orders: placed ones for customers,
// assigned ones for riders.
func (s *Service) ListMine(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID := actor.UserID
	filter := ListFilter{CustomerID: &userID}
	if actor.Role == enums.UserRoleRider {
		filter = ListFilter{RiderID: &userID}
	}
	return s.list(ctx, filter, params)
}

// Delete removes a pending or cancelled order on behalf of its customer or an
// administrator.
func (s *Service) Delete(ctx context.Context, actor Actor, orderID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "order", "load order")
		}
		if !actor.isAdmin() && order.CustomerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
		}
		status := order.Delivery.Status
		if status != enums.DeliveryStatusPending && status != enums.DeliveryStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending or cancelled orders can be deleted").
				WithDetails(map[string]any{"status": status})
		}
		if err := repo.Delete(ctx, order.ID); err != nil {
			return notFoundOr(err, "order", "delete order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDeleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(actor),
			Data: payloads.OrderDeletedEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				DeletedBy:  actor.UserID,
			},
		})
	})
	return asTyped(err, "delete order")
}

func (s *Service) list(ctx context.Context, filter ListFilter, params pagination.Params) (*OrderList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &OrderList{Orders: fromModels(rows), NextCursor: next}, nil
}

func (s *Service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order", "load order")
	}
	return order, nil
}

func canView(actor Actor, order *models.Order) bool {
	switch {
	case actor.isAdmin():
		return true
	case order.CustomerID == actor.UserID:
		return true
	case actor.Role == enums.UserRoleRider:
		if order.IsAssignedTo(actor.UserID) {
			return true
		}
		return order.Delivery.Status == enums.DeliveryStatusPending && order.Delivery.RiderID == nil
	}
	return false
}
