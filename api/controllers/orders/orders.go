package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fooddash-backend/api/middleware"
	"github.com/angelmondragon/fooddash-backend/api/responses"
	"github.com/angelmondragon/fooddash-backend/api/validators"
	internalorders "github.com/angelmondragon/fooddash-backend/internal/orders"
	"github.com/angelmondragon/fooddash-backend/internal/pricing"
	"github.com/angelmondragon/fooddash-backend/internal/tracking"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	"github.com/angelmondragon/fooddash-backend/pkg/pagination"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

// Service is the order surface used by the HTTP layer.
type Service interface {
	Assemble(ctx context.Context, input internalorders.AssembleInput) (*internalorders.OrderDTO, error)
	Get(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error)
	ListAll(ctx context.Context, actor internalorders.Actor, filter internalorders.ListFilter, params pagination.Params) (*internalorders.OrderList, error)
	ListPending(ctx context.Context, actor internalorders.Actor, params pagination.Params) (*internalorders.OrderList, error)
	ListMine(ctx context.Context, actor internalorders.Actor, params pagination.Params) (*internalorders.OrderList, error)
	Accept(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error)
	Transition(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, next enums.DeliveryStatus) (*internalorders.OrderDTO, error)
	Patch(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID, input internalorders.PatchInput) (*internalorders.OrderDTO, error)
	Delete(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) error
	Route(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.RouteInfo, error)
}

// LocationBroadcaster relays rider positions.
type LocationBroadcaster interface {
	Broadcast(ctx context.Context, riderID, orderID uuid.UUID, at types.Coordinates) (*tracking.LocationUpdate, error)
}

type orderLineRequest struct {
	Product     uuid.UUID   `json:"product" validate:"required"`
	Quantity    int         `json:"quantity" validate:"required,min=1,max=99"`
	MenuOptions []uuid.UUID `json:"menuOptions" validate:"max=50"`
}

type createOrderRequest struct {
	Customer        *uuid.UUID         `json:"customer,omitempty"`
	Store           uuid.UUID          `json:"store" validate:"required"`
	Products        []orderLineRequest `json:"products" validate:"dive"`
	PaymentMethodID uuid.UUID          `json:"paymentMethodId" validate:"required"`
	Distance        *decimal.Decimal   `json:"distance,omitempty"`
	Notes           *string            `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// toInput resolves the ordering customer. Customers always order for
// themselves; an admin may place an order on behalf of someone else.
func (r createOrderRequest) toInput(actor internalorders.Actor) (internalorders.AssembleInput, error) {
	customerID := actor.UserID
	if r.Customer != nil && *r.Customer != actor.UserID {
		if actor.Role != enums.UserRoleAdmin {
			return internalorders.AssembleInput{}, pkgerrors.New(pkgerrors.CodeForbidden, "cannot place an order for another customer")
		}
		customerID = *r.Customer
	}

	lines := make([]pricing.LineRequest, 0, len(r.Products))
	for _, line := range r.Products {
		lines = append(lines, pricing.LineRequest{
			ProductID: line.Product,
			Quantity:  line.Quantity,
			OptionIDs: line.MenuOptions,
		})
	}
	return internalorders.AssembleInput{
		CustomerID:      customerID,
		StoreID:         r.Store,
		Lines:           lines,
		PaymentMethodID: r.PaymentMethodID,
		DistanceKm:      r.Distance,
		Notes:           r.Notes,
	}, nil
}

type locationRequest struct {
	Latitude  *float64 `json:"lat" validate:"required"`
	Longitude *float64 `json:"lng" validate:"required"`
}

func actorFrom(r *http.Request) (internalorders.Actor, error) {
	userID, role, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		return internalorders.Actor{}, err
	}
	return internalorders.Actor{UserID: userID, Role: role}, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// Create assembles and persists an order priced from the live catalog.
func Create(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput(actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Assemble(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// List pages through every order, optionally filtered by ?status=. Admin only.
func List(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter internalorders.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseDeliveryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		list, err := svc.ListAll(r.Context(), actor, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Pending lists orders waiting for a rider.
func Pending(svc Service, logg *logger.Logger) http.HandlerFunc {
	return listWith(svc, logg, Service.ListPending)
}

// Mine lists the caller's orders: placed ones for customers, assigned ones
// for riders.
func Mine(svc Service, logg *logger.Logger) http.HandlerFunc {
	return listWith(svc, logg, Service.ListMine)
}

type listFunc func(Service, context.Context, internalorders.Actor, pagination.Params) (*internalorders.OrderList, error)

func listWith(svc Service, logg *logger.Logger, list listFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := list(svc, r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func Detail(svc Service, logg *logger.Logger) http.HandlerFunc {
	return withOrder(svc, logg, func(w http.ResponseWriter, r *http.Request, actor internalorders.Actor, orderID uuid.UUID) {
		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	})
}

// Accept assigns the order to the calling rider.
func Accept(svc Service, logg *logger.Logger) http.HandlerFunc {
	return withOrder(svc, logg, func(w http.ResponseWriter, r *http.Request, actor internalorders.Actor, orderID uuid.UUID) {
		order, err := svc.Accept(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	})
}

// Update handles PUT /orders/{orderId}. A body carrying "status" is a state
// machine transition and may not carry anything else; any other body is a
// partial update of the editable fields.
func Update(svc Service, logg *logger.Logger) http.HandlerFunc {
	return withOrder(svc, logg, func(w http.ResponseWriter, r *http.Request, actor internalorders.Actor, orderID uuid.UUID) {
		payload, err := validators.ReadJSONBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(payload, &fields); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body must be an object"))
			return
		}
		if len(fields) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update"))
			return
		}

		if raw, ok := fields["status"]; ok {
			if len(fields) > 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "status cannot be combined with other fields"))
				return
			}
			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status must be a string"))
				return
			}
			next, err := enums.ParseDeliveryStatus(value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery status"))
				return
			}
			order, err := svc.Transition(r.Context(), actor, orderID, next)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, order)
			return
		}

		input, err := patchInput(fields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Patch(r.Context(), actor, orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	})
}

func patchInput(fields map[string]json.RawMessage) (internalorders.PatchInput, error) {
	input := internalorders.PatchInput{Fields: make([]string, 0, len(fields))}
	for key := range fields {
		input.Fields = append(input.Fields, key)
	}
	sort.Strings(input.Fields)

	if raw, ok := fields["notes"]; ok {
		var notes string
		if err := json.Unmarshal(raw, &notes); err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "notes must be a string")
		}
		notes = validators.SanitizeString(notes, 500)
		input.Notes = &notes
	}
	if raw, ok := fields["paymentMethodId"]; ok {
		var id uuid.UUID
		if err := json.Unmarshal(raw, &id); err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "paymentMethodId must be a uuid")
		}
		input.PaymentMethodID = &id
	}
	return input, nil
}

func Delete(svc Service, logg *logger.Logger) http.HandlerFunc {
	return withOrder(svc, logg, func(w http.ResponseWriter, r *http.Request, actor internalorders.Actor, orderID uuid.UUID) {
		if err := svc.Delete(r.Context(), actor, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// Route returns driving directions between the order's store and customer.
func Route(svc Service, logg *logger.Logger) http.HandlerFunc {
	return withOrder(svc, logg, func(w http.ResponseWriter, r *http.Request, actor internalorders.Actor, orderID uuid.UUID) {
		route, err := svc.Route(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, route)
	})
}

// Location relays the assigned rider's position. Responds 202 since delivery
// to subscribers is not confirmed. A nil broadcaster means no tracking topic
// is configured.
func Location(broadcaster LocationBroadcaster, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if broadcaster == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "rider tracking is not configured"))
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload locationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		update, err := broadcaster.Broadcast(r.Context(), actor.UserID, orderID, types.Coordinates{
			Latitude:  *payload.Latitude,
			Longitude: *payload.Longitude,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, update)
	}
}

type orderHandler func(w http.ResponseWriter, r *http.Request, actor internalorders.Actor, orderID uuid.UUID)

func withOrder(svc Service, logg *logger.Logger, next orderHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		next(w, r, actor, orderID)
	}
}
