package orders

import (
	"context"
	"errors"

	"github.com/angelmondragon/fooddash-backend/internal/fees"
	"github.com/angelmondragon/fooddash-backend/internal/pricing"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/maps"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	distanceStatusOK = "OK"

	// storedDistancePlaces matches the numeric(10,3) distance column.
	storedDistancePlaces = 3
)

// Assemble prices the requested lines, resolves the delivery distance and
// persists a pending order together with its OrderCreated event. Every step
// before the final insert is read-only, so a failure leaves nothing behind.
func (s *Service) Assemble(ctx context.Context, input AssembleInput) (result *OrderDTO, err error) {
	defer func() {
		code := ""
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
		s.metrics.ObserveAssembly(code, err)
	}()

	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyOrder, "order must contain at least one line")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}

	release, err := s.acquireCheckoutLock(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.checkPaymentMethod(ctx, input.PaymentMethodID); err != nil {
		return nil, err
	}

	lines, total, err := s.priceLines(ctx, input.StoreID, input.Lines)
	if err != nil {
		return nil, err
	}

	store, err := s.stores.FindByID(ctx, input.StoreID)
	if err != nil {
		return nil, notFoundOr(err, "store", "load store")
	}
	storeAt := store.Coordinates()
	if !storeAt.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store has no geocoded address")
	}
	customer, err := s.users.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, notFoundOr(err, "customer", "load customer")
	}
	customerAt, ok := customer.Coordinates()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeMissingAddress, "customer has no geocoded delivery address")
	}

	distanceKm, minutes, err := s.resolveDistance(ctx, storeAt, customerAt, input.DistanceKm)
	if err != nil {
		return nil, err
	}

	fee, err := s.schedule.Fee(distanceKm)
	if err != nil {
		return nil, err
	}
	// Fee steps fall on whole metres, so rounding up keeps the snapshot in the
	// same step as the fee charged.
	distanceKm = distanceKm.RoundCeil(storedDistancePlaces)
	grandTotal := total.Add(fee)

	order := &models.Order{
		ID:               uuid.New(),
		CustomerID:       input.CustomerID,
		StoreID:          input.StoreID,
		Lines:            lines,
		TotalAmount:      total,
		GrandTotalAmount: grandTotal,
		PaymentMethodID:  input.PaymentMethodID,
		Delivery: models.DeliveryDetails{
			Status:      enums.DeliveryStatusPending,
			DeliveryFee: fee,
			Route: models.RouteSnapshot{
				StoreLatitude:     storeAt.Latitude,
				StoreLongitude:    storeAt.Longitude,
				CustomerLatitude:  customerAt.Latitude,
				CustomerLongitude: customerAt.Longitude,
				DistanceKm:        distanceKm,
				EstimatedMinutes:  minutes,
			},
		},
		Notes:     input.Notes,
		CreatedBy: input.CustomerID,
		History:   types.History{},
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(Actor{UserID: input.CustomerID, Role: enums.UserRoleCustomer}),
			Data: payloads.OrderCreatedEvent{
				OrderID:          order.ID,
				CustomerID:       order.CustomerID,
				StoreID:          order.StoreID,
				TotalAmount:      order.TotalAmount,
				DeliveryFee:      fee,
				GrandTotalAmount: order.GrandTotalAmount,
				DistanceKm:       distanceKm,
			},
		})
	})
	if err != nil {
		s.logError(ctx, "orders.assemble.persist_failed", err)
		return nil, asTyped(err, "persist order")
	}

	s.metrics.ObserveFee(fee.InexactFloat64())
	s.logInfo(ctx, "orders.assembled", map[string]any{
		"order_id":    order.ID.String(),
		"customer_id": order.CustomerID.String(),
		"store_id":    order.StoreID.String(),
		"grand_total": order.GrandTotalAmount.String(),
		"distance_km": distanceKm.String(),
	})
	return FromModel(order), nil
}

// acquireCheckoutLock takes the per-customer checkout lock. The returned
// release func is always safe to call.
func (s *Service) acquireCheckoutLock(ctx context.Context, customerID uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := s.locker.CheckoutLockKey(customerID.String())
	token, ok, err := s.locker.AcquireLock(ctx, key, s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	return func() {
		if _, err := s.locker.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
			s.logError(ctx, "orders.checkout_lock.release_failed", err)
		}
	}, nil
}

func (s *Service) checkPaymentMethod(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	method, err := s.paymentMethods.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "payment method", "load payment method")
	}
	if !method.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is not available").
			WithDetails(map[string]any{"paymentMethodId": id})
	}
	return nil
}

// priceLines resolves every line through the pricing engine. A negative unit
// price is floored at zero here; the engine itself does not clamp.
func (s *Service) priceLines(ctx context.Context, storeID uuid.UUID, requests []pricing.LineRequest) (models.OrderLines, decimal.Decimal, error) {
	lines := make(models.OrderLines, 0, len(requests))
	total := decimal.Zero
	for i, req := range requests {
		resolved, err := s.lines.ResolveLine(ctx, req)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if resolved.StoreID != storeID {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product does not belong to the order store").
				WithDetails(map[string]any{"index": i, "productId": resolved.ProductID, "storeId": storeID})
		}

		unit := resolved.UnitPrice
		if unit.IsNegative() {
			unit = decimal.Zero
		}
		subtotal := unit.Mul(decimal.NewFromInt(int64(resolved.Quantity)))

		options := make([]models.OrderLineOption, 0, len(resolved.Options))
		for _, opt := range resolved.Options {
			options = append(options, models.OrderLineOption{
				OptionID:      opt.ID,
				GroupName:     opt.GroupName,
				OptionName:    opt.OptionName,
				PriceModifier: opt.PriceModifier,
			})
		}
		lines = append(lines, models.OrderLine{
			ProductID:    resolved.ProductID,
			ProductName:  resolved.ProductName,
			Quantity:     resolved.Quantity,
			SellingPrice: resolved.SellingPrice,
			UnitPrice:    unit,
			Options:      options,
			Subtotal:     subtotal,
		})
		total = total.Add(subtotal)
	}
	return lines, total, nil
}

// resolveDistance returns the exact delivery distance in km and the estimated
// travel minutes.
func (s *Service) resolveDistance(ctx context.Context, from, to types.Coordinates, override *decimal.Decimal) (decimal.Decimal, int, error) {
	if override != nil {
		if override.IsNegative() {
			return decimal.Zero, 0, pkgerrors.Wrap(pkgerrors.CodeValidation, fees.ErrInvalidDistance, "distance must be non-negative")
		}
		return *override, fees.MinutesAtSpeed(*override, s.riderSpeedKPH), nil
	}
	if s.distance == nil {
		return decimal.Zero, 0, pkgerrors.New(pkgerrors.CodeDistanceUnavailable, "distance provider not configured")
	}

	res, err := s.distance.Distance(ctx, toLatLng(from), toLatLng(to))
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDistanceUnavailable {
			return decimal.Zero, 0, err
		}
		if errors.Is(err, context.Canceled) {
			return decimal.Zero, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "distance lookup cancelled")
		}
		return decimal.Zero, 0, pkgerrors.Wrap(pkgerrors.CodeDistanceUnavailable, err, "distance lookup failed")
	}
	if res == nil || res.Status != distanceStatusOK || res.DistanceMeters < 0 {
		status := ""
		if res != nil {
			status = res.Status
		}
		return decimal.Zero, 0, pkgerrors.New(pkgerrors.CodeDistanceUnavailable, "distance provider returned no route").
			WithDetails(map[string]any{"status": status})
	}
	return fees.MetersToKm(res.DistanceMeters), fees.MinutesFromSeconds(res.DurationSeconds), nil
}

func toLatLng(c types.Coordinates) maps.LatLng {
	return maps.LatLng{Latitude: c.Latitude, Longitude: c.Longitude}
}
