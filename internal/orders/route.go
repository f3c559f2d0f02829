package orders

import (
	"context"

	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
)

// Route looks up the live driving route between the coordinates stored on the
// order. The priced snapshot is never changed by this call.
func (s *Service) Route(ctx context.Context, actor Actor, orderID uuid.UUID) (*RouteInfo, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not visible to caller")
	}
	if s.routes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "route provider not configured")
	}

	snapshot := order.Delivery.Route
	route, err := s.routes.Route(ctx, toLatLng(snapshot.StoreCoordinates()), toLatLng(snapshot.CustomerCoordinates()))
	if err != nil {
		return nil, asDependency(err, "route lookup failed")
	}
	return &RouteInfo{
		OrderID:         order.ID,
		Distance:        route.DistanceText,
		Duration:        route.DurationText,
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
		Polyline:        route.Polyline,
		StartLocation:   types.Coordinates{Latitude: route.Start.Latitude, Longitude: route.Start.Longitude},
		EndLocation:     types.Coordinates{Latitude: route.End.Latitude, Longitude: route.End.Longitude},
	}, nil
}

func asDependency(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
