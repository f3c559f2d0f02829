package users

import (
	"context"
	"testing"

	"github.com/angelmondragon/fooddash-backend/internal/address"
	"github.com/angelmondragon/fooddash-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t, nil)
	id := uuid.New()

	created, err := svc.Create(context.Background(), CreateUserDTO{ID: id, Username: "juan", Email: "Juan@Example.com", Role: enums.UserRoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, "juan@example.com", created.Email)
	assert.Nil(t, created.Location)

	_, err = svc.Create(context.Background(), CreateUserDTO{Username: "juan", Email: "other@example.com", Role: enums.UserRoleRider})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = svc.Create(context.Background(), CreateUserDTO{Username: "x", Email: "x@example.com", Role: "owner"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestSetAddressWithCoordinates(t *testing.T) {
	svc := newTestService(t, nil)
	created, err := svc.Create(context.Background(), CreateUserDTO{Username: "maria", Email: "maria@example.com", Role: enums.UserRoleCustomer})
	require.NoError(t, err)

	updated, err := svc.SetAddress(context.Background(), created.ID, SetAddressInput{
		AddressLine: "Camp John Hay",
		Location:    &types.Coordinates{Latitude: 16.399, Longitude: 120.615},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Location)
	assert.Equal(t, 16.399, updated.Location.Latitude)
	require.NotNil(t, updated.AddressLine)
	assert.Equal(t, "Camp John Hay", *updated.AddressLine)
}

func TestSetAddressResolvesPlace(t *testing.T) {
	svc := newTestService(t, resolverFunc(func(ctx context.Context, req address.ResolveRequest) (address.Location, error) {
		return address.Location{Line: "Teachers Camp", Coordinates: types.Coordinates{Latitude: 16.41, Longitude: 120.6}}, nil
	}))
	created, err := svc.Create(context.Background(), CreateUserDTO{Username: "ana", Email: "ana@example.com", Role: enums.UserRoleCustomer})
	require.NoError(t, err)

	updated, err := svc.SetAddress(context.Background(), created.ID, SetAddressInput{PlaceID: "p-1"})
	require.NoError(t, err)
	require.NotNil(t, updated.AddressLine)
	assert.Equal(t, "Teachers Camp", *updated.AddressLine)
}

func TestSetAddressValidation(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.SetAddress(context.Background(), uuid.New(), SetAddressInput{AddressLine: "x"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.SetAddress(context.Background(), uuid.New(), SetAddressInput{
		AddressLine: "x",
		Location:    &types.Coordinates{Latitude: 120, Longitude: 10},
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.SetAddress(context.Background(), uuid.New(), SetAddressInput{
		AddressLine: "x",
		Location:    &types.Coordinates{Latitude: 16, Longitude: 120},
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestSetAvailabilityForRiders(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	rider, err := svc.Create(ctx, CreateUserDTO{Username: "rico", Email: "rico@example.com", Role: enums.UserRoleRider})
	require.NoError(t, err)
	assert.Equal(t, enums.RiderOffline, rider.Availability)

	updated, err := svc.SetAvailability(ctx, rider.ID, enums.RiderOnline)
	require.NoError(t, err)
	assert.Equal(t, enums.RiderOnline, updated.Availability)

	customer, err := svc.Create(ctx, CreateUserDTO{Username: "carla", Email: "carla@example.com", Role: enums.UserRoleCustomer})
	require.NoError(t, err)
	assert.Empty(t, customer.Availability)
	_, err = svc.SetAvailability(ctx, customer.ID, enums.RiderOnline)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)

	_, err = svc.SetAvailability(ctx, rider.ID, "busy")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
	_, err = svc.SetAvailability(ctx, uuid.New(), enums.RiderOnline)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestListCustomersAndRiders(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	for _, u := range []CreateUserDTO{
		{Username: "zed", Email: "zed@example.com", Role: enums.UserRoleRider},
		{Username: "amy", Email: "amy@example.com", Role: enums.UserRoleRider},
		{Username: "bea", Email: "bea@example.com", Role: enums.UserRoleCustomer},
		{Username: "root", Email: "root@example.com", Role: enums.UserRoleAdmin},
	} {
		created, err := svc.Create(ctx, u)
		require.NoError(t, err)
		if u.Username == "zed" {
			_, err = svc.SetAvailability(ctx, created.ID, enums.RiderOnline)
			require.NoError(t, err)
		}
	}

	customers, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "bea", customers[0].Username)

	riders, err := svc.ListRiders(ctx, nil)
	require.NoError(t, err)
	require.Len(t, riders, 2)
	assert.Equal(t, "amy", riders[0].Username)
	assert.Equal(t, "zed", riders[1].Username)

	online := enums.RiderOnline
	riders, err = svc.ListRiders(ctx, &online)
	require.NoError(t, err)
	require.Len(t, riders, 1)
	assert.Equal(t, "zed", riders[0].Username)
}

func newTestService(t *testing.T, resolver locationResolver) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)), resolver)
	require.NoError(t, err)
	return svc
}

type resolverFunc func(ctx context.Context, req address.ResolveRequest) (address.Location, error)

func (fn resolverFunc) Resolve(ctx context.Context, req address.ResolveRequest) (address.Location, error) {
	return fn(ctx, req)
}
