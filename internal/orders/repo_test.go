package orders

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/fooddash-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/pagination"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestOrder(customerID uuid.UUID, createdAt time.Time) *models.Order {
	return &models.Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		StoreID:    uuid.New(),
		Lines: models.OrderLines{{
			ProductID:    uuid.New(),
			ProductName:  "Halo-halo",
			Quantity:     1,
			SellingPrice: decimal.NewFromInt(95),
			UnitPrice:    decimal.NewFromInt(95),
			Subtotal:     decimal.NewFromInt(95),
		}},
		TotalAmount:      decimal.NewFromInt(95),
		GrandTotalAmount: decimal.NewFromInt(135),
		PaymentMethodID:  uuid.New(),
		Delivery: models.DeliveryDetails{
			Status:      enums.DeliveryStatusPending,
			DeliveryFee: decimal.NewFromInt(40),
			Route: models.RouteSnapshot{
				StoreLatitude:     14.55,
				StoreLongitude:    121.02,
				CustomerLatitude:  14.56,
				CustomerLongitude: 121.03,
				DistanceKm:        decimal.RequireFromString("1.250"),
				EstimatedMinutes:  2,
			},
		},
		CreatedBy: customerID,
		History:   types.History{},
		CreatedAt: createdAt,
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := newTestOrder(uuid.New(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStatusPending, got.Delivery.Status)
	assert.True(t, decimal.RequireFromString("1.25").Equal(got.Delivery.Route.DistanceKm))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Halo-halo", got.Lines[0].ProductName)
	assert.True(t, decimal.NewFromInt(135).Equal(got.GrandTotalAmount))

	rider := uuid.New()
	got.Delivery.RiderID = &rider
	got.Delivery.Status = enums.DeliveryStatusDispatched
	got.History = got.History.Append(types.HistoryEntry{
		Updater:   rider,
		Timestamp: time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC),
		Changes:   types.ChangeSet{"deliveryDetails.status": {From: "pending", To: "dispatched"}},
	})
	require.NoError(t, repo.Save(ctx, got))

	locked, err := repo.FindByIDForUpdate(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsAssignedTo(rider))
	require.Len(t, locked.History, 1)
	assert.Equal(t, "dispatched", locked.History[0].Changes["deliveryDetails.status"].To)

	require.NoError(t, repo.Delete(ctx, order.ID))
	_, err = repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, order.ID), gorm.ErrRecordNotFound)
}

func TestRepositoryListPaginatesNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	customer := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		order := newTestOrder(customer, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, order))
		ids = append(ids, order.ID)
	}
	other := newTestOrder(uuid.New(), base.Add(time.Hour))
	rider := uuid.New()
	other.Delivery.RiderID = &rider
	other.Delivery.Status = enums.DeliveryStatusDispatched
	require.NoError(t, repo.Create(ctx, other))

	page, next, err := repo.List(ctx, ListFilter{CustomerID: &customer}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	require.NotEmpty(t, next)

	page, next, err = repo.List(ctx, ListFilter{CustomerID: &customer}, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)
	assert.Empty(t, next)

	page, _, err = repo.List(ctx, ListFilter{PendingUnassigned: true}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page, 3)

	page, _, err = repo.List(ctx, ListFilter{RiderID: &rider}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, other.ID, page[0].ID)

	status := enums.DeliveryStatusDispatched
	page, _, err = repo.List(ctx, ListFilter{Status: &status}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
