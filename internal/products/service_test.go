package products

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/fooddash-backend/internal/stores"
	"github.com/angelmondragon/fooddash-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateProductComputesSellingPrice(t *testing.T) {
	svc, store, _ := newTestService(t)

	dto, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		StoreID: store.ID,
		Name:    "Chicken Meal",
		Price:   decimal.NewFromInt(100),
		MarkUp:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.True(t, dto.SellingPrice.Equal(decimal.NewFromInt(110)), "selling price %s", dto.SellingPrice)
	assert.Empty(t, dto.History)
}

func TestCreateProductValidation(t *testing.T) {
	svc, store, _ := newTestService(t)

	cases := []CreateProductInput{
		{StoreID: store.ID, Name: "", Price: decimal.NewFromInt(1)},
		{StoreID: store.ID, Name: "Free", Price: decimal.Zero},
		{StoreID: store.ID, Name: "Neg markup", Price: decimal.NewFromInt(10), MarkUp: decimal.NewFromInt(-1)},
	}
	for _, input := range cases {
		_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "input %+v got %v", input, err)
	}

	_, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{StoreID: uuid.New(), Name: "x", Price: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestCreateProductDuplicateConflicts(t *testing.T) {
	svc, store, _ := newTestService(t)
	input := CreateProductInput{StoreID: store.ID, Name: "Halo-halo", Price: decimal.NewFromInt(85)}

	_, err := svc.CreateProduct(context.Background(), uuid.New(), input)
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), uuid.New(), input)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestUpdateProductRecomputesAndRecordsHistory(t *testing.T) {
	svc, store, _ := newTestService(t)
	creator, editor := uuid.New(), uuid.New()

	created, err := svc.CreateProduct(context.Background(), creator, CreateProductInput{
		StoreID: store.ID,
		Name:    "Burger",
		Price:   decimal.NewFromInt(100),
		MarkUp:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	newMarkUp := decimal.NewFromInt(20)
	updated, err := svc.UpdateProduct(context.Background(), editor, created.ID, UpdateProductInput{MarkUp: &newMarkUp})
	require.NoError(t, err)
	assert.True(t, updated.SellingPrice.Equal(decimal.NewFromInt(120)), "selling price %s", updated.SellingPrice)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, editor, *updated.UpdatedBy)

	require.Len(t, updated.History, 1)
	entry := updated.History[0]
	assert.Equal(t, editor, entry.Updater)
	assert.Contains(t, entry.Changes, "markUp")
	assert.Contains(t, entry.Changes, "sellingPrice")
	assert.NotContains(t, entry.Changes, "updatedAt")

	reloaded, err := svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.History, 1)
}

func TestUpdateProductWithoutChangesSkipsHistory(t *testing.T) {
	svc, store, _ := newTestService(t)
	created, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		StoreID: store.ID,
		Name:    "Lumpia",
		Price:   decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	same := "Lumpia"
	updated, err := svc.UpdateProduct(context.Background(), uuid.New(), created.ID, UpdateProductInput{Name: &same})
	require.NoError(t, err)
	assert.Empty(t, updated.History)
	assert.Nil(t, updated.UpdatedBy)
}

func TestPriceChangeDoesNotTouchExistingOrders(t *testing.T) {
	svc, store, conn := newTestService(t)
	created, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		StoreID: store.ID,
		Name:    "Pancit",
		Price:   decimal.NewFromInt(100),
		MarkUp:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	order := models.Order{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		StoreID:    store.ID,
		Lines: models.OrderLines{{
			ProductID:    created.ID,
			ProductName:  created.Name,
			Quantity:     1,
			SellingPrice: created.SellingPrice,
			UnitPrice:    created.SellingPrice,
			Subtotal:     created.SellingPrice,
		}},
		TotalAmount:      created.SellingPrice,
		GrandTotalAmount: created.SellingPrice.Add(decimal.NewFromInt(40)),
		PaymentMethodID:  uuid.New(),
		Delivery:         models.DeliveryDetails{Status: "pending", DeliveryFee: decimal.NewFromInt(40)},
		CreatedBy:        uuid.New(),
	}
	require.NoError(t, conn.Create(&order).Error)

	newPrice := decimal.NewFromInt(200)
	_, err = svc.UpdateProduct(context.Background(), uuid.New(), created.ID, UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)

	var persisted models.Order
	require.NoError(t, conn.First(&persisted, "id = ?", order.ID).Error)
	require.Len(t, persisted.Lines, 1)
	assert.True(t, persisted.Lines[0].UnitPrice.Equal(decimal.NewFromInt(110)), "unit price %s", persisted.Lines[0].UnitPrice)
}

func TestDeleteAndList(t *testing.T) {
	svc, store, _ := newTestService(t)
	a, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{StoreID: store.ID, Name: "B item", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{StoreID: store.ID, Name: "A item", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	list, err := svc.ListProducts(context.Background(), store.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A item", list[0].Name)

	require.NoError(t, svc.DeleteProduct(context.Background(), a.ID))
	assert.True(t, pkgerrors.HasCode(svc.DeleteProduct(context.Background(), a.ID), pkgerrors.CodeNotFound))
}

func newTestService(t *testing.T) (Service, *models.Store, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	storeRepo := stores.NewRepository(conn)
	store := &models.Store{
		Name:        "Test Kitchen " + uuid.NewString(),
		AddressLine: "Session Road",
		Latitude:    16.41,
		Longitude:   120.59,
		CreatedBy:   uuid.New(),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, storeRepo.Create(context.Background(), store))

	svc, err := NewService(NewRepository(conn), storeRepo)
	require.NoError(t, err)
	return svc, store, conn
}
