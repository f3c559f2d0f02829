package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/fooddash-backend/internal/menuoptions"
	"github.com/angelmondragon/fooddash-backend/internal/pricing"
	product "github.com/angelmondragon/fooddash-backend/internal/products"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetOrCreateIsLazyAndStable(t *testing.T) {
	fx := newCartFixture(t)
	userID := uuid.New()

	first, err := fx.svc.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, first.Items)
	assert.Nil(t, first.StoreID)

	second, err := fx.svc.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAddItemMergesSameOptionSet(t *testing.T) {
	fx := newCartFixture(t)
	userID := uuid.New()
	storeID := uuid.New()
	meal := fx.product(storeID, "Chicken Meal")
	spicy := fx.option(meal.ID, "Flavor", "Spicy")
	egg := fx.option(meal.ID, "Add-ons", "Egg")

	_, err := fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: meal.ID, Quantity: 2, OptionIDs: []uuid.UUID{spicy.ID, egg.ID}})
	require.NoError(t, err)
	cart, err := fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: meal.ID, Quantity: 3, OptionIDs: []uuid.UUID{egg.ID, spicy.ID}})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	require.NotNil(t, cart.StoreID)
	assert.Equal(t, storeID, *cart.StoreID)
}

func TestAddItemDifferentOptionSetCreatesLine(t *testing.T) {
	fx := newCartFixture(t)
	userID := uuid.New()
	meal := fx.product(uuid.New(), "Chicken Meal")
	spicy := fx.option(meal.ID, "Flavor", "Spicy")

	_, err := fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: meal.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: meal.ID, Quantity: 1, OptionIDs: []uuid.UUID{spicy.ID}})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestAddItemRejectsCrossStore(t *testing.T) {
	fx := newCartFixture(t)
	userID := uuid.New()
	a := fx.product(uuid.New(), "Store A burger")
	b := fx.product(uuid.New(), "Store B pizza")

	_, err := fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: b.ID, Quantity: 1})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeCrossStoreCart), "got %v", err)

	cart, err := fx.svc.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, a.ID, cart.Items[0].ProductID)
}

func TestAddItemCrossStoreAfterClearIsAllowed(t *testing.T) {
	fx := newCartFixture(t)
	userID := uuid.New()
	a := fx.product(uuid.New(), "Store A burger")
	b := fx.product(uuid.New(), "Store B pizza")

	_, err := fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = fx.svc.Clear(context.Background(), userID)
	require.NoError(t, err)

	cart, err := fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, b.ID, cart.Items[0].ProductID)
}

func TestAddItemValidatesThroughPricing(t *testing.T) {
	fx := newCartFixture(t)
	userID := uuid.New()
	meal := fx.product(uuid.New(), "Chicken Meal")
	other := fx.product(uuid.New(), "Pizza")
	foreign := fx.option(other.ID, "Size", "Large")

	_, err := fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: meal.ID, Quantity: 0})
	assert.True(t, errors.Is(err, pricing.ErrInvalidQuantity), "got %v", err)

	_, err = fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: meal.ID, Quantity: 1, OptionIDs: []uuid.UUID{foreign.ID}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidOptionForProduct), "got %v", err)

	_, err = fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: uuid.New(), Quantity: 1})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestRemoveItem(t *testing.T) {
	fx := newCartFixture(t)
	userID := uuid.New()
	meal := fx.product(uuid.New(), "Chicken Meal")

	cart, err := fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: meal.ID, Quantity: 1})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	_, err = fx.svc.RemoveItem(context.Background(), uuid.New(), itemID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "other user's item must not be removable: %v", err)

	cart, err = fx.svc.RemoveItem(context.Background(), userID, itemID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = fx.svc.RemoveItem(context.Background(), userID, itemID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestClearIsIdempotent(t *testing.T) {
	fx := newCartFixture(t)
	userID := uuid.New()

	cart, err := fx.svc.Clear(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	meal := fx.product(uuid.New(), "Chicken Meal")
	_, err = fx.svc.AddItem(context.Background(), userID, AddItemInput{ProductID: meal.ID, Quantity: 4})
	require.NoError(t, err)

	cart, err = fx.svc.Clear(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	var count int64
	require.NoError(t, fx.conn.Model(&models.CartItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

type cartFixture struct {
	conn *gorm.DB
	svc  Service
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	conn := dbtest.Open(t)
	engine, err := pricing.NewEngine(product.NewRepository(conn), menuoptions.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), db.Wrap(conn), engine)
	require.NoError(t, err)
	return &cartFixture{conn: conn, svc: svc}
}

func (f *cartFixture) product(storeID uuid.UUID, name string) models.Product {
	p := models.Product{
		ID:           uuid.New(),
		StoreID:      storeID,
		Name:         name,
		Price:        decimal.NewFromInt(100),
		SellingPrice: decimal.NewFromInt(100),
		CreatedBy:    uuid.New(),
	}
	if err := f.conn.Create(&p).Error; err != nil {
		panic(err)
	}
	return p
}

func (f *cartFixture) option(productID uuid.UUID, group, name string) models.MenuOption {
	o := models.MenuOption{
		ID:            uuid.New(),
		ProductID:     productID,
		GroupName:     group,
		OptionName:    name,
		PriceModifier: decimal.NewFromInt(10),
		SelectionType: "single",
	}
	if err := f.conn.Create(&o).Error; err != nil {
		panic(err)
	}
	return o
}
