package menuoptions

import (
	"context"
	"testing"

	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateSingle(t *testing.T) {
	svc, productID, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateInput{Single: &OptionInput{
		ProductID:     productID,
		GroupName:     " Flavor ",
		OptionName:    "Spicy",
		PriceModifier: decimal.NewFromInt(15),
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Flavor", created[0].GroupName)
	assert.Equal(t, enums.OptionSelectionSingle, created[0].SelectionType)
}

func TestCreateBatchIsAtomic(t *testing.T) {
	svc, productID, conn := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Batch: []OptionInput{
		{ProductID: productID, GroupName: "Size", OptionName: "Large", PriceModifier: decimal.NewFromInt(20)},
		{ProductID: uuid.New(), GroupName: "Size", OptionName: "Jumbo"},
	}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, map[string]any{"index": 1}, typed.Details())

	var count int64
	require.NoError(t, conn.Model(&models.MenuOption{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateBatchAndListGrouped(t *testing.T) {
	svc, productID, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Batch: []OptionInput{
		{ProductID: productID, GroupName: "Size", OptionName: "Regular"},
		{ProductID: productID, GroupName: "Size", OptionName: "Large", PriceModifier: decimal.NewFromInt(20), IsRequired: true},
		{ProductID: productID, GroupName: "Add-ons", OptionName: "Egg", PriceModifier: decimal.NewFromInt(12), SelectionType: "multiple"},
		{ProductID: productID, GroupName: "Add-ons", OptionName: "Less rice", PriceModifier: decimal.NewFromInt(-5), SelectionType: "multiple"},
	}})
	require.NoError(t, err)

	groups, err := svc.ListGrouped(context.Background(), productID)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Add-ons", groups[0].GroupName)
	assert.Equal(t, enums.OptionSelectionMultiple, groups[0].SelectionType)
	assert.False(t, groups[0].IsRequired)
	assert.Len(t, groups[0].Options, 2)

	assert.Equal(t, "Size", groups[1].GroupName)
	assert.True(t, groups[1].IsRequired)
	assert.Equal(t, enums.OptionSelectionSingle, groups[1].SelectionType)
}

func TestCreateValidation(t *testing.T) {
	svc, productID, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.Create(context.Background(), CreateInput{Single: &OptionInput{ProductID: productID, GroupName: "Size"}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.Create(context.Background(), CreateInput{Single: &OptionInput{ProductID: productID, GroupName: "Size", OptionName: "L", SelectionType: "any"}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, productID, _ := newTestService(t)
	created, err := svc.Create(context.Background(), CreateInput{Single: &OptionInput{ProductID: productID, GroupName: "Size", OptionName: "Large"}})
	require.NoError(t, err)

	modifier := decimal.RequireFromString("25.50")
	multiple := "multiple"
	updated, err := svc.Update(context.Background(), created[0].ID, UpdateInput{PriceModifier: &modifier, SelectionType: &multiple})
	require.NoError(t, err)
	assert.True(t, updated.PriceModifier.Equal(modifier))
	assert.Equal(t, enums.OptionSelectionMultiple, updated.SelectionType)

	require.NoError(t, svc.Delete(context.Background(), created[0].ID))
	_, err = svc.Update(context.Background(), created[0].ID, UpdateInput{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
	assert.True(t, pkgerrors.HasCode(svc.Delete(context.Background(), created[0].ID), pkgerrors.CodeNotFound))
}

func TestFindByIDsSkipsMissing(t *testing.T) {
	svc, productID, conn := newTestService(t)
	created, err := svc.Create(context.Background(), CreateInput{Single: &OptionInput{ProductID: productID, GroupName: "Size", OptionName: "Large"}})
	require.NoError(t, err)

	found, err := NewRepository(conn).FindByIDs(context.Background(), []uuid.UUID{created[0].ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created[0].ID, found[0].ID)
}

func newTestService(t *testing.T) (Service, uuid.UUID, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	product := models.Product{
		ID:           uuid.New(),
		StoreID:      uuid.New(),
		Name:         "Silog",
		Price:        decimal.NewFromInt(90),
		SellingPrice: decimal.NewFromInt(90),
		CreatedBy:    uuid.New(),
	}
	require.NoError(t, conn.Create(&product).Error)

	svc, err := NewService(NewRepository(conn), productFinder{conn}, db.Wrap(conn))
	require.NoError(t, err)
	return svc, product.ID, conn
}

type productFinder struct{ conn *gorm.DB }

func (p productFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := p.conn.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
