package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestSellingPrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		price, markUp, want string
	}{
		{"100", "10", "110"},
		{"99.99", "0", "99.99"},
		{"45.50", "12.5", "51.19"},
	}
	for _, tc := range cases {
		got := SellingPrice(decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.markUp))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("SellingPrice(%s, %s) = %s, want %s", tc.price, tc.markUp, got, tc.want)
		}
	}
}

func TestResolveLineAddsModifiers(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	cheese := fx.addOption(fx.product.ID, "Extras", "Cheese", "15")
	spicy := fx.addOption(fx.product.ID, "Flavor", "Less Rice", "-5")

	line, err := fx.engine(t).ResolveLine(context.Background(), LineRequest{
		ProductID: fx.product.ID,
		Quantity:  2,
		OptionIDs: []uuid.UUID{cheese.ID, spicy.ID, cheese.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !line.UnitPrice.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected unit price 120, got %s", line.UnitPrice)
	}
	if !line.Subtotal().Equal(decimal.NewFromInt(240)) {
		t.Fatalf("expected subtotal 240, got %s", line.Subtotal())
	}
	if len(line.Options) != 2 {
		t.Fatalf("expected duplicate option ids collapsed, got %d options", len(line.Options))
	}
	if line.StoreID != fx.product.StoreID || line.ProductName != "Chicken Meal" {
		t.Fatalf("unexpected product snapshot %+v", line)
	}
}

func TestResolveLineAllowsNegativeUnitPrice(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	discount := fx.addOption(fx.product.ID, "Promo", "Free meal", "-200")

	line, err := fx.engine(t).ResolveLine(context.Background(), LineRequest{
		ProductID: fx.product.ID,
		Quantity:  1,
		OptionIDs: []uuid.UUID{discount.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !line.UnitPrice.Equal(decimal.NewFromInt(-90)) {
		t.Fatalf("expected unfloored unit price -90, got %s", line.UnitPrice)
	}
}

func TestResolveLineRejectsForeignOption(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	other := fx.addOption(uuid.New(), "Size", "Large", "20")

	_, err := fx.engine(t).ResolveLine(context.Background(), LineRequest{
		ProductID: fx.product.ID,
		Quantity:  1,
		OptionIDs: []uuid.UUID{other.ID},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidOptionForProduct {
		t.Fatalf("expected invalid option error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	ids, _ := details["optionIds"].([]uuid.UUID)
	if len(ids) != 1 || ids[0] != other.ID {
		t.Fatalf("expected offending option id in details, got %v", details["optionIds"])
	}
}

func TestResolveLineNotFound(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	engine := fx.engine(t)

	_, err := engine.ResolveLine(context.Background(), LineRequest{ProductID: uuid.New(), Quantity: 1})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for product, got %v", err)
	}

	_, err = engine.ResolveLine(context.Background(), LineRequest{
		ProductID: fx.product.ID,
		Quantity:  1,
		OptionIDs: []uuid.UUID{uuid.New()},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for option, got %v", err)
	}
}

func TestResolveLineInvalidQuantity(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	for _, qty := range []int{0, -3} {
		_, err := fx.engine(t).ResolveLine(context.Background(), LineRequest{ProductID: fx.product.ID, Quantity: qty})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("quantity %d: expected validation code, got %v", qty, err)
		}
	}
	if fx.productCalls != 0 {
		t.Fatalf("expected no catalog reads for invalid quantity")
	}
}

func TestResolveLineReaderFailure(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.productErr = errors.New("connection reset")
	_, err := fx.engine(t).ResolveLine(context.Background(), LineRequest{ProductID: fx.product.ID, Quantity: 1})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

type fixture struct {
	product      models.Product
	options      map[uuid.UUID]models.MenuOption
	productErr   error
	productCalls int
}

func newFixture() *fixture {
	return &fixture{
		product: models.Product{
			ID:           uuid.New(),
			StoreID:      uuid.New(),
			Name:         "Chicken Meal",
			Price:        decimal.NewFromInt(100),
			MarkUp:       decimal.NewFromInt(10),
			SellingPrice: decimal.NewFromInt(110),
		},
		options: map[uuid.UUID]models.MenuOption{},
	}
}

func (f *fixture) addOption(productID uuid.UUID, group, name, modifier string) models.MenuOption {
	opt := models.MenuOption{
		ID:            uuid.New(),
		ProductID:     productID,
		GroupName:     group,
		OptionName:    name,
		PriceModifier: decimal.RequireFromString(modifier),
	}
	f.options[opt.ID] = opt
	return opt
}

func (f *fixture) engine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(fixtureProducts{f}, fixtureOptions{f})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

type fixtureProducts struct{ f *fixture }

func (p fixtureProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p.f.productCalls++
	if p.f.productErr != nil {
		return nil, p.f.productErr
	}
	if id != p.f.product.ID {
		return nil, gorm.ErrRecordNotFound
	}
	product := p.f.product
	return &product, nil
}

type fixtureOptions struct{ f *fixture }

func (o fixtureOptions) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuOption, error) {
	out := make([]models.MenuOption, 0, len(ids))
	for _, id := range ids {
		if opt, ok := o.f.options[id]; ok {
			out = append(out, opt)
		}
	}
	return out, nil
}
