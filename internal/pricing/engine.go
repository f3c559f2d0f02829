package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidQuantity is returned when a line quantity is not a positive integer.
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

var hundred = decimal.NewFromInt(100)

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type optionReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuOption, error)
}

// LineRequest is one requested (product, quantity, options) entry.
type LineRequest struct {
	ProductID uuid.UUID
	Quantity  int
	OptionIDs []uuid.UUID
}

// ResolvedOption is the option snapshot carried onto an order line.
type ResolvedOption struct {
	ID            uuid.UUID
	GroupName     string
	OptionName    string
	PriceModifier decimal.Decimal
}

// ResolvedLine is a priced line. UnitPrice is not floored here.
type ResolvedLine struct {
	ProductID    uuid.UUID
	ProductName  string
	StoreID      uuid.UUID
	SellingPrice decimal.Decimal
	Quantity     int
	UnitPrice    decimal.Decimal
	Options      []ResolvedOption
}

// Subtotal is UnitPrice times Quantity.
func (l ResolvedLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Engine resolves line prices from the live catalog. It never writes.
type Engine struct {
	products productReader
	options  optionReader
}

// NewEngine wires the catalog readers.
func NewEngine(products productReader, options optionReader) (*Engine, error) {
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if options == nil {
		return nil, fmt.Errorf("option reader required")
	}
	return &Engine{products: products, options: options}, nil
}

// ResolveLine loads the product and options and computes
// unitPrice = sellingPrice + sum(priceModifier).
func (e *Engine) ResolveLine(ctx context.Context, req LineRequest) (*ResolvedLine, error) {
	if req.Quantity < 1 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidQuantity, "quantity must be at least 1").
			WithDetails(map[string]any{"productId": req.ProductID, "quantity": req.Quantity})
	}
	if req.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := e.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": req.ProductID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	options, err := e.resolveOptions(ctx, product.ID, req.OptionIDs)
	if err != nil {
		return nil, err
	}

	unit := product.SellingPrice
	for _, opt := range options {
		unit = unit.Add(opt.PriceModifier)
	}

	return &ResolvedLine{
		ProductID:    product.ID,
		ProductName:  product.Name,
		StoreID:      product.StoreID,
		SellingPrice: product.SellingPrice,
		Quantity:     req.Quantity,
		UnitPrice:    unit,
		Options:      options,
	}, nil
}

func (e *Engine) resolveOptions(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) ([]ResolvedOption, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := e.options.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu options")
	}
	byID := make(map[uuid.UUID]models.MenuOption, len(found))
	for _, opt := range found {
		byID[opt.ID] = opt
	}

	var missing, foreign []uuid.UUID
	out := make([]ResolvedOption, 0, len(ids))
	for _, id := range ids {
		opt, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if opt.ProductID != productID {
			foreign = append(foreign, id)
			continue
		}
		out = append(out, ResolvedOption{
			ID:            opt.ID,
			GroupName:     opt.GroupName,
			OptionName:    opt.OptionName,
			PriceModifier: opt.PriceModifier,
		})
	}

	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu option not found").
			WithDetails(map[string]any{"optionIds": missing})
	}
	if len(foreign) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOptionForProduct, "menu option does not belong to product").
			WithDetails(map[string]any{"productId": productID, "optionIds": foreign})
	}
	return out, nil
}

// SellingPrice returns price + price*markUp/100 rounded to cents.
func SellingPrice(price, markUp decimal.Decimal) decimal.Decimal {
	return price.Add(price.Mul(markUp).Div(hundred)).Round(2)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
