package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/fooddash-backend/internal/pricing"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const uniqueProductConstraint = "ux_products_name_price_store"

// historyIgnoredPaths are bookkeeping fields that never appear in a diff.
var historyIgnoredPaths = []string{"history", "updatedAt", "updatedBy", "createdAt"}

// ProductRepository defines CRUD operations for menu items.
type ProductRepository interface {
	FindByID(context.Context, uuid.UUID) (*models.Product, error)
	Insert(context.Context, *models.Product) (*models.Product, error)
	Save(context.Context, *models.Product) (*models.Product, error)
	Delete(context.Context, uuid.UUID) error
	ListByStore(context.Context, uuid.UUID) ([]models.Product, error)
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service exposes product catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, storeID uuid.UUID) ([]ProductDTO, error)
}

type service struct {
	repo   ProductRepository
	stores storeLoader
	now    func() time.Time
}

// NewService wires the product service.
func NewService(repo ProductRepository, stores storeLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	return &service{repo: repo, stores: stores, now: time.Now}, nil
}

func (s *service) CreateProduct(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validatePricing(input.Price, input.MarkUp); err != nil {
		return nil, err
	}
	if err := s.ensureStore(ctx, input.StoreID); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:      input.StoreID,
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		Price:        input.Price,
		MarkUp:       input.MarkUp,
		SellingPrice: pricing.SellingPrice(input.Price, input.MarkUp),
		ImageURL:     input.ImageURL,
		CreatedBy:    userID,
		History:      types.History{},
	}
	created, err := s.repo.Insert(ctx, product)
	if err != nil {
		return nil, mapWriteError(err, "create product")
	}
	return FromModel(created), nil
}

// UpdateProduct applies the patch, recomputes the selling price and appends a
// history entry. Existing order snapshots are never touched.
func (s *service) UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	before := FromModel(product)

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Price != nil || input.MarkUp != nil {
		price, markUp := product.Price, product.MarkUp
		if input.Price != nil {
			price = *input.Price
		}
		if input.MarkUp != nil {
			markUp = *input.MarkUp
		}
		if err := validatePricing(price, markUp); err != nil {
			return nil, err
		}
		product.Price = price
		product.MarkUp = markUp
		product.SellingPrice = pricing.SellingPrice(price, markUp)
	}

	changes, err := types.Diff(before, FromModel(product), historyIgnoredPaths...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "diff product")
	}
	if len(changes) == 0 {
		return before, nil
	}
	product.History = product.History.Append(types.HistoryEntry{
		Updater:   userID,
		Timestamp: s.now().UTC(),
		Changes:   changes,
	})
	product.UpdatedBy = &userID

	updated, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, mapWriteError(err, "update product")
	}
	return FromModel(updated), nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) ListProducts(ctx context.Context, storeID uuid.UUID) ([]ProductDTO, error) {
	if err := s.ensureStore(ctx, storeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func (s *service) ensureStore(ctx context.Context, storeID uuid.UUID) error {
	if storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "storeId is required")
	}
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return nil
}

func validatePricing(price, markUp decimal.Decimal) error {
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if markUp.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "markUp cannot be negative")
	}
	return nil
}

func mapWriteError(err error, op string) error {
	if db.IsUniqueViolation(err, uniqueProductConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product with the same name and price already exists in this store")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
