package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/fooddash-backend/internal/pricing"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/fooddash-backend/pkg/db/types"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type lineResolver interface {
	ResolveLine(ctx context.Context, req pricing.LineRequest) (*pricing.ResolvedLine, error)
}

// Service is the cart aggregator. A cart only ever holds products of one store.
type Service interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo  CartRepository
	tx    txRunner
	lines lineResolver
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, lines lineResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if lines == nil {
		return nil, fmt.Errorf("line resolver required")
	}
	return &service{repo: repo, tx: tx, lines: lines}, nil
}

func (s *service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.getOrCreate(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(cart), nil
}

// AddItem validates the product and options through the pricing engine, then
// merges into an existing (product, option set) line or appends a new one.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	line, err := s.lines.ResolveLine(ctx, pricing.LineRequest{
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		OptionIDs: input.OptionIDs,
	})
	if err != nil {
		return nil, err
	}
	options := dbtypes.UUIDArray(input.OptionIDs).Canonical()

	if _, err := s.getOrCreate(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	var result *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.LockByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cart")
		}

		if current := cart.StoreID(); current != uuid.Nil && current != line.StoreID {
			return pkgerrors.New(pkgerrors.CodeCrossStoreCart, "cart already holds items from another store").
				WithDetails(map[string]any{"cartStoreId": current, "productStoreId": line.StoreID})
		}

		for _, item := range cart.Items {
			if item.ProductID == input.ProductID && item.OptionIDs.SameSet(options) {
				if err := repo.UpdateItemQuantity(ctx, item.ID, item.Quantity+input.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
				}
				return s.reload(ctx, repo, userID, &result)
			}
		}

		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: input.ProductID,
			StoreID:   line.StoreID,
			Quantity:  input.Quantity,
			OptionIDs: options,
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
		}
		return s.reload(ctx, repo, userID, &result)
	})
	if err != nil {
		return nil, asTyped(err, "add cart item")
	}
	return FromModel(result), nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	cart, err := s.getOrCreate(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	var result *models.Cart
	if err := s.reload(ctx, s.repo, userID, &result); err != nil {
		return nil, asTyped(err, "reload cart")
	}
	return FromModel(result), nil
}

// Clear is idempotent on an empty cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.getOrCreate(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) > 0 {
		if err := s.repo.DeleteItems(ctx, cart.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
	}
	cart.Items = nil
	return FromModel(cart), nil
}

// getOrCreate lazily creates the cart. A concurrent creator winning the unique
// index is treated as success and the winner's cart is returned.
func (s *service) getOrCreate(ctx context.Context, repo CartRepository, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cart, err := repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	cart = &models.Cart{UserID: userID}
	if err := repo.Create(ctx, cart); err != nil {
		if db.IsUniqueViolation(err, "") {
			existing, findErr := repo.FindByUser(ctx, userID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "load cart")
			}
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
	}
	return cart, nil
}

func (s *service) reload(ctx context.Context, repo CartRepository, userID uuid.UUID, out **models.Cart) error {
	cart, err := repo.FindByUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	*out = cart
	return nil
}

func asTyped(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
