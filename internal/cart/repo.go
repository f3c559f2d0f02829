package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/fooddash-backend/pkg/db/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository is the persistence surface used by the service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	LockByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
}

// Repository exposes persistence operations for carts and their items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser loads the user's cart with items in insertion order.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockByUser loads the cart holding a row lock so concurrent adds for one
// user serialize. Must run inside a transaction.
func (r *Repository) LockByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("created_at ASC, id ASC").
		Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts an empty cart.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Items").Create(cart).Error
}

// CreateItem inserts a line. Option ids are stored canonically so set
// comparison is stable.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.OptionIDs == nil {
		item.OptionIDs = dbtypes.UUIDArray{}
	}
	item.OptionIDs = item.OptionIDs.Canonical()
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemQuantity overwrites the quantity of a line.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteItem removes a line only when it belongs to cartID.
func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteItems removes every line of the cart.
func (r *Repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// DeleteStaleItemsBefore empties carts whose header and lines were all last
// touched before cutoff. The cart rows stay so each user keeps one cart.
func (r *Repository) DeleteStaleItemsBefore(tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	recent := conn.Model(&models.CartItem{}).
		Select("cart_id").
		Where("updated_at >= ?", cutoff)
	idle := conn.Model(&models.Cart{}).
		Select("id").
		Where("updated_at < ?", cutoff).
		Where("id NOT IN (?)", recent)
	res := conn.Where("cart_id IN (?)", idle).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
