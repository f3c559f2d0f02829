package paymentmethods

import (
	"context"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists payment method references.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, method *models.PaymentMethod) error {
	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(method).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

// List returns all methods, or only active ones when activeOnly is set.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var methods []models.PaymentMethod
	if err := query.Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.PaymentMethod{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
