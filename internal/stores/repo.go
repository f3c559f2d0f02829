package stores

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
)

var errNilStore = errors.New("store is required")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	if store == nil {
		return errNilStore
	}
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store := new(models.Store)
	if err := r.db.WithContext(ctx).Take(store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// List orders stores by name for the public directory.
func (r *Repository) List(ctx context.Context) ([]models.Store, error) {
	var out []models.Store
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return errNilStore
	}
	return r.db.WithContext(ctx).Save(store).Error
}

// Delete cascades to the store's products through the foreign key and
// returns gorm.ErrRecordNotFound for an unknown id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Store{})
	if res.Error == nil && res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return res.Error
}
