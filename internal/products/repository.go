package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
)

// Repository persists menu items. Menu options are stored separately and go
// with their product on delete through the foreign key.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row := new(models.Product)
	if err := r.db.WithContext(ctx).Take(row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Insert assigns an id when the caller left it blank.
func (r *Repository) Insert(ctx context.Context, row *models.Product) (*models.Product, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return row, r.db.WithContext(ctx).Create(row).Error
}

// Save writes every column, including zero values.
func (r *Repository) Save(ctx context.Context, row *models.Product) (*models.Product, error) {
	return row, r.db.WithContext(ctx).Save(row).Error
}

// Delete reports gorm.ErrRecordNotFound when nothing matched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("name").
		Find(&rows).Error
	return rows, err
}
