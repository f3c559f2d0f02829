package menuoptions

import (
	"context"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists menu options.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) optionRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateMany inserts the options in a single statement.
func (r *Repository) CreateMany(ctx context.Context, options []models.MenuOption) error {
	if len(options) == 0 {
		return nil
	}
	for i := range options {
		if options[i].ID == uuid.Nil {
			options[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&options).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MenuOption, error) {
	var option models.MenuOption
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&option).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

// FindByIDs returns the options that exist; missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuOption, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var options []models.MenuOption
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

// ListByProduct orders by group then option name so grouping is stable.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.MenuOption, error) {
	var options []models.MenuOption
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("group_name ASC, option_name ASC").
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *Repository) Update(ctx context.Context, option *models.MenuOption) error {
	return r.db.WithContext(ctx).Save(option).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.MenuOption{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
