package users

import (
	"context"
	"strings"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists user profiles.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a profile. The id is normally the identity provider subject.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := &models.User{
		ID:           dto.ID,
		Username:     strings.TrimSpace(dto.Username),
		Email:        strings.ToLower(strings.TrimSpace(dto.Email)),
		Role:         dto.Role,
		Availability: enums.RiderOffline,
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateAddress stores the geocoded delivery address.
func (r *Repository) UpdateAddress(ctx context.Context, id uuid.UUID, line string, coords types.Coordinates) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"address_line": line,
			"latitude":     coords.Latitude,
			"longitude":    coords.Longitude,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetAvailability flips a rider between online and offline.
func (r *Repository) SetAvailability(ctx context.Context, id uuid.UUID, availability enums.RiderAvailability) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, enums.UserRoleRider).
		Update("availability", availability)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByRole returns users of one role by username, optionally narrowed to
// one availability.
func (r *Repository) ListByRole(ctx context.Context, role enums.UserRole, availability *enums.RiderAvailability) ([]models.User, error) {
	q := r.db.WithContext(ctx).Where("role = ?", role)
	if availability != nil {
		q = q.Where("availability = ?", *availability)
	}
	var out []models.User
	if err := q.Order("username ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
