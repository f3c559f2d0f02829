package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	AddressLine string            `json:"addressLine"`
	Location    types.Coordinates `json:"location"`
	ImageURL    *string           `json:"imageUrl,omitempty"`
	CreatedBy   uuid.UUID         `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:          m.ID,
		Name:        m.Name,
		AddressLine: m.AddressLine,
		Location:    m.Coordinates(),
		ImageURL:    m.ImageURL,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreateStoreInput carries the admin create payload. Either Location or
// PlaceID must be provided.
type CreateStoreInput struct {
	Name        string
	AddressLine string
	Location    *types.Coordinates
	PlaceID     string
	ImageURL    *string
}

// UpdateStoreInput lists the mutable fields; nil means unchanged.
type UpdateStoreInput struct {
	Name        *string
	AddressLine *string
	Location    *types.Coordinates
	PlaceID     *string
	ImageURL    *string
}
