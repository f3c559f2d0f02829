package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

// Store is the merchant (a "category" in the mobile apps) owning products and
// a geocoded pickup address.
type Store struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex"`
	AddressLine string    `gorm:"column:address_line;not null"`
	Latitude    float64   `gorm:"column:latitude;not null"`
	Longitude   float64   `gorm:"column:longitude;not null"`
	ImageURL    *string   `gorm:"column:image_url"`
	CreatedBy   uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Coordinates returns the store pickup point.
func (s Store) Coordinates() types.Coordinates {
	return types.Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}
