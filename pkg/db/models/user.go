package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

// User is a customer, rider or administrator. Credentials live with the
// identity provider; only the profile and delivery address are kept here.
type User struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string                  `gorm:"column:username;not null;uniqueIndex"`
	Email        string                  `gorm:"column:email;not null;uniqueIndex"`
	Role         enums.UserRole          `gorm:"column:role;not null"`
	Availability enums.RiderAvailability `gorm:"column:availability;not null;default:offline"`
	AddressLine  *string                 `gorm:"column:address_line"`
	Latitude     *float64                `gorm:"column:latitude"`
	Longitude    *float64                `gorm:"column:longitude"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// Coordinates returns the delivery point and whether the user has been geocoded.
func (u User) Coordinates() (types.Coordinates, bool) {
	if u.Latitude == nil || u.Longitude == nil {
		return types.Coordinates{}, false
	}
	c := types.Coordinates{Latitude: *u.Latitude, Longitude: *u.Longitude}
	return c, c.Valid()
}
