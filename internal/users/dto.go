package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

// UserDTO is the transport shape of a user profile.
type UserDTO struct {
	ID           uuid.UUID               `json:"id"`
	Username     string                  `json:"username"`
	Email        string                  `json:"email"`
	Role         enums.UserRole          `json:"role"`
	Availability enums.RiderAvailability `json:"availability,omitempty"`
	AddressLine  *string                 `json:"addressLine,omitempty"`
	Location     *types.Coordinates      `json:"location,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// CreateUserDTO holds the data required to provision a profile.
type CreateUserDTO struct {
	ID       uuid.UUID
	Username string
	Email    string
	Role     enums.UserRole
}

// SetAddressInput carries either explicit coordinates or a place id.
type SetAddressInput struct {
	AddressLine string
	Location    *types.Coordinates
	PlaceID     string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	dto := &UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		AddressLine: u.AddressLine,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.Role == enums.UserRoleRider {
		dto.Availability = u.Availability
	}
	if coords, ok := u.Coordinates(); ok {
		dto.Location = coords.Ptr()
	}
	return dto
}

// FromModels maps a listing.
func FromModels(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
