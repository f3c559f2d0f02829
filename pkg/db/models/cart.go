package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is created lazily per user and reused across sessions.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// StoreID returns the store shared by every item, or uuid.Nil for an empty cart.
func (c Cart) StoreID() uuid.UUID {
	if len(c.Items) == 0 {
		return uuid.Nil
	}
	return c.Items[0].StoreID
}
