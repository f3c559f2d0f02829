package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/angelmondragon/fooddash-backend/pkg/db/types"
)

// CartItem is one (product, option set) line. StoreID is copied from the
// product at insertion so the single-store rule can be checked without joins.
type CartItem struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID         `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	StoreID   uuid.UUID         `gorm:"column:store_id;type:uuid;not null"`
	Quantity  int               `gorm:"column:quantity;not null"`
	OptionIDs dbtypes.UUIDArray `gorm:"column:option_ids;type:uuid[];not null;default:'{}'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
