package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

// Product is a menu item. SellingPrice is derived from Price and MarkUp and is
// recomputed whenever either changes.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID      uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	Description  string          `gorm:"column:description;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	MarkUp       decimal.Decimal `gorm:"column:mark_up;type:numeric(6,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"column:selling_price;type:numeric(12,2);not null"`
	ImageURL     *string         `gorm:"column:image_url"`
	CreatedBy    uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	UpdatedBy    *uuid.UUID      `gorm:"column:updated_by;type:uuid"`
	History      types.History   `gorm:"column:history;type:jsonb;serializer:json"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
