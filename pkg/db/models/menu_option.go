package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fooddash-backend/pkg/enums"
)

// MenuOption is a priced customization belonging to exactly one product.
type MenuOption struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID                 `gorm:"column:product_id;type:uuid;not null;index"`
	GroupName     string                    `gorm:"column:group_name;not null"`
	OptionName    string                    `gorm:"column:option_name;not null"`
	PriceModifier decimal.Decimal           `gorm:"column:price_modifier;type:numeric(12,2);not null;default:0"`
	IsRequired    bool                      `gorm:"column:is_required;not null;default:false"`
	SelectionType enums.OptionSelectionType `gorm:"column:selection_type;not null;default:'single'"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
