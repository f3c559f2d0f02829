package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/pkg/enums"
)

// PaymentMethod is a reference stored on orders; no settlement happens here.
type PaymentMethod struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.PaymentMethodType `gorm:"column:type;not null"`
	GCashNumber *string                 `gorm:"column:gcash_number"`
	GCashQRCode *string                 `gorm:"column:gcash_qr_code"`
	IsActive    bool                    `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
