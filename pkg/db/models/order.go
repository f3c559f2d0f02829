package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

// Order is the priced snapshot produced at checkout. Lines carry their own
// price copies so later catalog edits never reach a persisted order.
type Order struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID       uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	StoreID          uuid.UUID       `gorm:"column:store_id;type:uuid;not null"`
	Lines            OrderLines      `gorm:"column:lines;type:jsonb;serializer:json;not null"`
	TotalAmount      decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	GrandTotalAmount decimal.Decimal `gorm:"column:grand_total_amount;type:numeric(12,2);not null"`
	PaymentMethodID  uuid.UUID       `gorm:"column:payment_method_id;type:uuid;not null"`
	Delivery         DeliveryDetails `gorm:"embedded"`
	Notes            *string         `gorm:"column:notes"`
	CreatedBy        uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	UpdatedBy        *uuid.UUID      `gorm:"column:updated_by;type:uuid"`
	History          types.History   `gorm:"column:history;type:jsonb;serializer:json"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLines is the ordered line snapshot stored as JSON.
type OrderLines []OrderLine

// OrderLine is one priced (product, quantity, options) entry.
type OrderLine struct {
	ProductID    uuid.UUID         `json:"productId"`
	ProductName  string            `json:"productName"`
	Quantity     int               `json:"quantity"`
	SellingPrice decimal.Decimal   `json:"sellingPrice"`
	UnitPrice    decimal.Decimal   `json:"unitPrice"`
	Options      []OrderLineOption `json:"options"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
}

// OrderLineOption is the option snapshot taken at assembly time.
type OrderLineOption struct {
	OptionID      uuid.UUID       `json:"optionId"`
	GroupName     string          `json:"groupName"`
	OptionName    string          `json:"optionName"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
}

// DeliveryDetails holds the status machine column, the assigned rider and the
// route snapshot used to price the delivery.
type DeliveryDetails struct {
	Status      enums.DeliveryStatus `gorm:"column:delivery_status;not null;default:'pending';index"`
	RiderID     *uuid.UUID           `gorm:"column:rider_id;type:uuid;index"`
	Route       RouteSnapshot        `gorm:"embedded"`
	DeliveryFee decimal.Decimal      `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
}

// RouteSnapshot is the pickup and drop-off geometry captured at assembly.
type RouteSnapshot struct {
	StoreLatitude     float64         `gorm:"column:store_latitude;not null"`
	StoreLongitude    float64         `gorm:"column:store_longitude;not null"`
	CustomerLatitude  float64         `gorm:"column:customer_latitude;not null"`
	CustomerLongitude float64         `gorm:"column:customer_longitude;not null"`
	DistanceKm        decimal.Decimal `gorm:"column:distance_km;type:numeric(10,3);not null"`
	EstimatedMinutes  int             `gorm:"column:estimated_minutes;not null"`
}

// StoreCoordinates returns the pickup point.
func (r RouteSnapshot) StoreCoordinates() types.Coordinates {
	return types.Coordinates{Latitude: r.StoreLatitude, Longitude: r.StoreLongitude}
}

// CustomerCoordinates returns the drop-off point.
func (r RouteSnapshot) CustomerCoordinates() types.Coordinates {
	return types.Coordinates{Latitude: r.CustomerLatitude, Longitude: r.CustomerLongitude}
}

// IsAssignedTo reports whether riderID is the order's assigned rider.
func (o Order) IsAssignedTo(riderID uuid.UUID) bool {
	return o.Delivery.RiderID != nil && *o.Delivery.RiderID == riderID
}
