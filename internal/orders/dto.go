package orders

import (
	"time"

	"github.com/angelmondragon/fooddash-backend/internal/pricing"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// AssembleInput is the checkout request. DistanceKm, when set, bypasses the
// distance provider.
type AssembleInput struct {
	CustomerID      uuid.UUID
	StoreID         uuid.UUID
	Lines           []pricing.LineRequest
	PaymentMethodID uuid.UUID
	DistanceKm      *decimal.Decimal
	Notes           *string
}

// OrderDTO is the API shape of a persisted order.
type OrderDTO struct {
	ID               uuid.UUID          `json:"id"`
	CustomerID       uuid.UUID          `json:"customer"`
	StoreID          uuid.UUID          `json:"store"`
	Products         []OrderLineDTO     `json:"products"`
	TotalAmount      decimal.Decimal    `json:"totalAmount"`
	GrandTotalAmount decimal.Decimal    `json:"grandTotalAmount"`
	PaymentMethodID  uuid.UUID          `json:"paymentMethodId"`
	DeliveryDetails  DeliveryDetailsDTO `json:"deliveryDetails"`
	Notes            *string            `json:"notes,omitempty"`
	CreatedBy        uuid.UUID          `json:"createdBy"`
	UpdatedBy        *uuid.UUID         `json:"updatedBy,omitempty"`
	History          types.History      `json:"history"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// OrderLineDTO is the priced line snapshot.
type OrderLineDTO struct {
	ProductID    uuid.UUID        `json:"product"`
	ProductName  string           `json:"productName"`
	Quantity     int              `json:"quantity"`
	SellingPrice decimal.Decimal  `json:"sellingPrice"`
	UnitPrice    decimal.Decimal  `json:"unitPrice"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	MenuOptions  []OrderOptionDTO `json:"menuOptions"`
}

// OrderOptionDTO is a chosen option as priced at checkout.
type OrderOptionDTO struct {
	ID            uuid.UUID       `json:"id"`
	GroupName     string          `json:"groupName"`
	OptionName    string          `json:"optionName"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
}

// DeliveryDetailsDTO carries the status, rider and route snapshot.
type DeliveryDetailsDTO struct {
	Status      enums.DeliveryStatus `json:"status"`
	RiderID     *uuid.UUID           `json:"rider,omitempty"`
	DeliveryFee decimal.Decimal      `json:"deliveryFee"`
	Route       RouteDTO             `json:"route"`
}

// RouteDTO is the geometry captured when the order was priced.
type RouteDTO struct {
	StoreLocation    types.Coordinates `json:"storeLocation"`
	CustomerLocation types.Coordinates `json:"customerLocation"`
	DistanceKm       decimal.Decimal   `json:"distance"`
	EstimatedMinutes int               `json:"estimatedTime"`
}

// OrderList is one page of orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// RouteInfo is the live route between the stored pickup and drop-off points.
type RouteInfo struct {
	OrderID         uuid.UUID         `json:"orderId"`
	Distance        string            `json:"distance"`
	Duration        string            `json:"duration"`
	DistanceMeters  int64             `json:"distanceMeters"`
	DurationSeconds int64             `json:"durationSeconds"`
	Polyline        string            `json:"polyline"`
	StartLocation   types.Coordinates `json:"startLocation"`
	EndLocation     types.Coordinates `json:"endLocation"`
}

// PatchInput is the generic order update. Fields holds the raw keys present in
// the request so unsupported ones can be rejected by name.
type PatchInput struct {
	Fields          []string
	Notes           *string
	PaymentMethodID *uuid.UUID
}

// FromModel maps an order row to its API shape.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	history := m.History
	if history == nil {
		history = types.History{}
	}
	lines := make([]OrderLineDTO, 0, len(m.Lines))
	for _, line := range m.Lines {
		options := make([]OrderOptionDTO, 0, len(line.Options))
		for _, opt := range line.Options {
			options = append(options, OrderOptionDTO{
				ID:            opt.OptionID,
				GroupName:     opt.GroupName,
				OptionName:    opt.OptionName,
				PriceModifier: opt.PriceModifier,
			})
		}
		lines = append(lines, OrderLineDTO{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			Quantity:     line.Quantity,
			SellingPrice: line.SellingPrice,
			UnitPrice:    line.UnitPrice,
			Subtotal:     line.Subtotal,
			MenuOptions:  options,
		})
	}
	route := m.Delivery.Route
	return &OrderDTO{
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		StoreID:          m.StoreID,
		Products:         lines,
		TotalAmount:      m.TotalAmount,
		GrandTotalAmount: m.GrandTotalAmount,
		PaymentMethodID:  m.PaymentMethodID,
		DeliveryDetails: DeliveryDetailsDTO{
			Status:      m.Delivery.Status,
			RiderID:     m.Delivery.RiderID,
			DeliveryFee: m.Delivery.DeliveryFee,
			Route: RouteDTO{
				StoreLocation:    route.StoreCoordinates(),
				CustomerLocation: route.CustomerCoordinates(),
				DistanceKm:       route.DistanceKm,
				EstimatedMinutes: route.EstimatedMinutes,
			},
		},
		Notes:     m.Notes,
		CreatedBy: m.CreatedBy,
		UpdatedBy: m.UpdatedBy,
		History:   history,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
