package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
)

// ProductDTO is the API shape of a menu item.
type ProductDTO struct {
	ID           uuid.UUID       `json:"id"`
	StoreID      uuid.UUID       `json:"storeId"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	MarkUp       decimal.Decimal `json:"markUp"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	ImageURL     *string         `json:"imageUrl,omitempty"`
	CreatedBy    uuid.UUID       `json:"createdBy"`
	UpdatedBy    *uuid.UUID      `json:"updatedBy,omitempty"`
	History      types.History   `json:"history"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CreateProductInput captures the admin create payload.
type CreateProductInput struct {
	StoreID     uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	MarkUp      decimal.Decimal
	ImageURL    *string
}

// UpdateProductInput lists mutable fields; nil means unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	MarkUp      *decimal.Decimal
	ImageURL    *string
}

func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	history := m.History
	if history == nil {
		history = types.History{}
	}
	return &ProductDTO{
		ID:           m.ID,
		StoreID:      m.StoreID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		MarkUp:       m.MarkUp,
		SellingPrice: m.SellingPrice,
		ImageURL:     m.ImageURL,
		CreatedBy:    m.CreatedBy,
		UpdatedBy:    m.UpdatedBy,
		History:      history,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
