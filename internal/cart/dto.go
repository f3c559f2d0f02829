package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
)

// CartDTO is the API shape of a cart.
type CartDTO struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"userId"`
	StoreID   *uuid.UUID    `json:"storeId,omitempty"`
	Items     []CartItemDTO `json:"items"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// CartItemDTO is one cart line.
type CartItemDTO struct {
	ID        uuid.UUID   `json:"id"`
	ProductID uuid.UUID   `json:"productId"`
	StoreID   uuid.UUID   `json:"storeId"`
	Quantity  int         `json:"quantity"`
	OptionIDs []uuid.UUID `json:"menuOptions"`
}

// AddItemInput is the add-to-cart request.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	OptionIDs []uuid.UUID
}

func FromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}
	dto := &CartDTO{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     make([]CartItemDTO, 0, len(c.Items)),
		UpdatedAt: c.UpdatedAt,
	}
	if storeID := c.StoreID(); storeID != uuid.Nil {
		dto.StoreID = &storeID
	}
	for _, item := range c.Items {
		options := []uuid.UUID(item.OptionIDs)
		if options == nil {
			options = []uuid.UUID{}
		}
		dto.Items = append(dto.Items, CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			StoreID:   item.StoreID,
			Quantity:  item.Quantity,
			OptionIDs: options,
		})
	}
	return dto
}
