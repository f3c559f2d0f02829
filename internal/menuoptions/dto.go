package menuoptions

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
)

// OptionInput is one option to create.
type OptionInput struct {
	ProductID     uuid.UUID
	GroupName     string
	OptionName    string
	PriceModifier decimal.Decimal
	IsRequired    bool
	SelectionType string
}

// CreateInput is either a single option or a batch. Exactly one side is set;
// the HTTP layer decides which when decoding the body.
type CreateInput struct {
	Single *OptionInput
	Batch  []OptionInput
}

// IsBatch reports whether the caller sent an array.
func (c CreateInput) IsBatch() bool {
	return c.Single == nil
}

// Items returns the options to create in request order.
func (c CreateInput) Items() []OptionInput {
	if c.Single != nil {
		return []OptionInput{*c.Single}
	}
	return c.Batch
}

// UpdateInput lists mutable fields; nil means unchanged.
type UpdateInput struct {
	GroupName     *string
	OptionName    *string
	PriceModifier *decimal.Decimal
	IsRequired    *bool
	SelectionType *string
}

// OptionDTO is the API shape of a menu option.
type OptionDTO struct {
	ID            uuid.UUID                 `json:"id"`
	ProductID     uuid.UUID                 `json:"productId"`
	GroupName     string                    `json:"groupName"`
	OptionName    string                    `json:"optionName"`
	PriceModifier decimal.Decimal           `json:"priceModifier"`
	IsRequired    bool                      `json:"isRequired"`
	SelectionType enums.OptionSelectionType `json:"selectionType"`
}

// OptionGroup collects the options sharing a group name.
type OptionGroup struct {
	GroupName     string                    `json:"groupName"`
	IsRequired    bool                      `json:"isRequired"`
	SelectionType enums.OptionSelectionType `json:"selectionType"`
	Options       []OptionDTO               `json:"options"`
}

func FromModel(m *models.MenuOption) OptionDTO {
	return OptionDTO{
		ID:            m.ID,
		ProductID:     m.ProductID,
		GroupName:     m.GroupName,
		OptionName:    m.OptionName,
		PriceModifier: m.PriceModifier,
		IsRequired:    m.IsRequired,
		SelectionType: m.SelectionType,
	}
}

// Group buckets options by group name keeping first-seen order. A group is
// required when any of its options is, and multiple when any option is.
func Group(options []models.MenuOption) []OptionGroup {
	index := map[string]int{}
	groups := []OptionGroup{}
	for i := range options {
		opt := &options[i]
		pos, ok := index[opt.GroupName]
		if !ok {
			pos = len(groups)
			index[opt.GroupName] = pos
			groups = append(groups, OptionGroup{
				GroupName:     opt.GroupName,
				SelectionType: enums.OptionSelectionSingle,
				Options:       []OptionDTO{},
			})
		}
		g := &groups[pos]
		g.IsRequired = g.IsRequired || opt.IsRequired
		if opt.SelectionType == enums.OptionSelectionMultiple {
			g.SelectionType = enums.OptionSelectionMultiple
		}
		g.Options = append(g.Options, FromModel(opt))
	}
	return groups
}
