package menuoptions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type optionRepository interface {
	CreateMany(ctx context.Context, options []models.MenuOption) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MenuOption, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.MenuOption, error)
	Update(ctx context.Context, option *models.MenuOption) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRepository interface {
	optionRepository
	WithTx(tx *gorm.DB) optionRepository
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages menu options.
type Service interface {
	Create(ctx context.Context, input CreateInput) ([]OptionDTO, error)
	ListGrouped(ctx context.Context, productID uuid.UUID) ([]OptionGroup, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*OptionDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     txRepository
	products productLoader
	tx       txRunner
}

func NewService(repo txRepository, products productLoader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu option repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: products, tx: tx}, nil
}

// Create validates every option before writing any, then inserts them in one
// transaction so a batch is all-or-nothing.
func (s *service) Create(ctx context.Context, input CreateInput) ([]OptionDTO, error) {
	items := input.Items()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one option is required")
	}

	checked := map[uuid.UUID]struct{}{}
	rows := make([]models.MenuOption, 0, len(items))
	for i, item := range items {
		row, err := buildOption(item)
		if err != nil {
			return nil, withIndex(err, i, input.IsBatch())
		}
		if _, ok := checked[row.ProductID]; !ok {
			if err := s.ensureProduct(ctx, row.ProductID); err != nil {
				return nil, withIndex(err, i, input.IsBatch())
			}
			checked[row.ProductID] = struct{}{}
		}
		rows = append(rows, row)
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateMany(ctx, rows)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create menu options")
	}

	out := make([]OptionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListGrouped(ctx context.Context, productID uuid.UUID) ([]OptionGroup, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	options, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list menu options")
	}
	return Group(options), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*OptionDTO, error) {
	option, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu option not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu option")
	}

	if input.GroupName != nil {
		option.GroupName = strings.TrimSpace(*input.GroupName)
	}
	if input.OptionName != nil {
		option.OptionName = strings.TrimSpace(*input.OptionName)
	}
	if option.GroupName == "" || option.OptionName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "groupName and optionName cannot be empty")
	}
	if input.PriceModifier != nil {
		option.PriceModifier = *input.PriceModifier
	}
	if input.IsRequired != nil {
		option.IsRequired = *input.IsRequired
	}
	if input.SelectionType != nil {
		selection, err := enums.ParseOptionSelectionType(*input.SelectionType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "selectionType must be single or multiple")
		}
		option.SelectionType = selection
	}

	if err := s.repo.Update(ctx, option); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update menu option")
	}
	dto := FromModel(option)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "menu option not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete menu option")
	}
	return nil
}

func (s *service) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": productID})
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return nil
}

func buildOption(item OptionInput) (models.MenuOption, error) {
	if item.ProductID == uuid.Nil {
		return models.MenuOption{}, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	group := strings.TrimSpace(item.GroupName)
	name := strings.TrimSpace(item.OptionName)
	if group == "" || name == "" {
		return models.MenuOption{}, pkgerrors.New(pkgerrors.CodeValidation, "groupName and optionName are required")
	}
	selection, err := enums.ParseOptionSelectionType(item.SelectionType)
	if err != nil {
		return models.MenuOption{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "selectionType must be single or multiple")
	}
	return models.MenuOption{
		ProductID:     item.ProductID,
		GroupName:     group,
		OptionName:    name,
		PriceModifier: item.PriceModifier,
		IsRequired:    item.IsRequired,
		SelectionType: selection,
	}, nil
}

// withIndex tags batch failures with the offending element.
func withIndex(err error, index int, batch bool) error {
	if !batch {
		return err
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	return pkgerrors.Wrap(typed.Code(), err, typed.Message()).
		WithDetails(map[string]any{"index": index})
}
