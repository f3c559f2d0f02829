package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/fooddash-backend/internal/address"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	List(ctx context.Context) ([]models.Store, error)
	Update(ctx context.Context, store *models.Store) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type locationResolver interface {
	Resolve(ctx context.Context, req address.ResolveRequest) (address.Location, error)
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, input CreateStoreInput) (*StoreDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	List(ctx context.Context) ([]StoreDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     storeRepository
	resolver locationResolver
}

// NewService builds a store service. The resolver is optional; without it
// stores must be created with explicit coordinates.
func NewService(repo storeRepository, resolver locationResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo, resolver: resolver}, nil
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, input CreateStoreInput) (*StoreDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	line, coords, err := s.locate(ctx, input.AddressLine, input.Location, input.PlaceID)
	if err != nil {
		return nil, err
	}

	store := &models.Store{
		Name:        name,
		AddressLine: line,
		Latitude:    coords.Latitude,
		Longitude:   coords.Longitude,
		ImageURL:    input.ImageURL,
		CreatedBy:   actorID,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "store name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
	}
	return FromModel(store), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) List(ctx context.Context) ([]StoreDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		store.Name = name
	}
	if input.Location != nil || input.PlaceID != nil {
		lineHint := store.AddressLine
		if input.AddressLine != nil {
			lineHint = *input.AddressLine
		}
		placeID := ""
		if input.PlaceID != nil {
			placeID = *input.PlaceID
		}
		line, coords, err := s.locate(ctx, lineHint, input.Location, placeID)
		if err != nil {
			return nil, err
		}
		store.AddressLine = line
		store.Latitude = coords.Latitude
		store.Longitude = coords.Longitude
	} else if input.AddressLine != nil {
		line := strings.TrimSpace(*input.AddressLine)
		if line == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "addressLine cannot be empty")
		}
		store.AddressLine = line
	}
	if input.ImageURL != nil {
		store.ImageURL = input.ImageURL
	}

	if err := s.repo.Update(ctx, store); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "store name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete store")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return store, nil
}

// locate prefers explicit coordinates and falls back to resolving placeID.
func (s *service) locate(ctx context.Context, line string, coords *types.Coordinates, placeID string) (string, types.Coordinates, error) {
	line = strings.TrimSpace(line)
	if coords != nil {
		if !coords.Valid() {
			return "", types.Coordinates{}, pkgerrors.New(pkgerrors.CodeValidation, "location is out of range")
		}
		if line == "" {
			return "", types.Coordinates{}, pkgerrors.New(pkgerrors.CodeValidation, "addressLine is required")
		}
		return line, *coords, nil
	}

	if strings.TrimSpace(placeID) == "" {
		return "", types.Coordinates{}, pkgerrors.New(pkgerrors.CodeValidation, "location or placeId is required")
	}
	if s.resolver == nil {
		return "", types.Coordinates{}, pkgerrors.New(pkgerrors.CodeDependency, "geocoding unavailable")
	}
	loc, err := s.resolver.Resolve(ctx, address.ResolveRequest{PlaceID: placeID})
	if err != nil {
		return "", types.Coordinates{}, err
	}
	if line == "" {
		line = loc.Line
	}
	return line, loc.Coordinates, nil
}
