package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/fooddash-backend/internal/address"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, line string, coords types.Coordinates) error
	SetAvailability(ctx context.Context, id uuid.UUID, availability enums.RiderAvailability) error
	ListByRole(ctx context.Context, role enums.UserRole, availability *enums.RiderAvailability) ([]models.User, error)
}

type locationResolver interface {
	Resolve(ctx context.Context, req address.ResolveRequest) (address.Location, error)
}

// Service manages user profiles and delivery addresses.
type Service interface {
	Create(ctx context.Context, input CreateUserDTO) (*UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	SetAddress(ctx context.Context, id uuid.UUID, input SetAddressInput) (*UserDTO, error)
	SetAvailability(ctx context.Context, id uuid.UUID, availability enums.RiderAvailability) (*UserDTO, error)
	ListCustomers(ctx context.Context) ([]UserDTO, error)
	ListRiders(ctx context.Context, availability *enums.RiderAvailability) ([]UserDTO, error)
}

type service struct {
	repo     userRepository
	resolver locationResolver
}

func NewService(repo userRepository, resolver locationResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, resolver: resolver}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserDTO) (*UserDTO, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if !strings.Contains(input.Email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	user, err := s.repo.Create(ctx, input)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username or email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

// SetAddress geocodes and stores the delivery address. Only customers need one
// but any role may set it.
func (s *service) SetAddress(ctx context.Context, id uuid.UUID, input SetAddressInput) (*UserDTO, error) {
	line := strings.TrimSpace(input.AddressLine)
	var coords types.Coordinates

	switch {
	case input.Location != nil:
		if !input.Location.Valid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is out of range")
		}
		if line == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "addressLine is required")
		}
		coords = *input.Location
	case strings.TrimSpace(input.PlaceID) != "":
		if s.resolver == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocoding unavailable")
		}
		loc, err := s.resolver.Resolve(ctx, address.ResolveRequest{PlaceID: input.PlaceID})
		if err != nil {
			return nil, err
		}
		if line == "" {
			line = loc.Line
		}
		coords = loc.Coordinates
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location or placeId is required")
	}

	if err := s.repo.UpdateAddress(ctx, id, line, coords); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update address")
	}
	return s.Get(ctx, id)
}

// SetAvailability records whether a rider is taking deliveries. Only rider
// profiles carry availability.
func (s *service) SetAvailability(ctx context.Context, id uuid.UUID, availability enums.RiderAvailability) (*UserDTO, error) {
	if !availability.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be online or offline")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.UserRoleRider {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only riders have an availability status")
	}
	if err := s.repo.SetAvailability(ctx, id, availability); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update availability")
	}
	return s.Get(ctx, id)
}

func (s *service) ListCustomers(ctx context.Context) ([]UserDTO, error) {
	return s.listByRole(ctx, enums.UserRoleCustomer, nil)
}

// ListRiders lists every rider, or only those with the given availability.
func (s *service) ListRiders(ctx context.Context, availability *enums.RiderAvailability) ([]UserDTO, error) {
	if availability != nil && !availability.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be online or offline")
	}
	return s.listByRole(ctx, enums.UserRoleRider, availability)
}

func (s *service) listByRole(ctx context.Context, role enums.UserRole, availability *enums.RiderAvailability) ([]UserDTO, error) {
	rows, err := s.repo.ListByRole(ctx, role, availability)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return FromModels(rows), nil
}
