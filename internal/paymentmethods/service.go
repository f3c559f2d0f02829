package paymentmethods

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
)

// Service manages the payment method references orders point at. No money
// moves through here.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PaymentMethod, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.PaymentMethod, error)
}

// CreateInput captures an admin create request.
type CreateInput struct {
	Type        string
	GCashNumber *string
	GCashQRCode *string
}

// ServiceParams groups dependencies for the payment method service.
type ServiceParams struct {
	Repo paymentMethodRepository
}

type paymentMethodRepository interface {
	Create(ctx context.Context, method *models.PaymentMethod) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type service struct {
	repo paymentMethodRepository
}

// NewService constructs a payment method service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment method repo required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PaymentMethod, error) {
	kind, err := enums.ParsePaymentMethodType(input.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "type must be COD or GCash")
	}

	method := &models.PaymentMethod{Type: kind, IsActive: true}
	if kind == enums.PaymentMethodGCash {
		number := trimmed(input.GCashNumber)
		if number == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gcashNumber is required for GCash")
		}
		method.GCashNumber = number
		method.GCashQRCode = trimmed(input.GCashQRCode)
	}

	if err := s.repo.Create(ctx, method); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment method")
	}
	return method, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	method, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment method")
	}
	return method, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	methods, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payment methods")
	}
	return methods, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.PaymentMethod, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment method")
	}
	return s.Get(ctx, id)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
