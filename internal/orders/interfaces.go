package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/fooddash-backend/internal/pricing"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/maps"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox"
	"github.com/angelmondragon/fooddash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes the order persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, string, error)
}

// DistanceProvider returns travel distance and time between two points.
type DistanceProvider interface {
	Distance(ctx context.Context, origin, destination maps.LatLng) (*maps.DistanceResult, error)
}

// RouteProvider returns the driving route between two points.
type RouteProvider interface {
	Route(ctx context.Context, origin, destination maps.LatLng) (*maps.Route, error)
}

// CheckoutLocker serialises checkouts of one customer.
type CheckoutLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
	CheckoutLockKey(customerID string) string
}

// Metrics records assembly and lifecycle outcomes.
type Metrics interface {
	ObserveAssembly(code string, err error)
	ObserveFee(fee float64)
	IncTransition(from, to string)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type lineResolver interface {
	ResolveLine(ctx context.Context, req pricing.LineRequest) (*pricing.ResolvedLine, error)
}

type paymentMethodLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
