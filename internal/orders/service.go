package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/fooddash-backend/internal/fees"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	"github.com/angelmondragon/fooddash-backend/pkg/metrics"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultLockTTL       = 30 * time.Second
	defaultRiderSpeedKPH = 40
)

// historyIgnoredPaths are bookkeeping fields left out of history diffs.
var historyIgnoredPaths = []string{"history", "updatedAt", "updatedBy", "createdAt"}

// ServiceParams wires the order service. Locker, Distance, Routes, Metrics and
// Logger are optional.
type ServiceParams struct {
	Repo           Repository
	Tx             txRunner
	Outbox         outboxPublisher
	Lines          lineResolver
	PaymentMethods paymentMethodLoader
	Stores         storeLoader
	Users          userLoader
	Distance       DistanceProvider
	Routes         RouteProvider
	Locker         CheckoutLocker
	LockTTL        time.Duration
	Schedule       fees.Schedule
	RiderSpeedKPH  float64
	Metrics        Metrics
	Logger         *logger.Logger
	Now            func() time.Time
}

// Service assembles priced orders and drives their delivery lifecycle.
type Service struct {
	repo           Repository
	tx             txRunner
	outbox         outboxPublisher
	lines          lineResolver
	paymentMethods paymentMethodLoader
	stores         storeLoader
	users          userLoader
	distance       DistanceProvider
	routes         RouteProvider
	locker         CheckoutLocker
	lockTTL        time.Duration
	schedule       fees.Schedule
	riderSpeedKPH  float64
	metrics        Metrics
	logg           *logger.Logger
	now            func() time.Time
}

// NewService validates the required collaborators and applies defaults.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Lines == nil {
		return nil, fmt.Errorf("line resolver required")
	}
	if params.PaymentMethods == nil || params.Stores == nil || params.Users == nil {
		return nil, fmt.Errorf("payment method, store and user loaders required")
	}
	svc := &Service{
		repo:           params.Repo,
		tx:             params.Tx,
		outbox:         params.Outbox,
		lines:          params.Lines,
		paymentMethods: params.PaymentMethods,
		stores:         params.Stores,
		users:          params.Users,
		distance:       params.Distance,
		routes:         params.Routes,
		locker:         params.Locker,
		lockTTL:        params.LockTTL,
		schedule:       params.Schedule,
		riderSpeedKPH:  params.RiderSpeedKPH,
		metrics:        params.Metrics,
		logg:           params.Logger,
		now:            params.Now,
	}
	if svc.lockTTL <= 0 {
		svc.lockTTL = defaultLockTTL
	}
	if svc.schedule.StepMeters.IsZero() {
		svc.schedule = fees.DefaultSchedule()
	}
	if svc.riderSpeedKPH <= 0 {
		svc.riderSpeedKPH = defaultRiderSpeedKPH
	}
	if svc.metrics == nil {
		svc.metrics = metrics.NewOrderMetrics(nil)
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

func buildActor(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}

func (a Actor) isAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// notFoundOr maps a missing row to NOT_FOUND and anything else to an internal
// error annotated with op.
func notFoundOr(err error, what, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

// asTyped keeps typed errors intact and wraps the rest as internal.
func asTyped(err error, op string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, msg, err)
}

func (s *Service) logInfo(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}
