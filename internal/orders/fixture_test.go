package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/fooddash-backend/internal/menuoptions"
	"github.com/angelmondragon/fooddash-backend/internal/paymentmethods"
	"github.com/angelmondragon/fooddash-backend/internal/pricing"
	product "github.com/angelmondragon/fooddash-backend/internal/products"
	"github.com/angelmondragon/fooddash-backend/internal/stores"
	"github.com/angelmondragon/fooddash-backend/internal/users"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/maps"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type orderFixture struct {
	t        *testing.T
	conn     *gorm.DB
	svc      *Service
	distance *stubDistance
	routes   *stubRoutes
	locker   *stubLocker

	store    models.Store
	customer models.User
	rider    models.User
	admin    models.User
	payment  models.PaymentMethod
	meal     models.Product
	cheese   models.MenuOption
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	conn := dbtest.Open(t)

	engine, err := pricing.NewEngine(product.NewRepository(conn), menuoptions.NewRepository(conn))
	require.NoError(t, err)

	fx := &orderFixture{
		t:        t,
		conn:     conn,
		distance: &stubDistance{result: &maps.DistanceResult{Status: "OK", DistanceMeters: 4300, DurationSeconds: 900}},
		routes:   &stubRoutes{},
		locker:   newStubLocker(),
	}
	svc, err := NewService(ServiceParams{
		Repo:           NewRepository(conn),
		Tx:             db.Wrap(conn),
		Outbox:         outbox.NewService(outbox.NewRepository(conn), nil),
		Lines:          engine,
		PaymentMethods: paymentmethods.NewRepository(conn),
		Stores:         stores.NewRepository(conn),
		Users:          users.NewRepository(conn),
		Distance:       fx.distance,
		Routes:         fx.routes,
		Locker:         fx.locker,
		Now:            func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	fx.svc = svc

	fx.store = models.Store{ID: uuid.New(), Name: "Jollibee Taft", AddressLine: "Taft Ave, Manila", Latitude: 14.5648, Longitude: 120.9932, CreatedBy: uuid.New()}
	require.NoError(t, conn.Create(&fx.store).Error)

	fx.customer = fx.user("maria", enums.UserRoleCustomer, true)
	fx.rider = fx.user("rico", enums.UserRoleRider, false)
	fx.admin = fx.user("ops", enums.UserRoleAdmin, false)

	fx.payment = models.PaymentMethod{ID: uuid.New(), Type: enums.PaymentMethodCOD, IsActive: true}
	require.NoError(t, conn.Create(&fx.payment).Error)

	fx.meal = fx.product(fx.store.ID, "Chickenjoy", 100, 10)
	fx.cheese = fx.option(fx.meal.ID, "Add-ons", "Extra cheese", 15)
	return fx
}

func (f *orderFixture) user(name string, role enums.UserRole, geocoded bool) models.User {
	u := models.User{ID: uuid.New(), Username: name, Email: name + "@example.com", Role: role}
	if geocoded {
		line := "España Blvd, Sampaloc"
		lat, lng := 14.6091, 120.9894
		u.AddressLine, u.Latitude, u.Longitude = &line, &lat, &lng
	}
	require.NoError(f.t, f.conn.Create(&u).Error)
	return u
}

func (f *orderFixture) product(storeID uuid.UUID, name string, price, markUp int64) models.Product {
	p := models.Product{
		ID:           uuid.New(),
		StoreID:      storeID,
		Name:         name,
		Price:        decimal.NewFromInt(price),
		MarkUp:       decimal.NewFromInt(markUp),
		SellingPrice: pricing.SellingPrice(decimal.NewFromInt(price), decimal.NewFromInt(markUp)),
		CreatedBy:    uuid.New(),
	}
	require.NoError(f.t, f.conn.Create(&p).Error)
	return p
}

func (f *orderFixture) option(productID uuid.UUID, group, name string, modifier int64) models.MenuOption {
	o := models.MenuOption{
		ID:            uuid.New(),
		ProductID:     productID,
		GroupName:     group,
		OptionName:    name,
		PriceModifier: decimal.NewFromInt(modifier),
		SelectionType: enums.OptionSelectionMultiple,
	}
	require.NoError(f.t, f.conn.Create(&o).Error)
	return o
}

// place assembles a one-line order at 4.3 km for the fixture customer.
func (f *orderFixture) place() *OrderDTO {
	f.t.Helper()
	order, err := f.svc.Assemble(context.Background(), f.input(pricing.LineRequest{ProductID: f.meal.ID, Quantity: 1}))
	require.NoError(f.t, err)
	return order
}

func (f *orderFixture) input(lines ...pricing.LineRequest) AssembleInput {
	return AssembleInput{
		CustomerID:      f.customer.ID,
		StoreID:         f.store.ID,
		Lines:           lines,
		PaymentMethodID: f.payment.ID,
	}
}

func (f *orderFixture) as(u models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func (f *orderFixture) countOrders() int64 {
	var n int64
	require.NoError(f.t, f.conn.Model(&models.Order{}).Count(&n).Error)
	return n
}

func (f *orderFixture) events(orderID uuid.UUID) []models.OutboxEvent {
	rows, err := outbox.NewRepository(f.conn).ListForAggregate(f.conn, enums.AggregateOrder, orderID)
	require.NoError(f.t, err)
	return rows
}

func (f *orderFixture) countEvents() int64 {
	var n int64
	require.NoError(f.t, f.conn.Model(&models.OutboxEvent{}).Count(&n).Error)
	return n
}

type stubDistance struct {
	mu     sync.Mutex
	result *maps.DistanceResult
	err    error
	calls  int
	last   [2]maps.LatLng
}

func (s *stubDistance) Distance(_ context.Context, origin, destination maps.LatLng) (*maps.DistanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = [2]maps.LatLng{origin, destination}
	if s.err != nil {
		return nil, s.err
	}
	res := *s.result
	return &res, nil
}

type stubRoutes struct {
	route *maps.Route
	err   error
	last  [2]maps.LatLng
}

func (s *stubRoutes) Route(_ context.Context, origin, destination maps.LatLng) (*maps.Route, error) {
	s.last = [2]maps.LatLng{origin, destination}
	if s.err != nil {
		return nil, s.err
	}
	return s.route, nil
}

type stubLocker struct {
	mu       sync.Mutex
	held     map[string]string
	released []string
	err      error
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: map[string]string{}}
}

func (l *stubLocker) CheckoutLockKey(customerID string) string {
	return "fd:lock:checkout:" + customerID
}

func (l *stubLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, true, nil
}

func (l *stubLocker) ReleaseLock(_ context.Context, key, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return false, nil
	}
	delete(l.held, key)
	l.released = append(l.released, key)
	return true, nil
}
