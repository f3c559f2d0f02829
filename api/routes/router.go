package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/fooddash-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/fooddash-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/fooddash-backend/api/controllers/orders"
	"github.com/angelmondragon/fooddash-backend/api/middleware"
	"github.com/angelmondragon/fooddash-backend/internal/address"
	"github.com/angelmondragon/fooddash-backend/internal/cart"
	"github.com/angelmondragon/fooddash-backend/internal/menuoptions"
	"github.com/angelmondragon/fooddash-backend/internal/paymentmethods"
	"github.com/angelmondragon/fooddash-backend/internal/products"
	"github.com/angelmondragon/fooddash-backend/internal/stores"
	"github.com/angelmondragon/fooddash-backend/internal/users"
	"github.com/angelmondragon/fooddash-backend/pkg/config"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/enums"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/fooddash-backend/pkg/redis"
)

// cacheStore is the Redis surface the HTTP layer needs.
type cacheStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cache cacheStore,
	gatherer prometheus.Gatherer,
	storeService stores.Service,
	productService products.Service,
	menuOptionService menuoptions.Service,
	paymentMethodService paymentmethods.Service,
	userService users.Service,
	addressService address.Service,
	cartService cart.Service,
	ordersSvc ordercontrollers.Service,
	tracker ordercontrollers.LocationBroadcaster,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	locationPolicy := middleware.NewRateLimitPolicy("location", cfg.RateLimit.LocationWindow, cfg.RateLimit.LocationLimit)
	suggestPolicy := middleware.NewRateLimitPolicy("address-suggest", cfg.RateLimit.SuggestWindow, cfg.RateLimit.SuggestLimit)
	checkoutPolicy := middleware.NewRateLimitPolicy("checkout", cfg.RateLimit.CheckoutWindow, cfg.RateLimit.CheckoutLimit)

	checks := []controllers.ReadinessCheck{}
	if dbP != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "postgres", Ping: dbP.Ping})
	}
	if cache != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Ping: cache.Ping})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	admin := middleware.RequireRole(logg, enums.UserRoleAdmin)
	rider := middleware.RequireRole(logg, enums.UserRoleRider)
	riderOrAdmin := middleware.RequireRole(logg, enums.UserRoleRider, enums.UserRoleAdmin)
	customerOrAdmin := middleware.RequireRole(logg, enums.UserRoleCustomer, enums.UserRoleAdmin)

	var idempotencyStore pkgredis.IdempotencyStore
	if cache != nil {
		idempotencyStore = cache
	}
	var limiter middleware.RateLimiterStore
	if cache != nil {
		limiter = cache
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/payment-methods/available", controllers.PaymentMethodsAvailable(paymentMethodService, logg))
		r.Get("/stores", controllers.StoreList(storeService, logg))
		r.Get("/stores/{storeId}", controllers.StoreGet(storeService, logg))
		r.Get("/stores/{storeId}/products", controllers.StoreProducts(productService, logg))
		r.Get("/products/{productId}", controllers.ProductGet(productService, logg))
		r.Get("/products/{productId}/options", controllers.ProductMenuOptions(menuOptionService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/stores", controllers.StoreCreate(storeService, logg))
				r.Put("/stores/{storeId}", controllers.StoreUpdate(storeService, logg))
				r.Delete("/stores/{storeId}", controllers.StoreDelete(storeService, logg))

				r.Post("/products", controllers.ProductCreate(productService, logg))
				r.Put("/products/{productId}", controllers.ProductUpdate(productService, logg))
				r.Delete("/products/{productId}", controllers.ProductDelete(productService, logg))

				r.Post("/menu-options", controllers.MenuOptionCreate(menuOptionService, logg))
				r.Put("/menu-options/{optionId}", controllers.MenuOptionUpdate(menuOptionService, logg))
				r.Delete("/menu-options/{optionId}", controllers.MenuOptionDelete(menuOptionService, logg))

				r.Get("/payment-methods", controllers.PaymentMethodList(paymentMethodService, logg))
				r.Post("/payment-methods", controllers.PaymentMethodCreate(paymentMethodService, logg))
				r.Put("/payment-methods/{paymentMethodId}", controllers.PaymentMethodSetActive(paymentMethodService, logg))

				r.Post("/users", controllers.UserCreate(userService, logg))
				r.Get("/users/customers", controllers.UserListCustomers(userService, logg))
				r.Get("/users/riders", controllers.UserListRiders(userService, logg))
			})

			r.Get("/me", controllers.Me(userService, logg))
			r.Put("/me/address", controllers.MeSetAddress(userService, logg))
			r.With(rider).Put("/me/status", controllers.MeSetAvailability(userService, logg))

			r.Route("/addresses", func(r chi.Router) {
				r.With(middleware.RateLimit(suggestPolicy, limiter, logg)).Get("/suggest", controllers.AddressSuggest(addressService, logg))
				r.Post("/resolve", controllers.AddressResolve(addressService, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(cartService, logg))
				r.Post("/add", cartcontrollers.CartAdd(cartService, logg))
				r.Delete("/remove/{cartItemId}", cartcontrollers.CartRemove(cartService, logg))
				r.Delete("/clear", cartcontrollers.CartClear(cartService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(customerOrAdmin, middleware.RateLimit(checkoutPolicy, limiter, logg)).Post("/", ordercontrollers.Create(ordersSvc, logg))
				r.With(admin).Get("/", ordercontrollers.List(ordersSvc, logg))
				r.With(riderOrAdmin).Get("/pending", ordercontrollers.Pending(ordersSvc, logg))
				r.Get("/mine", ordercontrollers.Mine(ordersSvc, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
				r.Put("/{orderId}", ordercontrollers.Update(ordersSvc, logg))
				r.Delete("/{orderId}", ordercontrollers.Delete(ordersSvc, logg))
				r.With(rider).Put("/{orderId}/accept", ordercontrollers.Accept(ordersSvc, logg))
				r.Get("/{orderId}/route", ordercontrollers.Route(ordersSvc, logg))
				r.With(rider, middleware.RateLimit(locationPolicy, limiter, logg)).Post("/{orderId}/location", ordercontrollers.Location(tracker, logg))
			})
		})
	})

	return r
}
