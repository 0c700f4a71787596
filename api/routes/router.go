package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farmdirect/farmdirect-backend/api/controllers"
	"github.com/farmdirect/farmdirect-backend/api/middleware"
	addresssvc "github.com/farmdirect/farmdirect-backend/internal/address"
	cartsvc "github.com/farmdirect/farmdirect-backend/internal/cart"
	"github.com/farmdirect/farmdirect-backend/internal/catalog"
	checkoutsvc "github.com/farmdirect/farmdirect-backend/internal/checkout"
	orderssvc "github.com/farmdirect/farmdirect-backend/internal/orders"
	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
	"github.com/farmdirect/farmdirect-backend/pkg/metrics"
	pkgredis "github.com/farmdirect/farmdirect-backend/pkg/redis"
)

// Services bundles the wired domain services the router exposes.
type Services struct {
	Catalog  catalog.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   orderssvc.Service
	Address  addresssvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	deps map[string]controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	httpMetrics *metrics.HTTPMetrics,
	services Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductsList(services.Catalog, logg))
		r.Get("/products/{productId}", controllers.ProductFetch(services.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(services.Cart, logg))
				r.Delete("/", controllers.CartClear(services.Cart, logg))
				r.Get("/count", controllers.CartCount(services.Cart, logg))
				r.Post("/items", controllers.CartAddItem(services.Cart, logg))
				r.Patch("/items/{productId}", controllers.CartUpdateItem(services.Cart, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(services.Cart, logg))
			})

			r.Get("/checkout/quote", controllers.CheckoutQuote(services.Checkout, logg))
			r.Post("/checkout", controllers.CheckoutPlaceOrder(services.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(services.Orders, logg))
				r.Get("/{orderId}", controllers.OrderFetch(services.Orders, logg))
				r.Post("/{orderId}/settle", controllers.OrderSettle(services.Orders, logg))
				r.Post("/{orderId}/advance", controllers.OrderAdvance(services.Orders, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(services.Address, logg))
				r.Post("/", controllers.AddressCreate(services.Address, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(services.Address, logg))
				r.Post("/{addressId}/default", controllers.AddressSetDefault(services.Address, logg))
			})
		})
	})

	return r
}
