package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentfashion/storefront/api/controllers"
	"github.com/agentfashion/storefront/api/middleware"
	"github.com/agentfashion/storefront/pkg/config"
	"github.com/agentfashion/storefront/pkg/enums"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/metrics"
)

// Service is the domain surface the mock backend serves.
type Service interface {
	controllers.AuthService
	controllers.UserService
	controllers.CatalogService
	controllers.CartService
	controllers.OrderService
	controllers.ChatService
	middleware.RevocationChecker
}

// Options carries the optional observability hooks of the router.
type Options struct {
	Metrics *metrics.HTTPMetrics
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.ServerConfig, logg *logger.Logger, svc Service, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Metrics(opts.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	auth := middleware.Auth(cfg.JWT, svc, logg)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(svc, logg))
			r.Post("/login", controllers.AuthLogin(svc, logg))
			r.Post("/logout", controllers.AuthLogout(svc, logg))
		})

		r.Get("/products", controllers.ProductList(svc, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(svc, logg))
		r.Get("/categories", controllers.CategoryList(svc, logg))
		r.Get("/brands", controllers.BrandList(svc, logg))
		r.Post("/chat/stream", controllers.ChatStream(svc, logg))

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Get("/users/{userId}", controllers.UserProfile(svc, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Post("/", controllers.CartAdd(svc, logg))
				r.Get("/{userId}", controllers.CartFetch(svc, logg))
				r.Put("/items/{cartItemId}", controllers.CartUpdateItem(svc, logg))
				r.Delete("/items/{cartItemId}", controllers.CartRemoveItem(svc, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrderCreate(svc, logg))
				r.Get("/", controllers.OrderList(svc, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Post("/brands", controllers.BrandCreate(svc, logg))
			r.Delete("/brands/{brandId}", controllers.BrandDelete(svc, logg))
		})
	})

	return r
}
