package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/shopfront/internal/auth"
	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/service"
	"github.com/utafrali/shopfront/pkg/health"
	"github.com/utafrali/shopfront/pkg/middleware"
)

// serviceName labels request metrics and spans.
const serviceName = "shopfront"

// RouterDeps holds everything NewRouter mounts.
type RouterDeps struct {
	Products *service.ProductService
	Reviews  *service.ReviewService
	Users    *service.UserService
	Orders   *service.OrderService
	Payments *service.PaymentService
	Sessions *auth.SessionManager
	Health   *health.Handler
	// Gatherer serves /metrics; Registerer receives the HTTP collectors.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	CORS       middleware.CORSConfig
	// AuthRateLimit throttles register and login. The zero value disables it.
	AuthRateLimit middleware.RateLimitConfig
	Logger        *slog.Logger
}

// NewRouter creates a chi router with every storefront route registered.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.NewHTTPMetrics(d.Registerer, serviceName).Handler)
	r.Use(middleware.CORS(d.CORS))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Welcome to the Ecommerce site."))
	})

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	products := NewProductHandler(d.Products, d.Logger)
	reviews := NewReviewHandler(d.Reviews, d.Logger)
	authn := NewAuthHandler(d.Users, d.Sessions, d.Logger)
	users := NewUserHandler(d.Users, d.Logger)
	orders := NewOrderHandler(d.Orders, d.Logger)
	payments := NewPaymentHandler(d.Payments, d.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Get("/products", products.ListProducts)
		r.Get("/product/{id}", products.GetProduct)
		r.Get("/reviews", reviews.ListReviews)

		credentials := middleware.RateLimit(d.AuthRateLimit, d.Logger)
		r.With(credentials, middleware.NoStore).Post("/register", authn.Register)
		r.With(credentials, middleware.NoStore).Post("/login", authn.Login)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.Auth(auth.CookieName, d.Sessions.Validate))
			r.Use(LoadUser(d.Users, d.Logger))
			r.Use(middleware.RequestLogger(d.Logger))

			r.Get("/logout", authn.Logout)
			r.Get("/me", users.Me)
			r.Put("/password/update", authn.UpdatePassword)
			r.Put("/me/update", users.UpdateProfile)

			r.Put("/review", reviews.SubmitReview)
			r.Delete("/reviews", reviews.DeleteReview)

			r.Post("/order/new", orders.CreateOrder)
			r.Get("/order/{id}", orders.GetOrder)
			r.Get("/orders/me", orders.MyOrders)

			r.Post("/payment/process", payments.ProcessPayment)
			r.Get("/stripeapikey", payments.APIKey)

			// Admin endpoints
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))

				r.Get("/products", products.ListAdminProducts)
				r.Post("/product/new", products.CreateProduct)
				r.Put("/product/{id}", products.UpdateProduct)
				r.Delete("/product/{id}", products.DeleteProduct)

				r.Get("/users", users.ListUsers)
				r.Get("/user/{id}", users.GetUser)
				r.Put("/user/{id}", users.UpdateUser)
				r.Delete("/user/{id}", users.DeleteUser)

				r.Get("/orders", orders.ListOrders)
				r.Put("/order/{id}", orders.UpdateOrder)
				r.Delete("/order/{id}", orders.DeleteOrder)
			})
		})
	})

	return r
}
