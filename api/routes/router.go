package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thescentlab/scentlab-backend/api/controllers"
	"github.com/thescentlab/scentlab-backend/api/middleware"
	authsvc "github.com/thescentlab/scentlab-backend/internal/auth"
	"github.com/thescentlab/scentlab-backend/internal/catalog"
	"github.com/thescentlab/scentlab-backend/internal/inventory"
	"github.com/thescentlab/scentlab-backend/internal/orders"
	"github.com/thescentlab/scentlab-backend/internal/users"
	"github.com/thescentlab/scentlab-backend/pkg/auth/session"
	"github.com/thescentlab/scentlab-backend/pkg/config"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router needs wired in.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             pinger
	Redis          *redis.Client
	SessionManager sessionManager
	Registry       *prometheus.Registry

	AuthService    authsvc.Service
	CatalogService catalog.Service
	Ledger         *inventory.Ledger
	OrderService   orders.Service
	UserService    users.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionManager, logg)).Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1/fragrances", func(r chi.Router) {
		r.Get("/", controllers.FragranceList(deps.CatalogService, logg))
		r.Get("/brands", controllers.FragranceBrands(deps.CatalogService, logg))
		r.Get("/notes", controllers.FragranceNotes(deps.CatalogService, logg))
		r.Post("/scent-filter", controllers.FragranceScentFilter(deps.CatalogService, logg))
		r.Post("/recommendations", controllers.FragranceRecommend(deps.CatalogService, logg))
		r.Get("/{fragranceId}", controllers.FragranceGet(deps.CatalogService, logg))
		r.Get("/{fragranceId}/availability", controllers.FragranceAvailability(deps.Ledger, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		// Checkout allows guests; everything else needs a session.
		r.With(middleware.OptionalAuth(cfg.JWT, deps.SessionManager, logg)).Post("/", controllers.OrderCreate(deps.OrderService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.OrderService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.OrderService, logg))
		})
	})

	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Get("/", controllers.MeGet(deps.UserService, logg))
		r.Patch("/", controllers.MeUpdate(deps.UserService, logg))
		r.Put("/preferences", controllers.MePreferences(deps.UserService, logg))
		r.Get("/orders", controllers.MyOrders(deps.OrderService, logg))
		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(deps.UserService, logg))
			r.Post("/", controllers.FavoriteAdd(deps.UserService, logg))
			r.Delete("/{fragranceId}", controllers.FavoriteRemove(deps.UserService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/fragrances", func(r chi.Router) {
			r.Post("/", controllers.FragranceCreate(deps.CatalogService, logg))
			r.Patch("/{fragranceId}", controllers.FragranceUpdate(deps.CatalogService, logg))
			r.Delete("/{fragranceId}", controllers.FragranceDelete(deps.CatalogService, logg))
			r.Post("/{fragranceId}/restock", controllers.FragranceRestock(deps.Ledger, logg))
			r.Post("/{fragranceId}/convert", controllers.FragranceConvert(deps.Ledger, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.OrderService, logg))
		})
	})

	return r
}
