package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockbar/stockbar-backend/api/controllers"
	"github.com/stockbar/stockbar-backend/api/middleware"
	authsvc "github.com/stockbar/stockbar-backend/internal/auth"
	categorysvc "github.com/stockbar/stockbar-backend/internal/categories"
	inventorysvc "github.com/stockbar/stockbar-backend/internal/inventory"
	orgsvc "github.com/stockbar/stockbar-backend/internal/organizations"
	productsvc "github.com/stockbar/stockbar-backend/internal/products"
	salesvc "github.com/stockbar/stockbar-backend/internal/sales"
	stationsvc "github.com/stockbar/stockbar-backend/internal/stations"
	usersvc "github.com/stockbar/stockbar-backend/internal/users"
	"github.com/stockbar/stockbar-backend/pkg/config"
	"github.com/stockbar/stockbar-backend/pkg/enums"
	"github.com/stockbar/stockbar-backend/pkg/logger"
	"github.com/stockbar/stockbar-backend/pkg/metrics"
	"github.com/stockbar/stockbar-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth          authsvc.Service
	Organizations orgsvc.Service
	Categories    categorysvc.Service
	Products      productsvc.Service
	Stations      stationsvc.Service
	Users         usersvc.Service
	Inventory     inventorysvc.Service
	Sales         salesvc.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	services Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(services.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(services.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(services.Auth, logg))

		staff := []enums.UserRole{enums.UserRoleAdmin, enums.UserRoleManager, enums.UserRoleBartender}
		managers := []enums.UserRole{enums.UserRoleAdmin, enums.UserRoleManager}

		r.Route("/organization", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, staff...)).Get("/", controllers.OrganizationGet(services.Organizations, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleAdmin)).Patch("/", controllers.OrganizationUpdate(services.Organizations, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, staff...)).Get("/", controllers.CategoryList(services.Categories, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, managers...))
				r.Post("/", controllers.CategoryCreate(services.Categories, logg))
				r.Patch("/{categoryId}", controllers.CategoryUpdate(services.Categories, logg))
				r.Delete("/{categoryId}", controllers.CategoryDelete(services.Categories, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, staff...))
				r.Get("/", controllers.ProductList(services.Products, logg))
				r.Get("/{productId}", controllers.ProductGet(services.Products, logg))
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, managers...))
				r.Post("/", controllers.ProductCreate(services.Products, logg))
				r.Patch("/{productId}", controllers.ProductUpdate(services.Products, logg))
				r.Delete("/{productId}", controllers.ProductDelete(services.Products, logg))
			})
		})

		r.Route("/stations", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, staff...))
				r.Get("/", controllers.StationList(services.Stations, logg))
				r.Get("/mine", controllers.MyStations(services.Stations, logg))
				r.Get("/{stationId}/users", controllers.StationUsers(services.Stations, logg))
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, managers...))
				r.Post("/", controllers.StationCreate(services.Stations, logg))
				r.Patch("/{stationId}", controllers.StationUpdate(services.Stations, logg))
				r.Post("/{stationId}/users", controllers.StationAssignUser(services.Stations, logg))
				r.Delete("/{stationId}/users", controllers.StationUnassignUser(services.Stations, logg))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Get("/", controllers.UserList(services.Users, logg))
			r.Patch("/{userId}/role", controllers.UserSetRole(services.Users, logg))
			r.Patch("/{userId}/active", controllers.UserSetActive(services.Users, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, staff...))
				r.Get("/", controllers.InventoryList(services.Inventory, logg))
				r.Get("/{productId}", controllers.InventoryGet(services.Inventory, logg))
				r.Get("/{productId}/transactions", controllers.InventoryHistory(services.Inventory, logg))
				r.Get("/stats/users", controllers.UserSalesStats(services.Inventory, logg))
				r.Get("/stats/stations", controllers.StationSalesStats(services.Inventory, logg))
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, managers...))
				r.Post("/add", controllers.InventoryAdd(services.Inventory, logg))
				r.Post("/remove", controllers.InventoryRemove(services.Inventory, logg))
				r.Post("/adjust", controllers.InventoryAdjust(services.Inventory, logg))
			})
		})

		r.With(middleware.RequireRole(logg, staff...)).Post("/sales", controllers.SaleCreate(services.Sales, logg))
	})

	return r
}
