package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bancadosucesso/storefront-backend/api/controllers"
	"github.com/bancadosucesso/storefront-backend/api/middleware"
	authsvc "github.com/bancadosucesso/storefront-backend/internal/auth"
	cartsvc "github.com/bancadosucesso/storefront-backend/internal/cart"
	categorysvc "github.com/bancadosucesso/storefront-backend/internal/categories"
	checkoutsvc "github.com/bancadosucesso/storefront-backend/internal/checkout"
	notificationsvc "github.com/bancadosucesso/storefront-backend/internal/notifications"
	ordersvc "github.com/bancadosucesso/storefront-backend/internal/orders"
	productsvc "github.com/bancadosucesso/storefront-backend/internal/products"
	salessvc "github.com/bancadosucesso/storefront-backend/internal/salespeople"
	"github.com/bancadosucesso/storefront-backend/pkg/auth/session"
	"github.com/bancadosucesso/storefront-backend/pkg/config"
	"github.com/bancadosucesso/storefront-backend/pkg/db"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/redis"
)

// Deps bundles everything the router needs wired.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Sessions session.Checker

	Metrics http.Handler

	Auth          authsvc.Service
	Products      productsvc.Service
	Categories    categorysvc.Service
	Salespeople   salessvc.Service
	Cart          cartsvc.Service
	Checkout      checkoutsvc.Service
	Orders        ordersvc.Service
	Notifications notificationsvc.Service
}

// NewRouter assembles the public storefront and back-office routes.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(deps.Products, logg))
		r.Get("/products/{id}", controllers.GetProduct(deps.Products, logg))
		r.Get("/categories", controllers.ListCategories(deps.Categories, logg))
		r.Get("/categories/{slug}", controllers.GetCategoryBySlug(deps.Categories, logg))
		r.Get("/salespeople", controllers.ListSalespeople(deps.Salespeople, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartKey(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Cart, logg))
				r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
				r.Put("/items/{id}", controllers.CartSetQuantity(deps.Cart, logg))
				r.Delete("/items/{id}", controllers.CartRemoveItem(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
			})

			r.Post("/checkout", controllers.CheckoutSubmit(deps.Checkout, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AuthLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

			r.Post("/auth/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(deps.Orders, logg))
				r.Get("/{id}", controllers.AdminGetOrder(deps.Orders, logg))
				r.Post("/{id}/confirm", controllers.AdminConfirmOrder(deps.Orders, logg))
				r.Post("/{id}/cancel", controllers.AdminCancelOrder(deps.Orders, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.AdminListNotifications(deps.Notifications, logg))
				r.Post("/{id}/read", controllers.AdminMarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.AdminMarkAllNotificationsRead(deps.Notifications, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", logg))

				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.AdminListProducts(deps.Products, logg))
					r.Get("/{id}", controllers.AdminGetProduct(deps.Products, logg))
					r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
					r.Patch("/{id}", controllers.AdminUpdateProduct(deps.Products, logg))
					r.Delete("/{id}", controllers.AdminDeleteProduct(deps.Products, logg))
				})

				r.Route("/categories", func(r chi.Router) {
					r.Get("/", controllers.ListCategories(deps.Categories, logg))
					r.Post("/", controllers.AdminCreateCategory(deps.Categories, logg))
					r.Patch("/{id}", controllers.AdminUpdateCategory(deps.Categories, logg))
					r.Delete("/{id}", controllers.AdminDeleteCategory(deps.Categories, logg))
					r.Post("/{id}/subcategories", controllers.AdminAddSubcategory(deps.Categories, logg))
					r.Delete("/{id}/subcategories/{subcategoryID}", controllers.AdminRemoveSubcategory(deps.Categories, logg))
				})

				r.Route("/salespeople", func(r chi.Router) {
					r.Get("/", controllers.AdminListSalespeople(deps.Salespeople, logg))
					r.Post("/", controllers.AdminCreateSalesperson(deps.Salespeople, logg))
					r.Patch("/{id}", controllers.AdminUpdateSalesperson(deps.Salespeople, logg))
					r.Delete("/{id}", controllers.AdminDeleteSalesperson(deps.Salespeople, logg))
				})
			})
		})
	})

	return r
}
