package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rockman-logistics/staffdesk/internal/application/service"
	"github.com/rockman-logistics/staffdesk/internal/config"
	domainRepo "github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/handler"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/middleware"
	"github.com/rockman-logistics/staffdesk/internal/websocket"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Category  *handler.CategoryHandler
	Draft     *handler.DraftHandler
	Customer  *handler.CustomerHandler
	Receipt   *handler.ReceiptHandler
	Status    *handler.StatusHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	AuthService     *service.AuthService
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Hub             *websocket.Hub
	Logger          *slog.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Status.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Status.Health)
		v1.POST("/auth/login", h.Auth.Login)
		v1.GET("/backend/status", h.Status.BackendStatus)
		v1.GET("/ws/status", websocket.Handler(deps.Hub, deps.Cfg.CORS.AllowedOrigins))

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.AuthService))

		rateLimiter := middleware.NewSessionRateLimiter(rateLimiterConfig(&deps.Cfg.RateLimit))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func rateLimiterConfig(cfg *config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	rl.CleanupInterval = 5 * time.Minute
	return rl
}

func registerProtectedRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	rg.POST("/auth/logout", h.Auth.Logout)
	rg.GET("/profile", h.Auth.GetProfile)
	rg.GET("/dashboard", h.Dashboard.GetDashboard)
	rg.GET("/categories", h.Category.ListCategories)

	drafts := rg.Group("/drafts")
	{
		drafts.POST("", h.Draft.CreateDraft)
		drafts.GET("", h.Draft.ListDrafts)
		drafts.GET("/:id", h.Draft.GetDraft)
		drafts.DELETE("/:id", h.Draft.DeleteDraft)
		drafts.POST("/:id/reset", h.Draft.ResetDraft)
		drafts.PUT("/:id/shipment", h.Draft.SetShipment)

		drafts.POST("/:id/items", h.Draft.AddItem)
		drafts.PATCH("/:id/items/:index", h.Draft.UpdateItem)
		drafts.PUT("/:id/items/:index/category", h.Draft.SetItemCategory)
		drafts.DELETE("/:id/items/:index", h.Draft.RemoveItem)

		drafts.GET("/:id/customers", h.Customer.SearchCustomers)
		drafts.POST("/:id/customers", h.Customer.CreateCustomer)
		drafts.PUT("/:id/customer", h.Customer.SelectCustomer)

		drafts.POST("/:id/submit",
			middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}),
			h.Draft.Submit,
		)
	}

	receipts := rg.Group("/receipts")
	{
		receipts.GET("", h.Receipt.ListReceipts)
		receipts.GET("/export", h.Receipt.ExportReceipts)
		receipts.GET("/:id", h.Receipt.GetReceipt)
		receipts.GET("/:id/invoice", h.Receipt.GetInvoice)
		receipts.GET("/:id/pdf", h.Receipt.DownloadPDF)
	}
}
