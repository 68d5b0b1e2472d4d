package router

import (
	"time"

	"go-pos-ws/internal/handler"
	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/permission"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Services is everything the HTTP layer depends on.
type Services struct {
	Auth       service.AuthService
	Membership service.MembershipService
	Inventory  service.InventoryService
	Sales      service.SalesService
	Cash       service.CashService
	Reports    service.ReportService
	Dashboard  service.DashboardService
	Users      service.UserService
	Barcode    service.BarcodeLookup
}

type Options struct {
	AppName string
	// AuthRateLimit caps signup/login requests per IP and minute; 0 disables it.
	AuthRateLimit int
	// Quiet drops the per-request log line (tests).
	Quiet bool
}

// New builds the Fiber app with every route. Dependency graph:
// Handler ← Service ← Repository ← DB.
func New(svc Services, hub *ws.Hub, db *gorm.DB, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: opts.AppName,
	})

	if !opts.Quiet {
		app.Use(logger.New()) // Logging request
	}
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS
	app.Use(metrics.Middleware())

	authHandler := handler.NewAuthHandler(svc.Auth, svc.Membership)
	invHandler := handler.NewInventoryHandler(svc.Inventory)
	salesHandler := handler.NewSalesHandler(svc.Sales)
	cashHandler := handler.NewCashHandler(svc.Cash)
	reportHandler := handler.NewReportHandler(svc.Reports)
	dashHandler := handler.NewDashboardHandler(svc.Dashboard)
	userHandler := handler.NewUserHandler(svc.Users)
	roleHandler := handler.NewRoleHandler()
	barcodeHandler := handler.NewBarcodeHandler(svc.Barcode)
	var clients func() int
	if hub != nil {
		clients = hub.Count
	}
	healthHandler := handler.NewHealthHandler(db, clients)

	// ============ PUBLIC ROUTES ============
	app.Get("/healthz", healthHandler.Check)
	app.Get("/metrics", metrics.Handler())
	app.Get("/api/barcode", barcodeHandler.Lookup)

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	if opts.AuthRateLimit > 0 {
		auth.Use(limiter.New(limiter.Config{
			Max:        opts.AuthRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(429).JSON(fiber.Map{"error": "Too many attempts, try again in a minute"})
			},
		}))
	}
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)

	// ============ AUTHENTICATED ROUTES ============
	requireAuth := middleware.RequireAuth(svc.Auth)
	auth.Get("/session", requireAuth, authHandler.Session)
	auth.Post("/logout", requireAuth, authHandler.Logout)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)
	api.Get("/me/membership", requireAuth, authHandler.Membership)
	api.Get("/roles", requireAuth, roleHandler.GetRoles)

	// ============ WORKSPACE ROUTES ============
	// Every route below needs an active membership; the role decides the rest.
	member := api.Group("", requireAuth, middleware.RequireWorkspace(svc.Membership))
	can := middleware.RequirePermission

	member.Get("/dashboard", dashHandler.GetDashboardStats)

	// Product Routes
	member.Get("/products", can(permission.Products, permission.View), invHandler.GetProducts)
	member.Post("/products", can(permission.Products, permission.Create), invHandler.CreateProduct)
	member.Post("/products/scan", can(permission.Products, permission.Create), invHandler.ScanProduct)
	member.Get("/products/:id", can(permission.Products, permission.View), invHandler.GetProduct)
	member.Put("/products/:id", can(permission.Products, permission.Edit), invHandler.UpdateProduct)
	member.Delete("/products/:id", can(permission.Products, permission.Delete), invHandler.DeleteProduct)
	member.Post("/products/:id/restock", can(permission.Products, permission.Edit), invHandler.Restock)
	member.Post("/products/:id/adjust", can(permission.Products, permission.Edit), invHandler.AdjustStock)

	// Sale Routes
	member.Get("/sales", can(permission.Sales, permission.View), salesHandler.GetSales)
	member.Post("/sales/checkout", can(permission.Sales, permission.Create), salesHandler.Checkout)
	member.Post("/sales/day-close", can(permission.Sales, permission.Create), salesHandler.CloseDay)

	// Cash Routes
	member.Get("/cash", can(permission.Cash, permission.View), cashHandler.GetLedger)
	member.Get("/cash/categories", can(permission.Cash, permission.View), cashHandler.GetCategories)
	member.Post("/cash", can(permission.Cash, permission.Create), cashHandler.AddMovement)

	// Report Routes
	member.Get("/reports/summary", can(permission.Reports, permission.View), reportHandler.GetSummary)
	member.Get("/reports/export.csv", can(permission.Reports, permission.View), reportHandler.ExportCSV)

	// Member Management Routes
	member.Get("/members", can(permission.Users, permission.View), userHandler.GetMembers)
	member.Post("/functions/manage-user", can(permission.Users, permission.Manage), userHandler.ManageUser)

	// WebSocket Route
	if hub != nil {
		app.Get("/ws", requireAuth, middleware.RequireWorkspace(svc.Membership), handler.UpgradeRealtime, handler.Realtime(hub))
	}

	return app
}
