package router

import (
	"context"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/app"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/handler"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/middleware"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/ws"

	"github.com/gin-gonic/gin"
)

// New builds the local API on top of an opened App. ctx bounds the
// background goroutines the router owns (rate limiter purge).
// Dependency graph: Handler ← Service ← Repository ← Store/Settings
func New(ctx context.Context, a *app.App) *gin.Engine {
	if !a.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	general := middleware.NewRateLimiter(600, time.Minute, "Too many requests. Try again shortly.")
	pin := middleware.PinRateLimiter()
	general.StartPurge(ctx)
	pin.StartPurge(ctx)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(general.Handler())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(a.Auth)
	customersH := handler.NewCustomersHandler(a.Customers, a.Credit, a.Location)
	categoriesH := handler.NewCategoriesHandler(a.Categories)
	productsH := handler.NewProductsHandler(a.Products, a.Inventory)
	billsH := handler.NewBillsHandler(a.Bills, a.Receipts, a.Location)
	reportsH := handler.NewReportsHandler(a.Reports, a.Location)
	profileH := handler.NewProfileHandler(a.Receipts)
	backupH := handler.NewBackupHandler(a.Backup)
	syncH := handler.NewSyncHandler(a.Sync, a.Provider)
	liveH := handler.NewLiveHandler(ws.NewHub(a.Store))

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(a.Store, a.Redis))

	auth := r.Group("/v1/auth")
	{
		auth.GET("/status", authH.Status)
		auth.POST("/unlock", pin.Handler(), authH.Unlock)
		auth.POST("/pin", pin.Handler(), authH.SetPIN)
	}

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(a.Config.JWTSecret))
	{
		customers := v1.Group("/customers")
		{
			customers.POST("", customersH.Create)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", customersH.Deactivate)
			customers.PATCH("/:id/reactivate", customersH.Reactivate)
			customers.GET("/:id/ledger", customersH.Ledger)
			customers.POST("/:id/payments", customersH.AddPayment)
		}

		categories := v1.Group("/categories")
		{
			categories.POST("", categoriesH.Create)
			categories.GET("", categoriesH.List)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Delete)
			categories.PATCH("/:id/deactivate", categoriesH.Deactivate)
		}

		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/low-stock", productsH.LowStock)
			products.GET("/barcode/:barcode", productsH.ByBarcode)
			products.GET("/:id", productsH.Get)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
			products.PATCH("/:id/reactivate", productsH.Reactivate)
			products.POST("/:id/stock", productsH.AdjustStock)
		}
		v1.GET("/inventory/logs", productsH.InventoryLogs)

		bills := v1.Group("/bills")
		{
			bills.POST("", billsH.Create)
			bills.GET("", billsH.List)
			bills.POST("/numbers", billsH.AllocateNumber)
			bills.GET("/:id", billsH.Get)
			bills.GET("/:id/items", billsH.Items)
			bills.POST("/:id/cancel", billsH.Cancel)
			bills.GET("/:id/receipt", billsH.Receipt)
			bills.GET("/:id/receipt.pdf", billsH.ReceiptPDF)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/sales", reportsH.Sales)
			reports.GET("/credit", reportsH.Credit)
			reports.GET("/inventory", reportsH.Inventory)
			reports.GET("/products", reportsH.Products)
		}

		v1.GET("/settings/profile", profileH.Get)
		v1.PUT("/settings/profile", profileH.Put)

		backup := v1.Group("/backup")
		{
			backup.GET("/info", backupH.Info)
			backup.POST("/export", backupH.Export)
			backup.POST("/import", backupH.Import)
		}

		sync := v1.Group("/sync")
		{
			sync.GET("/status", syncH.Status)
			sync.GET("/auth-url", syncH.AuthURL)
			sync.POST("/authorize", syncH.Authorize)
			sync.POST("/sign-in", syncH.SignIn)
			sync.POST("/sign-out", syncH.SignOut)
			sync.POST("", syncH.Sync)
			sync.GET("/remote", syncH.Check)
			sync.POST("/restore", syncH.Restore)
		}

		v1.GET("/live/:table", liveH.Serve)
	}

	return r
}
