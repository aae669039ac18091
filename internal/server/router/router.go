package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/server/handlers"
)

// Handlers bundles the HTTP adapters the router dispatches to.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Cash      *handlers.CashHandler
	Inventory *handlers.InventoryHandler
	Customers *handlers.CustomerHandler
	Products  *handlers.ProductHandler
	Invoices  *handlers.InvoiceHandler
	Company   *handlers.CompanyHandler
	Reports   *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares and wraps it
// in the CORS policy for allowedOrigins.
func New(h Handlers, verifier handlers.TokenVerifier, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestID())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/oauth", h.Auth.OAuth)

	private := api.Group("", handlers.RequireAuth(verifier))
	private.GET("/auth/me", h.Auth.Me)

	private.GET("/cash", h.Cash.List)
	private.POST("/cash", h.Cash.Create)

	private.GET("/inventory", h.Inventory.List)
	private.POST("/inventory", h.Inventory.Create)
	private.GET("/inventory/low-stock", h.Inventory.LowStock)
	private.GET("/inventory/:id", h.Inventory.Get)
	private.PUT("/inventory/:id", h.Inventory.Update)
	private.DELETE("/inventory/:id", h.Inventory.Delete)

	private.GET("/customers", h.Customers.List)
	private.POST("/customers", h.Customers.Create)
	private.GET("/customers/:id", h.Customers.Get)
	private.PUT("/customers/:id", h.Customers.Update)
	private.DELETE("/customers/:id", h.Customers.Delete)

	private.GET("/products", h.Products.List)
	private.POST("/products", h.Products.Create)
	private.GET("/products/:id", h.Products.Get)
	private.PUT("/products/:id", h.Products.Update)
	private.DELETE("/products/:id", h.Products.Delete)

	private.GET("/invoices", h.Invoices.List)
	private.POST("/invoices", h.Invoices.Create)
	private.GET("/invoices/:id", h.Invoices.Get)
	private.PUT("/invoices/:id", h.Invoices.Update)
	private.DELETE("/invoices/:id", h.Invoices.Delete)
	private.POST("/invoices/:id/send", h.Invoices.Send)

	private.GET("/company", h.Company.Get)
	private.POST("/company", h.Company.Create)
	private.PUT("/company", h.Company.Update)

	private.GET("/reports", h.Reports.Report)
	private.POST("/reports/export", h.Reports.Export)
	private.GET("/dashboard/summary", h.Reports.Summary)

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})(r)
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(handlers.RequestIDKey)))
	}
}
