package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"kbr-silks-backend/internal/admingate"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/middleware"
)

type RouterDeps struct {
	Config    *config.Config
	Sessions  sessions.Store
	Policy    admingate.Policy
	Sarees    SareeCatalog
	Orders    OrderManager
	Customers CustomerManager
	Roles     RoleManager
	Admins    middleware.AdminChecker
	Logger    *slog.Logger
}

// NewRouter wires the storefront, gate and admin routes under /api/v1.
func NewRouter(d RouterDeps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())

	router.GET("/health", HealthHandler)

	sareesHandler := NewSareesHandler(d.Sarees)
	ordersHandler := NewOrdersHandler(d.Orders)
	customersHandler := NewCustomersHandler(d.Customers)
	rolesHandler := NewRolesHandler(d.Roles)
	gateHandler := NewGateHandler(d.Config)

	api := router.Group("/api/v1")

	// Storefront (no auth)
	api.GET("/contact", ContactHandler(d.Config))
	api.GET("/sarees", sareesHandler.ListSarees)
	api.GET("/sarees/featured", sareesHandler.FeaturedSarees)
	api.GET("/sarees/bridal", sareesHandler.BridalSarees)
	api.GET("/sarees/:id", sareesHandler.GetSaree)
	api.POST("/orders", ordersHandler.PlaceOrder)

	api.GET("/me/role", middleware.AuthMiddleware(d.Config), rolesHandler.MyRole)

	// Admin gate
	gate := api.Group("/admin", middleware.Gate(d.Sessions, d.Policy))
	gate.GET("/gate", gateHandler.GateStatus)
	gate.POST("/gate", gateHandler.Verify)
	gate.POST("/gate/signin", gateHandler.SignIn)
	gate.DELETE("/gate/signin", gateHandler.AbandonSignIn)
	gate.POST("/logout", gateHandler.Logout)

	// Admin area: the gate hides it, the backend role authorizes it.
	admin := gate.Group("", middleware.RequireVerified())
	if d.Config.RequireIdentity {
		admin.Use(middleware.AuthMiddleware(d.Config), middleware.RequireAdmin(d.Admins))
	}

	admin.POST("/sarees", sareesHandler.CreateSaree)
	admin.PUT("/sarees/:id", sareesHandler.UpdateSaree)
	admin.DELETE("/sarees/:id", sareesHandler.DeleteSaree)

	admin.GET("/orders", ordersHandler.ListOrders)
	admin.GET("/orders/:id", ordersHandler.GetOrder)
	admin.PATCH("/orders/:id/status", ordersHandler.UpdateOrderStatus)
	admin.PATCH("/orders/:id/payment", ordersHandler.UpdatePaymentStatus)

	admin.GET("/customers", customersHandler.ListCustomers)
	admin.POST("/customers", customersHandler.CreateCustomer)
	admin.GET("/customers/:phone", customersHandler.GetCustomer)
	admin.PUT("/customers/:phone", customersHandler.UpdateCustomer)

	admin.PUT("/roles/:user_id", rolesHandler.AssignRole)

	return router
}
