package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tehraja/backend/internal/interfaces/http/handler"
)

// Handlers groups the HTTP handlers served by the storefront API
type Handlers struct {
	Product   *handler.ProductHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Order     *handler.OrderHandler
	Activity  *handler.ActivityHandler
	Inventory *handler.InventoryHandler
	Report    *handler.ReportHandler
	Auth      *handler.AuthHandler
	Stream    *handler.StreamHandler
}

// Guards holds the access middleware applied per route group. Nil guards
// are skipped.
type Guards struct {
	// Identify parses a bearer token when present so staff see hidden products
	Identify gin.HandlerFunc
	// Staff requires an authenticated admin or cashier
	Staff []gin.HandlerFunc
	// Admin runs after Staff and requires the admin role
	Admin gin.HandlerFunc
	// StreamStaff authenticates SSE clients, which may pass the token in the query
	StreamStaff []gin.HandlerFunc
	// LoginLimit and CheckoutLimit throttle the unauthenticated write endpoints
	LoginLimit    gin.HandlerFunc
	CheckoutLimit gin.HandlerFunc
}

// StorefrontGroups returns the API route groups
func StorefrontGroups(h Handlers, g Guards) []RouteRegistrar {
	catalog := NewDomainGroup("catalog", "")
	catalog.GET("/products", g.Identify, h.Product.List).
		GET("/products/:id", h.Product.GetByID).
		POST("/recommendations", h.Product.Recommend).
		GET("/stream/products", h.Stream.Products)

	cart := NewDomainGroup("cart", "/cart")
	cart.GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/lines", h.Cart.AddLine).
		PATCH("/lines/:productId", h.Cart.SetQuantity).
		PUT("/lines/:productId/note", h.Cart.SetNote).
		DELETE("/lines/:productId", h.Cart.RemoveLine)

	orders := NewDomainGroup("orders", "")
	orders.POST("/checkout", g.CheckoutLimit, h.Checkout.Checkout).
		GET("/orders/:id", h.Order.GetByID).
		GET("/orders/:id/receipt", h.Report.Receipt).
		GET("/orders/:id/stream", h.Stream.Order)

	authGroup := NewDomainGroup("auth", "/auth")
	authGroup.POST("/login", g.LoginLimit, h.Auth.Login)

	staff := NewDomainGroup("staff", "").Use(g.Staff...)
	staff.POST("/auth/logout", h.Auth.Logout).
		GET("/auth/me", h.Auth.Me).
		GET("/orders", h.Order.List).
		PATCH("/orders/:id/status", h.Order.UpdateStatus).
		GET("/logs", h.Activity.List).
		GET("/reports/sales", h.Report.Sheet).
		GET("/reports/sales.csv", h.Report.ExportCSV).
		GET("/reports/sales.pdf", h.Report.ExportPDF).
		GET("/reports/summary", h.Report.Summary).
		GET("/inventory/low-stock", h.Inventory.LowStock)

	admin := staff.Group("admin", "").Use(g.Admin)
	admin.POST("/products", h.Product.Create).
		PATCH("/products/:id", h.Product.Update).
		DELETE("/products/:id", h.Product.Delete).
		POST("/products/:id/image", h.Product.UploadImage).
		POST("/inventory/:id/restock", h.Inventory.Restock).
		PUT("/inventory/:id/stock", h.Inventory.SetStock).
		PUT("/inventory/:id/availability", h.Inventory.SetAvailability).
		POST("/admin/reset", h.Order.Reset)

	streams := NewDomainGroup("streams", "/staff").Use(g.StreamStaff...)
	streams.GET("/stream/:topic", h.Stream.Topic)

	return []RouteRegistrar{catalog, cart, orders, authGroup, staff, streams}
}
