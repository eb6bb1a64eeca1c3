package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	appactivity "github.com/tehraja/backend/internal/application/activity"
	authapp "github.com/tehraja/backend/internal/application/auth"
	appcart "github.com/tehraja/backend/internal/application/cart"
	catalogapp "github.com/tehraja/backend/internal/application/catalog"
	appinv "github.com/tehraja/backend/internal/application/inventory"
	orderapp "github.com/tehraja/backend/internal/application/order"
	reportapp "github.com/tehraja/backend/internal/application/report"
	"github.com/tehraja/backend/internal/domain/inventory"
	"github.com/tehraja/backend/internal/infrastructure/auth"
	"github.com/tehraja/backend/internal/infrastructure/cache"
	"github.com/tehraja/backend/internal/infrastructure/config"
	"github.com/tehraja/backend/internal/infrastructure/event"
	"github.com/tehraja/backend/internal/infrastructure/persistence"
	"github.com/tehraja/backend/internal/infrastructure/printing"
	"github.com/tehraja/backend/internal/infrastructure/realtime"
	"github.com/tehraja/backend/internal/interfaces/http/dto"
	"github.com/tehraja/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const (
	testAdminPassword   = "admin-pass"
	testCashierPassword = "cashier-pass"
	testStock           = 10
)

// pdfStub stands in for headless Chrome and keeps the last request
type pdfStub struct {
	last *printing.RenderRequest
}

func (p *pdfStub) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	p.last = req
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 " + req.Title), PageCount: 1}, nil
}

func (p *pdfStub) Close() error { return nil }

// testApp wires the real services over an in-memory SQLite database
type testApp struct {
	router   *gin.Engine
	jwt      *auth.JWTService
	hub      *realtime.Hub
	products *catalogapp.ProductService
	orders   *orderapp.OrderService
	pdf      *pdfStub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(ctx))
	t.Cleanup(func() { _ = db.Close() })

	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	bus := event.NewInMemoryEventBus(logger)
	hub := realtime.NewHub(realtime.Config{MaxClients: 4}, nil, logger)
	t.Cleanup(func() { _ = hub.Close() })
	bus.Subscribe(hub, hub.EventTypes()...)

	logs := appactivity.NewLogService(activityRepo, bus, 0, logger)
	products := catalogapp.NewProductService(productRepo, txScope, logs, bus, catalogapp.ProductServiceConfig{DefaultMinStock: 2}, logger)
	ledger := appinv.NewLedgerService(productRepo, txScope, logs, bus, inventory.OversellClamp, logger)
	carts := appcart.NewCartService(cache.NewInMemoryCartStore(time.Hour), productRepo, logger)
	orders := orderapp.NewOrderService(orderRepo, txScope, logs, bus, logger)
	checkout := orderapp.NewCheckoutService(carts, txScope, ledger, logs, orderRepo, bus,
		orderapp.CheckoutConfig{IdempotencyTTL: time.Hour}, logger)
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })
	checkout.SetIdempotencyStore(idem)
	reports := reportapp.NewReportService(orderRepo, productRepo, logs, reportapp.ReportServiceConfig{ShopName: "Teh Raja"}, logger)
	pdf := &pdfStub{}
	reports.SetReceiptPrinter(printing.NewReceiptPDF(pdf))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "tehraja-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	authService := authapp.NewAuthService(config.StaffConfig{
		Admin:   config.StaffAccount{Username: "admin", DisplayName: "Admin", Password: testAdminPassword},
		Cashier: config.StaffAccount{Username: "kasir", DisplayName: "Kasir", Password: testCashierPassword},
	}, jwtService, blacklist, logs, authapp.DefaultAuthServiceConfig(), logger)

	hub.Register(realtime.TopicProducts, products.Snapshot)
	hub.Register(realtime.TopicOrders, orders.Snapshot)
	hub.Register(realtime.TopicLogs, logs.Snapshot)
	hub.Register("order", orders.OrderSnapshot)

	_, err = products.SeedMenu(ctx, testStock, 2, "system")
	require.NoError(t, err)

	productH := NewProductHandler(products, logger)
	cartH := NewCartHandler(carts, DefaultSessionHeader, logger)
	checkoutH := NewCheckoutHandler(checkout, DefaultSessionHeader, logger)
	orderH := NewOrderHandler(orders, logger)
	activityH := NewActivityHandler(logs, logger)
	inventoryH := NewInventoryHandler(ledger, logger)
	reportH := NewReportHandler(reports, logger)
	authH := NewAuthHandler(authService, logger)
	streamH := NewStreamHandler(hub, time.Second, logger)
	systemH := NewSystemHandler(map[string]Pinger{"database": db.Ping}, hub.Status, logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/health", systemH.Health)
	r.GET("/ready", systemH.Ready)

	jwtCfg := middleware.JWTMiddlewareConfig{JWTService: jwtService, TokenBlacklist: blacklist, Logger: logger}
	api := r.Group("/api/v1")
	api.GET("/products", middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService: jwtService, TokenBlacklist: blacklist, Optional: true, Logger: logger,
	}), productH.List)
	api.GET("/products/:id", productH.GetByID)
	api.POST("/recommendations", productH.Recommend)
	api.GET("/cart", cartH.Get)
	api.DELETE("/cart", cartH.Clear)
	api.POST("/cart/lines", cartH.AddLine)
	api.PATCH("/cart/lines/:productId", cartH.SetQuantity)
	api.PUT("/cart/lines/:productId/note", cartH.SetNote)
	api.DELETE("/cart/lines/:productId", cartH.RemoveLine)
	api.POST("/checkout", checkoutH.Checkout)
	api.GET("/orders/:id", orderH.GetByID)
	api.GET("/orders/:id/receipt", reportH.Receipt)
	api.GET("/orders/:id/stream", streamH.Order)
	api.GET("/stream/products", streamH.Products)
	api.POST("/auth/login", authH.Login)

	staff := api.Group("", middleware.JWTAuth(jwtCfg), middleware.RequireStaff(logger))
	staff.POST("/auth/logout", authH.Logout)
	staff.GET("/auth/me", authH.Me)
	staff.GET("/orders", orderH.List)
	staff.PATCH("/orders/:id/status", orderH.UpdateStatus)
	staff.GET("/logs", activityH.List)
	staff.GET("/reports/sales", reportH.Sheet)
	staff.GET("/reports/sales.csv", reportH.ExportCSV)
	staff.GET("/reports/summary", reportH.Summary)
	staff.GET("/inventory/low-stock", inventoryH.LowStock)

	admin := staff.Group("", middleware.RequireAdmin(logger))
	admin.POST("/products", productH.Create)
	admin.PATCH("/products/:id", productH.Update)
	admin.DELETE("/products/:id", productH.Delete)
	admin.POST("/inventory/:id/restock", inventoryH.Restock)
	admin.PUT("/inventory/:id/stock", inventoryH.SetStock)
	admin.PUT("/inventory/:id/availability", inventoryH.SetAvailability)
	admin.POST("/admin/reset", orderH.Reset)

	streams := api.Group("/staff", middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService: jwtService, TokenBlacklist: blacklist, AllowQueryToken: true, Logger: logger,
	}), middleware.RequireStaff(logger))
	streams.GET("/stream/:topic", streamH.Topic)

	return &testApp{router: r, jwt: jwtService, hub: hub, products: products, orders: orders, pdf: pdf}
}

func (a *testApp) token(t *testing.T, role auth.Role) string {
	t.Helper()
	name := "kasir"
	if role == auth.RoleAdmin {
		name = "admin"
	}
	tok, err := a.jwt.GenerateToken(auth.GenerateTokenInput{Username: name, DisplayName: name, Role: role})
	require.NoError(t, err)
	return tok.AccessToken
}

type request struct {
	method  string
	path    string
	body    any
	headers map[string]string
}

func (a *testApp) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func session(id string) map[string]string {
	return map[string]string{DefaultSessionHeader: id}
}

// decode unmarshals the envelope and its data into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
