package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	appactivity "github.com/tehraja/backend/internal/application/activity"
	authapp "github.com/tehraja/backend/internal/application/auth"
	appcart "github.com/tehraja/backend/internal/application/cart"
	catalogapp "github.com/tehraja/backend/internal/application/catalog"
	appinv "github.com/tehraja/backend/internal/application/inventory"
	orderapp "github.com/tehraja/backend/internal/application/order"
	reportapp "github.com/tehraja/backend/internal/application/report"
	"github.com/tehraja/backend/internal/domain/cart"
	"github.com/tehraja/backend/internal/domain/inventory"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/infrastructure/auth"
	"github.com/tehraja/backend/internal/infrastructure/cache"
	"github.com/tehraja/backend/internal/infrastructure/config"
	"github.com/tehraja/backend/internal/infrastructure/event"
	"github.com/tehraja/backend/internal/infrastructure/logger"
	"github.com/tehraja/backend/internal/infrastructure/messaging"
	"github.com/tehraja/backend/internal/infrastructure/persistence"
	"github.com/tehraja/backend/internal/infrastructure/printing"
	"github.com/tehraja/backend/internal/infrastructure/realtime"
	"github.com/tehraja/backend/internal/infrastructure/storage"
	"github.com/tehraja/backend/internal/infrastructure/telemetry"
	"github.com/tehraja/backend/internal/interfaces/http/handler"
	"github.com/tehraja/backend/internal/interfaces/http/middleware"
	"github.com/tehraja/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const (
	loginRateLimit    = 10
	checkoutRateLimit = 30
	rateLimitWindow   = time.Minute
	seedActor         = "system"
)

type telemetryProviders struct {
	tracer   *telemetry.TracerProvider
	meters   *telemetry.MeterProvider
	profiler *telemetry.Profiler
	log      *zap.Logger
}

func startTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryProviders, error) {
	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, err
	}
	meters, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, err
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		return nil, err
	}
	if cfg.Telemetry.ProfilingSpanLinks && profiler.IsEnabled() {
		tracer.EnableSpanProfiles()
	}
	return &telemetryProviders{tracer: tracer, meters: meters, profiler: profiler, log: log}, nil
}

func (t *telemetryProviders) shutdown(ctx context.Context) {
	if err := t.tracer.Shutdown(ctx); err != nil {
		t.log.Error("Error shutting down tracer", zap.Error(err))
	}
	if err := t.meters.Shutdown(ctx); err != nil {
		t.log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := t.profiler.Stop(); err != nil {
		t.log.Error("Error stopping profiler", zap.Error(err))
	}
}

// app holds the wired services and everything that must be released on exit
type app struct {
	log        *zap.Logger
	handlers   router.Handlers
	system     *handler.SystemHandler
	jwt        *auth.JWTService
	blacklist  auth.TokenBlacklist
	loginRL    middleware.Limiter
	checkoutRL middleware.Limiter
	hub        *realtime.Hub
	bus        *event.InMemoryEventBus
	stopHub    context.CancelFunc
	closers    []namedCloser
}

type namedCloser struct {
	name string
	io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newApp(ctx context.Context, cfg *config.Config, tel *telemetryProviders, log *zap.Logger) (*app, error) {
	a := &app{log: log}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.onClose("database", db)
	log.Info("Database connected", zap.String("driver", db.Driver))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		DBSystem:        dbSystem(cfg.Database.Driver),
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		LogFullSQL:      cfg.IsDevelopment(),
	}, log); err != nil {
		return nil, fmt.Errorf("register database tracing: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		if rdb, err = cache.NewRedisClient(cfg.Redis); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.onClose("redis", rdb)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Domain events drive the SSE hub and stock alerts
	a.bus = event.NewInMemoryEventBus(log)
	var feed realtime.ChangeFeed
	if rdb != nil {
		feed = cache.NewRedisChangeFeed(rdb,
			cache.WithChangeChannel(cfg.Realtime.Channel),
			cache.WithChangeFeedLogger(log))
	}
	a.hub = realtime.NewHub(realtime.Config{
		MaxClients:     cfg.Realtime.MaxClients,
		ReconnectDelay: cfg.Realtime.ReconnectDelay,
	}, feed, log)
	a.bus.Subscribe(a.hub, a.hub.EventTypes()...)

	stockAlerts := appinv.NewStockBelowThresholdHandler(log).
		WithNotifier(appinv.NewLoggingStockAlertNotifier(log))
	a.bus.Subscribe(stockAlerts, stockAlerts.EventTypes()...)

	logs := appactivity.NewLogService(activityRepo, a.bus, cfg.Shop.LogRetention, log)
	products := catalogapp.NewProductService(productRepo, txScope, logs, a.bus, catalogapp.ProductServiceConfig{
		DefaultMinStock:    cfg.Shop.DefaultMinStock,
		RecommendationTopN: cfg.Shop.RecommendationTopN,
	}, log)

	policy, err := inventory.ParseOversellPolicy(cfg.Shop.OversellPolicy)
	if err != nil {
		return nil, err
	}
	ledger := appinv.NewLedgerService(productRepo, txScope, logs, a.bus, policy, log)

	var cartStore cart.Store = cache.NewInMemoryCartStore(cfg.Cart.TTL)
	if rdb != nil {
		cartStore = cache.NewRedisCartStore(rdb, cfg.Cart.TTL)
	}
	carts := appcart.NewCartService(cartStore, productRepo, log)

	orders := orderapp.NewOrderService(orderRepo, txScope, logs, a.bus, log)
	checkout := orderapp.NewCheckoutService(carts, txScope, ledger, logs, orderRepo, a.bus, orderapp.CheckoutConfig{
		DefaultTable:   cfg.Shop.DefaultTable,
		IdempotencyTTL: cfg.Shop.CheckoutIdempotency,
	}, log)
	if cfg.Shop.WhatsAppNumber != "" {
		handoff, err := messaging.NewWhatsAppHandoff(cfg.Shop.Name, cfg.Shop.WhatsAppNumber)
		if err != nil {
			return nil, err
		}
		checkout.SetHandoff(handoff)
	}
	var idem shared.IdempotencyStore
	if rdb != nil {
		idem = cache.NewRedisIdempotencyStoreWithClient(rdb, "tehraja:checkout:")
	} else {
		store := cache.NewInMemoryIdempotencyStore()
		a.onClose("idempotency store", store)
		idem = store
	}
	checkout.SetIdempotencyStore(idem)

	reportCfg := reportapp.ReportServiceConfig{ShopName: cfg.Shop.Name}
	if cfg.Report.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Report.Timezone)
		if err != nil {
			return nil, fmt.Errorf("report timezone: %w", err)
		}
		reportCfg.Location = loc
	}
	reports := reportapp.NewReportService(orderRepo, productRepo, logs, reportCfg, log)
	if cfg.Report.PDFEnabled {
		renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Report.Timeout,
			ExecPath:       cfg.Report.ChromePath,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			return nil, fmt.Errorf("start pdf renderer: %w", err)
		}
		a.onClose("pdf renderer", renderer)
		reports.SetPrinter(printing.NewSalesReportPDF(renderer))
		reports.SetReceiptPrinter(printing.NewReceiptPDF(renderer))
	}

	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Storage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("object storage: %w", err)
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Object storage bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		products.SetImageStorage(s3)
		if cfg.Storage.ArchiveReports {
			reports.SetArchive(s3)
		}
	}

	if tel.meters.IsEnabled() {
		shopMetrics, err := telemetry.NewShopMetrics(tel.meters.Meter("tehraja.shop"), telemetry.ShopGauges{
			StreamClients: a.hub.ClientCount,
			LowStockCount: ledger.LowStockCount,
		})
		if err != nil {
			return nil, err
		}
		a.onClose("shop metrics", closerFunc(shopMetrics.Stop))
		checkout.SetMetrics(shopMetrics)
		orders.SetMetrics(shopMetrics)
		reports.SetMetrics(shopMetrics)
	}

	a.hub.Register(realtime.TopicProducts, products.Snapshot)
	a.hub.Register(realtime.TopicOrders, orders.Snapshot)
	a.hub.Register(realtime.TopicLogs, logs.Snapshot)
	a.hub.Register("order", orders.OrderSnapshot)

	if err := a.bus.Start(ctx); err != nil {
		return nil, fmt.Errorf("start event bus: %w", err)
	}
	hubCtx, stopHub := context.WithCancel(context.Background())
	a.stopHub = stopHub
	go a.hub.Run(hubCtx)

	if cfg.Database.SeedMenu {
		n, err := products.SeedMenu(ctx, cfg.Shop.SeedStock, cfg.Shop.DefaultMinStock, seedActor)
		if err != nil {
			return nil, fmt.Errorf("seed menu: %w", err)
		}
		if n > 0 {
			log.Info("Menu seeded", zap.Int("products", n))
		}
	}

	a.jwt = auth.NewJWTService(cfg.JWT)
	if rdb != nil {
		a.blacklist = auth.NewRedisTokenBlacklist(rdb)
		a.loginRL = cache.NewRedisRateLimiter(rdb, loginRateLimit, rateLimitWindow, "tehraja:ratelimit:login:")
		a.checkoutRL = cache.NewRedisRateLimiter(rdb, checkoutRateLimit, rateLimitWindow, "tehraja:ratelimit:checkout:")
	} else {
		a.blacklist = auth.NewInMemoryTokenBlacklist()
		loginRL := middleware.NewRateLimiter(loginRateLimit, rateLimitWindow)
		checkoutRL := middleware.NewRateLimiter(checkoutRateLimit, rateLimitWindow)
		a.onClose("login rate limiter", closerFunc(func() error { loginRL.Stop(); return nil }))
		a.onClose("checkout rate limiter", closerFunc(func() error { checkoutRL.Stop(); return nil }))
		a.loginRL, a.checkoutRL = loginRL, checkoutRL
	}
	authService := authapp.NewAuthService(cfg.Staff, a.jwt, a.blacklist, logs, authapp.DefaultAuthServiceConfig(), log)

	a.handlers = router.Handlers{
		Product:   handler.NewProductHandler(products, log),
		Cart:      handler.NewCartHandler(carts, cfg.Cart.SessionHeader, log),
		Checkout:  handler.NewCheckoutHandler(checkout, cfg.Cart.SessionHeader, log),
		Order:     handler.NewOrderHandler(orders, log),
		Activity:  handler.NewActivityHandler(logs, log),
		Inventory: handler.NewInventoryHandler(ledger, log),
		Report:    handler.NewReportHandler(reports, log),
		Auth:      handler.NewAuthHandler(authService, log),
		Stream:    handler.NewStreamHandler(a.hub, cfg.Realtime.Heartbeat, log),
	}

	checks := map[string]handler.Pinger{"database": db.Ping}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	a.system = handler.NewSystemHandler(checks, a.hub.Status, log)

	return a, nil
}

// guards builds the per-group access middleware
func (a *app) guards(cfg *config.Config) router.Guards {
	jwtCfg := middleware.JWTMiddlewareConfig{JWTService: a.jwt, TokenBlacklist: a.blacklist, Logger: a.log}
	optional, streaming := jwtCfg, jwtCfg
	optional.Optional = true
	streaming.AllowQueryToken = true

	// labels and span attributes are recorded again once the staff member is known
	profiling := middleware.ProfilingWithConfig(middleware.ProfilingConfig{Enabled: cfg.Telemetry.ProfilingEnabled})
	staff := []gin.HandlerFunc{
		middleware.JWTAuth(jwtCfg),
		middleware.RequireStaff(a.log),
		middleware.TracingAttributeInjector(),
		profiling,
	}
	return router.Guards{
		Identify: middleware.JWTAuth(optional),
		Staff:    staff,
		Admin:    middleware.RequireAdmin(a.log),
		StreamStaff: []gin.HandlerFunc{
			middleware.JWTAuth(streaming),
			middleware.RequireStaff(a.log),
		},
		LoginLimit:    middleware.RateLimit(a.loginRL, a.log),
		CheckoutLimit: middleware.RateLimit(a.checkoutRL, a.log),
	}
}

// closeStreams disconnects SSE subscribers
func (a *app) closeStreams() {
	a.stopHub()
	if err := a.hub.Close(); err != nil {
		a.log.Error("Error closing realtime hub", zap.Error(err))
	}
}

// close releases resources in reverse order of acquisition
func (a *app) close(ctx context.Context) {
	if err := a.bus.Stop(ctx); err != nil {
		a.log.Error("Error stopping event bus", zap.Error(err))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(); err != nil {
			a.log.Error("Error closing "+c.name, zap.Error(err))
		}
	}
}

func (a *app) onClose(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, Closer: c})
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}
