package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/tehraja/backend/docs"
	catalogapp "github.com/tehraja/backend/internal/application/catalog"
	"github.com/tehraja/backend/internal/infrastructure/config"
	"github.com/tehraja/backend/internal/infrastructure/logger"
	"github.com/tehraja/backend/internal/infrastructure/telemetry"
	"github.com/tehraja/backend/internal/interfaces/http/middleware"
	"github.com/tehraja/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Teh Raja API
//	@version		1.0
//	@description	Storefront, cashier and reporting API for the Teh Raja tea shop

//	@contact.name	Teh Raja

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// OTLP log export is wired into zap from the start
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Teh Raja backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tel, err := startTelemetry(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	app, err := newApp(ctx, cfg, tel, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}

	middleware.SetupValidator()

	engine, err := router.NewEngine(router.EngineConfig{
		Release:        !cfg.IsDevelopment(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           corsConfig(cfg.HTTP),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		BodyLimits: map[string]int64{
			"/api/v1/products/:id/image": imageUploadLimit,
		},
		Tracing: middleware.TracingConfig{
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       cfg.Telemetry.Enabled,
			SessionHeader: cfg.Cart.SessionHeader,
		},
		MeterProvider: tel.meters,
		Profiling: middleware.ProfilingConfig{
			Enabled:          cfg.Telemetry.ProfilingEnabled,
			SkipPaths:        []string{"/health", "/ready"},
			SkipPathPrefixes: []string{"/swagger", "/api/v1/stream", "/api/v1/staff/stream"},
		},
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}

	engine.GET("/health", app.system.Health)
	engine.GET("/ready", app.system.Ready)
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.NewRouter(engine).
		Register(router.StorefrontGroups(app.handlers, app.guards(cfg))...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	// SSE connections outlive any write deadline
	srv.WriteTimeout = 0

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Streams end first so Shutdown does not wait on open SSE connections
	app.closeStreams()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	app.close(shutdownCtx)
	tel.shutdown(shutdownCtx)
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "log exporter shutdown: %v\n", err)
	}

	log.Info("Server exited gracefully")
}

// imageUploadLimit leaves room for the multipart envelope around a photo
const imageUploadLimit = catalogapp.MaxImageSize + 1<<20

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}
