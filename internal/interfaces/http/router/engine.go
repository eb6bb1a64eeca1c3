package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/tehraja/backend/internal/infrastructure/logger"
	"github.com/tehraja/backend/internal/infrastructure/telemetry"
	"github.com/tehraja/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineConfig configures the global middleware chain
type EngineConfig struct {
	Release        bool
	TrustedProxies []string
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	// BodyLimits overrides MaxBodySize per full route path
	BodyLimits    map[string]int64
	Tracing       middleware.TracingConfig
	MeterProvider *telemetry.MeterProvider
	Profiling     middleware.ProfilingConfig
	Logger        *zap.Logger
}

// NewEngine creates a gin engine with the global middleware installed in
// order: request id, access log, recovery, CORS, security headers, body
// limit, tracing, metrics and profiling labels.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.Secure(),
		middleware.BodyLimitByRoute(cfg.MaxBodySize, cfg.BodyLimits),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: cfg.MeterProvider,
			Enabled:       cfg.MeterProvider != nil,
			Logger:        log,
		}),
		middleware.ProfilingWithConfig(cfg.Profiling),
	)
	return engine, nil
}
