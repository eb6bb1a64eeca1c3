package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehraja/backend/internal/infrastructure/auth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func tracedRouter(handler gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(TracingConfig{ServiceName: "test", Enabled: true, SessionHeader: "X-Cart-Session"}))
	router.Use(extra...)
	router.Use(TracingAttributeInjector(), SpanErrorMarker())
	router.GET("/api/v1/orders/:id", handler)
	return router
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanNameAndAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/api/v1/orders/abc", map[string]string{
		RequestIDHeader:  "req-1",
		"X-Cart-Session": "sess-9",
	})
	require.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/orders/:id", spans[0].Name())
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "req-1", attrs["request_id"].AsString())
	assert.Equal(t, "sess-9", attrs["cart.session_id"].AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestTracing_OversizedSessionSkipped(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/api/v1/orders/abc", map[string]string{"X-Cart-Session": strings.Repeat("s", 200)})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	_, ok := spanAttrs(spans[0])["cart.session_id"]
	assert.False(t, ok)
}

func TestTracing_StaffAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	svc := newTestJWTService(time.Hour)
	router := tracedRouter(func(c *gin.Context) { c.Status(http.StatusOK) }, JWTAuth(JWTMiddlewareConfig{JWTService: svc}))

	serve(router, http.MethodGet, "/api/v1/orders/abc", map[string]string{
		AuthHeaderKey: BearerPrefix + newTestToken(t, svc, auth.RoleCashier),
	})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "sari", attrs["staff.username"].AsString())
	assert.Equal(t, "cashier", attrs["staff.role"].AsString())
}

func TestSpanErrorMarker(t *testing.T) {
	cases := map[int]string{
		http.StatusBadRequest:          "Client Error",
		http.StatusUnauthorized:        "Unauthorized",
		http.StatusForbidden:           "Forbidden",
		http.StatusNotFound:            "Not Found",
		http.StatusConflict:            "Conflict",
		http.StatusServiceUnavailable:  "Internal Server Error",
		http.StatusInternalServerError: "Internal Server Error",
	}
	for status, message := range cases {
		sr := setupTestTracer(t)
		router := tracedRouter(func(c *gin.Context) { c.Status(status) })
		serve(router, http.MethodGet, "/api/v1/orders/abc", nil)

		spans := sr.Ended()
		require.Len(t, spans, 1, "status %d", status)
		attrs := spanAttrs(spans[0])
		assert.Equal(t, codes.Error, spans[0].Status().Code, "status %d", status)
		assert.Equal(t, message, attrs[SpanAttrErrorMessage].AsString(), "status %d", status)
		assert.Equal(t, int64(status), attrs["http.status_code"].AsInt64())
		if status < http.StatusInternalServerError {
			assert.Equal(t, message, spans[0].Status().Description, "status %d", status)
		}
	}
}

func TestSpanErrorMarker_WithNoSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanErrorMarker(), TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	assert.NotPanics(t, func() { serve(router, http.MethodGet, "/test", nil) })
}

func TestGetRequestID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set(RequestIDHeader, strings.Repeat("r", 300))
	assert.Len(t, getRequestID(c), MaxRequestIDLength)

	c.Set(RequestIDKey, "from-context")
	assert.Equal(t, "from-context", getRequestID(c))
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "tehraja-backend", cfg.ServiceName)
	assert.Equal(t, "X-Cart-Session", cfg.SessionHeader)
}
