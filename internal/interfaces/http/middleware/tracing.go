// Package middleware provides HTTP middleware for the storefront API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxSessionIDLength bounds the cart session id copied onto spans
const MaxSessionIDLength = 64

// SpanAttrErrorMessage carries the error summary set by SpanErrorMarker
const SpanAttrErrorMessage = "http.error_message"

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
	// SessionHeader names the cart session header recorded on spans
	SessionHeader string
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName:   "tehraja-backend",
		Enabled:       true,
		SessionHeader: "X-Cart-Session",
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin. The span name follows otelgin:
// "GET /api/v1/products/:id". TracingAttributeInjector adds the request,
// session and staff attributes once they are known.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	baseMiddleware := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		c.Set(sessionHeaderKey, cfg.SessionHeader)
		baseMiddleware(c)
	}
}

// sessionHeaderKey tells TracingAttributeInjector which header holds the
// cart session
const sessionHeaderKey = "tracing_session_header"

// enrichSpanWithAttributes adds request and staff attributes to span.
func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if requestID := getRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if header := c.GetString(sessionHeaderKey); header != "" {
		if session := c.GetHeader(header); session != "" && len(session) <= MaxSessionIDLength {
			span.SetAttributes(attribute.String("cart.session_id", session))
		}
	}
	if claims := GetJWTClaims(c); claims != nil {
		span.SetAttributes(
			attribute.String("staff.username", claims.Username),
			attribute.String("staff.role", string(claims.Role)),
		)
	}
}

// getRequestID retrieves the request ID from the gin context or header.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	headerID := c.GetHeader(RequestIDHeader)
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// SpanErrorMarker marks the span as failed for 4xx/5xx responses and tags
// it with http.error_message. Place it after Tracing. otelgin sets the
// status of 5xx spans again once the chain returns, replacing the
// description, so the attribute is the stable place to read the message.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}

		var errorMessage string
		switch {
		case statusCode >= http.StatusInternalServerError:
			errorMessage = "Internal Server Error"
		case statusCode == http.StatusUnauthorized:
			errorMessage = "Unauthorized"
		case statusCode == http.StatusForbidden:
			errorMessage = "Forbidden"
		case statusCode == http.StatusNotFound:
			errorMessage = "Not Found"
		case statusCode == http.StatusConflict:
			errorMessage = "Conflict"
		default:
			errorMessage = "Client Error"
		}
		span.SetStatus(codes.Error, errorMessage)
		span.SetAttributes(
			attribute.Int("http.status_code", statusCode),
			attribute.String(SpanAttrErrorMessage, errorMessage),
		)
	}
}

// TracingAttributeInjector copies request, session and staff attributes
// onto the current span. Place it after Tracing and JWTAuth.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}
		c.Next()
	}
}
