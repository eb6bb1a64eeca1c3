package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tehraja/backend/internal/infrastructure/auth"
	"github.com/tehraja/backend/internal/infrastructure/logger"
	"github.com/tehraja/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	// TokenQueryKey carries the token for EventSource clients, which cannot
	// set headers
	TokenQueryKey = "access_token"
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// AllowQueryToken accepts ?access_token= when no header is sent
	AllowQueryToken bool
	// Optional lets requests without any token through unauthenticated.
	// A token that is present must still be valid.
	Optional bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// JWTAuth rejects requests without a valid, unrevoked staff token
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Optional && c.GetHeader(AuthHeaderKey) == "" && (!cfg.AllowQueryToken || c.Query(TokenQueryKey) == "") {
			c.Next()
			return
		}
		tokenString, err := extractToken(c, cfg.AllowQueryToken)
		if err != nil {
			abortAuth(c, cfg, err)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			abortAuth(c, cfg, err)
			return
		}

		if cfg.TokenBlacklist != nil && claims.ID != "" {
			revoked, err := cfg.TokenBlacklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// fail open: a blacklist outage must not lock staff out
				if cfg.Logger != nil {
					cfg.Logger.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
				}
			} else if revoked {
				abortAuth(c, cfg, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithStaff(c.Request.Context(), claims.Username))

		c.Next()
	}
}

func extractToken(c *gin.Context, allowQuery bool) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		if allowQuery {
			if q := c.Query(TokenQueryKey); q != "" {
				return q, nil
			}
		}
		return "", auth.ErrInvalidToken
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

func abortAuth(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path))
	}

	code, message := dto.ErrCodeTokenInvalid, "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case c.GetHeader(AuthHeaderKey) == "" && c.Query(TokenQueryKey) == "":
		code, message = dto.ErrCodeUnauthorized, "Authentication required"
	}
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// Actor returns the name recorded in the activity log for this request:
// the staff display name, or "system" when unauthenticated
func Actor(c *gin.Context) string {
	claims := GetJWTClaims(c)
	if claims == nil {
		return "system"
	}
	if claims.DisplayName != "" {
		return claims.DisplayName
	}
	return claims.Username
}
