package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/tehraja/backend/internal/infrastructure/auth"
	"github.com/tehraja/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RequireRole admits only staff holding one of roles. It must run after
// JWTAuth.
func RequireRole(log *zap.Logger, roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeUnauthorized),
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}
		if !slices.Contains(roles, claims.Role) {
			if log != nil {
				log.Warn("Role denied",
					zap.String("username", claims.Username),
					zap.String("role", string(claims.Role)),
					zap.String("path", c.FullPath()))
			}
			c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeForbidden),
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Your role cannot perform this action", c.GetString(RequestIDKey)))
			return
		}
		c.Next()
	}
}

// RequireAdmin admits only the administrator
func RequireAdmin(log *zap.Logger) gin.HandlerFunc {
	return RequireRole(log, auth.RoleAdmin)
}

// RequireStaff admits administrator and cashier
func RequireStaff(log *zap.Logger) gin.HandlerFunc {
	return RequireRole(log, auth.RoleAdmin, auth.RoleCashier)
}
