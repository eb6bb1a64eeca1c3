package handler

import (
	"github.com/gin-gonic/gin"
	authapp "github.com/tehraja/backend/internal/application/auth"
	"github.com/tehraja/backend/internal/interfaces/http/dto"
	"github.com/tehraja/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuthHandler signs staff in and out
type AuthHandler struct {
	BaseHandler
	authService *authapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *authapp.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{BaseHandler: newBaseHandler(logger), authService: authService}
}

// Login godoc
// @Summary      Staff login
// @Description  Returns a bearer token for the admin or cashier account. Repeated failures lock the username for a while.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body authapp.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=authapp.LoginResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      423 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req authapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout godoc
// @Summary      Staff logout
// @Description  Revokes the presented token
// @Tags         auth
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetJWTClaims(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @Summary      Current staff member
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=authapp.StaffInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.ErrorWithCode(c, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	h.Success(c, authapp.StaffInfo{
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
	})
}
