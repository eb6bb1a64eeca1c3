package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authapp "github.com/tehraja/backend/internal/application/auth"
	"github.com/tehraja/backend/internal/infrastructure/auth"
)

func TestAuthHandler_LoginLogout(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login",
		body: map[string]string{"username": "admin", "password": testAdminPassword}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login authapp.LoginResponse
	decode(t, w, &login)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, auth.RoleAdmin, login.Staff.Role)

	headers := bearer(login.AccessToken)
	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/auth/me", headers: headers})
	require.Equal(t, http.StatusOK, w.Code)
	var me authapp.StaffInfo
	decode(t, w, &me)
	assert.Equal(t, "admin", me.Username)
	assert.Equal(t, "Admin", me.DisplayName)

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/auth/logout", headers: headers})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/auth/me", headers: headers})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REVOKED", errorCode(t, w))
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login",
		body: map[string]string{"username": "kasir", "password": "wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login",
		body: map[string]string{"username": "kasir"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Lockout(t *testing.T) {
	app := newTestApp(t)
	limit := authapp.DefaultAuthServiceConfig().MaxLoginAttempts

	for range limit {
		app.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login",
			body: map[string]string{"username": "kasir", "password": "wrong"}})
	}
	w := app.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login",
		body: map[string]string{"username": "kasir", "password": testCashierPassword}})
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Equal(t, "ACCOUNT_LOCKED", errorCode(t, w))
}
