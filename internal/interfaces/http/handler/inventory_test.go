package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/tehraja/backend/internal/application/catalog"
	appinv "github.com/tehraja/backend/internal/application/inventory"
	"github.com/tehraja/backend/internal/infrastructure/auth"
)

func TestInventoryHandler_Restock(t *testing.T) {
	app := newTestApp(t)
	admin := bearer(app.token(t, auth.RoleAdmin))

	w := app.do(t, request{method: http.MethodPost, path: "/api/v1/inventory/1/restock",
		body: map[string]int{"quantity": 5}, headers: admin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stock appinv.StockResponse
	decode(t, w, &stock)
	assert.Equal(t, testStock+5, stock.Stock)
	assert.True(t, stock.IsAvailable)

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/inventory/1/restock",
		body: map[string]int{"quantity": 0}, headers: admin})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/inventory/ghost/restock",
		body: map[string]int{"quantity": 1}, headers: admin})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/inventory/1/restock",
		body: map[string]int{"quantity": 1}, headers: bearer(app.token(t, auth.RoleCashier))})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInventoryHandler_SetStockToZero(t *testing.T) {
	app := newTestApp(t)
	admin := bearer(app.token(t, auth.RoleAdmin))

	w := app.do(t, request{method: http.MethodPut, path: "/api/v1/inventory/4/stock",
		body: map[string]int{"stock": 0}, headers: admin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stock appinv.StockResponse
	decode(t, w, &stock)
	assert.Equal(t, 0, stock.Stock)
	assert.False(t, stock.IsAvailable)

	w = app.do(t, request{method: http.MethodPut, path: "/api/v1/inventory/4/stock",
		body: map[string]any{}, headers: admin})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/inventory/low-stock",
		headers: bearer(app.token(t, auth.RoleCashier))})
	require.Equal(t, http.StatusOK, w.Code)
	var low []appinv.StockResponse
	decode(t, w, &low)
	require.NotEmpty(t, low)
	assert.Equal(t, "4", low[0].ProductID)
}

func TestInventoryHandler_SetAvailability(t *testing.T) {
	app := newTestApp(t)
	admin := bearer(app.token(t, auth.RoleAdmin))

	w := app.do(t, request{method: http.MethodPut, path: "/api/v1/inventory/2/availability",
		body: map[string]bool{"available": false}, headers: admin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stock appinv.StockResponse
	decode(t, w, &stock)
	assert.True(t, stock.Hidden)
	assert.False(t, stock.IsAvailable)
	assert.Equal(t, testStock, stock.Stock)

	// hidden products cannot be added to a cart
	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/cart/lines",
		body: map[string]string{"product_id": "2"}, headers: session("sess-hidden")})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"changed":false`)

	w = app.do(t, request{method: http.MethodPut, path: "/api/v1/inventory/2/availability",
		body: map[string]bool{"available": true}, headers: admin})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/products/2"})
	var p catalogapp.ProductResponse
	decode(t, w, &p)
	assert.True(t, p.IsAvailable)
}
