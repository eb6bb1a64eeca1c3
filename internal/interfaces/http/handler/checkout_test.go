package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/tehraja/backend/internal/application/catalog"
	orderapp "github.com/tehraja/backend/internal/application/order"
	"github.com/tehraja/backend/internal/infrastructure/auth"
)

func (a *testApp) fillCart(t *testing.T, sessionID string, productIDs ...string) {
	t.Helper()
	for _, id := range productIDs {
		w := a.do(t, request{method: http.MethodPost, path: "/api/v1/cart/lines",
			body: map[string]string{"product_id": id}, headers: session(sessionID)})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}

func (a *testApp) checkout(t *testing.T, sessionID, key string) *orderapp.CheckoutResponse {
	t.Helper()
	resp, _ := a.checkoutWithStatus(t, sessionID, key)
	return resp
}

func (a *testApp) checkoutWithStatus(t *testing.T, sessionID, key string) (*orderapp.CheckoutResponse, int) {
	t.Helper()
	headers := session(sessionID)
	if key != "" {
		headers[IdempotencyKeyHeader] = key
	}
	w := a.do(t, request{method: http.MethodPost, path: "/api/v1/checkout",
		body: map[string]string{"customer_name": "Budi", "table": "7"}, headers: headers})
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code, w.Body.String())
	var resp orderapp.CheckoutResponse
	decode(t, w, &resp)
	return &resp, w.Code
}

func TestCheckoutHandler_PlacesOrder(t *testing.T) {
	app := newTestApp(t)
	app.fillCart(t, "sess-co", "1", "1", "2")

	resp := app.checkout(t, "sess-co", "")
	assert.False(t, resp.Replayed)
	assert.Equal(t, "pending", resp.Order.Status)
	assert.Equal(t, "Budi", resp.Order.CustomerName)
	assert.Equal(t, "7", resp.Order.Table)
	assert.Equal(t, int64(18000*2+15000), resp.Order.Total)
	assert.Equal(t, 3, resp.Order.ItemCount)

	// stock went down and the cart is empty
	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/products/1"})
	var p catalogapp.ProductResponse
	decode(t, w, &p)
	assert.Equal(t, testStock-2, p.Stock)

	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/cart", headers: session("sess-co")})
	assert.Contains(t, w.Body.String(), `"lines":[]`)

	// the customer can follow the order without logging in
	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/orders/" + resp.Order.ID})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCheckoutHandler_IdempotentReplay(t *testing.T) {
	app := newTestApp(t)
	app.fillCart(t, "sess-idem", "3")

	first, code := app.checkoutWithStatus(t, "sess-idem", "retry-1")
	assert.Equal(t, http.StatusCreated, code)
	second, code := app.checkoutWithStatus(t, "sess-idem", "retry-1")
	assert.Equal(t, http.StatusOK, code)

	assert.False(t, first.Replayed)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/products/3"})
	var p catalogapp.ProductResponse
	decode(t, w, &p)
	assert.Equal(t, testStock-1, p.Stock)
}

func TestCheckoutHandler_StockConflict(t *testing.T) {
	app := newTestApp(t)
	app.fillCart(t, "sess-conflict", "1", "1", "1")

	w := app.do(t, request{method: http.MethodPut, path: "/api/v1/inventory/1/stock",
		body: map[string]int{"stock": 1}, headers: bearer(app.token(t, auth.RoleAdmin))})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/checkout",
		body: map[string]string{"customer_name": "Budi"}, headers: session("sess-conflict")})
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "STOCK_CONFLICT", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Products)

	// nothing was sold
	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/products/1"})
	var p catalogapp.ProductResponse
	decode(t, w, &p)
	assert.Equal(t, 1, p.Stock)
}

func TestCheckoutHandler_Validation(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, request{method: http.MethodPost, path: "/api/v1/checkout",
		body: map[string]string{"customer_name": "Budi"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/checkout",
		body: map[string]string{"customer_name": "Budi"}, headers: session("sess-empty")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	app.fillCart(t, "sess-noname", "1")
	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/checkout",
		body: map[string]string{"table": "2"}, headers: session("sess-noname")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
