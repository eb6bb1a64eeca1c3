package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/tehraja/backend/internal/application/catalog"
	"github.com/tehraja/backend/internal/infrastructure/auth"
)

func TestProductHandler_List(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/products"})
	require.Equal(t, http.StatusOK, w.Code)

	var products []catalogapp.ProductResponse
	resp := decode(t, w, &products)
	assert.True(t, resp.Success)
	require.NotEmpty(t, products)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, len(products), resp.Meta.Total)
	for _, p := range products {
		assert.Equal(t, testStock, p.Stock)
		assert.True(t, p.IsAvailable)
	}
}

func TestProductHandler_ListByCategory(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/products?category=fruit"})
	require.Equal(t, http.StatusOK, w.Code)

	var products []catalogapp.ProductResponse
	decode(t, w, &products)
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.Equal(t, "fruit", p.Category)
	}

	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/products?category=coffee"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetByID(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, request{method: http.MethodGet, path: "/api/v1/products/1"})
	require.Equal(t, http.StatusOK, w.Code)
	var p catalogapp.ProductResponse
	decode(t, w, &p)
	assert.Equal(t, "Royal Golden Milk Tea", p.Name)
	assert.Equal(t, int64(18000), p.Price)

	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/products/nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestProductHandler_Recommend(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, request{
		method: http.MethodPost,
		path:   "/api/v1/recommendations",
		body:   map[string]int{"sweet": 8, "creamy": 9, "fruity": 0, "top_n": 2},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var matches []catalogapp.RecommendationResponse
	decode(t, w, &matches)
	require.Len(t, matches, 2)
	assert.Equal(t, "1", matches[0].Product.ID)

	w = app.do(t, request{
		method: http.MethodPost,
		path:   "/api/v1/recommendations",
		body:   map[string]int{"sweet": 11},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestProductHandler_CreateRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	body := map[string]any{
		"id":       "thai-tea",
		"name":     "Thai Tea",
		"price":    16000,
		"category": "milk",
		"taste":    map[string]int{"sweet": 8, "creamy": 7, "fruity": 0},
		"stock":    12,
	}

	w := app.do(t, request{method: http.MethodPost, path: "/api/v1/products", body: body})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/products", body: body,
		headers: bearer(app.token(t, auth.RoleCashier))})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/products", body: body,
		headers: bearer(app.token(t, auth.RoleAdmin))})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p catalogapp.ProductResponse
	decode(t, w, &p)
	assert.Equal(t, "thai-tea", p.ID)
	assert.Equal(t, 12, p.Stock)

	w = app.do(t, request{method: http.MethodPost, path: "/api/v1/products", body: body,
		headers: bearer(app.token(t, auth.RoleAdmin))})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProductHandler_UpdateAndDelete(t *testing.T) {
	app := newTestApp(t)
	admin := bearer(app.token(t, auth.RoleAdmin))

	w := app.do(t, request{method: http.MethodPatch, path: "/api/v1/products/2",
		body: map[string]any{"price": 17000}, headers: admin})
	require.Equal(t, http.StatusOK, w.Code)
	var p catalogapp.ProductResponse
	decode(t, w, &p)
	assert.Equal(t, int64(17000), p.Price)

	w = app.do(t, request{method: http.MethodDelete, path: "/api/v1/products/2", headers: admin})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/products/2"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// deleted products stay hidden from the public listing even when asked
	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/products?include_deleted=true"})
	var products []catalogapp.ProductResponse
	decode(t, w, &products)
	for _, p := range products {
		assert.NotEqual(t, "2", p.ID)
	}
}

func TestProductHandler_ListDeletedForStaff(t *testing.T) {
	app := newTestApp(t)
	admin := bearer(app.token(t, auth.RoleAdmin))

	w := app.do(t, request{method: http.MethodDelete, path: "/api/v1/products/3", headers: admin})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = app.do(t, request{method: http.MethodGet, path: "/api/v1/products?include_deleted=true", headers: admin})
	require.Equal(t, http.StatusOK, w.Code)
	var products []catalogapp.ProductResponse
	decode(t, w, &products)
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "3")
}
