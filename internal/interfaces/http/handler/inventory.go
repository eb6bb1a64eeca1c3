package handler

import (
	"github.com/gin-gonic/gin"
	appinv "github.com/tehraja/backend/internal/application/inventory"
	"github.com/tehraja/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// InventoryHandler serves stock adjustments. Every write goes through the
// ledger.
type InventoryHandler struct {
	BaseHandler
	ledger *appinv.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger *appinv.LedgerService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{BaseHandler: newBaseHandler(logger), ledger: ledger}
}

// Restock godoc
// @Summary      Add stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body appinv.RestockRequest true "Units to add"
// @Success      200 {object} dto.Response{data=appinv.StockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/{id}/restock [post]
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req appinv.RestockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	stock, err := h.ledger.Restock(c.Request.Context(), c.Param("id"), req.Quantity, middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// SetStock godoc
// @Summary      Set an absolute stock count
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body appinv.SetStockRequest true "Stock"
// @Success      200 {object} dto.Response{data=appinv.StockResponse}
// @Security     BearerAuth
// @Router       /inventory/{id}/stock [put]
func (h *InventoryHandler) SetStock(c *gin.Context) {
	var req appinv.SetStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	stock, err := h.ledger.SetStock(c.Request.Context(), c.Param("id"), *req.Stock, middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// SetAvailability godoc
// @Summary      Hide or unhide a product
// @Description  false hides regardless of stock; true clears the hide flag and availability follows stock again
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body appinv.SetAvailabilityRequest true "Availability"
// @Success      200 {object} dto.Response{data=appinv.StockResponse}
// @Security     BearerAuth
// @Router       /inventory/{id}/availability [put]
func (h *InventoryHandler) SetAvailability(c *gin.Context) {
	var req appinv.SetAvailabilityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	stock, err := h.ledger.SetAvailability(c.Request.Context(), c.Param("id"), *req.Available, middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// LowStock godoc
// @Summary      Products at or below their minimum stock
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appinv.StockResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.ledger.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, items, len(items))
}
