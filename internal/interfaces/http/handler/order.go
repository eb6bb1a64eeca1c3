package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/tehraja/backend/internal/application/order"
	"github.com/tehraja/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// OrderHandler serves order reads, status changes and the bulk reset
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler:  newBaseHandler(logger),
		orderService: orderService,
	}
}

// GetByID godoc
// @Summary      Get an order
// @Description  Customers use the order id returned by checkout to follow their order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List godoc
// @Summary      List orders
// @Description  Newest first
// @Tags         orders
// @Produce      json
// @Param        status query string false "pending, processing, completed or cancelled"
// @Param        from query string false "RFC 3339 lower bound"
// @Param        to query string false "RFC 3339 upper bound"
// @Param        limit query int false "At most this many orders"
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var req orderapp.ListOrdersRequest
	if !h.bindQuery(c, &req) {
		return
	}
	orders, err := h.orderService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, orders, len(orders))
}

// UpdateStatus godoc
// @Summary      Move an order to a new status
// @Description  pending -> processing -> completed; pending or processing -> cancelled
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body orderapp.UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req orderapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Reset godoc
// @Summary      Delete all orders and activity logs
// @Description  Requires {"confirm": true}. Products and stock are kept.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body orderapp.ResetRequest true "Confirmation"
// @Success      200 {object} dto.Response{data=orderapp.ResetResponse}
// @Failure      428 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reset [post]
func (h *OrderHandler) Reset(c *gin.Context) {
	var req orderapp.ResetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.Reset(c.Request.Context(), req.Confirm, middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.logger.Warn("Orders and logs reset",
		zap.String("actor", middleware.Actor(c)),
		zap.Int64("orders", resp.OrdersDeleted),
		zap.Int64("logs", resp.LogsDeleted))
	h.Success(c, resp)
}
