package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	orderapp "github.com/tehraja/backend/internal/application/order"
	"github.com/tehraja/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets a client retry a checkout safely
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// CheckoutHandler turns a session's cart into an order
type CheckoutHandler struct {
	BaseHandler
	checkout      *orderapp.CheckoutService
	sessionHeader string
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout *orderapp.CheckoutService, sessionHeader string, logger *zap.Logger) *CheckoutHandler {
	if sessionHeader == "" {
		sessionHeader = DefaultSessionHeader
	}
	return &CheckoutHandler{
		BaseHandler:   newBaseHandler(logger),
		checkout:      checkout,
		sessionHeader: sessionHeader,
	}
}

// Checkout godoc
// @Summary      Check out the cart
// @Description  Places the order, decrements stock and clears the cart in one transaction. A STOCK_CONFLICT names the lines that can no longer be filled and leaves cart and stock untouched. Repeating a request with the same Idempotency-Key returns the original order.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string true "Cart session token"
// @Param        Idempotency-Key header string false "Client-chosen retry key"
// @Param        request body orderapp.CheckoutRequest true "Customer details"
// @Success      201 {object} dto.Response{data=orderapp.CheckoutResponse}
// @Success      200 {object} dto.Response{data=orderapp.CheckoutResponse} "Replayed"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	sessionID := c.GetHeader(h.sessionHeader)
	if sessionID == "" {
		h.ErrorWithCode(c, dto.ErrCodeValidation, "Header "+h.sessionHeader+" is required")
		return
	}
	key := c.GetHeader(IdempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLength {
		h.ErrorWithCode(c, dto.ErrCodeValidation, "Idempotency-Key is too long")
		return
	}

	var req orderapp.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.checkout.Checkout(c.Request.Context(), sessionID, key, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Replayed {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
		return
	}
	h.Created(c, resp)
}
