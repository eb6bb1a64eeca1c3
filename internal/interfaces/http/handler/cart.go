package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/tehraja/backend/internal/application/cart"
	"go.uber.org/zap"
)

// DefaultSessionHeader carries the client's cart session token
const DefaultSessionHeader = "X-Cart-Session"

// CartHandler serves the per-session cart
type CartHandler struct {
	BaseHandler
	cartService   *cartapp.CartService
	sessionHeader string
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService, sessionHeader string, logger *zap.Logger) *CartHandler {
	if sessionHeader == "" {
		sessionHeader = DefaultSessionHeader
	}
	return &CartHandler{
		BaseHandler:   newBaseHandler(logger),
		cartService:   cartService,
		sessionHeader: sessionHeader,
	}
}

// session returns the request's session token, issuing a new one when the
// client has none. The token is echoed in the response header.
func (h *CartHandler) session(c *gin.Context) string {
	id := c.GetHeader(h.sessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(h.sessionHeader, id)
	return id
}

// Get godoc
// @Summary      Get the cart
// @Description  A request without a session header starts a new session, returned in X-Cart-Session
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session token"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.cartService.Get(c.Request.Context(), h.session(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddLine godoc
// @Summary      Add one unit of a product
// @Description  Refused silently (changed=false) when the product is not purchasable or the cart already holds all of its stock
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session token"
// @Param        request body cartapp.AddLineRequest true "Product"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/lines [post]
func (h *CartHandler) AddLine(c *gin.Context) {
	var req cartapp.AddLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.Add(c.Request.Context(), h.session(c), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// SetQuantity godoc
// @Summary      Set a line's quantity
// @Description  Zero or less removes the line; larger quantities are checked against live stock
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string true "Cart session token"
// @Param        productId path string true "Product ID"
// @Param        request body cartapp.SetQuantityRequest true "Quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/lines/{productId} [patch]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	var req cartapp.SetQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.SetQuantity(c.Request.Context(), h.session(c), c.Param("productId"), req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// SetNote godoc
// @Summary      Attach a note to a line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string true "Cart session token"
// @Param        productId path string true "Product ID"
// @Param        request body cartapp.SetNoteRequest true "Note"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /cart/lines/{productId}/note [put]
func (h *CartHandler) SetNote(c *gin.Context) {
	var req cartapp.SetNoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.SetNote(c.Request.Context(), h.session(c), c.Param("productId"), req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveLine godoc
// @Summary      Remove a line
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string true "Cart session token"
// @Param        productId path string true "Product ID"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /cart/lines/{productId} [delete]
func (h *CartHandler) RemoveLine(c *gin.Context) {
	cart, err := h.cartService.Remove(c.Request.Context(), h.session(c), c.Param("productId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Param        X-Cart-Session header string true "Cart session token"
// @Success      204
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), h.session(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
