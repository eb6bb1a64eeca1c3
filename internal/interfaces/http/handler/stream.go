package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tehraja/backend/internal/infrastructure/realtime"
	"github.com/tehraja/backend/internal/interfaces/http/dto"
	"github.com/tehraja/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EventHeartbeat keeps idle connections open through proxies
const EventHeartbeat = "heartbeat"

// StreamHandler serves Server-Sent Events backed by the realtime hub
type StreamHandler struct {
	BaseHandler
	hub       *realtime.Hub
	heartbeat time.Duration
}

// NewStreamHandler creates a new StreamHandler. A non-positive heartbeat
// defaults to 30s.
func NewStreamHandler(hub *realtime.Hub, heartbeat time.Duration, logger *zap.Logger) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &StreamHandler{BaseHandler: newBaseHandler(logger), hub: hub, heartbeat: heartbeat}
}

// Products godoc
// @Summary      Menu stream
// @Description  Sends the full product list on connect and after every change
// @Tags         stream
// @Produce      text/event-stream
// @Success      200 {string} string "SSE stream"
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stream/products [get]
func (h *StreamHandler) Products(c *gin.Context) {
	h.serve(c, realtime.TopicProducts)
}

// Order godoc
// @Summary      Order status stream
// @Description  Sends the order on connect and whenever its status changes
// @Tags         stream
// @Produce      text/event-stream
// @Param        id path string true "Order ID"
// @Success      200 {string} string "SSE stream"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/stream [get]
func (h *StreamHandler) Order(c *gin.Context) {
	h.serve(c, realtime.OrderTopic(c.Param("id")))
}

// Topic godoc
// @Summary      Staff stream
// @Description  products, orders or logs. EventSource clients pass the token as access_token.
// @Tags         stream
// @Produce      text/event-stream
// @Param        topic path string true "products, orders or logs"
// @Param        access_token query string false "Bearer token"
// @Success      200 {string} string "SSE stream"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /staff/stream/{topic} [get]
func (h *StreamHandler) Topic(c *gin.Context) {
	switch topic := c.Param("topic"); topic {
	case realtime.TopicProducts, realtime.TopicOrders, realtime.TopicLogs:
		h.serve(c, topic)
	default:
		h.BadRequest(c, "Unknown topic "+topic)
	}
}

func (h *StreamHandler) serve(c *gin.Context, topic string) {
	ctx := c.Request.Context()

	// load first so an unknown order is a plain 404 rather than an empty stream
	snapshot, err := h.hub.Snapshot(ctx, topic)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	client, err := h.hub.Subscribe(topic)
	if err != nil {
		if errors.Is(err, realtime.ErrTooManyClients) {
			h.ErrorWithCode(c, dto.ErrCodeUnavailable, "Too many live connections, retry later")
			return
		}
		h.HandleError(c, err)
		return
	}
	defer h.hub.Unsubscribe(client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	h.logger.Debug("Stream client connected",
		zap.String("client_id", client.ID),
		zap.String("topic", topic),
		zap.String("actor", middleware.Actor(c)))

	c.SSEvent(realtime.EventSnapshot, snapshot)
	c.SSEvent(realtime.EventSyncStatus, h.hub.Status())
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("Stream client disconnected", zap.String("client_id", client.ID))
			return
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			c.SSEvent(ev.Name, ev.Data)
			c.Writer.Flush()
		case now := <-ticker.C:
			c.SSEvent(EventHeartbeat, gin.H{"timestamp": now.Unix()})
			c.Writer.Flush()
		}
	}
}
