package handler

import (
	"github.com/gin-gonic/gin"
	appactivity "github.com/tehraja/backend/internal/application/activity"
	"go.uber.org/zap"
)

// ActivityHandler serves the audit trail
type ActivityHandler struct {
	BaseHandler
	logs *appactivity.LogService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(logs *appactivity.LogService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{BaseHandler: newBaseHandler(logger), logs: logs}
}

type listLogsQuery struct {
	Limit int `form:"limit" binding:"gte=0,lte=1000"`
}

// List godoc
// @Summary      List activity log entries
// @Description  Newest first, within the retained window
// @Tags         logs
// @Produce      json
// @Param        limit query int false "At most this many entries"
// @Success      200 {object} dto.Response{data=[]appactivity.EntryResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /logs [get]
func (h *ActivityHandler) List(c *gin.Context) {
	var q listLogsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	entries, err := h.logs.List(c.Request.Context(), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, entries, len(entries))
}
