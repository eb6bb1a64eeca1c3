package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tehraja/backend/internal/infrastructure/realtime"
	"github.com/tehraja/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Version is stamped at build time with -ldflags
var Version = "dev"

// Pinger checks a dependency
type Pinger func(ctx context.Context) error

// SystemHandler serves liveness, readiness and build information
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	checks    map[string]Pinger
	status    func() realtime.SyncStatus
}

// NewSystemHandler creates a new SystemHandler. checks are run by Ready;
// status reports the realtime hub's link to the change feed and may be nil.
func NewSystemHandler(checks map[string]Pinger, status func() realtime.SyncStatus, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: newBaseHandler(logger),
		startTime:   time.Now(),
		checks:      checks,
		status:      status,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Teh Raja API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// ReadyResponse lists each dependency check
type ReadyResponse struct {
	Ready    bool                 `json:"ready"`
	Checks   map[string]string    `json:"checks"`
	Realtime *realtime.SyncStatus `json:"realtime,omitempty"`
}

// Health godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "Teh Raja API",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Pings the database and other dependencies. A disconnected change feed is reported but does not fail readiness.
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=ReadyResponse}
// @Failure      503 {object} dto.Response{data=ReadyResponse}
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	resp := ReadyResponse{Ready: true, Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = err.Error()
			resp.Ready = false
			continue
		}
		resp.Checks[name] = "ok"
	}
	if h.status != nil {
		st := h.status()
		resp.Realtime = &st
	}

	if !resp.Ready {
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
		return
	}
	h.Success(c, resp)
}
