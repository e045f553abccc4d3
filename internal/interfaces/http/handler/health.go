package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/warehouse/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func() error

// Ping calls f
func (f PingerFunc) Ping() error { return f() }

// HealthHandler reports liveness and dependency health
type HealthHandler struct {
	BaseHandler
	startTime time.Time
	checks    map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. Each check is reported under its name.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), checks: checks}
}

// HealthResponse represents the health report
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
}

// Health godoc
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := pingWithContext(ctx, check); err != nil {
			resp.Status = "degraded"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}

func pingWithContext(ctx context.Context, p Pinger) error {
	done := make(chan error, 1)
	go func() { done <- p.Ping() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterRoutes mounts the health route
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}
