// Package handlers provides the HTTP request handlers of the translator API.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/buildinfo"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// HealthHandler serves probes, build information and the public health summary.
type HealthHandler struct {
	registry   ports.HealthRegistry
	descriptor buildinfo.Descriptor
	started    time.Time
}

// NewHealthHandler creates a health handler. Uptime is measured from now.
func NewHealthHandler(registry ports.HealthRegistry, descriptor buildinfo.Descriptor) *HealthHandler {
	return &HealthHandler{
		registry:   registry,
		descriptor: descriptor,
		started:    time.Now(),
	}
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles /-/live. It never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness handles /-/ready: 503 when a required check fails, 200 otherwise.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	c.JSON(statusFor(result), readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

type buildResponse struct {
	buildinfo.Descriptor

	Modules []buildinfo.Module `json:"modules,omitempty"`
}

// Build handles /-/build.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, buildResponse{Descriptor: h.descriptor, Modules: buildinfo.Modules()})
}

type healthSummary struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    float64           `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// Summary handles /api/health. It reports each dependency by name with
// its status, and the uptime in seconds.
func (h *HealthHandler) Summary(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	services := make(map[string]string, len(result.Checks))
	for name, cr := range result.Checks {
		services[name] = string(cr.Status)
	}

	c.JSON(statusFor(result), healthSummary{
		Status:    string(result.Status),
		Timestamp: result.Timestamp.UTC(),
		Uptime:    time.Since(h.started).Seconds(),
		Version:   h.descriptor.Version,
		Services:  services,
	})
}

// RegisterProbes mounts /live, /ready and /build on rg.
func (h *HealthHandler) RegisterProbes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.Build)
}

func statusFor(result *ports.HealthResult) int {
	if result.Status == ports.HealthStatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
