package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forte-savings/backend/internal/api/middleware"
	"github.com/forte-savings/backend/internal/services"
)

// MonitoringHandler serves the admin monitoring endpoints. Numbers come
// from audit-log action counts, not latency instrumentation.
type MonitoringHandler struct {
	monitoring *services.MonitoringService
}

func NewMonitoringHandler(monitoring *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{monitoring: monitoring}
}

func (h *MonitoringHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/admin/monitoring/performance", h.Performance)
	r.GET("/admin/monitoring/system-health", h.SystemHealth)
}

func (h *MonitoringHandler) Performance(c *gin.Context) {
	stats, err := h.monitoring.Performance(time.Now())
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("performance stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func (h *MonitoringHandler) SystemHealth(c *gin.Context) {
	health, err := h.monitoring.Health(time.Now())
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("system health failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to compute health"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": health})
}
