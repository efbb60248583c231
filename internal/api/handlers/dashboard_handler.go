package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/api/middleware"
	"github.com/forte-savings/backend/internal/metrics"
	"github.com/forte-savings/backend/internal/reporting"
)

type DashboardHandler struct {
	engine *reporting.Engine
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{engine: reporting.NewEngine(db)}
}

func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/stats", h.Stats)
	r.GET("/dashboard/trend-data", h.TrendData)
}

// Stats serves the aggregated dashboard. Project counts are scoped but
// never period-filtered; savings totals honor the period filter.
func (h *DashboardHandler) Stats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	period := c.Query("period")
	dateFrom := c.Query("date_from")
	dateTo := c.Query("date_to")
	now := time.Now()

	dr, err := reporting.Resolve(period, dateFrom, dateTo, now)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to resolve period"})
		return
	}

	scope := reporting.ScopeFor(user)
	result, err := h.engine.Aggregate(scope, dr, now)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("dashboard aggregation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to compute statistics"})
		return
	}
	metrics.IncAggregation()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
		"filters": gin.H{
			"period":    period,
			"date_from": dateFrom,
			"date_to":   dateTo,
		},
		"user_role":    user.Role,
		"generated_at": now.Format(time.RFC3339),
	})
}

// TrendData serves the chart series for the trend widget.
func (h *DashboardHandler) TrendData(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	period := c.DefaultQuery("period", "12months")
	scope := reporting.ScopeFor(user)
	chart, summary, err := h.engine.Trend(scope, period, time.Now())
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("trend aggregation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to compute trend"})
		return
	}
	metrics.IncAggregation()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"chart_data": chart,
			"summary":    summary,
			"period":     period,
		},
	})
}
