package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forte-savings/backend/internal/api/middleware"
	"github.com/forte-savings/backend/internal/models"
	"github.com/forte-savings/backend/internal/services"
)

type SavingsHandler struct {
	savings *services.SavingsService
	audit   *services.AuditService
}

func NewSavingsHandler(savings *services.SavingsService, audit *services.AuditService) *SavingsHandler {
	return &SavingsHandler{savings: savings, audit: audit}
}

func (h *SavingsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/savings", h.List)
	r.POST("/savings", h.Create)
	r.PUT("/savings/:id", h.Update)
	r.DELETE("/savings/:id", h.Delete)
}

type SavingsRecordRequest struct {
	ProjectID           uint    `json:"project_id" binding:"required"`
	Date                string  `json:"date" binding:"required"`
	Type                string  `json:"type" binding:"required"`
	Category            string  `json:"category" binding:"required"`
	Price               float64 `json:"price" binding:"required"`
	Unit                int     `json:"unit" binding:"required"`
	Currency            string  `json:"currency" binding:"required"`
	ExplanationCategory string  `json:"explanation_category"`
	ExplanationCustom   string  `json:"explanation_custom"`
}

func (r *SavingsRecordRequest) toInput() (services.RecordInput, string) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return services.RecordInput{}, "date must be YYYY-MM-DD"
	}
	if !models.ValidRecordType(r.Type) {
		return services.RecordInput{}, "type must be Savings or Cost Avoidance"
	}
	if !models.ValidCurrency(r.Currency) {
		return services.RecordInput{}, "currency must be one of TRY, USD, EUR, GBP"
	}
	if r.Price <= 0 {
		return services.RecordInput{}, "price must be greater than zero"
	}
	if r.Unit <= 0 {
		return services.RecordInput{}, "unit must be greater than zero"
	}
	return services.RecordInput{
		ProjectID:           r.ProjectID,
		Date:                date,
		Type:                r.Type,
		Category:            r.Category,
		ExplanationCategory: r.ExplanationCategory,
		ExplanationCustom:   r.ExplanationCustom,
		Price:               r.Price,
		Unit:                r.Unit,
		Currency:            r.Currency,
	}, ""
}

func (h *SavingsHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var req SavingsRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	record, err := h.savings.Create(user, in)
	if err != nil {
		h.writeServiceError(c, err, "Failed to create record")
		return
	}

	h.audit.Record(user.ID, "create_savings_record", "savings_record", record.ID,
		map[string]interface{}{"project_id": record.ProjectID, "total_price": record.TotalPrice},
		c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": record})
}

func (h *SavingsHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid record ID"})
		return
	}

	var req SavingsRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	record, err := h.savings.Update(user, uint(id), in)
	if err != nil {
		h.writeServiceError(c, err, "Failed to update record")
		return
	}

	h.audit.Record(user.ID, "update_savings_record", "savings_record", record.ID, nil,
		c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

func (h *SavingsHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid record ID"})
		return
	}

	if err := h.savings.Delete(user, uint(id)); err != nil {
		h.writeServiceError(c, err, "Failed to delete record")
		return
	}

	h.audit.Record(user.ID, "delete_savings_record", "savings_record", uint(id), nil,
		c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Record deleted"})
}

func (h *SavingsHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var projectID uint
	if raw := c.Query("project_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid project_id"})
			return
		}
		projectID = uint(id)
	}

	records, err := h.savings.List(user, projectID)
	if err != nil {
		h.writeServiceError(c, err, "Failed to list records")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": records})
}

func (h *SavingsHandler) writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Access denied"})
	case errors.Is(err, services.ErrRecordNotFound), errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
	default:
		middleware.GetRequestLogger(c).WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fallback})
	}
}
