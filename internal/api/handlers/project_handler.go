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

type ProjectHandler struct {
	projects *services.ProjectService
	audit    *services.AuditService
}

func NewProjectHandler(projects *services.ProjectService, audit *services.AuditService) *ProjectHandler {
	return &ProjectHandler{projects: projects, audit: audit}
}

func (h *ProjectHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/projects", h.List)
	r.POST("/projects", h.Create)
	r.GET("/projects/:id", h.Get)
	r.PUT("/projects/:id", h.Update)
	r.DELETE("/projects/:id", h.Delete)
	r.POST("/projects/:id/permissions", h.GrantCC)
}

type ProjectRequest struct {
	FRN         string `json:"frn" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Customer    string `json:"customer" binding:"required"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (r *ProjectRequest) toInput() (services.ProjectInput, string) {
	in := services.ProjectInput{
		FRN:         r.FRN,
		Name:        r.Name,
		Customer:    r.Customer,
		Description: r.Description,
	}
	if r.StartDate != "" {
		d, err := time.Parse("2006-01-02", r.StartDate)
		if err != nil {
			return in, "start_date must be YYYY-MM-DD"
		}
		in.StartDate = &d
	}
	if r.EndDate != "" {
		d, err := time.Parse("2006-01-02", r.EndDate)
		if err != nil {
			return in, "end_date must be YYYY-MM-DD"
		}
		in.EndDate = &d
	}
	return in, ""
}

func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	project, err := h.projects.Create(user, in)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to create project")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create project"})
		return
	}

	h.audit.Record(user.ID, "create_project", "project", project.ID,
		map[string]interface{}{"frn": project.FRN}, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": project})
}

func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	projects, err := h.projects.List(user)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to list projects")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": projects})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	user, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	project, err := h.projects.Get(user, id)
	if err != nil {
		h.writeServiceError(c, err, "Failed to load project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": project})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	user, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	project, err := h.projects.Update(user, id, in)
	if err != nil {
		h.writeServiceError(c, err, "Failed to update project")
		return
	}

	h.audit.Record(user.ID, "update_project", "project", project.ID, nil, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"success": true, "data": project})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	user, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	if err := h.projects.Delete(user, id); err != nil {
		if errors.Is(err, services.ErrProjectHasRecords) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Project still has savings records"})
			return
		}
		h.writeServiceError(c, err, "Failed to delete project")
		return
	}

	h.audit.Record(user.ID, "delete_project", "project", id, nil, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project deleted"})
}

type GrantCCRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

func (h *ProjectHandler) GrantCC(c *gin.Context) {
	user, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	var req GrantCCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.projects.GrantCC(user, id, req.UserID); err != nil {
		h.writeServiceError(c, err, "Failed to grant permission")
		return
	}

	h.audit.Record(user.ID, "grant_cc", "project", id,
		map[string]interface{}{"grantee": req.UserID}, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Permission granted"})
}

func (h *ProjectHandler) userAndID(c *gin.Context) (models.User, uint, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return models.User{}, 0, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid project ID"})
		return models.User{}, 0, false
	}
	return user, uint(id), true
}

func (h *ProjectHandler) writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Access denied"})
	case errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
	default:
		middleware.GetRequestLogger(c).WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fallback})
	}
}
