package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/api/middleware"
	"github.com/forte-savings/backend/internal/models"
	"github.com/forte-savings/backend/internal/services"
)

// UserHandler covers admin user management.
type UserHandler struct {
	DB    *gorm.DB
	audit *services.AuditService
}

func NewUserHandler(db *gorm.DB, audit *services.AuditService) *UserHandler {
	return &UserHandler{DB: db, audit: audit}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/admin/users", h.List)
	r.PUT("/admin/users/:id", h.Update)
}

func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": users})
}

type UpdateUserRequest struct {
	Role   string `json:"role"`
	Status string `json:"status"`
	Name   string `json:"name"`
}

// Update changes role, status or display name. Only super admins may
// promote to super_admin.
func (h *UserHandler) Update(c *gin.Context) {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	if req.Role != "" {
		if req.Role != models.RoleUser && req.Role != models.RoleAdmin && req.Role != models.RoleSuperAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid role"})
			return
		}
		if req.Role == models.RoleSuperAdmin && admin.Role != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Only super admins may grant super_admin"})
			return
		}
		user.Role = req.Role
	}
	if req.Status != "" {
		if req.Status != models.StatusActive && req.Status != models.StatusDisabled {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status"})
			return
		}
		user.Status = req.Status
	}
	if req.Name != "" {
		user.Name = req.Name
	}

	if err := h.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user"})
		return
	}

	h.audit.Record(admin.ID, "update_user", "user", user.ID,
		map[string]interface{}{"role": user.Role, "status": user.Status},
		c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}
