package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forte-savings/backend/internal/api/middleware"
	"github.com/forte-savings/backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	audit       *services.AuditService
}

func NewAuthHandler(authService *services.AuthService, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{authService: authService, audit: audit}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			h.audit.Record(0, "login_failed", "user", 0,
				map[string]interface{}{"email": req.Email}, c.ClientIP(), c.Request.UserAgent())
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		case errors.Is(err, services.ErrAccountDisabled):
			h.audit.Record(0, "login_failed", "user", 0,
				map[string]interface{}{"email": req.Email}, c.ClientIP(), c.Request.UserAgent())
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Account disabled"})
		default:
			middleware.GetRequestLogger(c).WithError(err).Error("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Login failed"})
		}
		return
	}

	claims, _ := h.authService.ValidateToken(token)
	if claims != nil {
		h.audit.Record(claims.UserID, "login", "user", claims.UserID, nil, c.ClientIP(), c.Request.UserAgent())
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrEmailDomain) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email domain not allowed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Registration failed"})
		return
	}

	h.audit.Record(user.ID, "register", "user", user.ID, nil, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	if err := h.authService.ChangePassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Old password is incorrect"})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("password change failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Password change failed"})
		return
	}

	h.audit.Record(user.ID, "change_password", "user", user.ID, nil, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}
