package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/forte-savings/backend/internal/models"
	"github.com/forte-savings/backend/internal/services"
)

const (
	UserIDKey = "userID"
	RoleKey   = "role"
	UserKey   = "user"
)

// AuthMiddleware validates the bearer token (or auth cookie) and loads the
// caller into the context. Disabled accounts are rejected even with a
// valid token.
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("auth_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header required"})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}

		user, err := authService.GetUserByID(claims.UserID)
		if err != nil || user.Status != models.StatusActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Account not available"})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(RoleKey, user.Role)
		c.Set(UserKey, *user)
		c.Next()
	}
}

// RequireAdmin allows only admin and super_admin callers through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(RoleKey)
		r, _ := role.(string)
		if r != models.RoleAdmin && r != models.RoleSuperAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
