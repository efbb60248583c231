package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/config"
	"github.com/forte-savings/backend/internal/models"
	"github.com/forte-savings/backend/internal/services"
)

func newAuthRouter(db *gorm.DB) (*gin.Engine, *services.AuthService) {
	gin.SetMode(gin.TestMode)
	authSvc := services.NewAuthService(db, config.Config{
		JWTSecret: "test-secret-key",
		TokenTTL:  time.Hour,
	})
	h := NewAuthHandler(authSvc, services.NewAuditService(db))

	r := gin.New()
	r.POST("/api/v1/auth/login", h.Login)
	r.POST("/api/v1/auth/register", h.Register)
	return r, authSvc
}

func TestAuthRegisterAndLogin(t *testing.T) {
	db := OpenTestDB(t)
	r, _ := newAuthRouter(db)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"user@forte.example","password":"password123","name":"User"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login",
		`{"email":"user@forte.example","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", "login").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthLogin_FailureAudited(t *testing.T) {
	db := OpenTestDB(t)
	r, _ := newAuthRouter(db)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/login",
		`{"email":"ghost@forte.example","password":"whatever123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", "login_failed").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthLogin_DisabledAccount(t *testing.T) {
	db := OpenTestDB(t)
	r, svc := newAuthRouter(db)

	user, err := svc.Register("user@forte.example", "password123", "User")
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("status", models.StatusDisabled).Error)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/login",
		`{"email":"user@forte.example","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Account disabled")
}

func TestAuthLogin_DatabaseErrorIs500(t *testing.T) {
	db := OpenTestDB(t)
	r, _ := newAuthRouter(db)

	// a query failure is a server fault, not bad credentials
	require.NoError(t, db.Migrator().DropTable(&models.User{}))

	w := doJSON(r, http.MethodPost, "/api/v1/auth/login",
		`{"email":"user@forte.example","password":"password123"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "Invalid credentials")
}

func TestChangePassword_StatusMapping(t *testing.T) {
	db := OpenTestDB(t)
	gin.SetMode(gin.TestMode)

	authSvc := services.NewAuthService(db, config.Config{
		JWTSecret: "test-secret-key",
		TokenTTL:  time.Hour,
	})
	user, err := authSvc.Register("user@forte.example", "password123", "User")
	require.NoError(t, err)

	h := NewAuthHandler(authSvc, services.NewAuditService(db))
	r := gin.New()
	r.POST("/api/v1/auth/change-password", asUser(*user), h.ChangePassword)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/change-password",
		`{"old_password":"wrong-old-pass","new_password":"newpassword123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Old password is incorrect")

	w = doJSON(r, http.MethodPost, "/api/v1/auth/change-password",
		`{"old_password":"password123","new_password":"newpassword123"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Migrator().DropTable(&models.User{}))
	w = doJSON(r, http.MethodPost, "/api/v1/auth/change-password",
		`{"old_password":"newpassword123","new_password":"anotherpass123"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthRegister_Validation(t *testing.T) {
	db := OpenTestDB(t)
	r, _ := newAuthRouter(db)

	// short password
	w := doJSON(r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"user@forte.example","password":"short","name":"User"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// not an email
	w = doJSON(r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"not-an-email","password":"password123","name":"User"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
