package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/api/middleware"
	"github.com/forte-savings/backend/internal/models"
	"github.com/forte-savings/backend/internal/services"
)

// asUser bypasses token validation and injects the caller directly, so
// handler tests exercise handler logic rather than the auth middleware.
func asUser(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.ID)
		c.Set(middleware.RoleKey, user.Role)
		c.Set(middleware.UserKey, user)
		c.Next()
	}
}

func newTestRouter(db *gorm.DB, user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	audit := services.NewAuditService(db)

	api := r.Group("/api/v1", asUser(user))
	NewSavingsHandler(services.NewSavingsService(db), audit).RegisterRoutes(api)
	NewProjectHandler(services.NewProjectService(db), audit).RegisterRoutes(api)
	NewDashboardHandler(db).RegisterRoutes(api)
	NewReportHandler(db, audit).RegisterRoutes(api)
	return r
}

func seedTestUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Email: email, Name: email, Role: role, Status: models.StatusActive, UUID: email}
	require.NoError(t, user.SetPassword("secret12345"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedTestProject(t *testing.T, db *gorm.DB, owner models.User, frn string) *models.Project {
	t.Helper()
	project, err := services.NewProjectService(db).Create(owner, services.ProjectInput{
		FRN:      frn,
		Name:     "Project " + frn,
		Customer: "Customer",
	})
	require.NoError(t, err)
	return project
}

func seedTestRecord(t *testing.T, db *gorm.DB, user models.User, projectID uint, recordType, currency string, price float64, unit int) *models.SavingsRecord {
	t.Helper()
	record, err := services.NewSavingsService(db).Create(user, services.RecordInput{
		ProjectID: projectID,
		Date:      time.Now().AddDate(0, 0, -1),
		Type:      recordType,
		Category:  "General",
		Price:     price,
		Unit:      unit,
		Currency:  currency,
	})
	require.NoError(t, err)
	return record
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}
