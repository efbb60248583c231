package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsnName := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dsnName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectPermission{},
		&models.SavingsRecord{},
		&models.AuditLog{},
	))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Email: email, Name: email, Role: role, Status: models.StatusActive, UUID: email}
	require.NoError(t, user.SetPassword("secret12345"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newTestProject(t *testing.T, db *gorm.DB, owner models.User, frn string) *models.Project {
	t.Helper()
	project, err := NewProjectService(db).Create(owner, ProjectInput{
		FRN:      frn,
		Name:     "Project " + frn,
		Customer: "Customer",
	})
	require.NoError(t, err)
	return project
}

func recordInput(projectID uint, recordType, currency string, price float64, unit int) RecordInput {
	return RecordInput{
		ProjectID: projectID,
		Date:      time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		Type:      recordType,
		Category:  "General",
		Price:     price,
		Unit:      unit,
		Currency:  currency,
	}
}

func projectTotal(t *testing.T, db *gorm.DB, projectID uint) float64 {
	t.Helper()
	var project models.Project
	require.NoError(t, db.First(&project, projectID).Error)
	return project.TotalSavings
}
