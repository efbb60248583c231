package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forte-savings/backend/internal/models"
)

func TestExportCSV(t *testing.T) {
	db := OpenTestDB(t)
	user := seedTestUser(t, db, "owner@forte.example", models.RoleUser)
	project := seedTestProject(t, db, user, "FRN-1")
	seedTestRecord(t, db, user, project.ID, models.TypeSavings, "TRY", 1234.5, 2)
	r := newTestRouter(db, user)

	w := doJSON(r, http.MethodGet, "/api/v1/reports/export-csv", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=savings-report-")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"), "CSV must carry a UTF-8 BOM")
	assert.Contains(t, body, "FRN;Project;Customer")
	assert.Contains(t, body, "2.469,00")

	// exports are audited
	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", "export_report").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestExportExcel(t *testing.T) {
	db := OpenTestDB(t)
	user := seedTestUser(t, db, "owner@forte.example", models.RoleUser)
	project := seedTestProject(t, db, user, "FRN-1")
	seedTestRecord(t, db, user, project.ID, models.TypeSavings, "TRY", 100, 3)
	r := newTestRouter(db, user)

	w := doJSON(r, http.MethodGet, "/api/v1/reports/export-excel", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/vnd.ms-excel; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xls")
	assert.Contains(t, w.Body.String(), "<table>")
	assert.Contains(t, w.Body.String(), "Total TRY")
}

func TestExportPDF(t *testing.T) {
	db := OpenTestDB(t)
	user := seedTestUser(t, db, "owner@forte.example", models.RoleUser)
	project := seedTestProject(t, db, user, "FRN-1")
	seedTestRecord(t, db, user, project.ID, models.TypeSavings, "TRY", 100, 3)
	r := newTestRouter(db, user)

	w := doJSON(r, http.MethodGet, "/api/v1/reports/export-pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".pdf")
	assert.Contains(t, w.Body.String(), "<table>")
}

func TestExport_ScopedToCaller(t *testing.T) {
	db := OpenTestDB(t)
	owner := seedTestUser(t, db, "owner@forte.example", models.RoleUser)
	other := seedTestUser(t, db, "other@forte.example", models.RoleUser)
	project := seedTestProject(t, db, owner, "FRN-1")
	seedTestRecord(t, db, owner, project.ID, models.TypeSavings, "TRY", 100, 1)

	r := newTestRouter(db, other)
	w := doJSON(r, http.MethodGet, "/api/v1/reports/export-csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "FRN-1", "foreign projects must not leak into exports")
}

func TestExport_InvalidDatesRejected(t *testing.T) {
	db := OpenTestDB(t)
	user := seedTestUser(t, db, "owner@forte.example", models.RoleUser)
	r := newTestRouter(db, user)

	w := doJSON(r, http.MethodGet, "/api/v1/reports/export-csv?date_from=bogus&date_to=2025-01-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
