package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/api/middleware"
	"github.com/forte-savings/backend/internal/metrics"
	"github.com/forte-savings/backend/internal/reporting"
	"github.com/forte-savings/backend/internal/services"
)

type ReportHandler struct {
	engine *reporting.Engine
	audit  *services.AuditService
}

func NewReportHandler(db *gorm.DB, audit *services.AuditService) *ReportHandler {
	return &ReportHandler{engine: reporting.NewEngine(db), audit: audit}
}

func (h *ReportHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/reports/export-csv", h.ExportCSV)
	r.GET("/reports/export-excel", h.ExportExcel)
	r.GET("/reports/export-pdf", h.ExportPDF)
}

func (h *ReportHandler) loadRows(c *gin.Context) ([]reporting.ExportRow, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return nil, false
	}

	dr, err := reporting.Resolve(c.Query("period"), c.Query("date_from"), c.Query("date_to"), time.Now())
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to resolve period"})
		return nil, false
	}

	rows, err := h.engine.ExportRows(reporting.ScopeFor(user), dr)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("export query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to build report"})
		return nil, false
	}

	h.audit.Record(user.ID, "export_report", "report", 0,
		map[string]interface{}{"rows": len(rows), "path": c.FullPath()},
		c.ClientIP(), c.Request.UserAgent())
	return rows, true
}

func exportFilename(ext string) string {
	return fmt.Sprintf("savings-report-%s.%s", time.Now().Format("2006-01-02"), ext)
}

func (h *ReportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}
	metrics.IncExport("csv")
	c.Header("Content-Disposition", "attachment; filename="+exportFilename("csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", reporting.FormatCSV(rows))
}

// ExportExcel serves an HTML table with an Excel content type. Not real
// XLSX; spreadsheet readers accept the HTML form and legacy clients
// depend on it.
func (h *ReportHandler) ExportExcel(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}
	metrics.IncExport("excel")
	c.Header("Content-Disposition", "attachment; filename="+exportFilename("xls"))
	c.Data(http.StatusOK, "application/vnd.ms-excel; charset=utf-8", reporting.FormatExcelHTML(rows, time.Now()))
}

// ExportPDF serves the same table flavored for PDF-capable viewers.
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}
	metrics.IncExport("pdf")
	c.Header("Content-Disposition", "attachment; filename="+exportFilename("pdf"))
	c.Data(http.StatusOK, "application/pdf", reporting.FormatPDFHTML(rows, time.Now()))
}
