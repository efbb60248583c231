package services

import (
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/logger"
	"github.com/forte-savings/backend/internal/models"
)

// Drift is one project whose denormalized total diverged from its records.
type Drift struct {
	ProjectID uint
	FRN       string
	Cached    float64
	Actual    float64
}

// ReconcileService re-derives every project's total_savings on a schedule.
// The cache is already recomputed transactionally on each write; the
// nightly pass catches drift from out-of-band changes and alerts admins.
// It also prunes audit logs past the retention horizon.
type ReconcileService struct {
	DB           *gorm.DB
	Notification *NotificationService
	Audit        *AuditService

	RetentionDays int
	cron          *cron.Cron
}

func NewReconcileService(db *gorm.DB, ns *NotificationService, audit *AuditService, retentionDays int) *ReconcileService {
	return &ReconcileService{
		DB:            db,
		Notification:  ns,
		Audit:         audit,
		RetentionDays: retentionDays,
	}
}

// Start schedules the nightly run. Call Stop on shutdown.
func (s *ReconcileService) Start(schedule string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.ReconcileAll(); err != nil {
			logger.WithError(err).Error("reconciliation run failed")
		}
		s.pruneAuditLogs()
	})
	if err != nil {
		return fmt.Errorf("schedule reconciliation: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler.
func (s *ReconcileService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// ReconcileAll recomputes every project's cache and returns the drifts
// that were corrected.
func (s *ReconcileService) ReconcileAll() ([]Drift, error) {
	var projects []models.Project
	if err := s.DB.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	var drifts []Drift
	for _, p := range projects {
		var actual float64
		err := s.DB.Model(&models.SavingsRecord{}).
			Where("project_id = ? AND type = ?", p.ID, models.TypeSavings).
			Select("COALESCE(SUM(total_price), 0)").
			Scan(&actual).Error
		if err != nil {
			return nil, fmt.Errorf("sum records for project %d: %w", p.ID, err)
		}

		if math.Abs(actual-p.TotalSavings) < 0.005 {
			continue
		}

		drifts = append(drifts, Drift{ProjectID: p.ID, FRN: p.FRN, Cached: p.TotalSavings, Actual: actual})
		if err := s.DB.Model(&models.Project{}).
			Where("id = ?", p.ID).
			Update("total_savings", actual).Error; err != nil {
			return nil, fmt.Errorf("correct project %d: %w", p.ID, err)
		}
	}

	if len(drifts) > 0 {
		logger.WithFields(map[string]interface{}{"count": len(drifts)}).Warn("total_savings drift corrected")
		s.Notification.Notify(
			"Savings totals drift detected",
			fmt.Sprintf("%d project(s) had stale total_savings caches and were corrected.", len(drifts)),
		)
	}
	return drifts, nil
}

func (s *ReconcileService) pruneAuditLogs() {
	if s.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.RetentionDays)
	removed, err := s.Audit.Prune(cutoff)
	if err != nil {
		logger.WithError(err).Error("audit log pruning failed")
		return
	}
	if removed > 0 {
		logger.WithFields(map[string]interface{}{"removed": removed}).Info("pruned audit logs")
	}
}
