package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/models"
)

// MonitoringService derives descriptive statistics from audit log action
// patterns. These are estimates, not real APM measurements; the endpoints
// that serve them say so.
type MonitoringService struct {
	DB *gorm.DB
}

func NewMonitoringService(db *gorm.DB) *MonitoringService {
	return &MonitoringService{DB: db}
}

// PerformanceStats summarizes request activity over the last 24 hours.
type PerformanceStats struct {
	Window        string           `json:"window"`
	TotalActions  int64            `json:"total_actions"`
	ByAction      map[string]int64 `json:"by_action"`
	WriteShare    float64          `json:"write_share"`
	EstimatedNote string           `json:"note"`
}

// Performance tallies audit actions over the last day and estimates the
// read/write mix from action-name prefixes.
func (s *MonitoringService) Performance(now time.Time) (*PerformanceStats, error) {
	since := now.Add(-24 * time.Hour)
	audit := AuditService{DB: s.DB}
	counts, err := audit.CountByActionSince(since)
	if err != nil {
		return nil, err
	}

	stats := &PerformanceStats{
		Window:        "24h",
		ByAction:      counts,
		EstimatedNote: "derived from audit log action counts, not latency instrumentation",
	}
	var writes int64
	for action, count := range counts {
		stats.TotalActions += count
		if strings.HasPrefix(action, "create_") || strings.HasPrefix(action, "update_") || strings.HasPrefix(action, "delete_") {
			writes += count
		}
	}
	if stats.TotalActions > 0 {
		stats.WriteShare = roundRate(float64(writes) / float64(stats.TotalActions))
	}
	return stats, nil
}

// SystemHealth reports table counts and recent error-tagged activity.
type SystemHealth struct {
	Status        string `json:"status"`
	Users         int64  `json:"users"`
	Projects      int64  `json:"projects"`
	Records       int64  `json:"records"`
	AuditEntries  int64  `json:"audit_entries"`
	FailedLogins  int64  `json:"failed_logins_24h"`
	EstimatedNote string `json:"note"`
}

// Health snapshots row counts plus failed logins over the last day.
// Status degrades when failed logins pile up.
func (s *MonitoringService) Health(now time.Time) (*SystemHealth, error) {
	h := &SystemHealth{
		Status:        "ok",
		EstimatedNote: "descriptive statistics only",
	}
	if err := s.DB.Model(&models.User{}).Count(&h.Users).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Project{}).Count(&h.Projects).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.SavingsRecord{}).Count(&h.Records).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.AuditLog{}).Count(&h.AuditEntries).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.AuditLog{}).
		Where("action = ? AND created_at >= ?", "login_failed", now.Add(-24*time.Hour)).
		Count(&h.FailedLogins).Error; err != nil {
		return nil, err
	}
	if h.FailedLogins > 50 {
		h.Status = "degraded"
	}
	return h, nil
}

func roundRate(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
