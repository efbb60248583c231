package services

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/logger"
	"github.com/forte-savings/backend/internal/models"
)

// AuditService appends audit log entries. Entries are never updated or
// deleted by the core; Prune trims rows past the retention horizon.
type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// Record appends one entry. Audit failures are logged and swallowed so
// they never fail the request that triggered them.
func (s *AuditService) Record(userID uint, action, resourceType string, resourceID uint, metadata map[string]interface{}, ip, userAgent string) {
	entry := models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ip,
		UserAgent:    userAgent,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = string(raw)
		}
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"action": action,
			"user":   userID,
		}).Error("failed to write audit log")
	}
}

// Prune removes entries older than the horizon. Returns rows removed.
func (s *AuditService) Prune(olderThan time.Time) (int64, error) {
	res := s.DB.Where("created_at < ?", olderThan).Delete(&models.AuditLog{})
	return res.RowsAffected, res.Error
}

// CountByActionSince tallies entries per action tag since a cutoff.
// The monitoring endpoints derive their estimated statistics from this.
func (s *AuditService) CountByActionSince(since time.Time) (map[string]int64, error) {
	type row struct {
		Action string
		Count  int64
	}
	var rows []row
	err := s.DB.Model(&models.AuditLog{}).
		Select("action, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Action] = r.Count
	}
	return out, nil
}
