package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"

	"github.com/forte-savings/backend/internal/logger"
)

// NotificationService pushes admin alerts to the configured shoutrrr
// destinations (Slack, Discord, generic webhooks). Used by the
// reconciliation job and the health monitor; delivery failures are
// logged, never propagated.
type NotificationService struct {
	URLs []string
}

func NewNotificationService(urls []string) *NotificationService {
	return &NotificationService{URLs: urls}
}

// Notify sends a titled message to every destination.
func (s *NotificationService) Notify(title, message string) {
	if len(s.URLs) == 0 {
		return
	}
	body := fmt.Sprintf("%s\n%s", title, message)
	for _, url := range s.URLs {
		if err := shoutrrr.Send(url, body); err != nil {
			logger.WithError(err).Warn("failed to send admin alert")
		}
	}
}
