package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
)

// NotificationService runs the expiration reminder pass. Reminders are only
// recorded; delivering them is left to whoever reads the notification log.
type NotificationService struct {
	expirations   repo.ExpirationRepo
	notifications repo.NotificationRepo
	today         Clock
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(expirations repo.ExpirationRepo, notifications repo.NotificationRepo, today Clock) *NotificationService {
	return &NotificationService{expirations: expirations, notifications: notifications, today: today}
}

// Process records the due reminder for every expiration expiring within the
// next DueSoonDays days and returns how many new reminders were recorded.
// Running it twice on the same day records nothing the second time.
func (s *NotificationService) Process(ctx context.Context) (int, error) {
	today := s.today()
	due, err := s.expirations.ListExpiringBetween(ctx, today, today.AddDate(0, 0, domain.DueSoonDays))
	if err != nil {
		return 0, fmt.Errorf("service.NotificationService.Process: %w", err)
	}

	created := 0
	for _, e := range due {
		if err := ctx.Err(); err != nil {
			return created, fmt.Errorf("service.NotificationService.Process: %w", err)
		}
		kind, ok := domain.NotificationKindFor(domain.DaysUntil(e.ExpiresAt, today))
		if !ok {
			continue
		}
		_, isNew, err := s.notifications.Record(ctx, e.ID, kind, today)
		if err != nil {
			return created, fmt.Errorf("service.NotificationService.Process: expiration %s: %w", e.ID, err)
		}
		if isNew {
			created++
			slog.InfoContext(ctx, "expiration reminder recorded",
				"expiration_id", e.ID,
				"document_type", e.DocumentType,
				"kind", kind,
			)
		}
	}
	return created, nil
}
