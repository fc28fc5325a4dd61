package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind identifies which reminder was raised for an expiration.
type NotificationKind string

const (
	Notify30Days NotificationKind = "30_dias"
	Notify7Days  NotificationKind = "7_dias"
)

// Notification records that a reminder was raised for an expiration.
// At most one notification of each kind exists per expiration.
type Notification struct {
	ID           uuid.UUID
	ExpirationID uuid.UUID
	Kind         NotificationKind
	SentOn       time.Time
}

// NotificationKindFor returns the reminder due for a deadline daysRemaining
// days away, and false when none is due.
func NotificationKindFor(daysRemaining int) (NotificationKind, bool) {
	switch {
	case daysRemaining < 0:
		return "", false
	case daysRemaining <= 7:
		return Notify7Days, true
	case daysRemaining <= 30:
		return Notify30Days, true
	}
	return "", false
}
