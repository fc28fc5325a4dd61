package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// NotificationRepo defines the persistence operations for Notifications.
type NotificationRepo interface {
	// Record stores a notification of kind for an expiration unless one of that
	// kind already exists. created is false when the notification was already
	// recorded, in which case the existing row is returned.
	Record(ctx context.Context, expirationID uuid.UUID, kind domain.NotificationKind, sentOn time.Time) (n domain.Notification, created bool, err error)

	// ListByExpiration returns the notifications of an expiration, oldest first.
	ListByExpiration(ctx context.Context, expirationID uuid.UUID) ([]domain.Notification, error)
}

// pgNotificationRepo is the Postgres implementation of NotificationRepo.
type pgNotificationRepo struct {
	db db
}

// NewNotificationRepo constructs a NotificationRepo backed by the provided db connection.
func NewNotificationRepo(db db) NotificationRepo {
	return &pgNotificationRepo{db: db}
}

// Record relies on the UNIQUE (expiration_id, kind) constraint. ON CONFLICT DO
// NOTHING returns no row on a duplicate, so the existing one is read back.
func (r *pgNotificationRepo) Record(ctx context.Context, expirationID uuid.UUID, kind domain.NotificationKind, sentOn time.Time) (domain.Notification, bool, error) {
	const insertQ = `
		INSERT INTO notifications (expiration_id, kind, sent_on)
		VALUES (@expiration_id, @kind, @sent_on)
		ON CONFLICT (expiration_id, kind) DO NOTHING
		RETURNING id, expiration_id, kind, sent_on`
	const selectQ = `
		SELECT id, expiration_id, kind, sent_on
		FROM notifications
		WHERE expiration_id = @expiration_id AND kind = @kind`

	args := pgx.NamedArgs{"expiration_id": expirationID, "kind": string(kind), "sent_on": sentOn}

	n, err := scanNotification(r.db.QueryRow(ctx, insertQ, args))
	if err == nil {
		return n, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Notification{}, false, fmt.Errorf("repo.NotificationRepo.Record: %w", translate(err))
	}

	n, err = scanNotification(r.db.QueryRow(ctx, selectQ, args))
	if err != nil {
		return domain.Notification{}, false, fmt.Errorf("repo.NotificationRepo.Record: existing: %w", translate(err))
	}
	return n, false, nil
}

func (r *pgNotificationRepo) ListByExpiration(ctx context.Context, expirationID uuid.UUID) ([]domain.Notification, error) {
	const q = `
		SELECT id, expiration_id, kind, sent_on
		FROM notifications
		WHERE expiration_id = @expiration_id
		ORDER BY sent_on, kind`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"expiration_id": expirationID})
	if err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo.ListByExpiration: %w", err)
	}
	ns, err := collect(rows, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo.ListByExpiration: %w", err)
	}
	return ns, nil
}

// scanNotification maps a single database row into a domain.Notification.
func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n         domain.Notification
		id, expID pgtype.UUID
		kind      string
		sentOn    pgtype.Date
	)
	if err := s.Scan(&id, &expID, &kind, &sentOn); err != nil {
		return domain.Notification{}, err
	}
	n.ID = uuid.UUID(id.Bytes)
	n.ExpirationID = uuid.UUID(expID.Bytes)
	n.Kind = domain.NotificationKind(kind)
	n.SentOn = sentOn.Time
	return n, nil
}
