package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
)

// ExpirationService implements business logic for Expiration operations:
// CRUD, the ranked and paged listing, the summary, the CSV export rows and
// on-demand notifications.
type ExpirationService struct {
	expirations   repo.ExpirationRepo
	notifications repo.NotificationRepo
	clients       repo.ClientRepo
	properties    repo.PropertyRepo
	today         Clock
}

// NewExpirationService constructs an ExpirationService. today supplies the
// reference day for status filters, ranking and notifications.
func NewExpirationService(expirations repo.ExpirationRepo, notifications repo.NotificationRepo, clients repo.ClientRepo, properties repo.PropertyRepo, today Clock) *ExpirationService {
	return &ExpirationService{
		expirations:   expirations,
		notifications: notifications,
		clients:       clients,
		properties:    properties,
		today:         today,
	}
}

// Create validates and persists a new expiration.
func (s *ExpirationService) Create(ctx context.Context, e domain.Expiration) (domain.Expiration, error) {
	if err := s.validate(ctx, &e); err != nil {
		return domain.Expiration{}, fmt.Errorf("service.ExpirationService.Create: %w", err)
	}
	created, err := s.expirations.Create(ctx, e)
	if err != nil {
		return domain.Expiration{}, fmt.Errorf("service.ExpirationService.Create: %w", err)
	}
	return created, nil
}

// GetDetail returns one expiration with its client name and property, ranked
// against today.
func (s *ExpirationService) GetDetail(ctx context.Context, id uuid.UUID) (domain.Ranked[domain.ExpirationDetail], error) {
	d, err := s.expirations.GetDetail(ctx, id)
	if err != nil {
		return domain.Ranked[domain.ExpirationDetail]{}, fmt.Errorf("service.ExpirationService.GetDetail: %w", err)
	}
	return rankExpirations([]domain.ExpirationDetail{d}, s.today())[0], nil
}

// List returns one ranked page of the expirations matching f, plus stats
// over the whole filtered set.
func (s *ExpirationService) List(ctx context.Context, f domain.ExpirationFilter, p domain.PageRequest) (domain.ExpirationPage, error) {
	today := s.today()
	details, err := s.filtered(ctx, f, today)
	if err != nil {
		return domain.ExpirationPage{}, fmt.Errorf("service.ExpirationService.List: %w", err)
	}

	ranked := rankExpirations(details, today)
	var stats domain.ExpirationStats
	for _, r := range ranked {
		stats.Add(r.DaysRemaining)
	}
	page := domain.PaginateRequest(p, len(ranked))
	return domain.ExpirationPage{
		Items: domain.PageOf(page, ranked),
		Page:  page,
		Stats: stats,
	}, nil
}

// Export returns the rows of the expiration CSV export for the expirations
// matching f, earliest expiry first.
func (s *ExpirationService) Export(ctx context.Context, f domain.ExpirationFilter) ([]domain.ExportRow, error) {
	today := s.today()
	details, err := s.filtered(ctx, f, today)
	if err != nil {
		return nil, fmt.Errorf("service.ExpirationService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(details))
	for _, d := range details {
		days := domain.DaysUntil(d.ExpiresAt, today)
		row := domain.ExportRow{
			ClientName:    d.ClientName,
			DocumentType:  d.DocumentType,
			IssuedAt:      d.IssuedAt.Format(domain.ExportDateLayout),
			ExpiresAt:     d.ExpiresAt.Format(domain.ExportDateLayout),
			DaysRemaining: days,
			PropertyName:  "Sin propiedad",
			Location:      "N/A",
			Status:        domain.ExpirationStatusFor(days).Label(),
		}
		if d.Property != nil {
			row.PropertyName = d.Property.Finca
			if loc := d.Property.Location(); loc != "" {
				row.Location = loc
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Summary builds the expirations overview against today.
func (s *ExpirationService) Summary(ctx context.Context) (domain.ExpirationSummary, error) {
	today := s.today()
	soon := domain.ExpirationDueSoon
	due, err := s.expirations.ListDetails(ctx, domain.ExpirationFilter{Status: &soon}, today)
	if err != nil {
		return domain.ExpirationSummary{}, fmt.Errorf("service.ExpirationService.Summary: %w", err)
	}
	overdue, err := s.expirations.ListOverdue(ctx, today, domain.RecentlyOverdueLimit)
	if err != nil {
		return domain.ExpirationSummary{}, fmt.Errorf("service.ExpirationService.Summary: %w", err)
	}
	first := monthStart(today)
	agg, err := s.expirations.Aggregates(ctx, first, first.AddDate(0, domain.SummaryMonths, 0))
	if err != nil {
		return domain.ExpirationSummary{}, fmt.Errorf("service.ExpirationService.Summary: %w", err)
	}

	sum := domain.ExpirationSummary{
		DueSoon:         rankExpirations(due, today),
		DueToday:        []domain.Ranked[domain.ExpirationDetail]{},
		RecentlyOverdue: rankExpirations(overdue, today),
		ByDocumentType:  agg.ByDocumentType,
		ByMonth:         monthSeries(first, domain.SummaryMonths, agg.ByMonth),
	}
	// The ranker puts the longest overdue first.
	slices.Reverse(sum.RecentlyOverdue)
	for _, r := range sum.DueSoon {
		if r.DaysRemaining == 0 {
			sum.DueToday = append(sum.DueToday, r)
		}
	}
	if sum.ByDocumentType == nil {
		sum.ByDocumentType = []domain.TypeCount{}
	}
	return sum, nil
}

// DocumentTypes returns the distinct document types in use.
func (s *ExpirationService) DocumentTypes(ctx context.Context) ([]string, error) {
	types, err := s.expirations.DocumentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExpirationService.DocumentTypes: %w", err)
	}
	return types, nil
}

// Update validates and updates an existing expiration.
func (s *ExpirationService) Update(ctx context.Context, e domain.Expiration) (domain.Expiration, error) {
	if err := s.validate(ctx, &e); err != nil {
		return domain.Expiration{}, fmt.Errorf("service.ExpirationService.Update: %w", err)
	}
	updated, err := s.expirations.Update(ctx, e)
	if err != nil {
		return domain.Expiration{}, fmt.Errorf("service.ExpirationService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes an expiration and its notifications.
func (s *ExpirationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.expirations.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ExpirationService.Delete: %w", err)
	}
	return nil
}

// Notify records the reminder currently due for one expiration. created is
// false when that reminder had already been recorded. An expiration with no
// reminder due (overdue, or more than 30 days away) is a validation error.
func (s *ExpirationService) Notify(ctx context.Context, id uuid.UUID) (n domain.Notification, created bool, err error) {
	e, err := s.expirations.GetByID(ctx, id)
	if err != nil {
		return domain.Notification{}, false, fmt.Errorf("service.ExpirationService.Notify: %w", err)
	}
	today := s.today()
	days := domain.DaysUntil(e.ExpiresAt, today)
	kind, ok := domain.NotificationKindFor(days)
	if !ok {
		return domain.Notification{}, false, fmt.Errorf("service.ExpirationService.Notify: %w: no reminder due %d days before expiry", domain.ErrValidation, days)
	}
	n, created, err = s.notifications.Record(ctx, e.ID, kind, today)
	if err != nil {
		return domain.Notification{}, false, fmt.Errorf("service.ExpirationService.Notify: %w", err)
	}
	return n, created, nil
}

// ListNotifications returns the reminders recorded for an expiration.
func (s *ExpirationService) ListNotifications(ctx context.Context, id uuid.UUID) ([]domain.Notification, error) {
	if _, err := s.expirations.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("service.ExpirationService.ListNotifications: %w", err)
	}
	ns, err := s.notifications.ListByExpiration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.ExpirationService.ListNotifications: %w", err)
	}
	return ns, nil
}

func (s *ExpirationService) filtered(ctx context.Context, f domain.ExpirationFilter, today time.Time) ([]domain.ExpirationDetail, error) {
	f.DocumentType = strings.TrimSpace(f.DocumentType)
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", domain.ErrValidation)
	}
	if f.Year == nil {
		f.Month = nil
	}
	return s.expirations.ListDetails(ctx, f, today)
}

func (s *ExpirationService) validate(ctx context.Context, e *domain.Expiration) error {
	e.DocumentType = strings.TrimSpace(e.DocumentType)
	e.State = strings.TrimSpace(e.State)
	if e.DocumentType == "" {
		return fmt.Errorf("%w: document type is required", domain.ErrValidation)
	}
	if e.IssuedAt.IsZero() || e.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: issue and expiry dates are required", domain.ErrValidation)
	}
	if e.ExpiresAt.Before(e.IssuedAt) {
		return fmt.Errorf("%w: expiry date must not be before issue date", domain.ErrValidation)
	}
	if err := requireClient(ctx, s.clients, e.ClientID); err != nil {
		return err
	}
	return requireProperty(ctx, s.properties, e.PropertyID, e.ClientID)
}

func rankExpirations(details []domain.ExpirationDetail, today time.Time) []domain.Ranked[domain.ExpirationDetail] {
	return domain.RankDeadlines(details, func(d domain.ExpirationDetail) *time.Time {
		return &d.ExpiresAt
	}, today)
}
