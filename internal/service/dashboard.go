package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
)

// contractMonths is how many months, the current one included, the
// contracts-per-month series covers.
const contractMonths = 6

// DashboardService assembles the landing-page summary.
type DashboardService struct {
	dashboard repo.DashboardRepo
	today     Clock
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(dashboard repo.DashboardRepo, today Clock) *DashboardService {
	return &DashboardService{dashboard: dashboard, today: today}
}

// Get builds the dashboard for f. A zero Year means the current year.
func (s *DashboardService) Get(ctx context.Context, f domain.DashboardFilter) (domain.Dashboard, error) {
	today := s.today()
	if f.Year == 0 {
		f.Year = today.Year()
	}
	if f.Year < 0 {
		return domain.Dashboard{}, fmt.Errorf("service.DashboardService.Get: %w: year must be positive", domain.ErrValidation)
	}

	d, err := s.dashboard.Summary(ctx, f, today)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("service.DashboardService.Get: %w", err)
	}

	deadlines, err := s.dashboard.Deadlines(ctx, f.ClientID, domain.UpcomingLimit)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("service.DashboardService.Get: %w", err)
	}
	d.Upcoming = domain.RankDeadlines(deadlines, func(dl domain.Deadline) *time.Time { return dl.DueDate }, today)

	d.ContractsByMonth, err = s.contractsByMonth(ctx, f.ClientID, today)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("service.DashboardService.Get: %w", err)
	}
	return d, nil
}

// contractsByMonth returns one entry per month of the series, oldest first,
// with zero counts for months without contracts.
func (s *DashboardService) contractsByMonth(ctx context.Context, clientID *uuid.UUID, today time.Time) ([]domain.MonthCount, error) {
	first := monthStart(today).AddDate(0, 1-contractMonths, 0)
	counts, err := s.dashboard.ContractsByMonth(ctx, clientID, first)
	if err != nil {
		return nil, err
	}
	return monthSeries(first, contractMonths, counts), nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthSeries lays counts out over n consecutive months starting at first,
// filling months missing from counts with zero.
func monthSeries(first time.Time, n int, counts []domain.MonthCount) []domain.MonthCount {
	type ym struct {
		y int
		m time.Month
	}
	found := make(map[ym]int, len(counts))
	for _, c := range counts {
		found[ym{c.Year, c.Month}] = c.Count
	}

	series := make([]domain.MonthCount, 0, n)
	for i := 0; i < n; i++ {
		t := first.AddDate(0, i, 0)
		series = append(series, domain.MonthCount{
			Year:  t.Year(),
			Month: t.Month(),
			Count: found[ym{t.Year(), t.Month()}],
		})
	}
	return series
}
