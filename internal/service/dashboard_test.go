package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/service"
)

func TestDashboardService_Get(t *testing.T) {
	clientID := uuid.New()
	dash := &mockDashboardRepo{
		summary: func(_ context.Context, f domain.DashboardFilter, got time.Time) (domain.Dashboard, error) {
			assert.Equal(t, 2024, f.Year)
			assert.Equal(t, &clientID, f.ClientID)
			assert.Equal(t, today, got)
			return domain.Dashboard{TotalClients: 3, OverdueCount: 1}, nil
		},
		deadlines: func(_ context.Context, _ *uuid.UUID, limit int) ([]domain.Deadline, error) {
			assert.Equal(t, domain.UpcomingLimit, limit)
			return []domain.Deadline{
				{Label: "upcoming", DueDate: ptr(today.AddDate(0, 0, 45))},
				{Label: "overdue", DueDate: ptr(today.AddDate(0, 0, -3))},
			}, nil
		},
		contractsByMonth: func(_ context.Context, _ *uuid.UUID, since time.Time) ([]domain.MonthCount, error) {
			assert.Equal(t, day(2024, 1, 1), since)
			return []domain.MonthCount{
				{Year: 2024, Month: time.February, Count: 2},
				{Year: 2024, Month: time.June, Count: 5},
			}, nil
		},
	}
	svc := service.NewDashboardService(dash, service.FixedDay(today))

	d, err := svc.Get(context.Background(), domain.DashboardFilter{ClientID: &clientID})

	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalClients)
	require.Len(t, d.Upcoming, 2)
	assert.Equal(t, "overdue", d.Upcoming[0].Item.Label)
	assert.Equal(t, domain.TierCritical, d.Upcoming[0].Tier)
	assert.Equal(t, domain.TierWarning, d.Upcoming[1].Tier)

	require.Len(t, d.ContractsByMonth, 6)
	assert.Equal(t, domain.MonthCount{Year: 2024, Month: time.January, Count: 0}, d.ContractsByMonth[0])
	assert.Equal(t, 2, d.ContractsByMonth[1].Count)
	assert.Equal(t, domain.MonthCount{Year: 2024, Month: time.June, Count: 5}, d.ContractsByMonth[5])
}

func TestDashboardService_Get_SeriesCrossesYear(t *testing.T) {
	dash := &mockDashboardRepo{
		summary: func(_ context.Context, f domain.DashboardFilter, _ time.Time) (domain.Dashboard, error) {
			assert.Equal(t, 2023, f.Year)
			return domain.Dashboard{}, nil
		},
		deadlines: func(context.Context, *uuid.UUID, int) ([]domain.Deadline, error) { return nil, nil },
		contractsByMonth: func(_ context.Context, _ *uuid.UUID, since time.Time) ([]domain.MonthCount, error) {
			assert.Equal(t, day(2023, 10, 1), since)
			return nil, nil
		},
	}
	svc := service.NewDashboardService(dash, service.FixedDay(day(2024, 3, 31)))

	d, err := svc.Get(context.Background(), domain.DashboardFilter{Year: 2023})

	require.NoError(t, err)
	require.Len(t, d.ContractsByMonth, 6)
	assert.Equal(t, time.October, d.ContractsByMonth[0].Month)
	assert.Equal(t, 2023, d.ContractsByMonth[0].Year)
	assert.Equal(t, time.March, d.ContractsByMonth[5].Month)
	assert.Empty(t, d.Upcoming)
}

func TestDashboardService_Get_RejectsNegativeYear(t *testing.T) {
	svc := service.NewDashboardService(&mockDashboardRepo{}, service.FixedDay(today))

	_, err := svc.Get(context.Background(), domain.DashboardFilter{Year: -1})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTodayIn_ReturnsMidnightUTC(t *testing.T) {
	got := service.TodayIn(time.FixedZone("PYT", -3*3600))()

	assert.Equal(t, time.UTC, got.Location())
	assert.Zero(t, got.Hour())
	assert.Zero(t, got.Minute())
}

func TestFixedDay_DropsClock(t *testing.T) {
	got := service.FixedDay(time.Date(2024, 6, 15, 23, 59, 0, 0, time.FixedZone("PYT", -4*3600)))()

	assert.Equal(t, day(2024, 6, 15), got)
}
