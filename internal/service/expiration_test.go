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

func detail(docType string, expires time.Time) domain.ExpirationDetail {
	return domain.ExpirationDetail{
		Expiration: domain.Expiration{
			ID:           uuid.New(),
			DocumentType: docType,
			IssuedAt:     expires.AddDate(-1, 0, 0),
			ExpiresAt:    expires,
		},
		ClientName: "Estancia La Paz",
	}
}

func newExpirationService(exps *mockExpirationRepo, notes *mockNotificationRepo, clients *mockClientRepo, props *mockPropertyRepo) *service.ExpirationService {
	if notes == nil {
		notes = &mockNotificationRepo{}
	}
	if clients == nil {
		clients = clientsWith()
	}
	if props == nil {
		props = propertiesWith()
	}
	return service.NewExpirationService(exps, notes, clients, props, service.FixedDay(today))
}

// ---- List ------------------------------------------------------------------

func TestExpirationService_List_RanksStatsAndPages(t *testing.T) {
	rows := []domain.ExpirationDetail{
		detail("far", today.AddDate(0, 0, 200)),
		detail("soon", today.AddDate(0, 0, 3)),
		detail("late", today.AddDate(0, 0, -10)),
		detail("later", today.AddDate(0, 0, -2)),
		detail("month", today.AddDate(0, 0, 30)),
	}
	exps := &mockExpirationRepo{
		listDetails: func(_ context.Context, _ domain.ExpirationFilter, got time.Time) ([]domain.ExpirationDetail, error) {
			assert.Equal(t, today, got)
			return rows, nil
		},
	}
	svc := newExpirationService(exps, nil, nil, nil)

	page, err := svc.List(context.Background(), domain.ExpirationFilter{}, domain.NewPageRequest(nil, nil))

	require.NoError(t, err)
	assert.Equal(t, domain.ExpirationStats{Total: 5, Overdue: 2, DueSoon: 2, Current: 1}, page.Stats)
	require.Len(t, page.Items, 5)
	var order []string
	for _, r := range page.Items {
		order = append(order, r.Item.DocumentType)
	}
	assert.Equal(t, []string{"late", "later", "soon", "month", "far"}, order)
	assert.True(t, page.Items[0].Overdue())
	assert.Equal(t, -10, page.Items[0].DaysRemaining)
	assert.Equal(t, domain.TierNeutral, page.Items[4].Tier)
	assert.Equal(t, 1, page.Page.TotalPages)
}

func TestExpirationService_List_ClampsPageAndKeepsStats(t *testing.T) {
	var rows []domain.ExpirationDetail
	for i := 0; i < 25; i++ {
		rows = append(rows, detail("x", today.AddDate(0, 0, i)))
	}
	exps := &mockExpirationRepo{
		listDetails: func(context.Context, domain.ExpirationFilter, time.Time) ([]domain.ExpirationDetail, error) {
			return rows, nil
		},
	}
	svc := newExpirationService(exps, nil, nil, nil)

	page, err := svc.List(context.Background(), domain.ExpirationFilter{}, domain.NewPageRequest(ptr(9), ptr(10)))

	require.NoError(t, err)
	assert.Equal(t, 3, page.Page.CurrentPage)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 25, page.Stats.Total)
	assert.Equal(t, 20, page.Items[0].DaysRemaining)
}

func TestExpirationService_List_DropsMonthWithoutYear(t *testing.T) {
	exps := &mockExpirationRepo{
		listDetails: func(_ context.Context, f domain.ExpirationFilter, _ time.Time) ([]domain.ExpirationDetail, error) {
			assert.Nil(t, f.Month)
			return nil, nil
		},
	}
	svc := newExpirationService(exps, nil, nil, nil)

	page, err := svc.List(context.Background(), domain.ExpirationFilter{Month: ptr(3)}, domain.NewPageRequest(nil, nil))

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Page.TotalPages)
}

func TestExpirationService_List_RejectsBadMonth(t *testing.T) {
	svc := newExpirationService(&mockExpirationRepo{}, nil, nil, nil)

	_, err := svc.List(context.Background(), domain.ExpirationFilter{Year: ptr(2024), Month: ptr(13)}, domain.NewPageRequest(nil, nil))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- Export ----------------------------------------------------------------

func TestExpirationService_Export_Rows(t *testing.T) {
	withProperty := detail("Licencia Ambiental", day(2024, 7, 1))
	withProperty.IssuedAt = day(2023, 7, 1)
	withProperty.Property = &domain.Property{Finca: "Finca 123", Department: "Boquerón", District: "Filadelfia"}
	bare := detail("Certificado SENAVE", day(2024, 6, 1))
	bare.Property = &domain.Property{Finca: "Finca 9"}

	exps := &mockExpirationRepo{
		listDetails: func(context.Context, domain.ExpirationFilter, time.Time) ([]domain.ExpirationDetail, error) {
			return []domain.ExpirationDetail{bare, withProperty, detail("Auditoría", day(2025, 1, 1))}, nil
		},
	}
	svc := newExpirationService(exps, nil, nil, nil)

	rows, err := svc.Export(context.Background(), domain.ExpirationFilter{})

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ExportRow{
		ClientName:    "Estancia La Paz",
		DocumentType:  "Certificado SENAVE",
		IssuedAt:      "01/06/2023",
		ExpiresAt:     "01/06/2024",
		DaysRemaining: -14,
		PropertyName:  "Finca 9",
		Location:      "N/A",
		Status:        "Vencido",
	}, rows[0])
	assert.Equal(t, "Boquerón, Filadelfia", rows[1].Location)
	assert.Equal(t, "01/07/2023", rows[1].IssuedAt)
	assert.Equal(t, "Próximo a vencer", rows[1].Status)
	assert.Equal(t, "Sin propiedad", rows[2].PropertyName)
	assert.Equal(t, "Vigente", rows[2].Status)
}

// ---- Create ----------------------------------------------------------------

func TestExpirationService_Create_Validation(t *testing.T) {
	clientID := uuid.New()
	foreign := domain.Property{ID: uuid.New(), ClientID: uuid.New()}
	valid := func() domain.Expiration {
		return domain.Expiration{ClientID: clientID, DocumentType: "Licencia", IssuedAt: day(2024, 1, 1), ExpiresAt: day(2025, 1, 1)}
	}

	cases := map[string]func(e *domain.Expiration){
		"missing type":     func(e *domain.Expiration) { e.DocumentType = "  " },
		"missing expiry":   func(e *domain.Expiration) { e.ExpiresAt = time.Time{} },
		"expiry too early": func(e *domain.Expiration) { e.ExpiresAt = day(2023, 12, 31) },
		"unknown client":   func(e *domain.Expiration) { e.ClientID = uuid.New() },
		"foreign property": func(e *domain.Expiration) { e.PropertyID = &foreign.ID },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newExpirationService(&mockExpirationRepo{}, nil, clientsWith(clientID), propertiesWith(foreign))
			e := valid()
			mutate(&e)

			_, err := svc.Create(context.Background(), e)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestExpirationService_Create_OK(t *testing.T) {
	clientID := uuid.New()
	prop := domain.Property{ID: uuid.New(), ClientID: clientID}
	exps := &mockExpirationRepo{
		create: func(_ context.Context, e domain.Expiration) (domain.Expiration, error) {
			assert.Equal(t, "Licencia", e.DocumentType)
			e.ID = uuid.New()
			return e, nil
		},
	}
	svc := newExpirationService(exps, nil, clientsWith(clientID), propertiesWith(prop))

	got, err := svc.Create(context.Background(), domain.Expiration{
		ClientID: clientID, PropertyID: &prop.ID, DocumentType: " Licencia ",
		IssuedAt: day(2024, 1, 1), ExpiresAt: day(2024, 1, 1),
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
}

// ---- Notify ----------------------------------------------------------------

func TestExpirationService_Notify_RecordsDueKind(t *testing.T) {
	id := uuid.New()
	exps := &mockExpirationRepo{
		getByID: func(context.Context, uuid.UUID) (domain.Expiration, error) {
			return domain.Expiration{ID: id, ExpiresAt: today.AddDate(0, 0, 7)}, nil
		},
	}
	notes := &mockNotificationRepo{
		record: func(_ context.Context, expID uuid.UUID, kind domain.NotificationKind, sentOn time.Time) (domain.Notification, bool, error) {
			assert.Equal(t, id, expID)
			assert.Equal(t, today, sentOn)
			return domain.Notification{ExpirationID: expID, Kind: kind, SentOn: sentOn}, true, nil
		},
	}
	svc := newExpirationService(exps, notes, nil, nil)

	n, created, err := svc.Notify(context.Background(), id)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.Notify7Days, n.Kind)
}

func TestExpirationService_Notify_NothingDue(t *testing.T) {
	for _, offset := range []int{-1, 31} {
		exps := &mockExpirationRepo{
			getByID: func(_ context.Context, id uuid.UUID) (domain.Expiration, error) {
				return domain.Expiration{ID: id, ExpiresAt: today.AddDate(0, 0, offset)}, nil
			},
		}
		svc := newExpirationService(exps, nil, nil, nil)

		_, _, err := svc.Notify(context.Background(), uuid.New())

		assert.ErrorIs(t, err, domain.ErrValidation, "offset %d", offset)
	}
}

func TestExpirationService_ListNotifications_UnknownExpiration(t *testing.T) {
	exps := &mockExpirationRepo{
		getByID: func(context.Context, uuid.UUID) (domain.Expiration, error) {
			return domain.Expiration{}, domain.ErrNotFound
		},
	}
	svc := newExpirationService(exps, nil, nil, nil)

	_, err := svc.ListNotifications(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpirationService_GetDetail_Ranked(t *testing.T) {
	d := detail("Licencia", today.AddDate(0, 0, 45))
	exps := &mockExpirationRepo{
		getDetail: func(context.Context, uuid.UUID) (domain.ExpirationDetail, error) { return d, nil },
	}
	svc := newExpirationService(exps, nil, nil, nil)

	got, err := svc.GetDetail(context.Background(), d.ID)

	require.NoError(t, err)
	assert.Equal(t, 45, got.DaysRemaining)
	assert.Equal(t, domain.TierWarning, got.Tier)
	assert.Equal(t, d.ID, got.Item.ID)
}

// ---- Summary ---------------------------------------------------------------

func TestExpirationService_Summary(t *testing.T) {
	dueToday := detail("Licencia ambiental", today)
	dueLater := detail("Auditoría", today.AddDate(0, 0, 12))
	latest := detail("Certificado", today.AddDate(0, 0, -2))
	older := detail("Licencia ambiental", today.AddDate(0, 0, -40))

	var gotStatus *domain.ExpirationStatus
	var gotLimit int
	var gotFrom, gotTo time.Time
	exps := &mockExpirationRepo{
		listDetails: func(_ context.Context, f domain.ExpirationFilter, _ time.Time) ([]domain.ExpirationDetail, error) {
			gotStatus = f.Status
			return []domain.ExpirationDetail{dueLater, dueToday}, nil
		},
		listOverdue: func(_ context.Context, _ time.Time, limit int) ([]domain.ExpirationDetail, error) {
			gotLimit = limit
			return []domain.ExpirationDetail{latest, older}, nil
		},
		aggregates: func(_ context.Context, from, to time.Time) (domain.ExpirationAggregates, error) {
			gotFrom, gotTo = from, to
			return domain.ExpirationAggregates{
				ByDocumentType: []domain.TypeCount{{DocumentType: "Licencia ambiental", Count: 2}},
				ByMonth:        []domain.MonthCount{{Year: 2024, Month: time.August, Count: 3}},
			}, nil
		},
	}

	sum, err := newExpirationService(exps, nil, nil, nil).Summary(context.Background())
	require.NoError(t, err)

	require.NotNil(t, gotStatus)
	assert.Equal(t, domain.ExpirationDueSoon, *gotStatus)
	assert.Equal(t, domain.RecentlyOverdueLimit, gotLimit)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), gotFrom)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), gotTo)

	require.Len(t, sum.DueSoon, 2)
	assert.Equal(t, dueToday.ID, sum.DueSoon[0].Item.ID, "earliest first")
	assert.Equal(t, 12, sum.DueSoon[1].DaysRemaining)

	require.Len(t, sum.DueToday, 1)
	assert.Equal(t, dueToday.ID, sum.DueToday[0].Item.ID)

	require.Len(t, sum.RecentlyOverdue, 2)
	assert.Equal(t, latest.ID, sum.RecentlyOverdue[0].Item.ID, "latest expiry first")
	assert.Equal(t, -40, sum.RecentlyOverdue[1].DaysRemaining)
	assert.True(t, sum.RecentlyOverdue[1].Overdue())

	assert.Equal(t, []domain.TypeCount{{DocumentType: "Licencia ambiental", Count: 2}}, sum.ByDocumentType)
	require.Len(t, sum.ByMonth, domain.SummaryMonths)
	assert.Equal(t, domain.MonthCount{Year: 2024, Month: time.June}, sum.ByMonth[0])
	assert.Equal(t, domain.MonthCount{Year: 2024, Month: time.August, Count: 3}, sum.ByMonth[2])
	assert.Equal(t, domain.MonthCount{Year: 2024, Month: time.November}, sum.ByMonth[5])
}

func TestExpirationService_Summary_Empty(t *testing.T) {
	exps := &mockExpirationRepo{
		listDetails: func(context.Context, domain.ExpirationFilter, time.Time) ([]domain.ExpirationDetail, error) {
			return nil, nil
		},
		listOverdue: func(context.Context, time.Time, int) ([]domain.ExpirationDetail, error) { return nil, nil },
		aggregates: func(context.Context, time.Time, time.Time) (domain.ExpirationAggregates, error) {
			return domain.ExpirationAggregates{}, nil
		},
	}

	sum, err := newExpirationService(exps, nil, nil, nil).Summary(context.Background())
	require.NoError(t, err)

	assert.Empty(t, sum.DueSoon)
	assert.NotNil(t, sum.DueToday)
	assert.NotNil(t, sum.ByDocumentType)
	assert.Len(t, sum.ByMonth, domain.SummaryMonths)
}
