package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// Dashboard is the body of GET /dashboard.
type Dashboard struct {
	Year             int            `json:"year"`
	TotalClients     int            `json:"total_clients"`
	TotalProjects    int            `json:"total_projects"`
	TotalProperties  int            `json:"total_properties"`
	ProjectsInYear   int            `json:"projects_in_year"`
	ByStatus         map[string]int `json:"by_status"`
	ByInstitution    map[string]int `json:"by_institution"`
	InvoicedTotal    int64          `json:"invoiced_total"`
	PendingTotal     int64          `json:"pending_total"`
	OverdueCount     int            `json:"overdue_count"`
	CriticalCount    int            `json:"critical_count"`
	Upcoming         []UpcomingItem `json:"upcoming"`
	ContractsByMonth []MonthlyCount `json:"contracts_by_month"`
}

// UpcomingItem is one ranked deadline on the dashboard.
type UpcomingItem struct {
	Source        string              `json:"source"`
	ID            uuid.UUID           `json:"id"`
	ClientID      uuid.UUID           `json:"client_id"`
	ClientName    string              `json:"client_name"`
	Label         string              `json:"label"`
	DueDate       *openapi_types.Date `json:"due_date"`
	DaysRemaining *int                `json:"days_remaining"`
	Tier          string              `json:"tier"`
	Overdue       bool                `json:"overdue"`
}

// MonthlyCount is a per-month figure; Month is "2024-06".
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// GetDashboard handles GET /dashboard.
// Supports ?client_id= and ?year= (defaults to the current year).
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryUUID(r, "client_id")
	if err != nil {
		badQuery(w, err)
		return
	}
	var year *int
	if err := bindQuery(r, "year", &year); err != nil {
		badQuery(w, err)
		return
	}
	f := domain.DashboardFilter{ClientID: clientID}
	if year != nil {
		f.Year = *year
	}

	d, err := s.dashboard.Get(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err, "client")
		return
	}
	if f.Year == 0 {
		f.Year = s.today().Year()
	}
	writeJSON(w, http.StatusOK, dashboardToResponse(f.Year, d))
}

func dashboardToResponse(year int, d domain.Dashboard) Dashboard {
	out := Dashboard{
		Year:             year,
		TotalClients:     d.TotalClients,
		TotalProjects:    d.TotalProjects,
		TotalProperties:  d.TotalProperties,
		ProjectsInYear:   d.ProjectsInYear,
		ByStatus:         make(map[string]int, len(domain.ProjectStatuses)),
		ByInstitution:    make(map[string]int, len(domain.Institutions)),
		InvoicedTotal:    d.InvoicedTotal,
		PendingTotal:     d.PendingTotal,
		OverdueCount:     d.OverdueCount,
		CriticalCount:    d.CriticalCount,
		Upcoming:         make([]UpcomingItem, len(d.Upcoming)),
		ContractsByMonth: monthlyCounts(d.ContractsByMonth),
	}
	for _, st := range domain.ProjectStatuses {
		out.ByStatus[string(st)] = d.ByStatus[st]
	}
	for _, inst := range domain.Institutions {
		out.ByInstitution[string(inst)] = d.ByInstitution[inst]
	}
	for i, r := range d.Upcoming {
		item := UpcomingItem{
			Source:     r.Item.Source,
			ID:         r.Item.ID,
			ClientID:   r.Item.ClientID,
			ClientName: r.Item.ClientName,
			Label:      r.Item.Label,
			DueDate:    toDate(r.DueDate),
			Tier:       string(r.Tier),
			Overdue:    r.Overdue(),
		}
		if r.HasDueDate {
			days := r.DaysRemaining
			item.DaysRemaining = &days
		}
		out.Upcoming[i] = item
	}
	return out
}

func monthlyCounts(counts []domain.MonthCount) []MonthlyCount {
	out := make([]MonthlyCount, len(counts))
	for i, mc := range counts {
		out[i] = MonthlyCount{
			Month: fmt.Sprintf("%04d-%02d", mc.Year, int(mc.Month)),
			Count: mc.Count,
		}
	}
	return out
}
