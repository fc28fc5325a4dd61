package domain

import (
	"time"

	"github.com/google/uuid"
)

// UpcomingLimit is how many upcoming deadlines the dashboard shows.
const UpcomingLimit = 10

// DashboardFilter scopes the per-year dashboard figures.
type DashboardFilter struct {
	ClientID *uuid.UUID
	Year     int
}

// Deadline is anything the dashboard ranks by date: a project's license
// expiry or an expiration record.
type Deadline struct {
	Source     string // "project" or "expiration"
	ID         uuid.UUID
	ClientID   uuid.UUID
	ClientName string
	Label      string
	DueDate    *time.Time
}

// MonthCount is how many items (contracts, expirations) fall in one calendar month.
type MonthCount struct {
	Year  int
	Month time.Month
	Count int
}

// Dashboard is the landing-page summary.
type Dashboard struct {
	TotalClients     int
	TotalProjects    int
	TotalProperties  int
	ProjectsInYear   int
	ByStatus         map[ProjectStatus]int
	ByInstitution    map[Institution]int
	InvoicedTotal    int64
	PendingTotal     int64
	OverdueCount     int
	CriticalCount    int // due within 7 days, not overdue
	Upcoming         []Ranked[Deadline]
	ContractsByMonth []MonthCount
}
