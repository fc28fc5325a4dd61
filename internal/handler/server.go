// Package handler implements the HTTP handlers for the consultancy registry API.
// All handlers are methods on Server. Methods are split into resource-specific
// files (client.go, project.go, etc.) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/service"
)

// ClientServicer defines the business operations the client handlers depend on.
// Interfaces are declared here, in the consumer package, so handler tests can
// inject mocks without touching the database or service layer.
type ClientServicer interface {
	Create(ctx context.Context, c domain.Client) (domain.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error)
	List(ctx context.Context, f domain.ClientFilter, p domain.PageRequest) ([]domain.Client, domain.PageResult, error)
	Update(ctx context.Context, c domain.Client) (domain.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PropertyServicer defines the business operations the property handlers depend on.
type PropertyServicer interface {
	Create(ctx context.Context, p domain.Property) (domain.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error)
	List(ctx context.Context, f domain.PropertyFilter, p domain.PageRequest) ([]domain.Property, domain.PageResult, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Property, error)
	Update(ctx context.Context, p domain.Property) (domain.Property, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectServicer defines the business operations the project handlers depend on.
type ProjectServicer interface {
	Create(ctx context.Context, p domain.Project) (domain.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error)
	List(ctx context.Context, f domain.ProjectFilter, p domain.PageRequest) ([]domain.Project, domain.PageResult, error)
	Update(ctx context.Context, p domain.Project) (domain.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (domain.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Board(ctx context.Context, clientID uuid.UUID, inst domain.Institution, year int) (domain.ProjectBoard, error)
}

// InvoiceServicer defines the business operations the invoice handlers depend on.
type InvoiceServicer interface {
	Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error)
	Delete(ctx context.Context, projectID, invoiceID uuid.UUID) error
}

// DocumentServicer defines the business operations the document handlers depend on.
type DocumentServicer interface {
	Upload(ctx context.Context, u service.Upload) (domain.Document, error)
	Open(ctx context.Context, id uuid.UUID) (domain.Document, io.ReadCloser, error)
	List(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpirationServicer defines the business operations the expiration handlers depend on.
type ExpirationServicer interface {
	Create(ctx context.Context, e domain.Expiration) (domain.Expiration, error)
	GetDetail(ctx context.Context, id uuid.UUID) (domain.Ranked[domain.ExpirationDetail], error)
	List(ctx context.Context, f domain.ExpirationFilter, p domain.PageRequest) (domain.ExpirationPage, error)
	Export(ctx context.Context, f domain.ExpirationFilter) ([]domain.ExportRow, error)
	Summary(ctx context.Context) (domain.ExpirationSummary, error)
	DocumentTypes(ctx context.Context) ([]string, error)
	Update(ctx context.Context, e domain.Expiration) (domain.Expiration, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Notify(ctx context.Context, id uuid.UUID) (domain.Notification, bool, error)
	ListNotifications(ctx context.Context, id uuid.UUID) ([]domain.Notification, error)
}

// NotificationProcessor runs the reminder pass on demand.
type NotificationProcessor interface {
	Process(ctx context.Context) (int, error)
}

// DashboardServicer builds the landing-page summary.
type DashboardServicer interface {
	Get(ctx context.Context, f domain.DashboardFilter) (domain.Dashboard, error)
}

// Pinger reports whether the database is reachable. Satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps lists the Server's collaborators. A nil service leaves its routes
// registered; calling them is a programming error.
type Deps struct {
	Clients       ClientServicer
	Properties    PropertyServicer
	Projects      ProjectServicer
	Invoices      InvoiceServicer
	Documents     DocumentServicer
	Expirations   ExpirationServicer
	Notifications NotificationProcessor
	Dashboard     DashboardServicer
	DB            Pinger

	// Today dates export file names. Defaults to the current UTC date.
	Today func() time.Time
}

// Server serves every API endpoint.
// Wire it in main.go via NewRouter.
type Server struct {
	clients       ClientServicer
	properties    PropertyServicer
	projects      ProjectServicer
	invoices      InvoiceServicer
	documents     DocumentServicer
	expirations   ExpirationServicer
	notifications NotificationProcessor
	dashboard     DashboardServicer
	db            Pinger
	today         func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	today := d.Today
	if today == nil {
		today = func() time.Time { return time.Now().UTC() }
	}
	return &Server{
		clients:       d.Clients,
		properties:    d.Properties,
		projects:      d.Projects,
		invoices:      d.Invoices,
		documents:     d.Documents,
		expirations:   d.Expirations,
		notifications: d.Notifications,
		dashboard:     d.Dashboard,
		db:            d.DB,
		today:         today,
	}
}
