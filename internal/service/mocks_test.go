package service_test

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
	"github.com/consultoria-ambiental/registro/internal/service"
)

// ---- mock ClientRepo -------------------------------------------------------

type mockClientRepo struct {
	create    func(ctx context.Context, c domain.Client) (domain.Client, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Client, error)
	listPaged func(ctx context.Context, f domain.ClientFilter, p domain.PageRequest) ([]domain.Client, domain.PageResult, error)
	update    func(ctx context.Context, c domain.Client) (domain.Client, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockClientRepo) Create(ctx context.Context, c domain.Client) (domain.Client, error) {
	return m.create(ctx, c)
}
func (m *mockClientRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	return m.getByID(ctx, id)
}
func (m *mockClientRepo) ListPaged(ctx context.Context, f domain.ClientFilter, p domain.PageRequest) ([]domain.Client, domain.PageResult, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockClientRepo) Update(ctx context.Context, c domain.Client) (domain.Client, error) {
	return m.update(ctx, c)
}
func (m *mockClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.ClientRepo = (*mockClientRepo)(nil)

// clientsWith returns a ClientRepo whose GetByID knows exactly the given IDs.
func clientsWith(ids ...uuid.UUID) *mockClientRepo {
	return &mockClientRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Client, error) {
			for _, known := range ids {
				if id == known {
					return domain.Client{ID: id, Name: "Estancia La Paz"}, nil
				}
			}
			return domain.Client{}, domain.ErrNotFound
		},
	}
}

// ---- mock PropertyRepo -----------------------------------------------------

type mockPropertyRepo struct {
	create       func(ctx context.Context, p domain.Property) (domain.Property, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Property, error)
	listPaged    func(ctx context.Context, f domain.PropertyFilter, p domain.PageRequest) ([]domain.Property, domain.PageResult, error)
	listByClient func(ctx context.Context, clientID uuid.UUID) ([]domain.Property, error)
	update       func(ctx context.Context, p domain.Property) (domain.Property, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPropertyRepo) Create(ctx context.Context, p domain.Property) (domain.Property, error) {
	return m.create(ctx, p)
}
func (m *mockPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	return m.getByID(ctx, id)
}
func (m *mockPropertyRepo) ListPaged(ctx context.Context, f domain.PropertyFilter, p domain.PageRequest) ([]domain.Property, domain.PageResult, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockPropertyRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Property, error) {
	return m.listByClient(ctx, clientID)
}
func (m *mockPropertyRepo) Update(ctx context.Context, p domain.Property) (domain.Property, error) {
	return m.update(ctx, p)
}
func (m *mockPropertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.PropertyRepo = (*mockPropertyRepo)(nil)

// propertiesWith returns a PropertyRepo whose GetByID knows the given
// properties.
func propertiesWith(props ...domain.Property) *mockPropertyRepo {
	return &mockPropertyRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Property, error) {
			for _, p := range props {
				if p.ID == id {
					return p, nil
				}
			}
			return domain.Property{}, domain.ErrNotFound
		},
	}
}

// ---- mock ProjectRepo ------------------------------------------------------

type mockProjectRepo struct {
	create       func(ctx context.Context, p domain.Project) (domain.Project, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Project, error)
	listPaged    func(ctx context.Context, f domain.ProjectFilter, p domain.PageRequest) ([]domain.Project, domain.PageResult, error)
	list         func(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, error)
	update       func(ctx context.Context, p domain.Project) (domain.Project, error)
	updateStatus func(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (domain.Project, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProjectRepo) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	return m.create(ctx, p)
}
func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error) {
	return m.getByID(ctx, id)
}
func (m *mockProjectRepo) ListPaged(ctx context.Context, f domain.ProjectFilter, p domain.PageRequest) ([]domain.Project, domain.PageResult, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockProjectRepo) List(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, error) {
	return m.list(ctx, f)
}
func (m *mockProjectRepo) Update(ctx context.Context, p domain.Project) (domain.Project, error) {
	return m.update(ctx, p)
}
func (m *mockProjectRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (domain.Project, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.ProjectRepo = (*mockProjectRepo)(nil)

// ---- mock InvoiceRepo ------------------------------------------------------

type mockInvoiceRepo struct {
	create        func(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	listByProject func(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error)
	delete        func(ctx context.Context, projectID, invoiceID uuid.UUID) error
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	return m.create(ctx, inv)
}
func (m *mockInvoiceRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error) {
	return m.listByProject(ctx, projectID)
}
func (m *mockInvoiceRepo) Delete(ctx context.Context, projectID, invoiceID uuid.UUID) error {
	return m.delete(ctx, projectID, invoiceID)
}

var _ repo.InvoiceRepo = (*mockInvoiceRepo)(nil)

// ---- mock DocumentRepo -----------------------------------------------------

type mockDocumentRepo struct {
	create        func(ctx context.Context, d domain.Document) (domain.Document, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Document, error)
	listByOwner   func(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error)
	delete        func(ctx context.Context, id uuid.UUID) (domain.Document, error)
	deleteByOwner func(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error)
}

func (m *mockDocumentRepo) Create(ctx context.Context, d domain.Document) (domain.Document, error) {
	return m.create(ctx, d)
}
func (m *mockDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	return m.getByID(ctx, id)
}
func (m *mockDocumentRepo) ListByOwner(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error) {
	return m.listByOwner(ctx, owner, ownerID)
}
func (m *mockDocumentRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	return m.delete(ctx, id)
}
func (m *mockDocumentRepo) DeleteByOwner(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error) {
	return m.deleteByOwner(ctx, owner, ownerID)
}

var _ repo.DocumentRepo = (*mockDocumentRepo)(nil)

// ---- mock ExpirationRepo ---------------------------------------------------

type mockExpirationRepo struct {
	create              func(ctx context.Context, e domain.Expiration) (domain.Expiration, error)
	getByID             func(ctx context.Context, id uuid.UUID) (domain.Expiration, error)
	getDetail           func(ctx context.Context, id uuid.UUID) (domain.ExpirationDetail, error)
	listDetails         func(ctx context.Context, f domain.ExpirationFilter, today time.Time) ([]domain.ExpirationDetail, error)
	listExpiringBetween func(ctx context.Context, from, to time.Time) ([]domain.Expiration, error)
	listOverdue         func(ctx context.Context, today time.Time, limit int) ([]domain.ExpirationDetail, error)
	aggregates          func(ctx context.Context, from, to time.Time) (domain.ExpirationAggregates, error)
	documentTypes       func(ctx context.Context) ([]string, error)
	update              func(ctx context.Context, e domain.Expiration) (domain.Expiration, error)
	delete              func(ctx context.Context, id uuid.UUID) error
}

func (m *mockExpirationRepo) Create(ctx context.Context, e domain.Expiration) (domain.Expiration, error) {
	return m.create(ctx, e)
}
func (m *mockExpirationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Expiration, error) {
	return m.getByID(ctx, id)
}
func (m *mockExpirationRepo) GetDetail(ctx context.Context, id uuid.UUID) (domain.ExpirationDetail, error) {
	return m.getDetail(ctx, id)
}
func (m *mockExpirationRepo) ListDetails(ctx context.Context, f domain.ExpirationFilter, today time.Time) ([]domain.ExpirationDetail, error) {
	return m.listDetails(ctx, f, today)
}
func (m *mockExpirationRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Expiration, error) {
	return m.listExpiringBetween(ctx, from, to)
}
func (m *mockExpirationRepo) ListOverdue(ctx context.Context, today time.Time, limit int) ([]domain.ExpirationDetail, error) {
	return m.listOverdue(ctx, today, limit)
}
func (m *mockExpirationRepo) Aggregates(ctx context.Context, from, to time.Time) (domain.ExpirationAggregates, error) {
	return m.aggregates(ctx, from, to)
}
func (m *mockExpirationRepo) DocumentTypes(ctx context.Context) ([]string, error) {
	return m.documentTypes(ctx)
}
func (m *mockExpirationRepo) Update(ctx context.Context, e domain.Expiration) (domain.Expiration, error) {
	return m.update(ctx, e)
}
func (m *mockExpirationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.ExpirationRepo = (*mockExpirationRepo)(nil)

// ---- mock NotificationRepo -------------------------------------------------

type mockNotificationRepo struct {
	record           func(ctx context.Context, expirationID uuid.UUID, kind domain.NotificationKind, sentOn time.Time) (domain.Notification, bool, error)
	listByExpiration func(ctx context.Context, expirationID uuid.UUID) ([]domain.Notification, error)
}

func (m *mockNotificationRepo) Record(ctx context.Context, expirationID uuid.UUID, kind domain.NotificationKind, sentOn time.Time) (domain.Notification, bool, error) {
	return m.record(ctx, expirationID, kind, sentOn)
}
func (m *mockNotificationRepo) ListByExpiration(ctx context.Context, expirationID uuid.UUID) ([]domain.Notification, error) {
	return m.listByExpiration(ctx, expirationID)
}

var _ repo.NotificationRepo = (*mockNotificationRepo)(nil)

// ---- mock DashboardRepo ----------------------------------------------------

type mockDashboardRepo struct {
	summary          func(ctx context.Context, f domain.DashboardFilter, today time.Time) (domain.Dashboard, error)
	deadlines        func(ctx context.Context, clientID *uuid.UUID, limit int) ([]domain.Deadline, error)
	contractsByMonth func(ctx context.Context, clientID *uuid.UUID, since time.Time) ([]domain.MonthCount, error)
}

func (m *mockDashboardRepo) Summary(ctx context.Context, f domain.DashboardFilter, today time.Time) (domain.Dashboard, error) {
	return m.summary(ctx, f, today)
}
func (m *mockDashboardRepo) Deadlines(ctx context.Context, clientID *uuid.UUID, limit int) ([]domain.Deadline, error) {
	return m.deadlines(ctx, clientID, limit)
}
func (m *mockDashboardRepo) ContractsByMonth(ctx context.Context, clientID *uuid.UUID, since time.Time) ([]domain.MonthCount, error) {
	return m.contractsByMonth(ctx, clientID, since)
}

var _ repo.DashboardRepo = (*mockDashboardRepo)(nil)

// ---- mock OwnerDocuments ---------------------------------------------------

type mockOwnerDocuments struct {
	deleteOwner func(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) error
}

func (m *mockOwnerDocuments) DeleteOwner(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) error {
	return m.deleteOwner(ctx, owner, ownerID)
}

var _ service.OwnerDocuments = (*mockOwnerDocuments)(nil)

// ---- in-memory FileStore ---------------------------------------------------

type memStore struct {
	files   map[string][]byte
	removed []string
	saveErr error
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (m *memStore) Save(_ context.Context, key string, r io.Reader) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.files[key] = b
	return int64(len(b)), nil
}

func (m *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := m.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	m.removed = append(m.removed, key)
	if _, ok := m.files[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.files, key)
	return nil
}

var _ service.FileStore = (*memStore)(nil)

// ---- helpers ---------------------------------------------------------------

var today = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }
