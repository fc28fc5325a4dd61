package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/handler"
	"github.com/consultoria-ambiental/registro/internal/service"
)

// Each mock is a test double for one handler servicer interface.
// Set only the method fields your test needs.

type mockClientServicer struct {
	create  func(ctx context.Context, c domain.Client) (domain.Client, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Client, error)
	list    func(ctx context.Context, f domain.ClientFilter, p domain.PageRequest) ([]domain.Client, domain.PageResult, error)
	update  func(ctx context.Context, c domain.Client) (domain.Client, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockClientServicer) Create(ctx context.Context, c domain.Client) (domain.Client, error) {
	return m.create(ctx, c)
}
func (m *mockClientServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	return m.getByID(ctx, id)
}
func (m *mockClientServicer) List(ctx context.Context, f domain.ClientFilter, p domain.PageRequest) ([]domain.Client, domain.PageResult, error) {
	return m.list(ctx, f, p)
}
func (m *mockClientServicer) Update(ctx context.Context, c domain.Client) (domain.Client, error) {
	return m.update(ctx, c)
}
func (m *mockClientServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.ClientServicer = (*mockClientServicer)(nil)

type mockPropertyServicer struct {
	create       func(ctx context.Context, p domain.Property) (domain.Property, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Property, error)
	list         func(ctx context.Context, f domain.PropertyFilter, p domain.PageRequest) ([]domain.Property, domain.PageResult, error)
	listByClient func(ctx context.Context, clientID uuid.UUID) ([]domain.Property, error)
	update       func(ctx context.Context, p domain.Property) (domain.Property, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPropertyServicer) Create(ctx context.Context, p domain.Property) (domain.Property, error) {
	return m.create(ctx, p)
}
func (m *mockPropertyServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	return m.getByID(ctx, id)
}
func (m *mockPropertyServicer) List(ctx context.Context, f domain.PropertyFilter, p domain.PageRequest) ([]domain.Property, domain.PageResult, error) {
	return m.list(ctx, f, p)
}
func (m *mockPropertyServicer) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Property, error) {
	return m.listByClient(ctx, clientID)
}
func (m *mockPropertyServicer) Update(ctx context.Context, p domain.Property) (domain.Property, error) {
	return m.update(ctx, p)
}
func (m *mockPropertyServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.PropertyServicer = (*mockPropertyServicer)(nil)

type mockProjectServicer struct {
	create       func(ctx context.Context, p domain.Project) (domain.Project, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Project, error)
	list         func(ctx context.Context, f domain.ProjectFilter, p domain.PageRequest) ([]domain.Project, domain.PageResult, error)
	update       func(ctx context.Context, p domain.Project) (domain.Project, error)
	updateStatus func(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (domain.Project, error)
	delete       func(ctx context.Context, id uuid.UUID) error
	board        func(ctx context.Context, clientID uuid.UUID, inst domain.Institution, year int) (domain.ProjectBoard, error)
}

func (m *mockProjectServicer) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	return m.create(ctx, p)
}
func (m *mockProjectServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error) {
	return m.getByID(ctx, id)
}
func (m *mockProjectServicer) List(ctx context.Context, f domain.ProjectFilter, p domain.PageRequest) ([]domain.Project, domain.PageResult, error) {
	return m.list(ctx, f, p)
}
func (m *mockProjectServicer) Update(ctx context.Context, p domain.Project) (domain.Project, error) {
	return m.update(ctx, p)
}
func (m *mockProjectServicer) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (domain.Project, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockProjectServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockProjectServicer) Board(ctx context.Context, clientID uuid.UUID, inst domain.Institution, year int) (domain.ProjectBoard, error) {
	return m.board(ctx, clientID, inst, year)
}

var _ handler.ProjectServicer = (*mockProjectServicer)(nil)

type mockInvoiceServicer struct {
	create        func(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	listByProject func(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error)
	delete        func(ctx context.Context, projectID, invoiceID uuid.UUID) error
}

func (m *mockInvoiceServicer) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	return m.create(ctx, inv)
}
func (m *mockInvoiceServicer) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error) {
	return m.listByProject(ctx, projectID)
}
func (m *mockInvoiceServicer) Delete(ctx context.Context, projectID, invoiceID uuid.UUID) error {
	return m.delete(ctx, projectID, invoiceID)
}

var _ handler.InvoiceServicer = (*mockInvoiceServicer)(nil)

type mockDocumentServicer struct {
	upload func(ctx context.Context, u service.Upload) (domain.Document, error)
	open   func(ctx context.Context, id uuid.UUID) (domain.Document, io.ReadCloser, error)
	list   func(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDocumentServicer) Upload(ctx context.Context, u service.Upload) (domain.Document, error) {
	return m.upload(ctx, u)
}
func (m *mockDocumentServicer) Open(ctx context.Context, id uuid.UUID) (domain.Document, io.ReadCloser, error) {
	return m.open(ctx, id)
}
func (m *mockDocumentServicer) List(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error) {
	return m.list(ctx, owner, ownerID)
}
func (m *mockDocumentServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.DocumentServicer = (*mockDocumentServicer)(nil)

type mockExpirationServicer struct {
	create            func(ctx context.Context, e domain.Expiration) (domain.Expiration, error)
	getDetail         func(ctx context.Context, id uuid.UUID) (domain.Ranked[domain.ExpirationDetail], error)
	list              func(ctx context.Context, f domain.ExpirationFilter, p domain.PageRequest) (domain.ExpirationPage, error)
	export            func(ctx context.Context, f domain.ExpirationFilter) ([]domain.ExportRow, error)
	summary           func(ctx context.Context) (domain.ExpirationSummary, error)
	documentTypes     func(ctx context.Context) ([]string, error)
	update            func(ctx context.Context, e domain.Expiration) (domain.Expiration, error)
	delete            func(ctx context.Context, id uuid.UUID) error
	notify            func(ctx context.Context, id uuid.UUID) (domain.Notification, bool, error)
	listNotifications func(ctx context.Context, id uuid.UUID) ([]domain.Notification, error)
}

func (m *mockExpirationServicer) Create(ctx context.Context, e domain.Expiration) (domain.Expiration, error) {
	return m.create(ctx, e)
}
func (m *mockExpirationServicer) GetDetail(ctx context.Context, id uuid.UUID) (domain.Ranked[domain.ExpirationDetail], error) {
	return m.getDetail(ctx, id)
}
func (m *mockExpirationServicer) List(ctx context.Context, f domain.ExpirationFilter, p domain.PageRequest) (domain.ExpirationPage, error) {
	return m.list(ctx, f, p)
}
func (m *mockExpirationServicer) Export(ctx context.Context, f domain.ExpirationFilter) ([]domain.ExportRow, error) {
	return m.export(ctx, f)
}
func (m *mockExpirationServicer) Summary(ctx context.Context) (domain.ExpirationSummary, error) {
	return m.summary(ctx)
}
func (m *mockExpirationServicer) DocumentTypes(ctx context.Context) ([]string, error) {
	return m.documentTypes(ctx)
}
func (m *mockExpirationServicer) Update(ctx context.Context, e domain.Expiration) (domain.Expiration, error) {
	return m.update(ctx, e)
}
func (m *mockExpirationServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockExpirationServicer) Notify(ctx context.Context, id uuid.UUID) (domain.Notification, bool, error) {
	return m.notify(ctx, id)
}
func (m *mockExpirationServicer) ListNotifications(ctx context.Context, id uuid.UUID) ([]domain.Notification, error) {
	return m.listNotifications(ctx, id)
}

var _ handler.ExpirationServicer = (*mockExpirationServicer)(nil)

type mockProcessor struct {
	process func(ctx context.Context) (int, error)
}

func (m *mockProcessor) Process(ctx context.Context) (int, error) { return m.process(ctx) }

var _ handler.NotificationProcessor = (*mockProcessor)(nil)

type mockDashboardServicer struct {
	get func(ctx context.Context, f domain.DashboardFilter) (domain.Dashboard, error)
}

func (m *mockDashboardServicer) Get(ctx context.Context, f domain.DashboardFilter) (domain.Dashboard, error) {
	return m.get(ctx, f)
}

var _ handler.DashboardServicer = (*mockDashboardServicer)(nil)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

var _ handler.Pinger = (*mockPinger)(nil)

// ---- helpers ---------------------------------------------------------------

// fixedToday is the day every handler test runs on.
var fixedToday = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

// newHTTPHandler wires a Server with the given mocks into the router the
// same way main.go does, without auth.
func newHTTPHandler(d handler.Deps) http.Handler {
	if d.Today == nil {
		d.Today = func() time.Time { return fixedToday }
	}
	return handler.NewRouter(handler.NewServer(d), handler.RouterOptions{})
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends a request through h and returns the recorder.
func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }
