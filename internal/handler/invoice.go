package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// Invoice is the JSON representation of an invoice.
type Invoice struct {
	ID        uuid.UUID          `json:"id"`
	ProjectID uuid.UUID          `json:"project_id"`
	Amount    int64              `json:"amount"`
	IssuedAt  openapi_types.Date `json:"issued_at"`
	Verified  bool               `json:"verified"`
	CreatedAt time.Time          `json:"created_at"`
}

// InvoiceRequest is the body of POST /projects/{id}/invoices.
type InvoiceRequest struct {
	Amount   int64              `json:"amount"`
	IssuedAt openapi_types.Date `json:"issued_at"`
	Verified bool               `json:"verified"`
}

// CreateInvoice handles POST /projects/{id}/invoices.
func (s *Server) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	var body InvoiceRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.invoices.Create(r.Context(), domain.Invoice{
		ProjectID: projectID,
		Amount:    body.Amount,
		IssuedAt:  body.IssuedAt.Time,
		Verified:  body.Verified,
	})
	if err != nil {
		writeServiceError(w, r, err, "project")
		return
	}
	writeJSON(w, http.StatusCreated, invoiceToResponse(created))
}

// ListInvoices handles GET /projects/{id}/invoices.
func (s *Server) ListInvoices(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}

	invoices, err := s.invoices.ListByProject(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, r, err, "project")
		return
	}

	data := make([]Invoice, len(invoices))
	for i, inv := range invoices {
		data[i] = invoiceToResponse(inv)
	}
	writeJSON(w, http.StatusOK, data)
}

// DeleteInvoice handles DELETE /projects/{id}/invoices/{invoiceID}.
func (s *Server) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	invoiceID, ok := pathID(w, r, "invoiceID", "invoice")
	if !ok {
		return
	}

	if err := s.invoices.Delete(r.Context(), projectID, invoiceID); err != nil {
		writeServiceError(w, r, err, "invoice")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func invoiceToResponse(inv domain.Invoice) Invoice {
	return Invoice{
		ID:        inv.ID,
		ProjectID: inv.ProjectID,
		Amount:    inv.Amount,
		IssuedAt:  openapi_types.Date{Time: inv.IssuedAt},
		Verified:  inv.Verified,
		CreatedAt: inv.CreatedAt,
	}
}
