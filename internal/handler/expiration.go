package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// Expiration is the JSON representation of a stored expiration.
type Expiration struct {
	ID           uuid.UUID          `json:"id"`
	ClientID     uuid.UUID          `json:"client_id"`
	PropertyID   *uuid.UUID         `json:"property_id"`
	DocumentType string             `json:"document_type"`
	IssuedAt     openapi_types.Date `json:"issued_at"`
	ExpiresAt    openapi_types.Date `json:"expires_at"`
	State        string             `json:"state"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// PropertySummary names the property an expiration is tied to.
type PropertySummary struct {
	ID       uuid.UUID `json:"id"`
	Finca    string    `json:"finca"`
	Location string    `json:"location"`
}

// RankedExpiration is an expiration as list views show it: joined with its
// client and property and classified against today.
type RankedExpiration struct {
	Expiration
	ClientName    string           `json:"client_name"`
	Property      *PropertySummary `json:"property"`
	DaysRemaining int              `json:"days_remaining"`
	Tier          string           `json:"tier"`
	Overdue       bool             `json:"overdue"`
	Status        string           `json:"status"`
}

// ExpirationList is the body of GET /expirations.
type ExpirationList struct {
	Data       []RankedExpiration     `json:"data"`
	Pagination domain.PageResult      `json:"pagination"`
	Stats      domain.ExpirationStats `json:"stats"`
}

// ExpirationSummary is the body of GET /expirations/summary.
type ExpirationSummary struct {
	DueSoon         []RankedExpiration  `json:"due_soon"`
	DueToday        []RankedExpiration  `json:"due_today"`
	RecentlyOverdue []RankedExpiration  `json:"recently_overdue"`
	ByDocumentType  []DocumentTypeCount `json:"by_document_type"`
	ByMonth         []MonthlyCount      `json:"by_month"`
}

// DocumentTypeCount is the number of expirations of one document type.
type DocumentTypeCount struct {
	DocumentType string `json:"document_type"`
	Count        int    `json:"count"`
}

// ExpirationRequest is the body of POST /expirations and PUT /expirations/{id}.
type ExpirationRequest struct {
	ClientID     uuid.UUID          `json:"client_id"`
	PropertyID   *uuid.UUID         `json:"property_id"`
	DocumentType string             `json:"document_type"`
	IssuedAt     openapi_types.Date `json:"issued_at"`
	ExpiresAt    openapi_types.Date `json:"expires_at"`
	State        string             `json:"state"`
}

// CreateExpiration handles POST /expirations.
func (s *Server) CreateExpiration(w http.ResponseWriter, r *http.Request) {
	var body ExpirationRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.expirations.Create(r.Context(), requestToExpiration(uuid.Nil, body))
	if err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}
	writeJSON(w, http.StatusCreated, expirationToResponse(created))
}

// ListExpirations handles GET /expirations.
// Supports ?client_id=, ?document_type=, ?status=, ?year=, ?month= and paging.
// Items are ranked by deadline before paging; stats cover the whole filtered set.
func (s *Server) ListExpirations(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)
	f, err := expirationFilter(r)
	if err != nil {
		badQuery(w, err)
		return
	}

	result, err := s.expirations.List(r.Context(), f, page)
	if err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}

	writeJSON(w, http.StatusOK, ExpirationList{Data: rankedExpirations(result.Items), Pagination: result.Page, Stats: result.Stats})
}

// GetExpiration handles GET /expirations/{id}.
func (s *Server) GetExpiration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "expiration")
	if !ok {
		return
	}

	detail, err := s.expirations.GetDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}
	writeJSON(w, http.StatusOK, rankedExpirationToResponse(detail))
}

// UpdateExpiration handles PUT /expirations/{id}.
func (s *Server) UpdateExpiration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "expiration")
	if !ok {
		return
	}
	var body ExpirationRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := s.expirations.Update(r.Context(), requestToExpiration(id, body))
	if err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}
	writeJSON(w, http.StatusOK, expirationToResponse(updated))
}

// DeleteExpiration handles DELETE /expirations/{id}.
func (s *Server) DeleteExpiration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "expiration")
	if !ok {
		return
	}

	if err := s.expirations.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetExpirationSummary handles GET /expirations/summary.
func (s *Server) GetExpirationSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.expirations.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}

	out := ExpirationSummary{
		DueSoon:         rankedExpirations(sum.DueSoon),
		DueToday:        rankedExpirations(sum.DueToday),
		RecentlyOverdue: rankedExpirations(sum.RecentlyOverdue),
		ByDocumentType:  make([]DocumentTypeCount, len(sum.ByDocumentType)),
		ByMonth:         monthlyCounts(sum.ByMonth),
	}
	for i, tc := range sum.ByDocumentType {
		out.ByDocumentType[i] = DocumentTypeCount{DocumentType: tc.DocumentType, Count: tc.Count}
	}
	writeJSON(w, http.StatusOK, out)
}

// ListDocumentTypes handles GET /expirations/document-types.
func (s *Server) ListDocumentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.expirations.DocumentTypes(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}
	if types == nil {
		types = []string{}
	}
	writeJSON(w, http.StatusOK, types)
}

func expirationFilter(r *http.Request) (domain.ExpirationFilter, error) {
	var f domain.ExpirationFilter
	clientID, err := queryUUID(r, "client_id")
	if err != nil {
		return f, err
	}
	f.ClientID = clientID

	var docType, status *string
	if err := bindQuery(r, "document_type", &docType); err != nil {
		return f, err
	}
	if err := bindQuery(r, "status", &status); err != nil {
		return f, err
	}
	if err := bindQuery(r, "year", &f.Year); err != nil {
		return f, err
	}
	if err := bindQuery(r, "month", &f.Month); err != nil {
		return f, err
	}
	f.DocumentType = derefString(docType)
	if status != nil && *status != "" {
		st, err := domain.ParseExpirationStatus(*status)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	return f, nil
}

func requestToExpiration(id uuid.UUID, b ExpirationRequest) domain.Expiration {
	return domain.Expiration{
		ID:           id,
		ClientID:     b.ClientID,
		PropertyID:   b.PropertyID,
		DocumentType: b.DocumentType,
		IssuedAt:     b.IssuedAt.Time,
		ExpiresAt:    b.ExpiresAt.Time,
		State:        b.State,
	}
}

func expirationToResponse(e domain.Expiration) Expiration {
	return Expiration{
		ID:           e.ID,
		ClientID:     e.ClientID,
		PropertyID:   e.PropertyID,
		DocumentType: e.DocumentType,
		IssuedAt:     openapi_types.Date{Time: e.IssuedAt},
		ExpiresAt:    openapi_types.Date{Time: e.ExpiresAt},
		State:        e.State,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func rankedExpirations(items []domain.Ranked[domain.ExpirationDetail]) []RankedExpiration {
	out := make([]RankedExpiration, len(items))
	for i, r := range items {
		out[i] = rankedExpirationToResponse(r)
	}
	return out
}

func rankedExpirationToResponse(r domain.Ranked[domain.ExpirationDetail]) RankedExpiration {
	out := RankedExpiration{
		Expiration:    expirationToResponse(r.Item.Expiration),
		ClientName:    r.Item.ClientName,
		DaysRemaining: r.DaysRemaining,
		Tier:          string(r.Tier),
		Overdue:       r.Overdue(),
		Status:        string(domain.ExpirationStatusFor(r.DaysRemaining)),
	}
	if p := r.Item.Property; p != nil {
		out.Property = &PropertySummary{ID: p.ID, Finca: p.Finca, Location: p.Location()}
	}
	return out
}
