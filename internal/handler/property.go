package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// Property is the JSON representation of a property.
type Property struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	Finca       string    `json:"finca"`
	Matricula   string    `json:"matricula"`
	Padron      string    `json:"padron"`
	SurfaceHa   *float64  `json:"surface_ha"`
	Department  string    `json:"department"`
	District    string    `json:"district"`
	Location    string    `json:"location"`
	Coordinates string    `json:"coordinates"`
	MapURL      string    `json:"map_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PropertyRequest is the body of POST /properties and PUT /properties/{id}.
type PropertyRequest struct {
	ClientID    uuid.UUID `json:"client_id"`
	Finca       string    `json:"finca"`
	Matricula   string    `json:"matricula"`
	Padron      string    `json:"padron"`
	SurfaceHa   *float64  `json:"surface_ha"`
	Department  string    `json:"department"`
	District    string    `json:"district"`
	Coordinates string    `json:"coordinates"`
	MapURL      string    `json:"map_url"`
}

// CreateProperty handles POST /properties.
func (s *Server) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var body PropertyRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.properties.Create(r.Context(), requestToProperty(uuid.Nil, body))
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusCreated, propertyToResponse(created))
}

// ListProperties handles GET /properties.
// Supports ?client_id=, ?q= (finca, matrícula or padrón) and paging.
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)
	clientID, err := queryUUID(r, "client_id")
	if err != nil {
		badQuery(w, err)
		return
	}

	f := domain.PropertyFilter{ClientID: clientID, Query: r.URL.Query().Get("q")}
	props, result, err := s.properties.List(r.Context(), f, page)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[Property]{Data: propertiesToResponse(props), Pagination: result})
}

// ListClientProperties handles GET /clients/{id}/properties.
func (s *Server) ListClientProperties(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "client")
	if !ok {
		return
	}

	props, err := s.properties.ListByClient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "client")
		return
	}
	writeJSON(w, http.StatusOK, propertiesToResponse(props))
}

// GetProperty handles GET /properties/{id}.
func (s *Server) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "property")
	if !ok {
		return
	}

	p, err := s.properties.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, propertyToResponse(p))
}

// UpdateProperty handles PUT /properties/{id}.
func (s *Server) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "property")
	if !ok {
		return
	}
	var body PropertyRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := s.properties.Update(r.Context(), requestToProperty(id, body))
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, propertyToResponse(updated))
}

// DeleteProperty handles DELETE /properties/{id}.
// Projects and expirations on the property are kept and detached.
func (s *Server) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "property")
	if !ok {
		return
	}

	if err := s.properties.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requestToProperty(id uuid.UUID, b PropertyRequest) domain.Property {
	return domain.Property{
		ID:          id,
		ClientID:    b.ClientID,
		Finca:       b.Finca,
		Matricula:   b.Matricula,
		Padron:      b.Padron,
		SurfaceHa:   b.SurfaceHa,
		Department:  b.Department,
		District:    b.District,
		Coordinates: b.Coordinates,
		MapURL:      b.MapURL,
	}
}

func propertyToResponse(p domain.Property) Property {
	return Property{
		ID:          p.ID,
		ClientID:    p.ClientID,
		Finca:       p.Finca,
		Matricula:   p.Matricula,
		Padron:      p.Padron,
		SurfaceHa:   p.SurfaceHa,
		Department:  p.Department,
		District:    p.District,
		Location:    p.Location(),
		Coordinates: p.Coordinates,
		MapURL:      p.MapURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func propertiesToResponse(props []domain.Property) []Property {
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = propertyToResponse(p)
	}
	return out
}
