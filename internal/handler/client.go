package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// Client is the JSON representation of a client.
type Client struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	TaxID           string    `json:"tax_id"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Department      string    `json:"department"`
	District        string    `json:"district"`
	Place           string    `json:"place"`
	GeneralLocation string    `json:"general_location"`
	GPSLocation     string    `json:"gps_location"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ClientRequest is the body of POST /clients and PUT /clients/{id}.
type ClientRequest struct {
	Name            string `json:"name"`
	TaxID           string `json:"tax_id"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Department      string `json:"department"`
	District        string `json:"district"`
	Place           string `json:"place"`
	GeneralLocation string `json:"general_location"`
	GPSLocation     string `json:"gps_location"`
}

// CreateClient handles POST /clients.
func (s *Server) CreateClient(w http.ResponseWriter, r *http.Request) {
	var body ClientRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.clients.Create(r.Context(), requestToClient(uuid.Nil, body))
	if err != nil {
		writeServiceError(w, r, err, "client")
		return
	}
	writeJSON(w, http.StatusCreated, clientToResponse(created))
}

// ListClients handles GET /clients.
// Supports ?q= (name search) and ?page= / ?per_page=.
func (s *Server) ListClients(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)

	clients, result, err := s.clients.List(r.Context(), domain.ClientFilter{Query: r.URL.Query().Get("q")}, page)
	if err != nil {
		writeServiceError(w, r, err, "client")
		return
	}

	data := make([]Client, len(clients))
	for i, c := range clients {
		data[i] = clientToResponse(c)
	}
	writeJSON(w, http.StatusOK, ListResponse[Client]{Data: data, Pagination: result})
}

// GetClient handles GET /clients/{id}.
func (s *Server) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "client")
	if !ok {
		return
	}

	c, err := s.clients.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "client")
		return
	}
	writeJSON(w, http.StatusOK, clientToResponse(c))
}

// UpdateClient handles PUT /clients/{id}.
func (s *Server) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "client")
	if !ok {
		return
	}
	var body ClientRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := s.clients.Update(r.Context(), requestToClient(id, body))
	if err != nil {
		writeServiceError(w, r, err, "client")
		return
	}
	writeJSON(w, http.StatusOK, clientToResponse(updated))
}

// DeleteClient handles DELETE /clients/{id}.
// A client that still owns properties, projects or expirations yields 409.
func (s *Server) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "client")
	if !ok {
		return
	}

	if err := s.clients.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "client")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requestToClient(id uuid.UUID, b ClientRequest) domain.Client {
	return domain.Client{
		ID:              id,
		Name:            b.Name,
		TaxID:           b.TaxID,
		Phone:           b.Phone,
		Email:           strings.ToLower(b.Email),
		Department:      b.Department,
		District:        b.District,
		Place:           b.Place,
		GeneralLocation: b.GeneralLocation,
		GPSLocation:     b.GPSLocation,
	}
}

func clientToResponse(c domain.Client) Client {
	return Client{
		ID:              c.ID,
		Name:            c.Name,
		TaxID:           c.TaxID,
		Phone:           c.Phone,
		Email:           c.Email,
		Department:      c.Department,
		District:        c.District,
		Place:           c.Place,
		GeneralLocation: c.GeneralLocation,
		GPSLocation:     c.GPSLocation,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
