package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// Project is the JSON representation of a project.
type Project struct {
	ID               uuid.UUID           `json:"id"`
	ClientID         uuid.UUID           `json:"client_id"`
	PropertyID       *uuid.UUID          `json:"property_id"`
	Year             int                 `json:"year"`
	Institution      string              `json:"institution"`
	Name             string              `json:"name"`
	DisplayName      string              `json:"display_name"`
	Subtype          string              `json:"subtype"`
	SIAMFile         string              `json:"siam_file"`
	ContractDate     *openapi_types.Date `json:"contract_date"`
	LicenseIssuedAt  *openapi_types.Date `json:"license_issued_at"`
	LicenseExpiresAt *openapi_types.Date `json:"license_expires_at"`
	Deadline         *openapi_types.Date `json:"deadline"`
	TotalCost        *int64              `json:"total_cost"`
	DeliveryPercent  *float64            `json:"delivery_percent"`
	DeliveredAmount  *int64              `json:"delivered_amount"`
	Balance          *int64              `json:"balance"`
	Status           string              `json:"status"`
	InvoicedTotal    int64               `json:"invoiced_total"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ProjectRequest is the body of POST /projects and PUT /projects/{id}.
// Status may be omitted; a new project then starts as pending and an updated
// one keeps its current status.
type ProjectRequest struct {
	ClientID         uuid.UUID           `json:"client_id"`
	PropertyID       *uuid.UUID          `json:"property_id"`
	Year             int                 `json:"year"`
	Institution      string              `json:"institution"`
	Name             string              `json:"name"`
	Subtype          string              `json:"subtype"`
	SIAMFile         string              `json:"siam_file"`
	ContractDate     *openapi_types.Date `json:"contract_date"`
	LicenseIssuedAt  *openapi_types.Date `json:"license_issued_at"`
	LicenseExpiresAt *openapi_types.Date `json:"license_expires_at"`
	Deadline         *openapi_types.Date `json:"deadline"`
	TotalCost        *int64              `json:"total_cost"`
	DeliveryPercent  *float64            `json:"delivery_percent"`
	Status           *string             `json:"status"`
}

// StatusRequest is the body of PATCH /projects/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// ProjectBoard is the JSON representation of a client's board: one column
// per status, in workflow order.
type ProjectBoard struct {
	ClientID    uuid.UUID     `json:"client_id"`
	Institution string        `json:"institution"`
	Year        int           `json:"year"`
	Columns     []BoardColumn `json:"columns"`
}

// BoardColumn holds the projects in one status.
type BoardColumn struct {
	Status   string    `json:"status"`
	Projects []Project `json:"projects"`
}

// CreateProject handles POST /projects.
func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	var body ProjectRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := requestToProject(uuid.Nil, body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}

	created, err := s.projects.Create(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err, "project")
		return
	}
	writeJSON(w, http.StatusCreated, projectToResponse(created))
}

// ListProjects handles GET /projects.
// Supports ?client_id=, ?institution=, ?year=, ?status= and paging.
func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)
	f, err := projectFilter(r)
	if err != nil {
		badQuery(w, err)
		return
	}

	projects, result, err := s.projects.List(r.Context(), f, page)
	if err != nil {
		writeServiceError(w, r, err, "project")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[Project]{Data: projectsToResponse(projects), Pagination: result})
}

// GetProject handles GET /projects/{id}.
func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}

	p, err := s.projects.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "project")
		return
	}
	writeJSON(w, http.StatusOK, projectToResponse(p))
}

// UpdateProject handles PUT /projects/{id}.
func (s *Server) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	var body ProjectRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := requestToProject(id, body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}

	updated, err := s.projects.Update(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err, "project")
		return
	}
	writeJSON(w, http.StatusOK, projectToResponse(updated))
}

// UpdateProjectStatus handles PATCH /projects/{id}/status, the board's
// drag-and-drop move.
func (s *Server) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	var body StatusRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	status, err := domain.ParseProjectStatus(body.Status)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}

	updated, err := s.projects.UpdateStatus(r.Context(), id, status)
	if err != nil {
		writeServiceError(w, r, err, "project")
		return
	}
	writeJSON(w, http.StatusOK, projectToResponse(updated))
}

// DeleteProject handles DELETE /projects/{id}.
// Invoices and documents of the project are removed with it.
func (s *Server) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}

	if err := s.projects.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProjectBoard handles GET /clients/{id}/projects/board.
// ?institution= is required; ?year= defaults to the current year.
func (s *Server) GetProjectBoard(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "id", "client")
	if !ok {
		return
	}
	inst, err := domain.ParseInstitution(r.URL.Query().Get("institution"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}
	var year *int
	if err := bindQuery(r, "year", &year); err != nil {
		badQuery(w, err)
		return
	}
	if year == nil {
		y := s.today().Year()
		year = &y
	}

	board, err := s.projects.Board(r.Context(), clientID, inst, *year)
	if err != nil {
		writeServiceError(w, r, err, "client")
		return
	}

	resp := ProjectBoard{
		ClientID:    board.ClientID,
		Institution: string(board.Institution),
		Year:        board.Year,
		Columns:     make([]BoardColumn, 0, len(domain.ProjectStatuses)),
	}
	for _, st := range domain.ProjectStatuses {
		resp.Columns = append(resp.Columns, BoardColumn{
			Status:   string(st),
			Projects: projectsToResponse(board.Columns[st]),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func projectFilter(r *http.Request) (domain.ProjectFilter, error) {
	var f domain.ProjectFilter
	clientID, err := queryUUID(r, "client_id")
	if err != nil {
		return f, err
	}
	f.ClientID = clientID

	var inst, status *string
	if err := bindQuery(r, "institution", &inst); err != nil {
		return f, err
	}
	if err := bindQuery(r, "status", &status); err != nil {
		return f, err
	}
	if err := bindQuery(r, "year", &f.Year); err != nil {
		return f, err
	}
	if inst != nil && *inst != "" {
		i, err := domain.ParseInstitution(*inst)
		if err != nil {
			return f, err
		}
		f.Institution = &i
	}
	if status != nil && *status != "" {
		st, err := domain.ParseProjectStatus(*status)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	return f, nil
}

// requestToProject converts the request body. Institution must parse here;
// the remaining rules are the service's.
func requestToProject(id uuid.UUID, b ProjectRequest) (domain.Project, error) {
	inst, err := domain.ParseInstitution(b.Institution)
	if err != nil {
		return domain.Project{}, err
	}
	p := domain.Project{
		ID:               id,
		ClientID:         b.ClientID,
		PropertyID:       b.PropertyID,
		Year:             b.Year,
		Institution:      inst,
		Name:             b.Name,
		Subtype:          b.Subtype,
		SIAMFile:         b.SIAMFile,
		ContractDate:     fromDate(b.ContractDate),
		LicenseIssuedAt:  fromDate(b.LicenseIssuedAt),
		LicenseExpiresAt: fromDate(b.LicenseExpiresAt),
		Deadline:         fromDate(b.Deadline),
		TotalCost:        b.TotalCost,
		DeliveryPercent:  b.DeliveryPercent,
	}
	if raw := derefString(b.Status); raw != "" {
		st, err := domain.ParseProjectStatus(raw)
		if err != nil {
			return domain.Project{}, err
		}
		p.Status = st
	}
	return p, nil
}

func projectToResponse(p domain.Project) Project {
	return Project{
		ID:               p.ID,
		ClientID:         p.ClientID,
		PropertyID:       p.PropertyID,
		Year:             p.Year,
		Institution:      string(p.Institution),
		Name:             p.Name,
		DisplayName:      p.DisplayName(),
		Subtype:          p.Subtype,
		SIAMFile:         p.SIAMFile,
		ContractDate:     toDate(p.ContractDate),
		LicenseIssuedAt:  toDate(p.LicenseIssuedAt),
		LicenseExpiresAt: toDate(p.LicenseExpiresAt),
		Deadline:         toDate(p.Deadline),
		TotalCost:        p.TotalCost,
		DeliveryPercent:  p.DeliveryPercent,
		DeliveredAmount:  p.DeliveredAmount,
		Balance:          p.Balance,
		Status:           string(p.Status),
		InvoicedTotal:    p.InvoicedTotal,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func projectsToResponse(projects []domain.Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = projectToResponse(p)
	}
	return out
}
