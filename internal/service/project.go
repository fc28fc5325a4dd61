package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
)

// ProjectService implements business logic for Project operations.
// It owns the finance rule: delivered amount and balance are always derived
// from total cost and delivery percent before a project is written.
type ProjectService struct {
	projects   repo.ProjectRepo
	clients    repo.ClientRepo
	properties repo.PropertyRepo
	docs       OwnerDocuments
}

// NewProjectService constructs a ProjectService backed by the provided repos.
// docs may be nil when documents are not in use (tests).
func NewProjectService(projects repo.ProjectRepo, clients repo.ClientRepo, properties repo.PropertyRepo, docs OwnerDocuments) *ProjectService {
	return &ProjectService{projects: projects, clients: clients, properties: properties, docs: docs}
}

// Create validates and persists a new project. An empty status defaults to
// pendiente.
func (s *ProjectService) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	if p.Status == "" {
		p.Status = domain.StatusPending
	}
	if err := s.prepare(ctx, &p); err != nil {
		return domain.Project{}, fmt.Errorf("service.ProjectService.Create: %w", err)
	}
	created, err := s.projects.Create(ctx, p)
	if err != nil {
		return domain.Project{}, fmt.Errorf("service.ProjectService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single project by ID.
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return domain.Project{}, fmt.Errorf("service.ProjectService.GetByID: %w", err)
	}
	return p, nil
}

// List returns one page of projects matching f.
func (s *ProjectService) List(ctx context.Context, f domain.ProjectFilter, p domain.PageRequest) ([]domain.Project, domain.PageResult, error) {
	projects, page, err := s.projects.ListPaged(ctx, f, p)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("service.ProjectService.List: %w", err)
	}
	return projects, page, nil
}

// Update validates and updates an existing project.
func (s *ProjectService) Update(ctx context.Context, p domain.Project) (domain.Project, error) {
	if p.Status == "" {
		current, err := s.projects.GetByID(ctx, p.ID)
		if err != nil {
			return domain.Project{}, fmt.Errorf("service.ProjectService.Update: %w", err)
		}
		p.Status = current.Status
	}
	if err := s.prepare(ctx, &p); err != nil {
		return domain.Project{}, fmt.Errorf("service.ProjectService.Update: %w", err)
	}
	updated, err := s.projects.Update(ctx, p)
	if err != nil {
		return domain.Project{}, fmt.Errorf("service.ProjectService.Update: %w", err)
	}
	return updated, nil
}

// UpdateStatus moves a project to another workflow status.
func (s *ProjectService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (domain.Project, error) {
	if _, err := domain.ParseProjectStatus(string(status)); err != nil {
		return domain.Project{}, fmt.Errorf("service.ProjectService.UpdateStatus: %w", err)
	}
	p, err := s.projects.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Project{}, fmt.Errorf("service.ProjectService.UpdateStatus: %w", err)
	}
	return p, nil
}

// Delete removes a project and its invoices, then its documents.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ProjectService.Delete: %w", err)
	}
	if s.docs != nil {
		if err := s.docs.DeleteOwner(ctx, domain.OwnerProject, id); err != nil {
			return fmt.Errorf("service.ProjectService.Delete: documents: %w", err)
		}
	}
	return nil
}

// Board groups a client's projects for one institution and year by status.
// Every status gets a column, possibly empty.
func (s *ProjectService) Board(ctx context.Context, clientID uuid.UUID, inst domain.Institution, year int) (domain.ProjectBoard, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return domain.ProjectBoard{}, fmt.Errorf("service.ProjectService.Board: %w", err)
	}
	projects, err := s.projects.List(ctx, domain.ProjectFilter{ClientID: &clientID, Institution: &inst, Year: &year})
	if err != nil {
		return domain.ProjectBoard{}, fmt.Errorf("service.ProjectService.Board: %w", err)
	}

	board := domain.ProjectBoard{
		ClientID:    clientID,
		Institution: inst,
		Year:        year,
		Columns:     make(map[domain.ProjectStatus][]domain.Project, len(domain.ProjectStatuses)),
	}
	for _, st := range domain.ProjectStatuses {
		board.Columns[st] = []domain.Project{}
	}
	for _, p := range projects {
		board.Columns[p.Status] = append(board.Columns[p.Status], p)
	}
	return board, nil
}

// prepare validates p against the project rules and derives its finances.
func (s *ProjectService) prepare(ctx context.Context, p *domain.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Subtype = strings.TrimSpace(p.Subtype)
	p.SIAMFile = strings.TrimSpace(p.SIAMFile)

	if _, err := domain.ParseInstitution(string(p.Institution)); err != nil {
		return err
	}
	if _, err := domain.ParseProjectStatus(string(p.Status)); err != nil {
		return err
	}
	if p.Year <= 0 {
		return fmt.Errorf("%w: year must be positive", domain.ErrValidation)
	}
	if p.TotalCost != nil && *p.TotalCost < 0 {
		return fmt.Errorf("%w: total cost must not be negative", domain.ErrValidation)
	}
	if p.DeliveryPercent != nil && (*p.DeliveryPercent < 0 || *p.DeliveryPercent > 100) {
		return fmt.Errorf("%w: delivery percent must be between 0 and 100", domain.ErrValidation)
	}
	if p.LicenseIssuedAt != nil && p.LicenseExpiresAt != nil && p.LicenseExpiresAt.Before(*p.LicenseIssuedAt) {
		return fmt.Errorf("%w: license expiry must not be before its emission", domain.ErrValidation)
	}
	if err := requireClient(ctx, s.clients, p.ClientID); err != nil {
		return err
	}
	if err := requireProperty(ctx, s.properties, p.PropertyID, p.ClientID); err != nil {
		return err
	}

	p.RecalculateFinances()
	return nil
}
