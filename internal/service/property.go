package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
)

// PropertyService implements business logic for Property operations.
type PropertyService struct {
	properties repo.PropertyRepo
	clients    repo.ClientRepo
}

// NewPropertyService constructs a PropertyService backed by the provided repos.
func NewPropertyService(properties repo.PropertyRepo, clients repo.ClientRepo) *PropertyService {
	return &PropertyService{properties: properties, clients: clients}
}

// Create validates and persists a new property for an existing client.
func (s *PropertyService) Create(ctx context.Context, p domain.Property) (domain.Property, error) {
	if err := s.validate(ctx, &p); err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.Create: %w", err)
	}
	created, err := s.properties.Create(ctx, p)
	if err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single property by ID.
func (s *PropertyService) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.GetByID: %w", err)
	}
	return p, nil
}

// List returns one page of properties matching f.
func (s *PropertyService) List(ctx context.Context, f domain.PropertyFilter, p domain.PageRequest) ([]domain.Property, domain.PageResult, error) {
	f.Query = strings.TrimSpace(f.Query)
	props, page, err := s.properties.ListPaged(ctx, f, p)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("service.PropertyService.List: %w", err)
	}
	return props, page, nil
}

// ListByClient returns every property of a client.
// Returns domain.ErrNotFound if the client does not exist.
func (s *PropertyService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Property, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, fmt.Errorf("service.PropertyService.ListByClient: %w", err)
	}
	props, err := s.properties.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("service.PropertyService.ListByClient: %w", err)
	}
	return props, nil
}

// Update validates and updates an existing property.
func (s *PropertyService) Update(ctx context.Context, p domain.Property) (domain.Property, error) {
	if err := s.validate(ctx, &p); err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.Update: %w", err)
	}
	updated, err := s.properties.Update(ctx, p)
	if err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a property by ID.
func (s *PropertyService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.properties.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PropertyService.Delete: %w", err)
	}
	return nil
}

func (s *PropertyService) validate(ctx context.Context, p *domain.Property) error {
	for _, f := range []*string{&p.Finca, &p.Matricula, &p.Padron, &p.Department,
		&p.District, &p.Coordinates, &p.MapURL} {
		*f = strings.TrimSpace(*f)
	}
	if p.SurfaceHa != nil && *p.SurfaceHa < 0 {
		return fmt.Errorf("%w: surface must not be negative", domain.ErrValidation)
	}
	return requireClient(ctx, s.clients, p.ClientID)
}

// requireClient turns a missing referenced client into a validation error.
func requireClient(ctx context.Context, clients repo.ClientRepo, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: client_id is required", domain.ErrValidation)
	}
	if _, err := clients.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: client %s does not exist", domain.ErrValidation, id)
		}
		return err
	}
	return nil
}

// requireProperty checks that an optional property exists and belongs to clientID.
func requireProperty(ctx context.Context, properties repo.PropertyRepo, id *uuid.UUID, clientID uuid.UUID) error {
	if id == nil {
		return nil
	}
	p, err := properties.GetByID(ctx, *id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: property %s does not exist", domain.ErrValidation, *id)
		}
		return err
	}
	if p.ClientID != clientID {
		return fmt.Errorf("%w: property %s belongs to another client", domain.ErrValidation, *id)
	}
	return nil
}
