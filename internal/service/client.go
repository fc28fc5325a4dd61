package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
)

// OwnerDocuments removes every document attached to an owner, including the
// stored files. Implemented by DocumentService.
type OwnerDocuments interface {
	DeleteOwner(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) error
}

// ClientService implements business logic for Client operations.
type ClientService struct {
	clients repo.ClientRepo
	docs    OwnerDocuments
}

// NewClientService constructs a ClientService backed by the provided repo.
// docs may be nil when documents are not in use (tests).
func NewClientService(clients repo.ClientRepo, docs OwnerDocuments) *ClientService {
	return &ClientService{clients: clients, docs: docs}
}

// Create validates and persists a new client.
func (s *ClientService) Create(ctx context.Context, c domain.Client) (domain.Client, error) {
	c, err := normalizeClient(c)
	if err != nil {
		return domain.Client{}, fmt.Errorf("service.ClientService.Create: %w", err)
	}
	created, err := s.clients.Create(ctx, c)
	if err != nil {
		return domain.Client{}, fmt.Errorf("service.ClientService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single client by ID.
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return domain.Client{}, fmt.Errorf("service.ClientService.GetByID: %w", err)
	}
	return c, nil
}

// List returns one page of clients whose name contains the filter query.
func (s *ClientService) List(ctx context.Context, f domain.ClientFilter, p domain.PageRequest) ([]domain.Client, domain.PageResult, error) {
	f.Query = strings.TrimSpace(f.Query)
	clients, page, err := s.clients.ListPaged(ctx, f, p)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("service.ClientService.List: %w", err)
	}
	return clients, page, nil
}

// Update validates and updates an existing client.
func (s *ClientService) Update(ctx context.Context, c domain.Client) (domain.Client, error) {
	c, err := normalizeClient(c)
	if err != nil {
		return domain.Client{}, fmt.Errorf("service.ClientService.Update: %w", err)
	}
	updated, err := s.clients.Update(ctx, c)
	if err != nil {
		return domain.Client{}, fmt.Errorf("service.ClientService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a client, then its documents. A client that still has
// properties, projects or expirations cannot be deleted (domain.ErrConflict).
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.clients.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ClientService.Delete: %w", err)
	}
	if s.docs != nil {
		if err := s.docs.DeleteOwner(ctx, domain.OwnerClient, id); err != nil {
			return fmt.Errorf("service.ClientService.Delete: documents: %w", err)
		}
	}
	return nil
}

// normalizeClient trims every text field and enforces the client rules.
func normalizeClient(c domain.Client) (domain.Client, error) {
	for _, f := range []*string{&c.Name, &c.TaxID, &c.Phone, &c.Email, &c.Department,
		&c.District, &c.Place, &c.GeneralLocation, &c.GPSLocation} {
		*f = strings.TrimSpace(*f)
	}
	if c.Name == "" {
		return c, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return c, fmt.Errorf("%w: email %q is not valid", domain.ErrValidation, c.Email)
	}
	return c, nil
}
