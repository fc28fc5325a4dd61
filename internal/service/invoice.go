package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
)

// InvoiceService implements business logic for Invoice operations.
// All operations are scoped to a parent project, which must exist.
type InvoiceService struct {
	invoices repo.InvoiceRepo
	projects repo.ProjectRepo
}

// NewInvoiceService constructs an InvoiceService backed by the provided repos.
func NewInvoiceService(invoices repo.InvoiceRepo, projects repo.ProjectRepo) *InvoiceService {
	return &InvoiceService{invoices: invoices, projects: projects}
}

// Create validates and persists a new invoice for an existing project.
func (s *InvoiceService) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	if inv.Amount <= 0 {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Create: %w: amount must be positive", domain.ErrValidation)
	}
	if inv.IssuedAt.IsZero() {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Create: %w: issue date is required", domain.ErrValidation)
	}
	if _, err := s.projects.GetByID(ctx, inv.ProjectID); err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Create: %w", err)
	}
	created, err := s.invoices.Create(ctx, inv)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Create: %w", err)
	}
	return created, nil
}

// ListByProject returns the invoices of a project.
// Returns domain.ErrNotFound if the project does not exist.
func (s *InvoiceService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, fmt.Errorf("service.InvoiceService.ListByProject: %w", err)
	}
	invoices, err := s.invoices.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("service.InvoiceService.ListByProject: %w", err)
	}
	return invoices, nil
}

// Delete removes an invoice from its project.
func (s *InvoiceService) Delete(ctx context.Context, projectID, invoiceID uuid.UUID) error {
	if err := s.invoices.Delete(ctx, projectID, invoiceID); err != nil {
		return fmt.Errorf("service.InvoiceService.Delete: %w", err)
	}
	return nil
}
