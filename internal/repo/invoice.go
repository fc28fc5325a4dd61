package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// InvoiceRepo defines the persistence operations for Invoices.
// All single-row operations are scoped by projectID to enforce ownership.
type InvoiceRepo interface {
	// Create inserts a new invoice for its project.
	Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)

	// ListByProject returns all invoices of a project, oldest issue date first.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error)

	// Delete removes an invoice, scoped to the given projectID.
	// Returns domain.ErrNotFound if no such invoice exists under that project.
	Delete(ctx context.Context, projectID, invoiceID uuid.UUID) error
}

// pgInvoiceRepo is the Postgres implementation of InvoiceRepo.
type pgInvoiceRepo struct {
	db db
}

// NewInvoiceRepo constructs an InvoiceRepo backed by the provided db connection.
func NewInvoiceRepo(db db) InvoiceRepo {
	return &pgInvoiceRepo{db: db}
}

func (r *pgInvoiceRepo) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	const q = `
		INSERT INTO invoices (project_id, amount, issued_at, verified)
		VALUES (@project_id, @amount, @issued_at, @verified)
		RETURNING id, project_id, amount, issued_at, verified, created_at`

	args := pgx.NamedArgs{
		"project_id": inv.ProjectID,
		"amount":     inv.Amount,
		"issued_at":  inv.IssuedAt,
		"verified":   inv.Verified,
	}

	result, err := scanInvoice(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("repo.InvoiceRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgInvoiceRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error) {
	const q = `
		SELECT id, project_id, amount, issued_at, verified, created_at
		FROM invoices
		WHERE project_id = @project_id
		ORDER BY issued_at, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"project_id": projectID})
	if err != nil {
		return nil, fmt.Errorf("repo.InvoiceRepo.ListByProject: %w", err)
	}
	invoices, err := collect(rows, scanInvoice)
	if err != nil {
		return nil, fmt.Errorf("repo.InvoiceRepo.ListByProject: %w", err)
	}
	return invoices, nil
}

func (r *pgInvoiceRepo) Delete(ctx context.Context, projectID, invoiceID uuid.UUID) error {
	const q = `DELETE FROM invoices WHERE id = @id AND project_id = @project_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": invoiceID, "project_id": projectID})
	if err != nil {
		return fmt.Errorf("repo.InvoiceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.InvoiceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanInvoice maps a single database row into a domain.Invoice.
func scanInvoice(s scanner) (domain.Invoice, error) {
	var (
		inv       domain.Invoice
		id        pgtype.UUID
		projectID pgtype.UUID
		issuedAt  pgtype.Date
	)
	err := s.Scan(&id, &projectID, &inv.Amount, &issuedAt, &inv.Verified, &inv.CreatedAt)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.ID = uuid.UUID(id.Bytes)
	inv.ProjectID = uuid.UUID(projectID.Bytes)
	inv.IssuedAt = issuedAt.Time
	return inv, nil
}
