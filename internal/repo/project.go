package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// ProjectRepo defines the persistence operations for Projects.
// Every read carries InvoicedTotal, the sum of the project's invoices.
type ProjectRepo interface {
	// Create inserts a new project and returns the persisted record.
	// Returns domain.ErrConflict when the client or property does not exist.
	Create(ctx context.Context, p domain.Project) (domain.Project, error)

	// GetByID retrieves a single project.
	// Returns domain.ErrNotFound if no project with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error)

	// ListPaged returns one page of projects matching f, newest year first.
	ListPaged(ctx context.Context, f domain.ProjectFilter, p domain.PageRequest) ([]domain.Project, domain.PageResult, error)

	// List returns every project matching f, newest year first.
	List(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, error)

	// Update overwrites the mutable fields of a project, including the derived
	// finance fields, which the caller must have recalculated.
	Update(ctx context.Context, p domain.Project) (domain.Project, error)

	// UpdateStatus changes only the workflow status of a project.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (domain.Project, error)

	// Delete removes a project by ID. Its invoices go with it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgProjectRepo is the Postgres implementation of ProjectRepo.
type pgProjectRepo struct {
	db db
}

// NewProjectRepo constructs a ProjectRepo backed by the provided db connection.
func NewProjectRepo(db db) ProjectRepo {
	return &pgProjectRepo{db: db}
}

// projectSelect reads from a relation aliased p, which may be the projects
// table or a CTE over INSERT/UPDATE ... RETURNING *.
const projectSelect = `
		SELECT p.id, p.client_id, p.property_id, p.year, p.institution, p.name, p.subtype,
		       p.siam_file, p.contract_date, p.license_issued_at, p.license_expires_at,
		       p.deadline, p.total_cost, p.delivery_percent, p.delivered_amount, p.balance,
		       p.status,
		       COALESCE((SELECT SUM(i.amount) FROM invoices i WHERE i.project_id = p.id), 0)::bigint,
		       p.created_at, p.updated_at`

const projectWhere = `
		WHERE (@client_id::uuid IS NULL OR p.client_id = @client_id)
		  AND (@institution::text IS NULL OR p.institution = @institution)
		  AND (@year::int IS NULL OR p.year = @year)
		  AND (@status::text IS NULL OR p.status = @status)`

const projectOrder = `
		ORDER BY p.year DESC, p.contract_date DESC NULLS LAST, p.created_at DESC, p.id`

func projectArgs(p domain.Project) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                 p.ID,
		"client_id":          p.ClientID,
		"property_id":        p.PropertyID,
		"year":               p.Year,
		"institution":        string(p.Institution),
		"name":               p.Name,
		"subtype":            p.Subtype,
		"siam_file":          p.SIAMFile,
		"contract_date":      p.ContractDate,
		"license_issued_at":  p.LicenseIssuedAt,
		"license_expires_at": p.LicenseExpiresAt,
		"deadline":           p.Deadline,
		"total_cost":         p.TotalCost,
		"delivery_percent":   p.DeliveryPercent,
		"delivered_amount":   p.DeliveredAmount,
		"balance":            p.Balance,
		"status":             string(p.Status),
	}
}

func projectFilterArgs(f domain.ProjectFilter) pgx.NamedArgs {
	args := pgx.NamedArgs{
		"client_id":   f.ClientID,
		"institution": nil,
		"year":        f.Year,
		"status":      nil,
	}
	if f.Institution != nil {
		args["institution"] = string(*f.Institution)
	}
	if f.Status != nil {
		args["status"] = string(*f.Status)
	}
	return args
}

func (r *pgProjectRepo) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	const q = `
		WITH p AS (
			INSERT INTO projects (client_id, property_id, year, institution, name, subtype,
			                      siam_file, contract_date, license_issued_at, license_expires_at,
			                      deadline, total_cost, delivery_percent, delivered_amount,
			                      balance, status)
			VALUES (@client_id, @property_id, @year, @institution, @name, @subtype,
			        @siam_file, @contract_date, @license_issued_at, @license_expires_at,
			        @deadline, @total_cost, @delivery_percent, @delivered_amount,
			        @balance, @status)
			RETURNING *
		)` + projectSelect + ` FROM p`

	result, err := scanProject(r.db.QueryRow(ctx, q, projectArgs(p)))
	if err != nil {
		return domain.Project{}, fmt.Errorf("repo.ProjectRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error) {
	const q = projectSelect + ` FROM projects p WHERE p.id = @id`

	result, err := scanProject(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Project{}, fmt.Errorf("repo.ProjectRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgProjectRepo) ListPaged(ctx context.Context, f domain.ProjectFilter, p domain.PageRequest) ([]domain.Project, domain.PageResult, error) {
	const countQ = `SELECT COUNT(*) FROM projects p` + projectWhere
	const listQ = projectSelect + ` FROM projects p` + projectWhere + projectOrder + `
		LIMIT @limit OFFSET @offset`

	args := projectFilterArgs(f)
	total, err := count(ctx, r.db, countQ, args)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("repo.ProjectRepo.ListPaged: count: %w", err)
	}

	page := domain.PaginateRequest(p, total)
	args["limit"] = page.PageSize
	args["offset"] = page.Offset()

	rows, err := r.db.Query(ctx, listQ, args)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("repo.ProjectRepo.ListPaged: %w", err)
	}
	projects, err := collect(rows, scanProject)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("repo.ProjectRepo.ListPaged: %w", err)
	}
	return projects, page, nil
}

func (r *pgProjectRepo) List(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, error) {
	const q = projectSelect + ` FROM projects p` + projectWhere + projectOrder

	rows, err := r.db.Query(ctx, q, projectFilterArgs(f))
	if err != nil {
		return nil, fmt.Errorf("repo.ProjectRepo.List: %w", err)
	}
	projects, err := collect(rows, scanProject)
	if err != nil {
		return nil, fmt.Errorf("repo.ProjectRepo.List: %w", err)
	}
	return projects, nil
}

func (r *pgProjectRepo) Update(ctx context.Context, p domain.Project) (domain.Project, error) {
	const q = `
		WITH p AS (
			UPDATE projects
			SET client_id          = @client_id,
			    property_id        = @property_id,
			    year               = @year,
			    institution        = @institution,
			    name               = @name,
			    subtype            = @subtype,
			    siam_file          = @siam_file,
			    contract_date      = @contract_date,
			    license_issued_at  = @license_issued_at,
			    license_expires_at = @license_expires_at,
			    deadline           = @deadline,
			    total_cost         = @total_cost,
			    delivery_percent   = @delivery_percent,
			    delivered_amount   = @delivered_amount,
			    balance            = @balance,
			    status             = @status,
			    updated_at         = now()
			WHERE id = @id
			RETURNING *
		)` + projectSelect + ` FROM p`

	result, err := scanProject(r.db.QueryRow(ctx, q, projectArgs(p)))
	if err != nil {
		return domain.Project{}, fmt.Errorf("repo.ProjectRepo.Update: %w", translate(err))
	}
	return result, nil
}

func (r *pgProjectRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) (domain.Project, error) {
	const q = `
		WITH p AS (
			UPDATE projects
			SET status = @status, updated_at = now()
			WHERE id = @id
			RETURNING *
		)` + projectSelect + ` FROM p`

	result, err := scanProject(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.Project{}, fmt.Errorf("repo.ProjectRepo.UpdateStatus: %w", translate(err))
	}
	return result, nil
}

func (r *pgProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM projects WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ProjectRepo.Delete: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ProjectRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanProject maps a single row produced by projectSelect into a domain.Project.
func scanProject(s scanner) (domain.Project, error) {
	var (
		p                                   domain.Project
		id, clientID, propertyID            pgtype.UUID
		institution, status                 string
		contract, issued, expires, deadline pgtype.Date
		totalCost, deliveredAmount, balance pgtype.Int8
		deliveryPercent                     pgtype.Float8
	)
	err := s.Scan(&id, &clientID, &propertyID, &p.Year, &institution, &p.Name, &p.Subtype,
		&p.SIAMFile, &contract, &issued, &expires,
		&deadline, &totalCost, &deliveryPercent, &deliveredAmount, &balance,
		&status, &p.InvoicedTotal, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Project{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.ClientID = uuid.UUID(clientID.Bytes)
	p.PropertyID = uuidPtr(propertyID)
	p.Institution = domain.Institution(institution)
	p.Status = domain.ProjectStatus(status)
	p.ContractDate = datePtr(contract)
	p.LicenseIssuedAt = datePtr(issued)
	p.LicenseExpiresAt = datePtr(expires)
	p.Deadline = datePtr(deadline)
	p.TotalCost = int64Ptr(totalCost)
	p.DeliveryPercent = float64Ptr(deliveryPercent)
	p.DeliveredAmount = int64Ptr(deliveredAmount)
	p.Balance = int64Ptr(balance)
	return p, nil
}
