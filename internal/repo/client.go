package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// ClientRepo defines the persistence operations for Clients.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type ClientRepo interface {
	// Create inserts a new client and returns the persisted record (with DB-generated
	// id, created_at, and updated_at populated).
	Create(ctx context.Context, c domain.Client) (domain.Client, error)

	// GetByID retrieves a single client by its UUID primary key.
	// Returns domain.ErrNotFound if no client with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error)

	// ListPaged returns one page of clients matching f ordered by name, plus the
	// pagination state. An out-of-range page is clamped to the last page.
	ListPaged(ctx context.Context, f domain.ClientFilter, p domain.PageRequest) ([]domain.Client, domain.PageResult, error)

	// Update overwrites the mutable fields of an existing client.
	// Returns domain.ErrNotFound if no client with that ID exists.
	Update(ctx context.Context, c domain.Client) (domain.Client, error)

	// Delete removes a client by ID. Returns domain.ErrNotFound if it does not
	// exist and domain.ErrConflict while properties, projects or expirations
	// still reference it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgClientRepo is the Postgres implementation of ClientRepo.
type pgClientRepo struct {
	db db
}

// NewClientRepo constructs a ClientRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewClientRepo(db db) ClientRepo {
	return &pgClientRepo{db: db}
}

const clientColumns = `id, name, tax_id, phone, email, department, district, place,
		general_location, gps_location, created_at, updated_at`

func clientArgs(c domain.Client) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":               c.ID,
		"name":             c.Name,
		"tax_id":           c.TaxID,
		"phone":            c.Phone,
		"email":            c.Email,
		"department":       c.Department,
		"district":         c.District,
		"place":            c.Place,
		"general_location": c.GeneralLocation,
		"gps_location":     c.GPSLocation,
	}
}

// Create inserts a new client row and returns the full persisted record.
func (r *pgClientRepo) Create(ctx context.Context, c domain.Client) (domain.Client, error) {
	const q = `
		INSERT INTO clients (name, tax_id, phone, email, department, district, place,
		                     general_location, gps_location)
		VALUES (@name, @tax_id, @phone, @email, @department, @district, @place,
		        @general_location, @gps_location)
		RETURNING ` + clientColumns

	result, err := scanClient(r.db.QueryRow(ctx, q, clientArgs(c)))
	if err != nil {
		return domain.Client{}, fmt.Errorf("repo.ClientRepo.Create: %w", translate(err))
	}
	return result, nil
}

// GetByID retrieves a client by primary key.
func (r *pgClientRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE id = @id`

	result, err := scanClient(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Client{}, fmt.Errorf("repo.ClientRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

// ListPaged counts the matching clients first so the requested page can be
// clamped before the page itself is fetched.
func (r *pgClientRepo) ListPaged(ctx context.Context, f domain.ClientFilter, p domain.PageRequest) ([]domain.Client, domain.PageResult, error) {
	const where = `
		WHERE (@q = '' OR name ILIKE '%' || @q || '%')`
	const countQ = `SELECT COUNT(*) FROM clients` + where
	const listQ = `SELECT ` + clientColumns + ` FROM clients` + where + `
		ORDER BY lower(name), id
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"q": f.Query}
	total, err := count(ctx, r.db, countQ, args)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("repo.ClientRepo.ListPaged: count: %w", err)
	}

	page := domain.PaginateRequest(p, total)
	args["limit"] = page.PageSize
	args["offset"] = page.Offset()

	rows, err := r.db.Query(ctx, listQ, args)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("repo.ClientRepo.ListPaged: %w", err)
	}
	clients, err := collect(rows, scanClient)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("repo.ClientRepo.ListPaged: %w", err)
	}
	return clients, page, nil
}

// Update overwrites the mutable fields of a client and returns the updated record.
func (r *pgClientRepo) Update(ctx context.Context, c domain.Client) (domain.Client, error) {
	const q = `
		UPDATE clients
		SET name             = @name,
		    tax_id           = @tax_id,
		    phone            = @phone,
		    email            = @email,
		    department       = @department,
		    district         = @district,
		    place            = @place,
		    general_location = @general_location,
		    gps_location     = @gps_location,
		    updated_at       = now()
		WHERE id = @id
		RETURNING ` + clientColumns

	result, err := scanClient(r.db.QueryRow(ctx, q, clientArgs(c)))
	if err != nil {
		return domain.Client{}, fmt.Errorf("repo.ClientRepo.Update: %w", translate(err))
	}
	return result, nil
}

// Delete removes a client by primary key.
func (r *pgClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM clients WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ClientRepo.Delete: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ClientRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanClient maps a single database row into a domain.Client.
func scanClient(s scanner) (domain.Client, error) {
	var (
		c  domain.Client
		id pgtype.UUID
	)
	err := s.Scan(&id, &c.Name, &c.TaxID, &c.Phone, &c.Email, &c.Department, &c.District,
		&c.Place, &c.GeneralLocation, &c.GPSLocation, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Client{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}
