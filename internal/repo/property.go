package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// PropertyRepo defines the persistence operations for Properties.
type PropertyRepo interface {
	// Create inserts a new property. Returns domain.ErrConflict when the client
	// does not exist.
	Create(ctx context.Context, p domain.Property) (domain.Property, error)

	// GetByID retrieves a single property.
	// Returns domain.ErrNotFound if no property with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error)

	// ListPaged returns one page of properties matching f, ordered by finca.
	ListPaged(ctx context.Context, f domain.PropertyFilter, p domain.PageRequest) ([]domain.Property, domain.PageResult, error)

	// ListByClient returns every property of a client, ordered by finca.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Property, error)

	// Update overwrites the mutable fields of a property.
	// Returns domain.ErrNotFound if no property with that ID exists.
	Update(ctx context.Context, p domain.Property) (domain.Property, error)

	// Delete removes a property by ID. Projects and expirations pointing at it
	// are detached, not deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgPropertyRepo is the Postgres implementation of PropertyRepo.
type pgPropertyRepo struct {
	db db
}

// NewPropertyRepo constructs a PropertyRepo backed by the provided db connection.
func NewPropertyRepo(db db) PropertyRepo {
	return &pgPropertyRepo{db: db}
}

const propertyColumns = `id, client_id, finca, matricula, padron, surface_ha, department,
		district, coordinates, map_url, created_at, updated_at`

func propertyArgs(p domain.Property) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":          p.ID,
		"client_id":   p.ClientID,
		"finca":       p.Finca,
		"matricula":   p.Matricula,
		"padron":      p.Padron,
		"surface_ha":  p.SurfaceHa, // nil becomes NULL
		"department":  p.Department,
		"district":    p.District,
		"coordinates": p.Coordinates,
		"map_url":     p.MapURL,
	}
}

func (r *pgPropertyRepo) Create(ctx context.Context, p domain.Property) (domain.Property, error) {
	const q = `
		INSERT INTO properties (client_id, finca, matricula, padron, surface_ha, department,
		                        district, coordinates, map_url)
		VALUES (@client_id, @finca, @matricula, @padron, @surface_ha, @department,
		        @district, @coordinates, @map_url)
		RETURNING ` + propertyColumns

	result, err := scanProperty(r.db.QueryRow(ctx, q, propertyArgs(p)))
	if err != nil {
		return domain.Property{}, fmt.Errorf("repo.PropertyRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	const q = `SELECT ` + propertyColumns + ` FROM properties WHERE id = @id`

	result, err := scanProperty(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Property{}, fmt.Errorf("repo.PropertyRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgPropertyRepo) ListPaged(ctx context.Context, f domain.PropertyFilter, p domain.PageRequest) ([]domain.Property, domain.PageResult, error) {
	const where = `
		WHERE (@client_id::uuid IS NULL OR client_id = @client_id)
		  AND (@q = '' OR finca ILIKE '%' || @q || '%'
		               OR matricula ILIKE '%' || @q || '%'
		               OR padron ILIKE '%' || @q || '%')`
	const countQ = `SELECT COUNT(*) FROM properties` + where
	const listQ = `SELECT ` + propertyColumns + ` FROM properties` + where + `
		ORDER BY finca, id
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"client_id": f.ClientID, "q": f.Query}
	total, err := count(ctx, r.db, countQ, args)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("repo.PropertyRepo.ListPaged: count: %w", err)
	}

	page := domain.PaginateRequest(p, total)
	args["limit"] = page.PageSize
	args["offset"] = page.Offset()

	rows, err := r.db.Query(ctx, listQ, args)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("repo.PropertyRepo.ListPaged: %w", err)
	}
	props, err := collect(rows, scanProperty)
	if err != nil {
		return nil, domain.PageResult{}, fmt.Errorf("repo.PropertyRepo.ListPaged: %w", err)
	}
	return props, page, nil
}

func (r *pgPropertyRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Property, error) {
	const q = `SELECT ` + propertyColumns + ` FROM properties
		WHERE client_id = @client_id
		ORDER BY finca, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"client_id": clientID})
	if err != nil {
		return nil, fmt.Errorf("repo.PropertyRepo.ListByClient: %w", err)
	}
	props, err := collect(rows, scanProperty)
	if err != nil {
		return nil, fmt.Errorf("repo.PropertyRepo.ListByClient: %w", err)
	}
	return props, nil
}

func (r *pgPropertyRepo) Update(ctx context.Context, p domain.Property) (domain.Property, error) {
	const q = `
		UPDATE properties
		SET client_id   = @client_id,
		    finca       = @finca,
		    matricula   = @matricula,
		    padron      = @padron,
		    surface_ha  = @surface_ha,
		    department  = @department,
		    district    = @district,
		    coordinates = @coordinates,
		    map_url     = @map_url,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + propertyColumns

	result, err := scanProperty(r.db.QueryRow(ctx, q, propertyArgs(p)))
	if err != nil {
		return domain.Property{}, fmt.Errorf("repo.PropertyRepo.Update: %w", translate(err))
	}
	return result, nil
}

func (r *pgPropertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM properties WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PropertyRepo.Delete: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PropertyRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanProperty maps a single database row into a domain.Property.
// surface_ha is NUMERIC and may be NULL.
func scanProperty(s scanner) (domain.Property, error) {
	var (
		p        domain.Property
		id       pgtype.UUID
		clientID pgtype.UUID
		surface  pgtype.Float8
	)
	err := s.Scan(&id, &clientID, &p.Finca, &p.Matricula, &p.Padron, &surface, &p.Department,
		&p.District, &p.Coordinates, &p.MapURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Property{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.ClientID = uuid.UUID(clientID.Bytes)
	p.SurfaceHa = float64Ptr(surface)
	return p, nil
}
