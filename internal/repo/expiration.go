package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// ExpirationRepo defines the persistence operations for Expirations.
type ExpirationRepo interface {
	// Create inserts a new expiration and returns the persisted record.
	Create(ctx context.Context, e domain.Expiration) (domain.Expiration, error)

	// GetByID retrieves a single expiration.
	// Returns domain.ErrNotFound if no expiration with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Expiration, error)

	// GetDetail retrieves a single expiration joined with its client name and
	// property. Returns domain.ErrNotFound if it does not exist.
	GetDetail(ctx context.Context, id uuid.UUID) (domain.ExpirationDetail, error)

	// ListDetails returns every expiration matching f, with status evaluated
	// against today, ordered by expiry date ascending.
	ListDetails(ctx context.Context, f domain.ExpirationFilter, today time.Time) ([]domain.ExpirationDetail, error)

	// ListExpiringBetween returns expirations whose expiry date falls within
	// [from, to], ordered by expiry date.
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Expiration, error)

	// ListOverdue returns up to limit expirations that expired before today,
	// latest expiry first.
	ListOverdue(ctx context.Context, today time.Time, limit int) ([]domain.ExpirationDetail, error)

	// Aggregates counts every expiration per document type, largest group
	// first, and per calendar month for expiry dates in [from, to). Months
	// without expirations are omitted.
	Aggregates(ctx context.Context, from, to time.Time) (domain.ExpirationAggregates, error)

	// DocumentTypes returns the distinct document types in use, sorted.
	DocumentTypes(ctx context.Context) ([]string, error)

	// Update overwrites the mutable fields of an expiration.
	// Returns domain.ErrNotFound if no expiration with that ID exists.
	Update(ctx context.Context, e domain.Expiration) (domain.Expiration, error)

	// Delete removes an expiration and its notifications.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgExpirationRepo is the Postgres implementation of ExpirationRepo.
type pgExpirationRepo struct {
	db db
}

// NewExpirationRepo constructs an ExpirationRepo backed by the provided db connection.
func NewExpirationRepo(db db) ExpirationRepo {
	return &pgExpirationRepo{db: db}
}

const expirationColumns = `id, client_id, property_id, document_type, issued_at, expires_at,
		state, created_at, updated_at`

// expirationDetailSelect joins the client (always present) and the property
// (optional). Property text columns are coalesced so only pr.id can be NULL.
const expirationDetailSelect = `
		SELECT e.id, e.client_id, e.property_id, e.document_type, e.issued_at, e.expires_at,
		       e.state, e.created_at, e.updated_at,
		       c.name,
		       pr.id, COALESCE(pr.finca, ''), COALESCE(pr.matricula, ''), COALESCE(pr.padron, ''),
		       COALESCE(pr.department, ''), COALESCE(pr.district, ''),
		       COALESCE(pr.coordinates, ''), COALESCE(pr.map_url, '')
		FROM expirations e
		JOIN clients c ON c.id = e.client_id
		LEFT JOIN properties pr ON pr.id = e.property_id`

func expirationArgs(e domain.Expiration) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":            e.ID,
		"client_id":     e.ClientID,
		"property_id":   e.PropertyID,
		"document_type": e.DocumentType,
		"issued_at":     e.IssuedAt,
		"expires_at":    e.ExpiresAt,
		"state":         e.State,
	}
}

func (r *pgExpirationRepo) Create(ctx context.Context, e domain.Expiration) (domain.Expiration, error) {
	const q = `
		INSERT INTO expirations (client_id, property_id, document_type, issued_at, expires_at, state)
		VALUES (@client_id, @property_id, @document_type, @issued_at, @expires_at, @state)
		RETURNING ` + expirationColumns

	result, err := scanExpiration(r.db.QueryRow(ctx, q, expirationArgs(e)))
	if err != nil {
		return domain.Expiration{}, fmt.Errorf("repo.ExpirationRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgExpirationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Expiration, error) {
	const q = `SELECT ` + expirationColumns + ` FROM expirations WHERE id = @id`

	result, err := scanExpiration(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Expiration{}, fmt.Errorf("repo.ExpirationRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgExpirationRepo) GetDetail(ctx context.Context, id uuid.UUID) (domain.ExpirationDetail, error) {
	const q = expirationDetailSelect + ` WHERE e.id = @id`

	result, err := scanExpirationDetail(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ExpirationDetail{}, fmt.Errorf("repo.ExpirationRepo.GetDetail: %w", translate(err))
	}
	return result, nil
}

// ListDetails applies the status filter as a date range computed from today,
// so the database never reads its own clock.
func (r *pgExpirationRepo) ListDetails(ctx context.Context, f domain.ExpirationFilter, today time.Time) ([]domain.ExpirationDetail, error) {
	const q = expirationDetailSelect + `
		WHERE (@client_id::uuid IS NULL OR e.client_id = @client_id)
		  AND (@document_type = '' OR e.document_type = @document_type)
		  AND (@expires_from::date IS NULL OR e.expires_at >= @expires_from)
		  AND (@expires_to::date IS NULL OR e.expires_at <= @expires_to)
		  AND (@year::int IS NULL OR EXTRACT(YEAR FROM e.expires_at) = @year)
		  AND (@year::int IS NULL OR @month::int IS NULL OR EXTRACT(MONTH FROM e.expires_at) = @month)
		ORDER BY e.expires_at, e.id`

	from, to := f.ExpiryRange(today)
	args := pgx.NamedArgs{
		"client_id":     f.ClientID,
		"document_type": f.DocumentType,
		"expires_from":  from,
		"expires_to":    to,
		"year":          f.Year,
		"month":         f.Month,
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ExpirationRepo.ListDetails: %w", err)
	}
	details, err := collect(rows, scanExpirationDetail)
	if err != nil {
		return nil, fmt.Errorf("repo.ExpirationRepo.ListDetails: %w", err)
	}
	return details, nil
}

func (r *pgExpirationRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Expiration, error) {
	const q = `SELECT ` + expirationColumns + ` FROM expirations
		WHERE expires_at BETWEEN @from::date AND @to::date
		ORDER BY expires_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpirationRepo.ListExpiringBetween: %w", err)
	}
	exps, err := collect(rows, scanExpiration)
	if err != nil {
		return nil, fmt.Errorf("repo.ExpirationRepo.ListExpiringBetween: %w", err)
	}
	return exps, nil
}

func (r *pgExpirationRepo) ListOverdue(ctx context.Context, today time.Time, limit int) ([]domain.ExpirationDetail, error) {
	const q = expirationDetailSelect + `
		WHERE e.expires_at < @today::date
		ORDER BY e.expires_at DESC, e.id
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"today": today, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpirationRepo.ListOverdue: %w", err)
	}
	details, err := collect(rows, scanExpirationDetail)
	if err != nil {
		return nil, fmt.Errorf("repo.ExpirationRepo.ListOverdue: %w", err)
	}
	return details, nil
}

func (r *pgExpirationRepo) Aggregates(ctx context.Context, from, to time.Time) (domain.ExpirationAggregates, error) {
	const typeQ = `
		SELECT document_type, COUNT(*)
		FROM expirations
		GROUP BY document_type
		ORDER BY COUNT(*) DESC, document_type`

	const monthQ = `
		SELECT EXTRACT(YEAR FROM expires_at)::int, EXTRACT(MONTH FROM expires_at)::int, COUNT(*)
		FROM expirations
		WHERE expires_at >= @from::date AND expires_at < @to::date
		GROUP BY 1, 2
		ORDER BY 1, 2`

	var agg domain.ExpirationAggregates

	rows, err := r.db.Query(ctx, typeQ)
	if err != nil {
		return agg, fmt.Errorf("repo.ExpirationRepo.Aggregates: by type: %w", err)
	}
	agg.ByDocumentType, err = collect(rows, func(s scanner) (domain.TypeCount, error) {
		var (
			tc domain.TypeCount
			n  int64
		)
		if err := s.Scan(&tc.DocumentType, &n); err != nil {
			return domain.TypeCount{}, err
		}
		tc.Count = int(n)
		return tc, nil
	})
	if err != nil {
		return agg, fmt.Errorf("repo.ExpirationRepo.Aggregates: by type: %w", err)
	}

	rows, err = r.db.Query(ctx, monthQ, pgx.NamedArgs{"from": from, "to": to})
	if err != nil {
		return agg, fmt.Errorf("repo.ExpirationRepo.Aggregates: by month: %w", err)
	}
	agg.ByMonth, err = collect(rows, scanMonthCount)
	if err != nil {
		return agg, fmt.Errorf("repo.ExpirationRepo.Aggregates: by month: %w", err)
	}
	return agg, nil
}

func (r *pgExpirationRepo) DocumentTypes(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT document_type FROM expirations ORDER BY document_type`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ExpirationRepo.DocumentTypes: %w", err)
	}
	types, err := collect(rows, func(s scanner) (string, error) {
		var t string
		err := s.Scan(&t)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpirationRepo.DocumentTypes: %w", err)
	}
	return types, nil
}

func (r *pgExpirationRepo) Update(ctx context.Context, e domain.Expiration) (domain.Expiration, error) {
	const q = `
		UPDATE expirations
		SET client_id     = @client_id,
		    property_id   = @property_id,
		    document_type = @document_type,
		    issued_at     = @issued_at,
		    expires_at    = @expires_at,
		    state         = @state,
		    updated_at    = now()
		WHERE id = @id
		RETURNING ` + expirationColumns

	result, err := scanExpiration(r.db.QueryRow(ctx, q, expirationArgs(e)))
	if err != nil {
		return domain.Expiration{}, fmt.Errorf("repo.ExpirationRepo.Update: %w", translate(err))
	}
	return result, nil
}

func (r *pgExpirationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM expirations WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ExpirationRepo.Delete: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ExpirationRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanExpiration maps a single database row into a domain.Expiration.
func scanExpiration(s scanner) (domain.Expiration, error) {
	var (
		e                      domain.Expiration
		id, clientID, property pgtype.UUID
		issuedAt, expiresAt    pgtype.Date
	)
	err := s.Scan(&id, &clientID, &property, &e.DocumentType, &issuedAt, &expiresAt,
		&e.State, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Expiration{}, err
	}
	e.ID = uuid.UUID(id.Bytes)
	e.ClientID = uuid.UUID(clientID.Bytes)
	e.PropertyID = uuidPtr(property)
	e.IssuedAt = issuedAt.Time
	e.ExpiresAt = expiresAt.Time
	return e, nil
}

// scanExpirationDetail maps a row produced by expirationDetailSelect.
// Property stays nil when the LEFT JOIN found nothing.
func scanExpirationDetail(s scanner) (domain.ExpirationDetail, error) {
	var (
		d                      domain.ExpirationDetail
		id, clientID, property pgtype.UUID
		issuedAt, expiresAt    pgtype.Date
		propID                 pgtype.UUID
		p                      domain.Property
	)
	err := s.Scan(&id, &clientID, &property, &d.DocumentType, &issuedAt, &expiresAt,
		&d.State, &d.CreatedAt, &d.UpdatedAt,
		&d.ClientName,
		&propID, &p.Finca, &p.Matricula, &p.Padron,
		&p.Department, &p.District,
		&p.Coordinates, &p.MapURL)
	if err != nil {
		return domain.ExpirationDetail{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.ClientID = uuid.UUID(clientID.Bytes)
	d.PropertyID = uuidPtr(property)
	d.IssuedAt = issuedAt.Time
	d.ExpiresAt = expiresAt.Time
	if propID.Valid {
		p.ID = uuid.UUID(propID.Bytes)
		p.ClientID = d.ClientID
		d.Property = &p
	}
	return d, nil
}
