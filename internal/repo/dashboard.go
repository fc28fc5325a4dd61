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

// DashboardRepo runs the aggregate queries behind the dashboard.
// Every method honours an optional client scope.
type DashboardRepo interface {
	// Summary fills the counters and totals of a Dashboard. Upcoming and
	// ContractsByMonth are left empty.
	Summary(ctx context.Context, f domain.DashboardFilter, today time.Time) (domain.Dashboard, error)

	// Deadlines returns up to limit dated deadlines (project license expiries
	// and expiration records), earliest first.
	Deadlines(ctx context.Context, clientID *uuid.UUID, limit int) ([]domain.Deadline, error)

	// ContractsByMonth counts projects by contract month for months on or
	// after since. Months without contracts are omitted.
	ContractsByMonth(ctx context.Context, clientID *uuid.UUID, since time.Time) ([]domain.MonthCount, error)
}

// pgDashboardRepo is the Postgres implementation of DashboardRepo.
type pgDashboardRepo struct {
	db db
}

// NewDashboardRepo constructs a DashboardRepo backed by the provided db connection.
func NewDashboardRepo(db db) DashboardRepo {
	return &pgDashboardRepo{db: db}
}

func (r *pgDashboardRepo) Summary(ctx context.Context, f domain.DashboardFilter, today time.Time) (domain.Dashboard, error) {
	const totalsQ = `
		SELECT
			(SELECT COUNT(*) FROM clients    WHERE @client_id::uuid IS NULL OR id = @client_id),
			(SELECT COUNT(*) FROM projects   WHERE @client_id::uuid IS NULL OR client_id = @client_id),
			(SELECT COUNT(*) FROM properties WHERE @client_id::uuid IS NULL OR client_id = @client_id)`

	const yearQ = `
		SELECT p.status, p.institution, COUNT(*),
		       COALESCE(SUM(inv.total), 0)::bigint,
		       COALESCE(SUM(p.balance), 0)::bigint
		FROM projects p
		LEFT JOIN (
			SELECT project_id, SUM(amount) AS total FROM invoices GROUP BY project_id
		) inv ON inv.project_id = p.id
		WHERE p.year = @year
		  AND (@client_id::uuid IS NULL OR p.client_id = @client_id)
		GROUP BY p.status, p.institution`

	const expirationsQ = `
		SELECT
			COUNT(*) FILTER (WHERE expires_at < @today::date),
			COUNT(*) FILTER (WHERE expires_at >= @today::date AND expires_at <= @week::date)
		FROM expirations
		WHERE @client_id::uuid IS NULL OR client_id = @client_id`

	d := domain.Dashboard{
		ByStatus:      map[domain.ProjectStatus]int{},
		ByInstitution: map[domain.Institution]int{},
	}
	args := pgx.NamedArgs{"client_id": f.ClientID, "year": f.Year}

	var clients, projects, properties int64
	if err := r.db.QueryRow(ctx, totalsQ, args).Scan(&clients, &projects, &properties); err != nil {
		return domain.Dashboard{}, fmt.Errorf("repo.DashboardRepo.Summary: totals: %w", err)
	}
	d.TotalClients, d.TotalProjects, d.TotalProperties = int(clients), int(projects), int(properties)

	rows, err := r.db.Query(ctx, yearQ, args)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("repo.DashboardRepo.Summary: year: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status, institution  string
			n, invoiced, pending int64
		)
		if err := rows.Scan(&status, &institution, &n, &invoiced, &pending); err != nil {
			return domain.Dashboard{}, fmt.Errorf("repo.DashboardRepo.Summary: year: scan: %w", err)
		}
		d.ByStatus[domain.ProjectStatus(status)] += int(n)
		d.ByInstitution[domain.Institution(institution)] += int(n)
		d.ProjectsInYear += int(n)
		d.InvoicedTotal += invoiced
		d.PendingTotal += pending
	}
	if err := rows.Err(); err != nil {
		return domain.Dashboard{}, fmt.Errorf("repo.DashboardRepo.Summary: year: rows: %w", err)
	}

	week := today.AddDate(0, 0, 7)
	var overdue, critical int64
	err = r.db.QueryRow(ctx, expirationsQ, pgx.NamedArgs{"client_id": f.ClientID, "today": today, "week": week}).
		Scan(&overdue, &critical)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("repo.DashboardRepo.Summary: expirations: %w", err)
	}
	d.OverdueCount, d.CriticalCount = int(overdue), int(critical)

	return d, nil
}

func (r *pgDashboardRepo) Deadlines(ctx context.Context, clientID *uuid.UUID, limit int) ([]domain.Deadline, error) {
	const q = `
		SELECT source, id, client_id, client_name, label, due_date FROM (
			SELECT 'project' AS source, p.id, p.client_id, c.name AS client_name,
			       CASE WHEN p.name <> '' THEN p.name ELSE p.institution || ' ' || p.subtype END AS label,
			       p.license_expires_at AS due_date
			FROM projects p
			JOIN clients c ON c.id = p.client_id
			WHERE p.license_expires_at IS NOT NULL
			  AND (@client_id::uuid IS NULL OR p.client_id = @client_id)
			UNION ALL
			SELECT 'expiration', e.id, e.client_id, c.name, e.document_type, e.expires_at
			FROM expirations e
			JOIN clients c ON c.id = e.client_id
			WHERE @client_id::uuid IS NULL OR e.client_id = @client_id
		) d
		ORDER BY due_date, id
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"client_id": clientID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.Deadlines: %w", err)
	}
	deadlines, err := collect(rows, scanDeadline)
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.Deadlines: %w", err)
	}
	return deadlines, nil
}

func (r *pgDashboardRepo) ContractsByMonth(ctx context.Context, clientID *uuid.UUID, since time.Time) ([]domain.MonthCount, error) {
	const q = `
		SELECT EXTRACT(YEAR FROM contract_date)::int, EXTRACT(MONTH FROM contract_date)::int, COUNT(*)
		FROM projects
		WHERE contract_date >= @since::date
		  AND (@client_id::uuid IS NULL OR client_id = @client_id)
		GROUP BY 1, 2
		ORDER BY 1, 2`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"client_id": clientID, "since": since})
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.ContractsByMonth: %w", err)
	}
	counts, err := collect(rows, scanMonthCount)
	if err != nil {
		return nil, fmt.Errorf("repo.DashboardRepo.ContractsByMonth: %w", err)
	}
	return counts, nil
}

func scanDeadline(s scanner) (domain.Deadline, error) {
	var (
		d            domain.Deadline
		id, clientID pgtype.UUID
		due          pgtype.Date
	)
	if err := s.Scan(&d.Source, &id, &clientID, &d.ClientName, &d.Label, &due); err != nil {
		return domain.Deadline{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.ClientID = uuid.UUID(clientID.Bytes)
	d.DueDate = datePtr(due)
	return d, nil
}

// scanMonthCount maps a (year, month, count) row.
func scanMonthCount(s scanner) (domain.MonthCount, error) {
	var (
		mc    domain.MonthCount
		month int
		n     int64
	)
	if err := s.Scan(&mc.Year, &month, &n); err != nil {
		return domain.MonthCount{}, err
	}
	mc.Month = time.Month(month)
	mc.Count = int(n)
	return mc, nil
}
