package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
	"github.com/consultoria-ambiental/registro/testutil"
)

// newTestTx returns a rolled-back-on-cleanup transaction over an empty
// registry; every repo built on it sees only the rows the test inserted.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.BeginTx(t)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// missingID is a UUID that is never inserted.
var missingID = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

// clientFixture returns a domain.Client with sensible defaults for use in tests.
func clientFixture(name string) domain.Client {
	return domain.Client{
		Name:       name,
		TaxID:      "80012345-6",
		Phone:      "0981 123 456",
		Email:      "contacto@example.com",
		Department: "Boquerón",
		District:   "Filadelfia",
	}
}

func mustCreateClient(t *testing.T, tx pgx.Tx, name string) domain.Client {
	t.Helper()
	c, err := repo.NewClientRepo(tx).Create(context.Background(), clientFixture(name))
	require.NoError(t, err)
	return c
}

func mustCreateProperty(t *testing.T, tx pgx.Tx, clientID uuid.UUID, finca string) domain.Property {
	t.Helper()
	p, err := repo.NewPropertyRepo(tx).Create(context.Background(), domain.Property{
		ClientID:   clientID,
		Finca:      finca,
		Matricula:  "M-" + finca,
		Padron:     "P-" + finca,
		SurfaceHa:  ptr(125.5),
		Department: "Boquerón",
		District:   "Mariscal Estigarribia",
	})
	require.NoError(t, err)
	return p
}

func projectFixture(clientID uuid.UUID) domain.Project {
	p := domain.Project{
		ClientID:        clientID,
		Year:            2024,
		Institution:     domain.InstitutionMADES,
		Name:            "EIA Estancia San José",
		Subtype:         "EIA",
		SIAMFile:        "SIAM-2024-001",
		ContractDate:    ptr(date(2024, 3, 1)),
		TotalCost:       ptr(int64(15_000_000)),
		DeliveryPercent: ptr(40.0),
		Status:          domain.StatusPending,
	}
	p.RecalculateFinances()
	return p
}

func mustCreateExpiration(t *testing.T, tx pgx.Tx, clientID uuid.UUID, docType string, expires time.Time) domain.Expiration {
	t.Helper()
	e, err := repo.NewExpirationRepo(tx).Create(context.Background(), domain.Expiration{
		ClientID:     clientID,
		DocumentType: docType,
		IssuedAt:     expires.AddDate(-1, 0, 0),
		ExpiresAt:    expires,
	})
	require.NoError(t, err)
	return e
}
