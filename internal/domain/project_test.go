package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

func int64Ptr(n int64) *int64 { return &n }
func float64Ptr(f float64) *float64 { return &f }

func TestProject_RecalculateFinances(t *testing.T) {
	p := domain.Project{TotalCost: int64Ptr(10_000_000), DeliveryPercent: float64Ptr(35)}

	p.RecalculateFinances()

	require.NotNil(t, p.DeliveredAmount)
	require.NotNil(t, p.Balance)
	assert.Equal(t, int64(3_500_000), *p.DeliveredAmount)
	assert.Equal(t, int64(6_500_000), *p.Balance)
}

func TestProject_RecalculateFinances_RoundsToWholeGuaranies(t *testing.T) {
	p := domain.Project{TotalCost: int64Ptr(1_001), DeliveryPercent: float64Ptr(12.5)}

	p.RecalculateFinances()

	// 125.125 rounds to 125.
	assert.Equal(t, int64(125), *p.DeliveredAmount)
	assert.Equal(t, int64(876), *p.Balance)
}

func TestProject_RecalculateFinances_MissingInputClearsOutputs(t *testing.T) {
	p := domain.Project{
		TotalCost:       int64Ptr(500),
		DeliveredAmount: int64Ptr(1),
		Balance:         int64Ptr(2),
	}

	p.RecalculateFinances()

	assert.Nil(t, p.DeliveredAmount)
	assert.Nil(t, p.Balance)
}

func TestParseInstitution(t *testing.T) {
	got, err := domain.ParseInstitution(" infona ")
	require.NoError(t, err)
	assert.Equal(t, domain.InstitutionINFONA, got)

	got, err = domain.ParseInstitution("asesoria_juridica")
	require.NoError(t, err)
	assert.Equal(t, domain.InstitutionLegal, got)

	_, err = domain.ParseInstitution("SEAM")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInstitution_FullName(t *testing.T) {
	assert.Equal(t, "Instituto Forestal Nacional", domain.InstitutionINFONA.FullName())
	assert.Equal(t, "OTHER", domain.Institution("OTHER").FullName())
}

func TestParseProjectStatus(t *testing.T) {
	tests := []struct {
		in   string
		want domain.ProjectStatus
	}{
		{"pendiente", domain.StatusPending},
		{"En Proceso", domain.StatusInProgress},
		{"en_proceso", domain.StatusInProgress},
		{"ENTREGADO", domain.StatusDelivered},
		{"licencia emitida", domain.StatusLicenseIssued},
	}
	for _, tc := range tests {
		got, err := domain.ParseProjectStatus(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := domain.ParseProjectStatus("archivado")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProject_DisplayName(t *testing.T) {
	assert.Equal(t, "EIA Estancia", domain.Project{Name: "EIA Estancia", Subtype: "EIA", Year: 2024}.DisplayName())
	assert.Equal(t, "PGAG 2023", domain.Project{Subtype: "PGAG", Year: 2023}.DisplayName())
}
