package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Institution is the government body a project is filed with.
type Institution string

const (
	InstitutionMADES  Institution = "MADES"
	InstitutionINFONA Institution = "INFONA"
	InstitutionSENAVE Institution = "SENAVE"
	InstitutionLegal  Institution = "ASESORIA_JURIDICA"
)

// Institutions lists every known institution in display order.
var Institutions = []Institution{InstitutionMADES, InstitutionINFONA, InstitutionSENAVE, InstitutionLegal}

// ParseInstitution maps a case-insensitive name to an Institution.
func ParseInstitution(s string) (Institution, error) {
	inst := Institution(strings.ToUpper(strings.TrimSpace(s)))
	switch inst {
	case InstitutionMADES, InstitutionINFONA, InstitutionSENAVE, InstitutionLegal:
		return inst, nil
	}
	return "", fmt.Errorf("%w: unknown institution %q", ErrValidation, s)
}

// FullName returns the official name of the institution.
func (i Institution) FullName() string {
	switch i {
	case InstitutionMADES:
		return "Ministerio del Ambiente y Desarrollo Sostenible"
	case InstitutionINFONA:
		return "Instituto Forestal Nacional"
	case InstitutionSENAVE:
		return "Servicio Nacional de Calidad y Sanidad Vegetal y de Semillas"
	case InstitutionLegal:
		return "Asesoría Jurídica"
	}
	return string(i)
}

// ProjectStatus is the workflow state of a project.
type ProjectStatus string

const (
	StatusPending       ProjectStatus = "pendiente"
	StatusInProgress    ProjectStatus = "en_proceso"
	StatusDelivered     ProjectStatus = "entregado"
	StatusFinished      ProjectStatus = "finalizado"
	StatusLicenseIssued ProjectStatus = "licencia_emitida"
)

// ProjectStatuses lists every status in board-column order.
var ProjectStatuses = []ProjectStatus{StatusPending, StatusInProgress, StatusDelivered, StatusFinished, StatusLicenseIssued}

// ParseProjectStatus accepts the canonical value, any casing, and spaces in
// place of underscores ("en proceso").
func ParseProjectStatus(s string) (ProjectStatus, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	st := ProjectStatus(norm)
	switch st {
	case StatusPending, StatusInProgress, StatusDelivered, StatusFinished, StatusLicenseIssued:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown project status %q", ErrValidation, s)
}

// MADESSubtypes are the procedure kinds offered for MADES projects.
var MADESSubtypes = []string{
	"EIA",
	"Auditorías",
	"PGAG",
	"Certificado de No Requiere",
	"Certificación de Servicios Ambientales",
	"Otros",
}

// Project is a regulatory procedure (permit, license, audit) filed for a
// client with one institution, optionally tied to one of the client's
// properties. Amounts are whole guaraníes.
type Project struct {
	ID               uuid.UUID
	ClientID         uuid.UUID
	PropertyID       *uuid.UUID
	Year             int
	Institution      Institution
	Name             string
	Subtype          string
	SIAMFile         string
	ContractDate     *time.Time
	LicenseIssuedAt  *time.Time
	LicenseExpiresAt *time.Time
	Deadline         *time.Time
	TotalCost        *int64
	DeliveryPercent  *float64
	DeliveredAmount  *int64
	Balance          *int64
	Status           ProjectStatus
	InvoicedTotal    int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProjectFilter narrows a project listing. Nil fields do not filter.
type ProjectFilter struct {
	ClientID    *uuid.UUID
	Institution *Institution
	Year        *int
	Status      *ProjectStatus
}

// RecalculateFinances derives DeliveredAmount and Balance from TotalCost and
// DeliveryPercent. When either input is missing both outputs are cleared.
func (p *Project) RecalculateFinances() {
	if p.TotalCost == nil || p.DeliveryPercent == nil {
		p.DeliveredAmount = nil
		p.Balance = nil
		return
	}
	delivered := int64(math.Round(float64(*p.TotalCost) * *p.DeliveryPercent / 100))
	balance := *p.TotalCost - delivered
	p.DeliveredAmount = &delivered
	p.Balance = &balance
}

// DisplayName is the project name, or "subtype year" when unnamed.
func (p Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return strings.TrimSpace(fmt.Sprintf("%s %d", p.Subtype, p.Year))
}

// ProjectBoard groups a client's projects by status for one institution and year.
type ProjectBoard struct {
	ClientID    uuid.UUID
	Institution Institution
	Year        int
	Columns     map[ProjectStatus][]Project
}
