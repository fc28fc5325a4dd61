package domain

import (
	"time"

	"github.com/google/uuid"
)

// Property is a rural or urban plot owned by a client, identified in the
// land registry by finca, matrícula and padrón numbers.
type Property struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	Finca       string
	Matricula   string
	Padron      string
	SurfaceHa   *float64
	Department  string
	District    string
	Coordinates string
	MapURL      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PropertyFilter narrows a property listing. Query matches finca, matrícula
// or padrón.
type PropertyFilter struct {
	ClientID *uuid.UUID
	Query    string
}

// Location returns "department, district", or whichever half is present.
func (p Property) Location() string {
	switch {
	case p.Department != "" && p.District != "":
		return p.Department + ", " + p.District
	case p.Department != "":
		return p.Department
	default:
		return p.District
	}
}
