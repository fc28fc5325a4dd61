// Package domain contains the core data types for the consultancy registry:
// clients, their properties, regulatory projects, documents, invoices and
// license expirations, plus the pure paging and deadline-ranking utilities
// shared by every list view.
// This package has no database or HTTP dependencies and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a person or company the consultancy works for.
// Client is the top-level aggregate; properties, projects and expirations
// belong to a client.
type Client struct {
	ID              uuid.UUID
	Name            string
	TaxID           string
	Phone           string
	Email           string
	Department      string
	District        string
	Place           string
	GeneralLocation string
	GPSLocation     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ClientFilter narrows a client listing. Query matches the name
// case-insensitively; an empty Query matches every client.
type ClientFilter struct {
	Query string
}
