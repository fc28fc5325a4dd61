package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DueSoonDays is the horizon within which a valid expiration counts as due soon.
const DueSoonDays = 30

// Expiration summary sizes.
const (
	RecentlyOverdueLimit = 10
	SummaryMonths        = 6 // current month included
)

// Expiration is a dated obligation of a client (license renewal, audit,
// phytosanitary certificate...), optionally tied to one property.
type Expiration struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	PropertyID   *uuid.UUID
	DocumentType string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	State        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ExpirationDetail is an Expiration joined with the names a list view shows.
// Property is nil when the expiration is not tied to a property.
type ExpirationDetail struct {
	Expiration
	ClientName string
	Property   *Property
}

// ExpirationStatus classifies an expiration against a reference day.
type ExpirationStatus string

const (
	ExpirationOverdue ExpirationStatus = "vencido"
	ExpirationDueSoon ExpirationStatus = "proximo_vencer"
	ExpirationCurrent ExpirationStatus = "vigente"
)

// ParseExpirationStatus maps a query value to an ExpirationStatus.
func ParseExpirationStatus(s string) (ExpirationStatus, error) {
	st := ExpirationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case ExpirationOverdue, ExpirationDueSoon, ExpirationCurrent:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown expiration status %q", ErrValidation, s)
}

// ExpirationStatusFor classifies a deadline daysRemaining days away.
func ExpirationStatusFor(daysRemaining int) ExpirationStatus {
	switch {
	case daysRemaining < 0:
		return ExpirationOverdue
	case daysRemaining <= DueSoonDays:
		return ExpirationDueSoon
	default:
		return ExpirationCurrent
	}
}

// Label is the human-readable Spanish label used in exports.
func (s ExpirationStatus) Label() string {
	switch s {
	case ExpirationOverdue:
		return "Vencido"
	case ExpirationDueSoon:
		return "Próximo a vencer"
	case ExpirationCurrent:
		return "Vigente"
	}
	return string(s)
}

// ExpirationFilter narrows an expiration listing. Nil fields do not filter.
// Month is only honoured together with Year.
type ExpirationFilter struct {
	ClientID     *uuid.UUID
	DocumentType string
	Status       *ExpirationStatus
	Year         *int
	Month        *int
}

// ExpiryRange returns the inclusive [from, to] expiry-date bounds implied by
// Status relative to today. A nil bound is open.
func (f ExpirationFilter) ExpiryRange(today time.Time) (from, to *time.Time) {
	if f.Status == nil {
		return nil, nil
	}
	day := civilDate(today)
	soon := day.AddDate(0, 0, DueSoonDays)
	switch *f.Status {
	case ExpirationOverdue:
		yesterday := day.AddDate(0, 0, -1)
		return nil, &yesterday
	case ExpirationDueSoon:
		return &day, &soon
	case ExpirationCurrent:
		after := soon.AddDate(0, 0, 1)
		return &after, nil
	}
	return nil, nil
}

// ExpirationStats summarises a filtered set of expirations.
// Overdue + DueSoon + Current == Total.
type ExpirationStats struct {
	Total   int `json:"total"`
	Overdue int `json:"overdue"`
	DueSoon int `json:"due_soon"`
	Current int `json:"current"`
}

// Add counts one expiration daysRemaining days away.
func (s *ExpirationStats) Add(daysRemaining int) {
	s.Total++
	switch ExpirationStatusFor(daysRemaining) {
	case ExpirationOverdue:
		s.Overdue++
	case ExpirationDueSoon:
		s.DueSoon++
	default:
		s.Current++
	}
}

// ExpirationPage is one ranked page of a filtered expiration listing.
type ExpirationPage struct {
	Items []Ranked[ExpirationDetail]
	Page  PageResult
	Stats ExpirationStats
}

// TypeCount is the number of expirations of one document type.
type TypeCount struct {
	DocumentType string
	Count        int
}

// ExpirationAggregates are the grouped counts behind the expiration summary.
type ExpirationAggregates struct {
	ByDocumentType []TypeCount
	ByMonth        []MonthCount
}

// ExpirationSummary is the expirations overview: what is due soon, what is
// due today, what lapsed most recently, and how expirations are spread over
// document types and the coming months.
type ExpirationSummary struct {
	DueSoon         []Ranked[ExpirationDetail] // today through DueSoonDays, earliest first
	DueToday        []Ranked[ExpirationDetail]
	RecentlyOverdue []Ranked[ExpirationDetail] // latest expiry first
	ByDocumentType  []TypeCount
	ByMonth         []MonthCount // SummaryMonths entries from the current month
}
