package domain

// ExportRow is a single row in the expiration CSV export.
// It is a flat, denormalized view: one row per expiration with client and
// property fields repeated. Dates are "02/01/2006" formatted.
type ExportRow struct {
	ClientName    string
	DocumentType  string
	IssuedAt      string
	ExpiresAt     string
	DaysRemaining int
	PropertyName  string // "Sin propiedad" when the expiration has no property
	Location      string // "N/A" when unknown
	Status        string
}

// ExportDateLayout is the day-first date format used in exports.
const ExportDateLayout = "02/01/2006"
