package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing client name, license expiry before emission).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write references a row that does not belong
// to the expected parent, or violates a uniqueness rule.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")
