package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// ListResponse is the envelope of every paged listing.
type ListResponse[T any] struct {
	Data       []T               `json:"data"`
	Pagination domain.PageResult `json:"pagination"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into dst. A failure has already been
// answered when it returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, err, "")
			return false
		}
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// pathID parses the named chi URL parameter as a UUID. A failure has already
// been answered with 404 when it returns false: a malformed ID names no
// resource.
func pathID(w http.ResponseWriter, r *http.Request, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody(what+" not found"))
		return uuid.Nil, false
	}
	return id, true
}

// bindQuery binds an optional form-style query parameter into dest, which
// must be a pointer to a pointer.
func bindQuery(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("query parameter %q: %w", name, err)
	}
	return nil
}

// queryUUID reads an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	var raw *string
	if err := bindQuery(r, name, &raw); err != nil {
		return nil, err
	}
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %q: invalid UUID", name)
	}
	return &id, nil
}

// pageRequest reads the page and per_page query parameters. A value that is
// not an integer counts as absent, so the request falls back to the defaults.
func pageRequest(r *http.Request) domain.PageRequest {
	var page, perPage *int
	if err := bindQuery(r, "page", &page); err != nil {
		page = nil
	}
	if err := bindQuery(r, "per_page", &perPage); err != nil {
		perPage = nil
	}
	return domain.NewPageRequest(page, perPage)
}

// badQuery answers a malformed query string.
func badQuery(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
}

func toDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

func fromDate(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// derefString returns "" for a nil pointer.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
