package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consultoria-ambiental/registro/internal/handler"
)

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and {"status":"ok"} when the database answers.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	rec := do(newHTTPHandler(handler.Deps{DB: &mockPinger{}}), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[handler.HealthResponse](t, rec)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Database)
}

func TestGetHealth_returns503WhenDatabaseDown(t *testing.T) {
	rec := do(newHTTPHandler(handler.Deps{DB: &mockPinger{err: errors.New("refused")}}), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decode[handler.HealthResponse](t, rec).Status)
}

func TestGetHealth_withoutDatabase(t *testing.T) {
	rec := do(newHTTPHandler(handler.Deps{}), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unchecked", decode[handler.HealthResponse](t, rec).Database)
}
