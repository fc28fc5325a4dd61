package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// pingTimeout bounds the database check of GET /healthz.
const pingTimeout = 2 * time.Second

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the database answers a ping,
// and 503 otherwise.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "unchecked"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		slog.WarnContext(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
