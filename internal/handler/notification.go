package handler

import (
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// Notification is the JSON representation of a recorded reminder.
type Notification struct {
	ID           uuid.UUID          `json:"id"`
	ExpirationID uuid.UUID          `json:"expiration_id"`
	Kind         string             `json:"kind"`
	SentOn       openapi_types.Date `json:"sent_on"`
}

// ProcessResult is the body of POST /notifications/process.
type ProcessResult struct {
	Created int `json:"created"`
}

// ProcessNotifications handles POST /notifications/process.
// It runs the same pass as the scheduled alert job.
func (s *Server) ProcessNotifications(w http.ResponseWriter, r *http.Request) {
	n, err := s.notifications.Process(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, ProcessResult{Created: n})
}

// NotifyExpiration handles POST /expirations/{id}/notify.
// 201 when the reminder is new, 200 when it had already been recorded.
func (s *Server) NotifyExpiration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "expiration")
	if !ok {
		return
	}

	n, created, err := s.expirations.Notify(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, notificationToResponse(n))
}

// ListExpirationNotifications handles GET /expirations/{id}/notifications.
func (s *Server) ListExpirationNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "expiration")
	if !ok {
		return
	}

	ns, err := s.expirations.ListNotifications(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}

	data := make([]Notification, len(ns))
	for i, n := range ns {
		data[i] = notificationToResponse(n)
	}
	writeJSON(w, http.StatusOK, data)
}

func notificationToResponse(n domain.Notification) Notification {
	return Notification{
		ID:           n.ID,
		ExpirationID: n.ExpirationID,
		Kind:         string(n.Kind),
		SentOn:       openapi_types.Date{Time: n.SentOn},
	}
}
