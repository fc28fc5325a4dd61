package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/service"
)

// multipartMemory is how much of a multipart upload is held in memory before
// the rest spills to a temporary file.
const multipartMemory = 8 << 20

// Document is the JSON representation of an uploaded document.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Owner       string    `json:"owner"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	MimeType    string    `json:"mime_type"`
	SizeBytes   int64     `json:"size_bytes"`
	SizeLabel   string    `json:"size_label"`
	DownloadURL string    `json:"download_url"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// UploadClientDocument handles POST /clients/{id}/documents.
func (s *Server) UploadClientDocument(w http.ResponseWriter, r *http.Request) {
	s.uploadDocument(w, r, domain.OwnerClient)
}

// UploadProjectDocument handles POST /projects/{id}/documents.
func (s *Server) UploadProjectDocument(w http.ResponseWriter, r *http.Request) {
	s.uploadDocument(w, r, domain.OwnerProject)
}

// ListClientDocuments handles GET /clients/{id}/documents.
func (s *Server) ListClientDocuments(w http.ResponseWriter, r *http.Request) {
	s.listDocuments(w, r, domain.OwnerClient)
}

// ListProjectDocuments handles GET /projects/{id}/documents.
func (s *Server) ListProjectDocuments(w http.ResponseWriter, r *http.Request) {
	s.listDocuments(w, r, domain.OwnerProject)
}

// DownloadDocument handles GET /documents/{id}.
// The file is streamed back under its original name.
func (s *Server) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "document")
	if !ok {
		return
	}

	doc, body, err := s.documents.Open(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "document")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.OriginalName}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.WarnContext(r.Context(), "document download interrupted", "document_id", id, "error", err)
	}
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "document")
	if !ok {
		return
	}

	if err := s.documents.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadDocument reads the "file" part and optional "category" field of a
// multipart form.
func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request, owner domain.DocumentOwner) {
	ownerID, ok := pathID(w, r, "id", string(owner))
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, err, "")
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid multipart form: "+err.Error()))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("file is required"))
		return
	}
	defer file.Close()

	doc, err := s.documents.Upload(r.Context(), service.Upload{
		Owner:    owner,
		OwnerID:  ownerID,
		Category: r.FormValue("category"),
		Name:     header.Filename,
		Body:     file,
	})
	if err != nil {
		writeServiceError(w, r, err, string(owner))
		return
	}
	writeJSON(w, http.StatusCreated, documentToResponse(doc))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request, owner domain.DocumentOwner) {
	ownerID, ok := pathID(w, r, "id", string(owner))
	if !ok {
		return
	}

	docs, err := s.documents.List(r.Context(), owner, ownerID)
	if err != nil {
		writeServiceError(w, r, err, string(owner))
		return
	}

	data := make([]Document, len(docs))
	for i, d := range docs {
		data[i] = documentToResponse(d)
	}
	writeJSON(w, http.StatusOK, data)
}

func documentToResponse(d domain.Document) Document {
	return Document{
		ID:          d.ID,
		Owner:       string(d.Owner),
		OwnerID:     d.OwnerID,
		Category:    d.Category,
		Name:        d.OriginalName,
		MimeType:    d.MimeType,
		SizeBytes:   d.SizeBytes,
		SizeLabel:   humanize.Bytes(uint64(d.SizeBytes)),
		DownloadURL: "/documents/" + d.ID.String(),
		UploadedAt:  d.UploadedAt,
	}
}
