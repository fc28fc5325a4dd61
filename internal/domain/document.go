package domain

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentOwner says which aggregate a document is attached to.
type DocumentOwner string

const (
	OwnerClient  DocumentOwner = "client"
	OwnerProject DocumentOwner = "project"
)

// Document is an uploaded file attached to a client or a project.
// StorageKey is the path of the file relative to the document store root.
type Document struct {
	ID           uuid.UUID
	Owner        DocumentOwner
	OwnerID      uuid.UUID
	Category     string
	OriginalName string
	StorageKey   string
	MimeType     string
	SizeBytes    int64
	UploadedAt   time.Time
}

var (
	projectExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".webp"}
	clientExtensions  = []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".webp", ".doc", ".docx", ".xls", ".xlsx"}
)

// AllowsExtension reports whether a file named name may be attached to this
// kind of owner. The comparison is case-insensitive.
func (o DocumentOwner) AllowsExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch o {
	case OwnerProject:
		return slices.Contains(projectExtensions, ext)
	case OwnerClient:
		return slices.Contains(clientExtensions, ext)
	}
	return false
}

var (
	projectMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf"}
	clientMIMEs  = append(slices.Clone(projectMIMEs),
		"application/msword",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/x-ole-storage",
		"application/zip",
	)
)

// AllowsMIME reports whether content sniffed as mime may be attached to this
// kind of owner. Office formats are also accepted as their container types
// (zip, OLE storage) since a short header does not always tell them apart.
func (o DocumentOwner) AllowsMIME(mime string) bool {
	switch o {
	case OwnerProject:
		return slices.Contains(projectMIMEs, mime)
	case OwnerClient:
		return slices.Contains(clientMIMEs, mime)
	}
	return false
}

// StorageKey returns the store-relative path of a document's file.
func StorageKey(owner DocumentOwner, ownerID, docID uuid.UUID, name string) string {
	dir := "projects"
	if owner == OwnerClient {
		dir = "clients"
	}
	return dir + "/" + ownerID.String() + "/" + docID.String() + strings.ToLower(filepath.Ext(name))
}
