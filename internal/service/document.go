package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/consultoria-ambiental/registro/internal/domain"
	"github.com/consultoria-ambiental/registro/internal/repo"
)

// sniffLen is how many leading bytes are read to detect the content type.
const sniffLen = 3072

// FileStore persists document contents under store-relative keys.
// Implemented by storage.FS.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// Upload is one file submitted for attachment.
type Upload struct {
	Owner    domain.DocumentOwner
	OwnerID  uuid.UUID
	Category string
	Name     string
	Body     io.Reader
}

// DocumentService stores uploaded files and keeps their metadata rows in
// step with the file store.
type DocumentService struct {
	docs     repo.DocumentRepo
	clients  repo.ClientRepo
	projects repo.ProjectRepo
	store    FileStore
	maxSize  int64
}

// NewDocumentService constructs a DocumentService. maxSize bounds the size of
// a single upload in bytes.
func NewDocumentService(docs repo.DocumentRepo, clients repo.ClientRepo, projects repo.ProjectRepo, store FileStore, maxSize int64) *DocumentService {
	return &DocumentService{docs: docs, clients: clients, projects: projects, store: store, maxSize: maxSize}
}

// Upload validates a file, writes it to the store and records its metadata.
// The stored file is removed again when the row cannot be written.
func (s *DocumentService) Upload(ctx context.Context, u Upload) (domain.Document, error) {
	name := filepath.Base(strings.TrimSpace(u.Name))
	if name == "." || name == "/" || name == "" {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w: file name is required", domain.ErrValidation)
	}
	if !u.Owner.AllowsExtension(name) {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w: file type %q is not allowed", domain.ErrValidation, filepath.Ext(name))
	}
	if err := s.requireOwner(ctx, u.Owner, u.OwnerID); err != nil {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(u.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: read: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w: file is empty", domain.ErrValidation)
	}
	mime, ok := detectAllowed(u.Owner, head)
	if !ok {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w: content type %s is not allowed", domain.ErrValidation, mimetype.Detect(head).String())
	}

	doc := domain.Document{
		ID:           uuid.New(),
		Owner:        u.Owner,
		OwnerID:      u.OwnerID,
		Category:     strings.TrimSpace(u.Category),
		OriginalName: name,
		MimeType:     mime,
	}
	doc.StorageKey = domain.StorageKey(u.Owner, u.OwnerID, doc.ID, name)

	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), u.Body), s.maxSize+1)
	size, err := s.store.Save(ctx, doc.StorageKey, body)
	if err != nil {
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: save: %w", err)
	}
	if size > s.maxSize {
		s.removeFile(ctx, doc.StorageKey)
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w: file exceeds %s", domain.ErrValidation, humanize.Bytes(uint64(s.maxSize)))
	}
	doc.SizeBytes = size

	created, err := s.docs.Create(ctx, doc)
	if err != nil {
		s.removeFile(ctx, doc.StorageKey)
		return domain.Document{}, fmt.Errorf("service.DocumentService.Upload: %w", err)
	}
	return created, nil
}

// GetByID returns a document's metadata.
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	d, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("service.DocumentService.GetByID: %w", err)
	}
	return d, nil
}

// Open returns a document's metadata and a reader over its contents.
// The caller must close the reader.
func (s *DocumentService) Open(ctx context.Context, id uuid.UUID) (domain.Document, io.ReadCloser, error) {
	d, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return domain.Document{}, nil, fmt.Errorf("service.DocumentService.Open: %w", err)
	}
	rc, err := s.store.Open(ctx, d.StorageKey)
	if err != nil {
		return domain.Document{}, nil, fmt.Errorf("service.DocumentService.Open: %w", err)
	}
	return d, rc, nil
}

// List returns the documents of one owner.
// Returns domain.ErrNotFound if the owner does not exist.
func (s *DocumentService) List(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error) {
	if err := s.ownerExists(ctx, owner, ownerID); err != nil {
		return nil, fmt.Errorf("service.DocumentService.List: %w", err)
	}
	docs, err := s.docs.ListByOwner(ctx, owner, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.DocumentService.List: %w", err)
	}
	return docs, nil
}

// Delete removes a document row, then its file. A file that cannot be
// removed is logged and left behind.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.docs.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service.DocumentService.Delete: %w", err)
	}
	s.removeFile(ctx, d.StorageKey)
	return nil
}

// DeleteOwner removes every document of an owner together with the files.
func (s *DocumentService) DeleteOwner(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) error {
	docs, err := s.docs.DeleteByOwner(ctx, owner, ownerID)
	if err != nil {
		return fmt.Errorf("service.DocumentService.DeleteOwner: %w", err)
	}
	for _, d := range docs {
		s.removeFile(ctx, d.StorageKey)
	}
	return nil
}

func (s *DocumentService) removeFile(ctx context.Context, key string) {
	err := s.store.Remove(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.WarnContext(ctx, "document file not removed", "key", key, "error", err)
	}
}

// requireOwner is ownerExists with a missing owner reported as a validation
// failure of the upload.
func (s *DocumentService) requireOwner(ctx context.Context, owner domain.DocumentOwner, id uuid.UUID) error {
	err := s.ownerExists(ctx, owner, id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s %s does not exist", domain.ErrValidation, owner, id)
	}
	return err
}

func (s *DocumentService) ownerExists(ctx context.Context, owner domain.DocumentOwner, id uuid.UUID) error {
	switch owner {
	case domain.OwnerClient:
		_, err := s.clients.GetByID(ctx, id)
		return err
	case domain.OwnerProject:
		_, err := s.projects.GetByID(ctx, id)
		return err
	}
	return fmt.Errorf("%w: unknown document owner %q", domain.ErrValidation, owner)
}

// detectAllowed sniffs head and walks the detected type's ancestry until a
// type the owner accepts is found.
func detectAllowed(owner domain.DocumentOwner, head []byte) (string, bool) {
	for m := mimetype.Detect(head); m != nil; m = m.Parent() {
		if owner.AllowsMIME(m.String()) {
			return m.String(), true
		}
	}
	return "", false
}
