package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// DocumentRepo defines the persistence operations for document metadata.
// The file bytes live in the document store; this repo only tracks where.
type DocumentRepo interface {
	// Create inserts a document row. ID must be set by the caller because the
	// storage key is derived from it before the row exists.
	Create(ctx context.Context, d domain.Document) (domain.Document, error)

	// GetByID retrieves a single document.
	// Returns domain.ErrNotFound if no document with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error)

	// ListByOwner returns the documents of one client or project, newest first.
	ListByOwner(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error)

	// Delete removes a document row and returns it so the caller can remove
	// the stored file. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) (domain.Document, error)

	// DeleteByOwner removes every document of one owner and returns the removed rows.
	DeleteByOwner(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error)
}

// pgDocumentRepo is the Postgres implementation of DocumentRepo.
type pgDocumentRepo struct {
	db db
}

// NewDocumentRepo constructs a DocumentRepo backed by the provided db connection.
func NewDocumentRepo(db db) DocumentRepo {
	return &pgDocumentRepo{db: db}
}

const documentColumns = `id, owner_type, owner_id, category, original_name, storage_key,
		mime_type, size_bytes, uploaded_at`

func (r *pgDocumentRepo) Create(ctx context.Context, d domain.Document) (domain.Document, error) {
	const q = `
		INSERT INTO documents (id, owner_type, owner_id, category, original_name, storage_key,
		                       mime_type, size_bytes)
		VALUES (@id, @owner_type, @owner_id, @category, @original_name, @storage_key,
		        @mime_type, @size_bytes)
		RETURNING ` + documentColumns

	args := pgx.NamedArgs{
		"id":            d.ID,
		"owner_type":    string(d.Owner),
		"owner_id":      d.OwnerID,
		"category":      d.Category,
		"original_name": d.OriginalName,
		"storage_key":   d.StorageKey,
		"mime_type":     d.MimeType,
		"size_bytes":    d.SizeBytes,
	}

	result, err := scanDocument(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = @id`

	result, err := scanDocument(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgDocumentRepo) ListByOwner(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents
		WHERE owner_type = @owner_type AND owner_id = @owner_id
		ORDER BY uploaded_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_type": string(owner), "owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.DocumentRepo.ListByOwner: %w", err)
	}
	docs, err := collect(rows, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("repo.DocumentRepo.ListByOwner: %w", err)
	}
	return docs, nil
}

func (r *pgDocumentRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	const q = `DELETE FROM documents WHERE id = @id RETURNING ` + documentColumns

	result, err := scanDocument(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Delete: %w", translate(err))
	}
	return result, nil
}

func (r *pgDocumentRepo) DeleteByOwner(ctx context.Context, owner domain.DocumentOwner, ownerID uuid.UUID) ([]domain.Document, error) {
	const q = `DELETE FROM documents
		WHERE owner_type = @owner_type AND owner_id = @owner_id
		RETURNING ` + documentColumns

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_type": string(owner), "owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.DocumentRepo.DeleteByOwner: %w", err)
	}
	docs, err := collect(rows, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("repo.DocumentRepo.DeleteByOwner: %w", err)
	}
	return docs, nil
}

// scanDocument maps a single database row into a domain.Document.
func scanDocument(s scanner) (domain.Document, error) {
	var (
		d       domain.Document
		id      pgtype.UUID
		ownerID pgtype.UUID
		owner   string
	)
	err := s.Scan(&id, &owner, &ownerID, &d.Category, &d.OriginalName, &d.StorageKey,
		&d.MimeType, &d.SizeBytes, &d.UploadedAt)
	if err != nil {
		return domain.Document{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.Owner = domain.DocumentOwner(owner)
	d.OwnerID = uuid.UUID(ownerID.Bytes)
	return d, nil
}
