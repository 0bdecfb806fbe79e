package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkforge/docsync/internal/domain/document"
	"github.com/inkforge/docsync/internal/repository"
)

// DocumentRepository implements document.MetaRepository for SQLite
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Get retrieves document metadata
func (r *DocumentRepository) Get(ctx context.Context, tenantID, projectID string, docType document.Type) (*document.Meta, error) {
	query := `
		SELECT tenant_id, project_id, doc_type, rel_path, modified_stamp, checksum, size_bytes
		FROM documents
		WHERE tenant_id = ? AND project_id = ? AND doc_type = ?
	`

	var meta document.Meta
	err := r.db.QueryRowContext(ctx, query, tenantID, projectID, string(docType)).Scan(
		&meta.TenantID,
		&meta.ProjectID,
		&meta.Type,
		&meta.RelPath,
		&meta.ModifiedStamp,
		&meta.Checksum,
		&meta.SizeBytes,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document metadata: %w", err)
	}

	return &meta, nil
}

// Create inserts metadata for a document's first save
func (r *DocumentRepository) Create(ctx context.Context, tenantID string, meta *document.Meta) error {
	query := `
		INSERT INTO documents (tenant_id, project_id, doc_type, rel_path, modified_stamp, checksum, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		tenantID,
		meta.ProjectID,
		string(meta.Type),
		meta.RelPath,
		meta.ModifiedStamp,
		meta.Checksum,
		meta.SizeBytes,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			// Another writer created the document between the caller's
			// stamp check and this insert.
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create document metadata: %w", err)
	}

	return nil
}

// Update replaces metadata with optimistic concurrency control
func (r *DocumentRepository) Update(ctx context.Context, tenantID string, meta *document.Meta, expectedStamp int64) error {
	query := `
		UPDATE documents
		SET modified_stamp = ?, checksum = ?, size_bytes = ?
		WHERE tenant_id = ? AND project_id = ? AND doc_type = ? AND modified_stamp = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		meta.ModifiedStamp,
		meta.Checksum,
		meta.SizeBytes,
		tenantID,
		meta.ProjectID,
		string(meta.Type),
		expectedStamp,
	)
	if err != nil {
		return fmt.Errorf("failed to update document metadata: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrConflict
	}

	return nil
}

// Put upserts metadata unconditionally
func (r *DocumentRepository) Put(ctx context.Context, tenantID string, meta *document.Meta) error {
	query := `
		INSERT INTO documents (tenant_id, project_id, doc_type, rel_path, modified_stamp, checksum, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, project_id, doc_type) DO UPDATE SET
			modified_stamp = excluded.modified_stamp,
			checksum = excluded.checksum,
			size_bytes = excluded.size_bytes
	`

	_, err := r.db.ExecContext(ctx, query,
		tenantID,
		meta.ProjectID,
		string(meta.Type),
		meta.RelPath,
		meta.ModifiedStamp,
		meta.Checksum,
		meta.SizeBytes,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to put document metadata: %w", err)
	}

	return nil
}
