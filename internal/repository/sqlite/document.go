package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/repositories"
)

// SQLiteDocumentRepository implements the DocumentRepository interface.
type SQLiteDocumentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(cfg *RepositoryConfig) repositories.DocumentRepository {
	return &SQLiteDocumentRepository{db: cfg.DB, logger: cfg.Logger}
}

// Insert creates a document row and reads back the assigned identifier.
func (r *SQLiteDocumentRepository) Insert(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (path, flags, date_created)
		VALUES (?, ?, ?)
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query,
		doc.Path.Raw(),
		doc.Flags,
		doc.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return &domain.StoreError{Op: "insert document", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return &domain.StoreError{Op: "insert document", Err: err}
	}

	doc.ID = id
	return nil
}

// Delete removes the document row.
func (r *SQLiteDocumentRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM documents
		WHERE document_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return &domain.StoreError{Op: "delete document", ID: id, Err: err}
	}

	return requireOneRow(res, "delete document", id)
}

// UpdatePath sets the serialized path column.
func (r *SQLiteDocumentRepository) UpdatePath(ctx context.Context, id int64, path models.DocumentPath) error {
	query := `
		UPDATE documents
		SET path = ?
		WHERE document_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, path.Raw(), id)
	if err != nil {
		return &domain.StoreError{Op: "update document path", ID: id, Err: err}
	}

	return requireOneRow(res, "update document path", id)
}
