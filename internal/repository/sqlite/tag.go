package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/repositories"
)

// SQLiteTagRepository implements the TagRepository interface.
type SQLiteTagRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(cfg *RepositoryConfig) repositories.TagRepository {
	return &SQLiteTagRepository{db: cfg.DB, logger: cfg.Logger}
}

// Insert creates a tag row and reads back the assigned identifier.
func (r *SQLiteTagRepository) Insert(ctx context.Context, tag *models.Tag) error {
	query := `
		INSERT INTO tags (name, category, cover_document_id, color, flags, date_created)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query,
		tag.Name,
		tag.Category,
		nullID(tag.CoverDocumentID),
		nullString(tag.Color),
		tag.Flags,
		tag.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return &domain.StoreError{Op: "insert tag", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return &domain.StoreError{Op: "insert tag", Err: err}
	}

	tag.ID = id
	return nil
}

// Delete removes the tag row.
func (r *SQLiteTagRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM tags
		WHERE tag_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return &domain.StoreError{Op: "delete tag", ID: id, Err: err}
	}

	return requireOneRow(res, "delete tag", id)
}

// UpdateName sets the name column.
func (r *SQLiteTagRepository) UpdateName(ctx context.Context, id int64, name string) error {
	query := `
		UPDATE tags
		SET name = ?
		WHERE tag_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, name, id)
	if err != nil {
		return &domain.StoreError{Op: "rename tag", ID: id, Err: err}
	}

	return requireOneRow(res, "rename tag", id)
}

// UpdateCategory sets the category column.
func (r *SQLiteTagRepository) UpdateCategory(ctx context.Context, id int64, category string) error {
	query := `
		UPDATE tags
		SET category = ?
		WHERE tag_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, category, id)
	if err != nil {
		return &domain.StoreError{Op: "recategorize tag", ID: id, Err: err}
	}

	return requireOneRow(res, "recategorize tag", id)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullID maps the zero id, meaning unset, to NULL.
func nullID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
