package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/repositories"
)

// SQLiteProjectRepository implements the ProjectRepository interface.
type SQLiteProjectRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(cfg *RepositoryConfig) repositories.ProjectRepository {
	return &SQLiteProjectRepository{db: cfg.DB, logger: cfg.Logger}
}

// Insert creates a project row and reads back the assigned identifier.
func (r *SQLiteProjectRepository) Insert(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (name, alt_names, cover_document_id, flags, date_created)
		VALUES (?, ?, ?, ?, ?)
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query,
		project.Name,
		nullAltNames(project.AltNames),
		nullID(project.CoverDocumentID),
		project.Flags,
		project.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return &domain.StoreError{Op: "insert project", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return &domain.StoreError{Op: "insert project", Err: err}
	}

	project.ID = id
	return nil
}

// Delete removes the project row.
func (r *SQLiteProjectRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM projects
		WHERE project_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return &domain.StoreError{Op: "delete project", ID: id, Err: err}
	}

	return requireOneRow(res, "delete project", id)
}

// UpdateName sets the name column.
func (r *SQLiteProjectRepository) UpdateName(ctx context.Context, id int64, name string) error {
	query := `
		UPDATE projects
		SET name = ?
		WHERE project_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, name, id)
	if err != nil {
		return &domain.StoreError{Op: "rename project", ID: id, Err: err}
	}

	return requireOneRow(res, "rename project", id)
}

// UpdateAltNames rewrites the delimiter-joined alt-names column.
func (r *SQLiteProjectRepository) UpdateAltNames(ctx context.Context, id int64, altNames []string) error {
	query := `
		UPDATE projects
		SET alt_names = ?
		WHERE project_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, nullAltNames(altNames), id)
	if err != nil {
		return &domain.StoreError{Op: "update project alt names", ID: id, Err: err}
	}

	return requireOneRow(res, "update project alt names", id)
}

// nullAltNames joins alt names into the single persisted column value.
// An empty set persists as NULL. Duplicates are not filtered at this layer.
func nullAltNames(altNames []string) sql.NullString {
	if len(altNames) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.Join(altNames, models.AltNameSeparator), Valid: true}
}

// splitAltNames reconstructs the alt-name set from the stored column.
func splitAltNames(joined sql.NullString) []string {
	if !joined.Valid || joined.String == "" {
		return nil
	}
	return strings.Split(joined.String, models.AltNameSeparator)
}
