package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/repositories"
)

// SQLiteLinkRepository implements the LinkRepository interface over the
// three association tables.
type SQLiteLinkRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(cfg *RepositoryConfig) repositories.LinkRepository {
	return &SQLiteLinkRepository{db: cfg.DB, logger: cfg.Logger}
}

// InsertProjectTag writes one project<->tag association row.
func (r *SQLiteLinkRepository) InsertProjectTag(ctx context.Context, link models.ProjectTagLink) error {
	query := `
		INSERT INTO project_tag (project_id, tag_id)
		VALUES (?, ?)
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, link.ProjectID, link.TagID); err != nil {
		return &domain.StoreError{Op: "link project tag", ID: link.ProjectID, Err: err}
	}

	return nil
}

// DeleteProjectTag removes exactly one project<->tag association row.
func (r *SQLiteLinkRepository) DeleteProjectTag(ctx context.Context, link models.ProjectTagLink) error {
	query := `
		DELETE FROM project_tag
		WHERE project_id = ?
		AND tag_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, link.ProjectID, link.TagID)
	if err != nil {
		return &domain.StoreError{Op: "unlink project tag", ID: link.ProjectID, Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &domain.StoreError{Op: "unlink project tag", ID: link.ProjectID, Err: err}
	}
	switch {
	case n == 0:
		return fmt.Errorf("project %d tag %d: %w", link.ProjectID, link.TagID, domain.ErrNotLinked)
	case n > 1:
		return fmt.Errorf("project %d tag %d: %d association rows: %w",
			link.ProjectID, link.TagID, n, domain.ErrInconsistent)
	}

	return nil
}

// DeleteProjectTagsForTag removes every association row referencing the tag.
func (r *SQLiteLinkRepository) DeleteProjectTagsForTag(ctx context.Context, tagID int64) (int64, error) {
	query := `
		DELETE FROM project_tag
		WHERE tag_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, tagID)
	if err != nil {
		return 0, &domain.StoreError{Op: "delete tag links", ID: tagID, Err: err}
	}

	return res.RowsAffected()
}

// DeleteProjectTagsForProject removes every association row referencing the
// project.
func (r *SQLiteLinkRepository) DeleteProjectTagsForProject(ctx context.Context, projectID int64) (int64, error) {
	query := `
		DELETE FROM project_tag
		WHERE project_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, projectID)
	if err != nil {
		return 0, &domain.StoreError{Op: "delete project links", ID: projectID, Err: err}
	}

	return res.RowsAffected()
}

// InsertDocumentLink writes one owner->document association row.
func (r *SQLiteLinkRepository) InsertDocumentLink(ctx context.Context, link models.DocumentLink) error {
	var query string
	switch link.Owner.Kind {
	case models.OwnerProject:
		query = `
			INSERT INTO project_document (project_id, document_id)
			VALUES (?, ?)
		`
	case models.OwnerTag:
		query = `
			INSERT INTO tag_document (tag_id, document_id)
			VALUES (?, ?)
		`
	}

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, link.Owner.ID, link.DocumentID); err != nil {
		return &domain.StoreError{Op: "link document to " + link.Owner.Kind.String(), ID: link.DocumentID, Err: err}
	}

	return nil
}

// DeleteDocumentLinks removes every owner->document association row for the
// document in the table matching the owner kind, returning the count.
func (r *SQLiteLinkRepository) DeleteDocumentLinks(ctx context.Context, owner models.OwnerKind, documentID int64) (int64, error) {
	var query string
	switch owner {
	case models.OwnerProject:
		query = `
			DELETE FROM project_document
			WHERE document_id = ?
		`
	case models.OwnerTag:
		query = `
			DELETE FROM tag_document
			WHERE document_id = ?
		`
	}

	executor := GetExecutor(ctx, r.db)
	res, err := executor.ExecContext(ctx, query, documentID)
	if err != nil {
		return 0, &domain.StoreError{Op: "unlink document from " + owner.String(), ID: documentID, Err: err}
	}

	return res.RowsAffected()
}

// CountDocuments counts association rows owned by the container.
func (r *SQLiteLinkRepository) CountDocuments(ctx context.Context, owner models.OwnerRef) (int64, error) {
	var query string
	switch owner.Kind {
	case models.OwnerProject:
		query = `
			SELECT COUNT(*)
			FROM project_document
			WHERE project_id = ?
		`
	case models.OwnerTag:
		query = `
			SELECT COUNT(*)
			FROM tag_document
			WHERE tag_id = ?
		`
	}

	executor := GetExecutor(ctx, r.db)

	var count int64
	if err := executor.QueryRowContext(ctx, query, owner.ID).Scan(&count); err != nil {
		return 0, &domain.StoreError{Op: "count " + owner.Kind.String() + " documents", ID: owner.ID, Err: err}
	}

	return count, nil
}
