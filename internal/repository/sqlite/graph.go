package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
	"github.com/Yuuso/mossy/internal/domain/repositories"
)

// SQLiteGraphLoader implements the GraphLoader interface. It reads the full
// entity graph in the same pass order the store has always used: projects,
// tags, project<->tag links, tag documents, project documents.
type SQLiteGraphLoader struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewGraphLoader creates a new graph loader.
func NewGraphLoader(cfg *RepositoryConfig) repositories.GraphLoader {
	return &SQLiteGraphLoader{db: cfg.DB, logger: cfg.Logger}
}

// LoadGraph reads all rows and reconstructs the wired entity graph.
func (l *SQLiteGraphLoader) LoadGraph(ctx context.Context) (*repositories.Graph, error) {
	projects, err := l.loadProjects(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := l.loadTags(ctx)
	if err != nil {
		return nil, err
	}

	tagsByID := make(map[int64]*models.Tag, len(tags))
	for _, tag := range tags {
		tagsByID[tag.ID] = tag
	}

	for _, project := range projects {
		if err := l.attachProjectTags(ctx, project, tagsByID); err != nil {
			return nil, err
		}
	}

	for _, tag := range tags {
		if err := l.attachDocuments(ctx, models.TagOwner(tag.ID), tag.Documents); err != nil {
			return nil, err
		}
	}

	for _, project := range projects {
		if err := l.attachDocuments(ctx, models.ProjectOwner(project.ID), project.Documents); err != nil {
			return nil, err
		}
	}

	return &repositories.Graph{Projects: projects, Tags: tags}, nil
}

func (l *SQLiteGraphLoader) loadProjects(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT project_id, name, alt_names, cover_document_id, flags, date_created
		FROM projects
	`

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &domain.StoreError{Op: "load projects", Err: err}
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var (
			id       int64
			name     sql.NullString
			altNames sql.NullString
			coverID  sql.NullInt64
			flags    sql.NullInt64
			created  sql.NullString
		)
		if err := rows.Scan(&id, &name, &altNames, &coverID, &flags, &created); err != nil {
			return nil, &domain.StoreError{Op: "scan project", Err: err}
		}

		if !name.Valid || !created.Valid {
			return nil, fmt.Errorf("project %d: required column is null: %w", id, domain.ErrCorrupt)
		}

		createdAt, err := parseStoredTime(created.String)
		if err != nil {
			return nil, fmt.Errorf("project %d: %w", id, err)
		}

		project := models.NewProject(id, name.String, createdAt)
		project.AltNames = splitAltNames(altNames)
		project.CoverDocumentID = coverID.Int64
		project.Flags = flags.Int64
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "iterate projects", Err: err}
	}

	return projects, nil
}

func (l *SQLiteGraphLoader) loadTags(ctx context.Context) ([]*models.Tag, error) {
	query := `
		SELECT tag_id, name, category, cover_document_id, color, flags, date_created
		FROM tags
	`

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &domain.StoreError{Op: "load tags", Err: err}
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		var (
			id       int64
			name     sql.NullString
			category sql.NullString
			coverID  sql.NullInt64
			color    sql.NullString
			flags    sql.NullInt64
			created  sql.NullString
		)
		if err := rows.Scan(&id, &name, &category, &coverID, &color, &flags, &created); err != nil {
			return nil, &domain.StoreError{Op: "scan tag", Err: err}
		}

		if !name.Valid || !category.Valid || !created.Valid {
			return nil, fmt.Errorf("tag %d: required column is null: %w", id, domain.ErrCorrupt)
		}

		createdAt, err := parseStoredTime(created.String)
		if err != nil {
			return nil, fmt.Errorf("tag %d: %w", id, err)
		}

		tag := models.NewTag(id, name.String, category.String, createdAt)
		tag.CoverDocumentID = coverID.Int64
		tag.Color = color.String
		tag.Flags = flags.Int64
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "iterate tags", Err: err}
	}

	return tags, nil
}

// attachProjectTags resolves the project's association rows and wires both
// sides of the many-to-many relation.
func (l *SQLiteGraphLoader) attachProjectTags(ctx context.Context, project *models.Project, tagsByID map[int64]*models.Tag) error {
	query := `
		SELECT tag_id
		FROM project_tag
		WHERE project_id = ?
	`

	rows, err := l.db.QueryContext(ctx, query, project.ID)
	if err != nil {
		return &domain.StoreError{Op: "load project tags", ID: project.ID, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var tagID int64
		if err := rows.Scan(&tagID); err != nil {
			return &domain.StoreError{Op: "scan project tag link", ID: project.ID, Err: err}
		}

		tag, ok := tagsByID[tagID]
		if !ok {
			// Dangling association row. Skipped, not fatal.
			l.logger.Warn("project references missing tag",
				"project_id", project.ID,
				"tag_id", tagID,
			)
			continue
		}

		project.Tags.Add(tag)
		tag.Projects.Add(project)
	}

	return rows.Err()
}

// attachDocuments resolves the container's association rows and attaches
// the referenced documents. A dangling document id is skipped and logged.
func (l *SQLiteGraphLoader) attachDocuments(ctx context.Context, owner models.OwnerRef, into *models.Collection[*models.Document]) error {
	var query string
	switch owner.Kind {
	case models.OwnerProject:
		query = `
			SELECT document_id
			FROM project_document
			WHERE project_id = ?
		`
	case models.OwnerTag:
		query = `
			SELECT document_id
			FROM tag_document
			WHERE tag_id = ?
		`
	}

	rows, err := l.db.QueryContext(ctx, query, owner.ID)
	if err != nil {
		return &domain.StoreError{Op: "load " + owner.Kind.String() + " documents", ID: owner.ID, Err: err}
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return &domain.StoreError{Op: "scan document link", ID: owner.ID, Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		doc, err := l.fetchDocument(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			l.logger.Warn("association references missing document",
				"owner", owner.Kind.String(),
				"owner_id", owner.ID,
				"document_id", id,
			)
			continue
		}
		if err != nil {
			return err
		}

		if doc.Path.Kind == models.PathUnknown {
			l.logger.Warn("document has unparseable path",
				"document_id", id,
				"raw_path", doc.Path.Value,
			)
		}

		into.Add(doc)
	}

	return nil
}

func (l *SQLiteGraphLoader) fetchDocument(ctx context.Context, id int64) (*models.Document, error) {
	query := `
		SELECT path, flags, date_created
		FROM documents
		WHERE document_id = ?
	`

	var (
		raw     sql.NullString
		flags   sql.NullInt64
		created sql.NullString
	)
	err := l.db.QueryRowContext(ctx, query, id).Scan(&raw, &flags, &created)
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
		}
		return nil, &domain.StoreError{Op: "fetch document", ID: id, Err: err}
	}

	if !raw.Valid || !created.Valid {
		return nil, fmt.Errorf("document %d: required column is null: %w", id, domain.ErrCorrupt)
	}

	createdAt, err := parseStoredTime(created.String)
	if err != nil {
		return nil, fmt.Errorf("document %d: %w", id, err)
	}

	return &models.Document{
		ID:        id,
		Path:      models.ParsePath(raw.String),
		Flags:     flags.Int64,
		CreatedAt: createdAt,
	}, nil
}

func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		// Older stores wrote timestamps without sub-second precision.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date_created %q: %w", s, domain.ErrCorrupt)
		}
	}
	return t, nil
}
