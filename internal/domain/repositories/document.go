package repositories

import (
	"context"

	"github.com/Yuuso/mossy/internal/domain/models"
)

// DocumentRepository defines row-level data access for documents.
type DocumentRepository interface {
	// Insert creates a document row and fills in the assigned identifier.
	Insert(ctx context.Context, doc *models.Document) error

	// Delete removes the document row.
	Delete(ctx context.Context, id int64) error

	// UpdatePath sets the serialized path column.
	UpdatePath(ctx context.Context, id int64, path models.DocumentPath) error
}

// LinkRepository defines data access for the three association tables. The
// tables declare no foreign keys; referential integrity is enforced by the
// store around these calls.
type LinkRepository interface {
	// InsertProjectTag writes one project<->tag association row.
	InsertProjectTag(ctx context.Context, link models.ProjectTagLink) error

	// DeleteProjectTag removes exactly one project<->tag association row.
	// Zero matching rows is domain.ErrNotLinked.
	DeleteProjectTag(ctx context.Context, link models.ProjectTagLink) error

	// DeleteProjectTagsForTag removes every association row referencing the
	// tag, returning the number removed.
	DeleteProjectTagsForTag(ctx context.Context, tagID int64) (int64, error)

	// DeleteProjectTagsForProject removes every association row referencing
	// the project, returning the number removed.
	DeleteProjectTagsForProject(ctx context.Context, projectID int64) (int64, error)

	// InsertDocumentLink writes one owner->document association row into the
	// table matching the owner kind.
	InsertDocumentLink(ctx context.Context, link models.DocumentLink) error

	// DeleteDocumentLinks removes every owner->document association row for
	// the document in the table matching the owner kind, returning the
	// number removed. The store asserts the count is exactly one.
	DeleteDocumentLinks(ctx context.Context, owner models.OwnerKind, documentID int64) (int64, error)

	// CountDocuments counts association rows owned by the container.
	CountDocuments(ctx context.Context, owner models.OwnerRef) (int64, error)
}
