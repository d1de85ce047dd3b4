package services

import (
	"context"

	"github.com/Yuuso/mossy/internal/domain/models"
)

// TransferMode selects how an ingested file enters the store: duplicated
// into the store's managed data tree, or referenced in place.
type TransferMode int

const (
	TransferCopy TransferMode = iota
	TransferLink
)

func (m TransferMode) String() string {
	if m == TransferLink {
		return "link"
	}
	return "copy"
}

// Store is the public surface the UI/command layer calls. Every mutating
// operation is atomic: backing store committed and in-memory model updated,
// or both unchanged. Mutating operations are only legal while initialized;
// calling them otherwise is a programmer error.
type Store interface {
	// InitNew creates a store at dir and transitions to initialized.
	InitNew(ctx context.Context, dir string) error

	// InitOpen opens an existing store at dir and loads the entity graph.
	InitOpen(ctx context.Context, dir string) error

	// Deinit clears all in-memory collections and returns to uninitialized.
	Deinit()

	Initialized() bool
	Projects() *models.Collection[*models.Project]
	Tags() *models.Collection[*models.Tag]

	AddProject(ctx context.Context, name string) (*models.Project, error)
	DeleteProject(ctx context.Context, project *models.Project) error
	SetProjectName(ctx context.Context, project *models.Project, name string) error
	AddProjectAltName(ctx context.Context, project *models.Project, altName string) error
	DeleteProjectAltName(ctx context.Context, project *models.Project, altName string) error
	AddProjectTag(ctx context.Context, project *models.Project, tag *models.Tag) error
	DeleteProjectTag(ctx context.Context, project *models.Project, tag *models.Tag) error

	AddTag(ctx context.Context, name, category string) (*models.Tag, error)
	DeleteTag(ctx context.Context, tag *models.Tag) error
	SetTagName(ctx context.Context, tag *models.Tag, name string) error
	SetTagCategory(ctx context.Context, tag *models.Tag, category string) error

	// AddDocumentFile ingests a file or directory from disk under the owner.
	AddDocumentFile(ctx context.Context, mode TransferMode, owner models.OwnerRef, path string) (*models.Document, error)

	// AddDocumentString ingests free-form text: an existing path becomes a
	// Link document, an absolute http(s) address a Url document.
	AddDocumentString(ctx context.Context, owner models.OwnerRef, data string) (*models.Document, error)

	DeleteDocument(ctx context.Context, document *models.Document, owner models.OwnerRef) error
	RenameDocument(ctx context.Context, document *models.Document, newName string) error

	// AbsolutePath resolves a document's path against the store root.
	AbsolutePath(document *models.Document) string

	// CoverDocument resolves a container's cover document id against its own
	// documents. A zero or dangling id yields no cover.
	CoverDocument(owner models.OwnerRef) (*models.Document, bool)
}
