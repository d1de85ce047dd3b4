package repositories

import (
	"context"

	"github.com/Yuuso/mossy/internal/domain/models"
)

// ProjectRepository defines row-level data access for projects. All methods
// mutate exactly one row and report domain.ErrNotFound when no row matched;
// more than one affected row is domain.ErrInconsistent.
type ProjectRepository interface {
	// Insert creates a project row and fills in the assigned identifier.
	Insert(ctx context.Context, project *models.Project) error

	// Delete removes the project row.
	Delete(ctx context.Context, id int64) error

	// UpdateName sets the name column.
	UpdateName(ctx context.Context, id int64, name string) error

	// UpdateAltNames rewrites the delimiter-joined alt-names column.
	UpdateAltNames(ctx context.Context, id int64, altNames []string) error
}
