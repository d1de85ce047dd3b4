package repositories

import (
	"context"

	"github.com/Yuuso/mossy/internal/domain/models"
)

// TagRepository defines row-level data access for tags. Single-row
// semantics match ProjectRepository.
type TagRepository interface {
	// Insert creates a tag row and fills in the assigned identifier.
	Insert(ctx context.Context, tag *models.Tag) error

	// Delete removes the tag row.
	Delete(ctx context.Context, id int64) error

	// UpdateName sets the name column.
	UpdateName(ctx context.Context, id int64, name string) error

	// UpdateCategory sets the category column.
	UpdateCategory(ctx context.Context, id int64, category string) error
}
