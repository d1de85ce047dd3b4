package repositories

import (
	"context"

	"github.com/Yuuso/mossy/internal/domain/models"
)

// Graph is the fully reconstructed entity graph of an opened store.
type Graph struct {
	Projects []*models.Project
	Tags     []*models.Tag
}

// GraphLoader reconstructs the entity graph from persisted rows: every
// project and tag, then each container's association rows resolved to
// attached documents and symmetric project<->tag links.
type GraphLoader interface {
	// LoadGraph reads all rows and wires the graph. An association row
	// referencing a missing document is skipped and surfaced through the
	// logger, not fatal. A null required column is domain.ErrCorrupt.
	LoadGraph(ctx context.Context) (*Graph, error)
}
