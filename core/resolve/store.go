package resolve

import (
	"context"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/core/graph"
	"github.com/opentimeline/opentimeline/model"
)

// Store defines the persistence operations the resolution engine reads from.
// Lookups for ids that do not exist return an error wrapping model.ErrNotFound.
type Store interface {
	graph.Graph

	// ListEntities returns all entities with their tags populated.
	ListEntities(ctx context.Context) ([]*model.Entity, error)
	// ListLinkedEntityIDs returns the ids of entities directly linked to the
	// given timeline.
	ListLinkedEntityIDs(ctx context.Context, timelineID string) ([]uuid.UUID, error)
}
