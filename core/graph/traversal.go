package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
)

// Graph defines the interface for sub-timeline graph operations
type Graph interface {
	GetTimeline(ctx context.Context, id string) (*model.Timeline, error)
	ListSubtimelineChildren(ctx context.Context, id string) ([]uuid.UUID, error)
}

// CycleError is returned when the sub-timeline graph contains a cycle
// reachable from the requested root. Path holds the timeline ids along the
// offending walk, ending with the repeated id.
type CycleError struct {
	Path []uuid.UUID
}

func (e *CycleError) Error() string {
	ids := make([]string, 0, len(e.Path))
	for _, id := range e.Path {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("cycle detected in sub-timeline graph: %v", strings.Join(ids, " -> "))
}

// Contributing performs a depth-first walk of the sub-timeline graph and
// returns every timeline contributing to the root, root first. A timeline
// reachable over multiple paths is returned once. A child reference to a
// missing timeline is skipped with a warning, but a missing root is an error.
func Contributing(ctx context.Context, g Graph, rootID uuid.UUID, logger *slog.Logger) ([]*model.Timeline, error) {
	root, err := g.GetTimeline(ctx, rootID.String())
	if err != nil {
		return nil, helper.NewError("getting root timeline", err)
	}

	visited := make(map[uuid.UUID]bool)
	onPath := make(map[uuid.UUID]bool)
	var results []*model.Timeline

	err = walk(ctx, g, root, []uuid.UUID{root.ID}, visited, onPath, &results, logger)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// walk is the recursive helper for Contributing
func walk(
	ctx context.Context,
	g Graph,
	current *model.Timeline,
	path []uuid.UUID,
	visited map[uuid.UUID]bool,
	onPath map[uuid.UUID]bool,
	results *[]*model.Timeline,
	logger *slog.Logger,
) error {
	visited[current.ID] = true
	onPath[current.ID] = true
	defer delete(onPath, current.ID)

	*results = append(*results, current)

	children, err := g.ListSubtimelineChildren(ctx, current.ID.String())
	if err != nil {
		return helper.NewError("listing sub-timeline children", err)
	}

	for _, childID := range children {
		// A child already on the current path closes a cycle.
		if onPath[childID] {
			cyclePath := make([]uuid.UUID, len(path))
			copy(cyclePath, path)
			cyclePath = append(cyclePath, childID)
			return &CycleError{Path: cyclePath}
		}

		// Skip if already visited over another path.
		if visited[childID] {
			continue
		}

		child, err := g.GetTimeline(ctx, childID.String())
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("skipping dangling sub-timeline reference", "parent", current.ID, "child", childID)
				continue
			}
			return helper.NewError("getting sub-timeline", err)
		}

		newPath := make([]uuid.UUID, len(path))
		copy(newPath, path)
		newPath = append(newPath, childID)

		err = walk(ctx, g, child, newPath, visited, onPath, results, logger)
		if err != nil {
			return err
		}
	}

	return nil
}
