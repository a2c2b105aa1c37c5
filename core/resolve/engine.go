package resolve

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/core/graph"
	"github.com/opentimeline/opentimeline/expr"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
)

// Engine resolves timelines into chronologically ordered entity views. It
// walks the sub-timeline graph, composes the entity sets of all contributing
// timelines and sorts the union.
type Engine struct {
	store  Store
	cache  *expr.Cache
	logger *slog.Logger
	config model.ResolveConfig
}

// NewEngine creates a new resolution engine reading from the given store.
func NewEngine(store Store, logger *slog.Logger, config model.ResolveConfig) *Engine {
	return &Engine{
		store:  store,
		cache:  expr.NewCache(),
		logger: logger,
		config: config,
	}
}

// RenderTimeline resolves the timeline with the given root id. The returned
// view contains every entity selected by the root or any contributing
// sub-timeline, deduplicated and ordered chronologically. Entities and tags
// are read once at the start, so one render sees a single consistent state.
func (e *Engine) RenderTimeline(ctx context.Context, rootID uuid.UUID) (*model.TimelineView, error) {
	timelines, err := graph.Contributing(ctx, e.store, rootID, e.logger)
	if err != nil {
		return nil, err
	}

	entities, err := e.store.ListEntities(ctx)
	if err != nil {
		return nil, helper.NewError("listing entities", err)
	}

	byID := make(map[uuid.UUID]*model.Entity, len(entities))
	for _, entity := range entities {
		byID[entity.ID] = entity
	}

	selected, err := e.composeAll(ctx, timelines, entities)
	if err != nil {
		return nil, err
	}

	view := &model.TimelineView{
		ID:       timelines[0].ID,
		Name:     timelines[0].Name,
		Entities: make([]*model.Entity, 0, len(selected)),
	}
	for id := range selected {
		entity, ok := byID[id]
		if !ok {
			e.logger.Warn("skipping link to missing entity", "entity", id)
			continue
		}
		view.Entities = append(view.Entities, entity)
	}
	SortEntities(view.Entities)

	return view, nil
}
