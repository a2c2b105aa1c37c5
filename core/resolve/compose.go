package resolve

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
)

// composeOne returns the entity ids selected by a single timeline: its
// directly linked entities plus every entity whose tags match its expression.
func (e *Engine) composeOne(ctx context.Context, timeline *model.Timeline, entities []*model.Entity) (map[uuid.UUID]bool, error) {
	selected := make(map[uuid.UUID]bool)

	linked, err := e.store.ListLinkedEntityIDs(ctx, timeline.ID.String())
	if err != nil {
		return nil, helper.NewError("listing linked entities", err)
	}
	for _, id := range linked {
		selected[id] = true
	}

	predicate, err := e.cache.Parse(timeline.Expression)
	if err != nil {
		return nil, &ExpressionError{TimelineID: timeline.ID, Err: err}
	}
	// A nil predicate means an empty expression, which matches nothing.
	if predicate != nil {
		for _, entity := range entities {
			if predicate.Eval(entity.Tags) {
				selected[entity.ID] = true
			}
		}
	}

	return selected, nil
}

// composeAll unions the entity ids selected by all contributing timelines.
// With Parallelism above 1 the timelines are composed by a worker pool, which
// changes nothing about the result since composition is union-only.
func (e *Engine) composeAll(ctx context.Context, timelines []*model.Timeline, entities []*model.Entity) (map[uuid.UUID]bool, error) {
	if e.config.Parallelism < 2 || len(timelines) < 2 {
		selected := make(map[uuid.UUID]bool)
		for _, timeline := range timelines {
			part, err := e.composeOne(ctx, timeline, entities)
			if err != nil {
				return nil, err
			}
			for id := range part {
				selected[id] = true
			}
		}
		return selected, nil
	}

	workers := e.config.Parallelism
	if workers > len(timelines) {
		workers = len(timelines)
	}

	jobs := make(chan *model.Timeline, len(timelines))
	selected := make(map[uuid.UUID]bool)
	var firstErr error
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for timeline := range jobs {
				part, err := e.composeOne(ctx, timeline, entities)

				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				for id := range part {
					selected[id] = true
				}
				mu.Unlock()
			}
		}()
	}

	for _, timeline := range timelines {
		jobs <- timeline
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return selected, nil
}
