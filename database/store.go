package database

import (
	"context"
	dbsql "database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
)

// Store adapts the database handlers to the read interface of the resolution
// engine. Row lookups that come back empty are mapped to model.ErrNotFound.
type Store struct {
	entities  *EntitiesDBHandler
	tags      *TagsDBHandler
	timelines *TimelinesDBHandler
	links     *LinksDBHandler
}

// NewStore creates a new resolution store over the given handlers.
func NewStore(entities *EntitiesDBHandler, tags *TagsDBHandler, timelines *TimelinesDBHandler, links *LinksDBHandler) *Store {
	return &Store{
		entities:  entities,
		tags:      tags,
		timelines: timelines,
		links:     links,
	}
}

// GetTimeline retrieves a timeline by id.
func (s *Store) GetTimeline(ctx context.Context, id string) (*model.Timeline, error) {
	timelineID, err := uuid.Parse(id)
	if err != nil {
		return nil, helper.NewError("parsing timeline id", err)
	}

	timeline, err := s.timelines.SelectTimeline(timelineID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return timeline, nil
}

// ListSubtimelineChildren retrieves the child ids of a timeline.
func (s *Store) ListSubtimelineChildren(ctx context.Context, id string) ([]uuid.UUID, error) {
	timelineID, err := uuid.Parse(id)
	if err != nil {
		return nil, helper.NewError("parsing timeline id", err)
	}

	return s.links.SelectSubtimelineChildren(timelineID)
}

// ListEntities retrieves all entities with their tags populated.
func (s *Store) ListEntities(ctx context.Context) ([]*model.Entity, error) {
	entities, err := s.entities.SelectAllEntities()
	if err != nil {
		return nil, err
	}

	tags, err := s.tags.SelectAllEntityTags()
	if err != nil {
		return nil, err
	}

	for _, entity := range entities {
		entity.Tags = tags[entity.ID]
	}

	return entities, nil
}

// ListLinkedEntityIDs retrieves the linked entity ids of a timeline.
func (s *Store) ListLinkedEntityIDs(ctx context.Context, timelineID string) ([]uuid.UUID, error) {
	id, err := uuid.Parse(timelineID)
	if err != nil {
		return nil, helper.NewError("parsing timeline id", err)
	}

	return s.links.SelectTimelineEntityIDs(id)
}

// notFoundOr maps an empty row result to model.ErrNotFound and keeps every
// other error as is.
func notFoundOr(err error) error {
	if errors.Is(err, dbsql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}
