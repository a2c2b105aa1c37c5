package opentimeline

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/backup"
	"github.com/opentimeline/opentimeline/core/resolve"
	"github.com/opentimeline/opentimeline/database"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
	loadSql "github.com/opentimeline/opentimeline/sql"
)

// OpenTimeline provides a unified interface to all database handlers
type OpenTimeline struct {
	DB        *helper.Database
	Entities  *database.EntitiesDBHandler
	Tags      *database.TagsDBHandler
	Timelines *database.TimelinesDBHandler
	Links     *database.LinksDBHandler
	Store     *database.Store
	Engine    *resolve.Engine // Resolution engine for rendering timelines
	Backup    *backup.Manager
	// Logging
	log *slog.Logger
}

// NewOpenTimeline creates a new OpenTimeline instance with all handlers initialized
func NewOpenTimeline(config *helper.DatabaseConfiguration, resolveConfig model.ResolveConfig) (*OpenTimeline, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("opentimeline", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (entities and timelines first,
	// then tags and links which reference them)
	// force=false to not reload if functions already exist
	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	timelines, err := database.NewTimelinesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create timelines handler", err)
	}

	tags, err := database.NewTagsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create tags handler", err)
	}

	links, err := database.NewLinksDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create links handler", err)
	}

	// Create resolution engine on top of the combined store
	store := database.NewStore(entities, tags, timelines, links)
	engine := resolve.NewEngine(store, logger, resolveConfig)

	return &OpenTimeline{
		DB:        db,
		Entities:  entities,
		Tags:      tags,
		Timelines: timelines,
		Links:     links,
		Store:     store,
		Engine:    engine,
		Backup:    backup.NewManager(entities, tags, timelines, links, logger),
		log:       logger,
	}, nil
}

// Close closes the database connection
func (o *OpenTimeline) Close() error {
	if o.DB != nil && o.DB.Instance != nil {
		return o.DB.Instance.Close()
	}
	return nil
}

// RenderTimeline resolves the timeline with the given root id into its final
// chronologically ordered view. It walks all reachable sub-timelines, applies
// their expressions and explicit links and returns the deduplicated union.
func (o *OpenTimeline) RenderTimeline(ctx context.Context, rootID uuid.UUID) (*model.TimelineView, error) {
	return o.Engine.RenderTimeline(ctx, rootID)
}

// CreateEntity inserts a new entity together with its tags.
func (o *OpenTimeline) CreateEntity(entity *model.Entity) error {
	if err := o.Entities.InsertEntity(entity); err != nil {
		return helper.NewError("insert entity", err)
	}
	for _, tag := range entity.Tags {
		if err := o.Tags.InsertEntityTag(entity.ID, tag); err != nil {
			return helper.NewError("insert entity tag", err)
		}
	}
	o.log.Info("Created entity", slog.String("entity_id", entity.ID.String()), slog.String("name", entity.Name))
	return nil
}

// UpdateEntity updates an entity and replaces its tags.
func (o *OpenTimeline) UpdateEntity(entity *model.Entity) error {
	if err := o.Entities.UpdateEntity(entity); err != nil {
		return helper.NewError("update entity", err)
	}
	if err := o.Tags.DeleteEntityTags(entity.ID); err != nil {
		return helper.NewError("delete entity tags", err)
	}
	for _, tag := range entity.Tags {
		if err := o.Tags.InsertEntityTag(entity.ID, tag); err != nil {
			return helper.NewError("insert entity tag", err)
		}
	}
	return nil
}

// DeleteEntity deletes an entity and, via cascade, its tags. Timeline links
// to the deleted entity are left in place and skipped at render time.
func (o *OpenTimeline) DeleteEntity(id uuid.UUID) error {
	return o.Entities.DeleteEntity(id)
}

// GetEntity returns an entity with its tags attached.
func (o *OpenTimeline) GetEntity(id uuid.UUID) (*model.Entity, error) {
	entity, err := o.Entities.SelectEntity(id)
	if err != nil {
		return nil, err
	}
	return o.attachEntityTags(entity)
}

// GetEntityByName returns an entity by its unique name with its tags attached.
func (o *OpenTimeline) GetEntityByName(name string) (*model.Entity, error) {
	entity, err := o.Entities.SelectEntityByName(name)
	if err != nil {
		return nil, err
	}
	return o.attachEntityTags(entity)
}

func (o *OpenTimeline) attachEntityTags(entity *model.Entity) (*model.Entity, error) {
	tags, err := o.Tags.SelectEntityTags(entity.ID)
	if err != nil {
		return nil, helper.NewError("select entity tags", err)
	}
	entity.Tags = tags
	return entity, nil
}

// ListEntities returns all entities in reduced form, ordered chronologically.
func (o *OpenTimeline) ListEntities() ([]*model.ReducedEntity, error) {
	return o.Entities.SelectAllEntitiesReduced()
}

// SearchEntities searches entities by a case-insensitive name fragment and an
// optional start year range. A limit of 0 returns all matches.
func (o *OpenTimeline) SearchEntities(term string, fromYear *int, toYear *int, limit int) ([]*model.Entity, error) {
	return o.Entities.SearchEntities(term, fromYear, toYear, limit)
}

// CreateTimeline inserts a new timeline together with its tags. The
// expression is stored as-is and only parsed when the timeline is rendered.
func (o *OpenTimeline) CreateTimeline(timeline *model.Timeline) error {
	if err := o.Timelines.InsertTimeline(timeline); err != nil {
		return helper.NewError("insert timeline", err)
	}
	for _, tag := range timeline.Tags {
		if err := o.Tags.InsertTimelineTag(timeline.ID, tag); err != nil {
			return helper.NewError("insert timeline tag", err)
		}
	}
	o.log.Info("Created timeline", slog.String("timeline_id", timeline.ID.String()), slog.String("name", timeline.Name))
	return nil
}

// UpdateTimeline updates a timeline and replaces its tags.
func (o *OpenTimeline) UpdateTimeline(timeline *model.Timeline) error {
	if err := o.Timelines.UpdateTimeline(timeline); err != nil {
		return helper.NewError("update timeline", err)
	}
	if err := o.Tags.DeleteTimelineTags(timeline.ID); err != nil {
		return helper.NewError("delete timeline tags", err)
	}
	for _, tag := range timeline.Tags {
		if err := o.Tags.InsertTimelineTag(timeline.ID, tag); err != nil {
			return helper.NewError("insert timeline tag", err)
		}
	}
	return nil
}

// DeleteTimeline deletes a timeline. Sub-timeline references from other
// timelines to the deleted one are left in place and skipped at render time.
func (o *OpenTimeline) DeleteTimeline(id uuid.UUID) error {
	return o.Timelines.DeleteTimeline(id)
}

// GetTimeline returns a timeline with its tags attached.
func (o *OpenTimeline) GetTimeline(id uuid.UUID) (*model.Timeline, error) {
	timeline, err := o.Timelines.SelectTimeline(id)
	if err != nil {
		return nil, err
	}
	return o.attachTimelineTags(timeline)
}

// GetTimelineByName returns a timeline by its unique name with its tags attached.
func (o *OpenTimeline) GetTimelineByName(name string) (*model.Timeline, error) {
	timeline, err := o.Timelines.SelectTimelineByName(name)
	if err != nil {
		return nil, err
	}
	return o.attachTimelineTags(timeline)
}

func (o *OpenTimeline) attachTimelineTags(timeline *model.Timeline) (*model.Timeline, error) {
	tags, err := o.Tags.SelectTimelineTags(timeline.ID)
	if err != nil {
		return nil, helper.NewError("select timeline tags", err)
	}
	timeline.Tags = tags
	return timeline, nil
}

// ListTimelines returns all timelines in reduced form.
func (o *OpenTimeline) ListTimelines() ([]*model.ReducedTimeline, error) {
	return o.Timelines.SelectAllTimelinesReduced()
}

// AddSubtimeline nests the child timeline under the parent. Duplicate
// references are ignored.
func (o *OpenTimeline) AddSubtimeline(parentID uuid.UUID, childID uuid.UUID) error {
	return o.Links.InsertSubtimeline(parentID, childID)
}

// RemoveSubtimeline removes the child reference from the parent.
func (o *OpenTimeline) RemoveSubtimeline(parentID uuid.UUID, childID uuid.UUID) error {
	return o.Links.DeleteSubtimeline(parentID, childID)
}

// LinkEntity links the entity directly to the timeline. Duplicate links are
// ignored.
func (o *OpenTimeline) LinkEntity(timelineID uuid.UUID, entityID uuid.UUID) error {
	return o.Links.InsertTimelineEntity(timelineID, entityID)
}

// UnlinkEntity removes the direct link between the timeline and the entity.
func (o *OpenTimeline) UnlinkEntity(timelineID uuid.UUID, entityID uuid.UUID) error {
	return o.Links.DeleteTimelineEntity(timelineID, entityID)
}

// EntityTagCounts returns all distinct entity tags with their usage counts.
func (o *OpenTimeline) EntityTagCounts() ([]*model.TagCount, error) {
	return o.Tags.SelectEntityTagCounts()
}

// TimelineTagCounts returns all distinct timeline tags with their usage counts.
func (o *OpenTimeline) TimelineTagCounts() ([]*model.TagCount, error) {
	return o.Tags.SelectTimelineTagCounts()
}

// UpdateMatchingEntityTags rewrites every entity tag equal to old, across all
// entities. Returns the number of tags changed.
func (o *OpenTimeline) UpdateMatchingEntityTags(old model.Tag, new model.Tag) (int64, error) {
	return o.Tags.UpdateMatchingEntityTags(old, new)
}

// UpdateMatchingTimelineTags rewrites every timeline tag equal to old, across
// all timelines. Returns the number of tags changed.
func (o *OpenTimeline) UpdateMatchingTimelineTags(old model.Tag, new model.Tag) (int64, error) {
	return o.Tags.UpdateMatchingTimelineTags(old, new)
}

// Stats returns the row counts of all tables.
func (o *OpenTimeline) Stats() (*model.Stats, error) {
	stats := &model.Stats{}
	var err error
	if stats.Entities, err = o.Entities.CountEntities(); err != nil {
		return nil, helper.NewError("count entities", err)
	}
	if stats.EntityTags, err = o.Tags.CountEntityTags(); err != nil {
		return nil, helper.NewError("count entity tags", err)
	}
	if stats.Timelines, err = o.Timelines.CountTimelines(); err != nil {
		return nil, helper.NewError("count timelines", err)
	}
	if stats.TimelineTags, err = o.Tags.CountTimelineTags(); err != nil {
		return nil, helper.NewError("count timeline tags", err)
	}
	if stats.Subtimelines, err = o.Links.CountSubtimelines(); err != nil {
		return nil, helper.NewError("count subtimelines", err)
	}
	if stats.TimelineEntities, err = o.Links.CountTimelineEntities(); err != nil {
		return nil, helper.NewError("count timeline entities", err)
	}
	return stats, nil
}

// BackupTo writes a JSON backup of all entities and timelines to dir.
func (o *OpenTimeline) BackupTo(dir string) error {
	return o.Backup.Backup(dir)
}

// MergeFrom merges a JSON backup from dir into the current database,
// upserting by id.
func (o *OpenTimeline) MergeFrom(dir string) error {
	return o.Backup.Merge(dir)
}

// RestoreFrom clears the database and loads the JSON backup from dir.
func (o *OpenTimeline) RestoreFrom(dir string) error {
	return o.Backup.Restore(dir)
}

// ImportSeed loads a YAML seed file of entities and timelines that reference
// each other by name.
func (o *OpenTimeline) ImportSeed(path string) error {
	return o.Backup.ImportSeed(path)
}
