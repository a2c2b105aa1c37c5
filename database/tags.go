package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
	"github.com/opentimeline/opentimeline/sql"
)

// TagsDBHandlerFunctions defines the interface for tag database operations.
type TagsDBHandlerFunctions interface {
	InsertEntityTag(entityID uuid.UUID, tag model.Tag) error
	SelectEntityTags(entityID uuid.UUID) (model.Tags, error)
	SelectAllEntityTags() (map[uuid.UUID]model.Tags, error)
	SelectEntityTagCounts() ([]*model.TagCount, error)
	UpdateMatchingEntityTags(old model.Tag, new model.Tag) (int64, error)
	DeleteEntityTags(entityID uuid.UUID) error
	CountEntityTags() (int64, error)
	InsertTimelineTag(timelineID uuid.UUID, tag model.Tag) error
	SelectTimelineTags(timelineID uuid.UUID) (model.Tags, error)
	SelectTimelineTagCounts() ([]*model.TagCount, error)
	UpdateMatchingTimelineTags(old model.Tag, new model.Tag) (int64, error)
	DeleteTimelineTags(timelineID uuid.UUID) error
	CountTimelineTags() (int64, error)
}

// TagsDBHandler handles entity and timeline tag database operations
type TagsDBHandler struct {
	db *helper.Database
}

// NewTagsDBHandler creates a new tags database handler.
// It initializes the database connection and loads tag-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
// The entities and timelines tables must exist before the tag tables are created.
func NewTagsDBHandler(db *helper.Database, force bool) (*TagsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	tagsDbHandler := &TagsDBHandler{
		db: db,
	}

	err := sql.LoadTagsSql(tagsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load tags sql", err)
	}

	err = tagsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized TagsDBHandler")

	return tagsDbHandler, nil
}

// CreateTable creates the 'entity_tags' and 'timeline_tags' tables in the database.
// If the tables already exist, it does not create them again.
func (h *TagsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_tags();`)
	if err != nil {
		log.Panicf("error initializing tag tables: %#v", err)
	}

	h.db.Logger.Info("Checked/created tables entity_tags and timeline_tags")

	return nil
}

// InsertEntityTag inserts one tag row for an entity
func (h *TagsDBHandler) InsertEntityTag(entityID uuid.UUID, tag model.Tag) error {
	_, err := h.db.Instance.Exec(
		`SELECT insert_entity_tag($1, $2, $3)`,
		entityID,
		tag.Name,
		tag.Value,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectEntityTags retrieves all tags of an entity in insertion order
func (h *TagsDBHandler) SelectEntityTags(entityID uuid.UUID) (model.Tags, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entity_tags($1)`,
		entityID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var tags model.Tags
	for rows.Next() {
		tag := model.Tag{}
		err := rows.Scan(&tag.Name, &tag.Value)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		tags = append(tags, tag)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return tags, nil
}

// SelectAllEntityTags retrieves the tags of all entities keyed by entity id
func (h *TagsDBHandler) SelectAllEntityTags() (map[uuid.UUID]model.Tags, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_entity_tags()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	tags := make(map[uuid.UUID]model.Tags)
	for rows.Next() {
		var entityID uuid.UUID
		tag := model.Tag{}
		err := rows.Scan(&entityID, &tag.Name, &tag.Value)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		tags[entityID] = append(tags[entityID], tag)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return tags, nil
}

// SelectEntityTagCounts retrieves distinct entity tags with usage counts
func (h *TagsDBHandler) SelectEntityTagCounts() ([]*model.TagCount, error) {
	return h.selectTagCounts(`SELECT * FROM select_entity_tag_counts()`)
}

// UpdateMatchingEntityTags rewrites every entity tag equal to old across all
// entities and returns the number of rows changed
func (h *TagsDBHandler) UpdateMatchingEntityTags(old model.Tag, new model.Tag) (int64, error) {
	var updated int64
	err := h.db.Instance.QueryRow(
		`SELECT update_matching_entity_tags($1, $2, $3, $4)`,
		old.Name,
		old.Value,
		new.Name,
		new.Value,
	).Scan(&updated)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return updated, nil
}

// DeleteEntityTags deletes all tags of an entity
func (h *TagsDBHandler) DeleteEntityTags(entityID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_entity_tags($1)`,
		entityID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// CountEntityTags returns the number of entity tag rows
func (h *TagsDBHandler) CountEntityTags() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_entity_tags()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// InsertTimelineTag inserts one tag row for a timeline
func (h *TagsDBHandler) InsertTimelineTag(timelineID uuid.UUID, tag model.Tag) error {
	_, err := h.db.Instance.Exec(
		`SELECT insert_timeline_tag($1, $2, $3)`,
		timelineID,
		tag.Name,
		tag.Value,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectTimelineTags retrieves all tags of a timeline in insertion order
func (h *TagsDBHandler) SelectTimelineTags(timelineID uuid.UUID) (model.Tags, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_timeline_tags($1)`,
		timelineID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var tags model.Tags
	for rows.Next() {
		tag := model.Tag{}
		err := rows.Scan(&tag.Name, &tag.Value)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		tags = append(tags, tag)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return tags, nil
}

// SelectTimelineTagCounts retrieves distinct timeline tags with usage counts
func (h *TagsDBHandler) SelectTimelineTagCounts() ([]*model.TagCount, error) {
	return h.selectTagCounts(`SELECT * FROM select_timeline_tag_counts()`)
}

// UpdateMatchingTimelineTags rewrites every timeline tag equal to old across
// all timelines and returns the number of rows changed
func (h *TagsDBHandler) UpdateMatchingTimelineTags(old model.Tag, new model.Tag) (int64, error) {
	var updated int64
	err := h.db.Instance.QueryRow(
		`SELECT update_matching_timeline_tags($1, $2, $3, $4)`,
		old.Name,
		old.Value,
		new.Name,
		new.Value,
	).Scan(&updated)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return updated, nil
}

// DeleteTimelineTags deletes all tags of a timeline
func (h *TagsDBHandler) DeleteTimelineTags(timelineID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_timeline_tags($1)`,
		timelineID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// CountTimelineTags returns the number of timeline tag rows
func (h *TagsDBHandler) CountTimelineTags() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_timeline_tags()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

func (h *TagsDBHandler) selectTagCounts(query string) ([]*model.TagCount, error) {
	rows, err := h.db.Instance.Query(query)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var counts []*model.TagCount
	for rows.Next() {
		count := &model.TagCount{}
		err := rows.Scan(&count.Tag.Name, &count.Tag.Value, &count.Count)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		counts = append(counts, count)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return counts, nil
}
