package database

import (
	"context"
	dbsql "database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/sql"
)

// LinksDBHandlerFunctions defines the interface for sub-timeline edge and
// timeline-entity link database operations.
type LinksDBHandlerFunctions interface {
	InsertSubtimeline(parentID uuid.UUID, childID uuid.UUID) error
	DeleteSubtimeline(parentID uuid.UUID, childID uuid.UUID) error
	SelectSubtimelineChildren(parentID uuid.UUID) ([]uuid.UUID, error)
	CountSubtimelines() (int64, error)
	InsertTimelineEntity(timelineID uuid.UUID, entityID uuid.UUID) error
	DeleteTimelineEntity(timelineID uuid.UUID, entityID uuid.UUID) error
	SelectTimelineEntityIDs(timelineID uuid.UUID) ([]uuid.UUID, error)
	CountTimelineEntities() (int64, error)
	ClearDatabase() error
}

// LinksDBHandler handles sub-timeline and timeline-entity link database operations
type LinksDBHandler struct {
	db *helper.Database
}

// NewLinksDBHandler creates a new links database handler.
// It initializes the database connection and loads link-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
// The timelines table must exist before the link tables are created.
func NewLinksDBHandler(db *helper.Database, force bool) (*LinksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	linksDbHandler := &LinksDBHandler{
		db: db,
	}

	err := sql.LoadLinksSql(linksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load links sql", err)
	}

	err = linksDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized LinksDBHandler")

	return linksDbHandler, nil
}

// CreateTable creates the 'subtimelines' and 'timeline_entities' tables in the database.
// If the tables already exist, it does not create them again.
func (h *LinksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_links();`)
	if err != nil {
		log.Panicf("error initializing link tables: %#v", err)
	}

	h.db.Logger.Info("Checked/created tables subtimelines and timeline_entities")

	return nil
}

// InsertSubtimeline adds a child to a parent timeline. Inserting the same
// edge twice is a no-op. Cycles are not rejected here; they surface at
// traversal time.
func (h *LinksDBHandler) InsertSubtimeline(parentID uuid.UUID, childID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT insert_subtimeline($1, $2)`,
		parentID,
		childID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteSubtimeline removes a child from a parent timeline
func (h *LinksDBHandler) DeleteSubtimeline(parentID uuid.UUID, childID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_subtimeline($1, $2)`,
		parentID,
		childID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectSubtimelineChildren retrieves the child ids of a timeline in insertion order
func (h *LinksDBHandler) SelectSubtimelineChildren(parentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_subtimeline_children($1)`,
		parentID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// CountSubtimelines returns the number of sub-timeline edges
func (h *LinksDBHandler) CountSubtimelines() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_subtimelines()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// InsertTimelineEntity links an entity to a timeline. Linking the same entity
// twice is a no-op.
func (h *LinksDBHandler) InsertTimelineEntity(timelineID uuid.UUID, entityID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT insert_timeline_entity($1, $2)`,
		timelineID,
		entityID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteTimelineEntity removes an entity link from a timeline
func (h *LinksDBHandler) DeleteTimelineEntity(timelineID uuid.UUID, entityID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_timeline_entity($1, $2)`,
		timelineID,
		entityID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectTimelineEntityIDs retrieves the linked entity ids of a timeline in insertion order
func (h *LinksDBHandler) SelectTimelineEntityIDs(timelineID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_timeline_entity_ids($1)`,
		timelineID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// CountTimelineEntities returns the number of timeline-entity links
func (h *LinksDBHandler) CountTimelineEntities() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_timeline_entities()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// ClearDatabase deletes all rows from every table in dependency order.
// Used by backup restore.
func (h *LinksDBHandler) ClearDatabase() error {
	_, err := h.db.Instance.Exec(`SELECT clear_database()`)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func collectIDs(rows *dbsql.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		err := rows.Scan(&id)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		ids = append(ids, id)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return ids, nil
}
