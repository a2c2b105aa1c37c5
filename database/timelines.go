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

// TimelinesDBHandlerFunctions defines the interface for timeline database operations.
type TimelinesDBHandlerFunctions interface {
	InsertTimeline(timeline *model.Timeline) error
	UpsertTimeline(timeline *model.Timeline) error
	UpdateTimeline(timeline *model.Timeline) error
	DeleteTimeline(id uuid.UUID) error
	SelectTimeline(id uuid.UUID) (*model.Timeline, error)
	SelectTimelineByName(name string) (*model.Timeline, error)
	SelectAllTimelines() ([]*model.Timeline, error)
	SelectAllTimelinesReduced() ([]*model.ReducedTimeline, error)
	CountTimelines() (int64, error)
}

// TimelinesDBHandler handles timeline-related database operations
type TimelinesDBHandler struct {
	db *helper.Database
}

// NewTimelinesDBHandler creates a new timelines database handler.
// It initializes the database connection and loads timeline-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewTimelinesDBHandler(db *helper.Database, force bool) (*TimelinesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	timelinesDbHandler := &TimelinesDBHandler{
		db: db,
	}

	err := sql.LoadTimelinesSql(timelinesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load timelines sql", err)
	}

	err = timelinesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized TimelinesDBHandler")

	return timelinesDbHandler, nil
}

// CreateTable creates the 'timelines' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *TimelinesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_timelines();`)
	if err != nil {
		log.Panicf("error initializing timelines table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table timelines")

	return nil
}

// InsertTimeline inserts a new timeline and fills in its generated id and
// timestamp. The expression is stored verbatim without validation.
func (h *TimelinesDBHandler) InsertTimeline(timeline *model.Timeline) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_timeline($1, $2)`,
		timeline.Name,
		timeline.Expression,
	)

	return scanTimeline(row, timeline)
}

// UpsertTimeline inserts a timeline keeping its id, or replaces the stored
// timeline with the same id. Used by backup merge and restore.
func (h *TimelinesDBHandler) UpsertTimeline(timeline *model.Timeline) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_timeline($1, $2, $3)`,
		timeline.ID,
		timeline.Name,
		timeline.Expression,
	)

	return scanTimeline(row, timeline)
}

// UpdateTimeline updates the name and expression of an existing timeline
func (h *TimelinesDBHandler) UpdateTimeline(timeline *model.Timeline) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM update_timeline($1, $2, $3)`,
		timeline.ID,
		timeline.Name,
		timeline.Expression,
	)

	return scanTimeline(row, timeline)
}

// DeleteTimeline deletes a timeline by ID
func (h *TimelinesDBHandler) DeleteTimeline(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_timeline($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectTimeline retrieves a timeline by ID. A missing id yields
// model.ErrNotFound.
func (h *TimelinesDBHandler) SelectTimeline(id uuid.UUID) (*model.Timeline, error) {
	timeline := &model.Timeline{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_timeline($1)`,
		id,
	)

	err := scanTimeline(row, timeline)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return timeline, nil
}

// SelectTimelineByName retrieves a timeline by its unique name. A missing
// name yields model.ErrNotFound.
func (h *TimelinesDBHandler) SelectTimelineByName(name string) (*model.Timeline, error) {
	timeline := &model.Timeline{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_timeline_by_name($1)`,
		name,
	)

	err := scanTimeline(row, timeline)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return timeline, nil
}

// SelectAllTimelines retrieves all timelines ordered by name
func (h *TimelinesDBHandler) SelectAllTimelines() ([]*model.Timeline, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_timelines()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var timelines []*model.Timeline
	for rows.Next() {
		timeline := &model.Timeline{}
		err := scanTimeline(rows, timeline)
		if err != nil {
			return nil, err
		}

		timelines = append(timelines, timeline)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return timelines, nil
}

// SelectAllTimelinesReduced retrieves ids and names of all timelines
func (h *TimelinesDBHandler) SelectAllTimelinesReduced() ([]*model.ReducedTimeline, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_timelines_reduced()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var timelines []*model.ReducedTimeline
	for rows.Next() {
		timeline := &model.ReducedTimeline{}
		err := rows.Scan(&timeline.ID, &timeline.Name)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		timelines = append(timelines, timeline)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return timelines, nil
}

// CountTimelines returns the number of stored timelines
func (h *TimelinesDBHandler) CountTimelines() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_timelines()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// scanTimeline reads one timeline row
func scanTimeline(row rowScanner, timeline *model.Timeline) error {
	err := row.Scan(
		&timeline.ID,
		&timeline.Name,
		&timeline.Expression,
		&timeline.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	return nil
}
