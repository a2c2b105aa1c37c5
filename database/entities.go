package database

import (
	"context"
	dbsql "database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
	"github.com/opentimeline/opentimeline/sql"
)

// EntitiesDBHandlerFunctions defines the interface for entity database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(entity *model.Entity) error
	UpsertEntity(entity *model.Entity) error
	UpdateEntity(entity *model.Entity) error
	DeleteEntity(id uuid.UUID) error
	SelectEntity(id uuid.UUID) (*model.Entity, error)
	SelectEntityByName(name string) (*model.Entity, error)
	SelectAllEntities() ([]*model.Entity, error)
	SelectAllEntitiesReduced() ([]*model.ReducedEntity, error)
	SearchEntities(term string, fromYear *int, toYear *int, limit int) ([]*model.Entity, error)
	CountEntities() (int64, error)
}

// EntitiesDBHandler handles entity-related database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := sql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// InsertEntity inserts a new entity and fills in its generated id and timestamp
func (h *EntitiesDBHandler) InsertEntity(entity *model.Entity) error {
	err := entity.Validate()
	if err != nil {
		return helper.NewError("entity validation", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_entity($1, $2, $3, $4, $5, $6, $7)`,
		entityDateArgs(entity)...,
	)

	return scanEntity(row, entity)
}

// UpsertEntity inserts an entity keeping its id, or replaces the stored
// entity with the same id. Used by backup merge and restore.
func (h *EntitiesDBHandler) UpsertEntity(entity *model.Entity) error {
	err := entity.Validate()
	if err != nil {
		return helper.NewError("entity validation", err)
	}

	args := append([]any{entity.ID}, entityDateArgs(entity)...)
	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_entity($1, $2, $3, $4, $5, $6, $7, $8)`,
		args...,
	)

	return scanEntity(row, entity)
}

// UpdateEntity updates the name and dates of an existing entity
func (h *EntitiesDBHandler) UpdateEntity(entity *model.Entity) error {
	err := entity.Validate()
	if err != nil {
		return helper.NewError("entity validation", err)
	}

	args := append([]any{entity.ID}, entityDateArgs(entity)...)
	row := h.db.Instance.QueryRow(
		`SELECT * FROM update_entity($1, $2, $3, $4, $5, $6, $7, $8)`,
		args...,
	)

	return scanEntity(row, entity)
}

// DeleteEntity deletes an entity by ID
func (h *EntitiesDBHandler) DeleteEntity(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_entity($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectEntity retrieves an entity by ID. A missing id yields
// model.ErrNotFound.
func (h *EntitiesDBHandler) SelectEntity(id uuid.UUID) (*model.Entity, error) {
	entity := &model.Entity{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity($1)`,
		id,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return entity, nil
}

// SelectEntityByName retrieves an entity by its unique name. A missing name
// yields model.ErrNotFound.
func (h *EntitiesDBHandler) SelectEntityByName(name string) (*model.Entity, error) {
	entity := &model.Entity{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity_by_name($1)`,
		name,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return entity, nil
}

// SelectAllEntities retrieves all entities ordered by start date
func (h *EntitiesDBHandler) SelectAllEntities() ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_entities()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// SelectAllEntitiesReduced retrieves ids and names of all entities
func (h *EntitiesDBHandler) SelectAllEntitiesReduced() ([]*model.ReducedEntity, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_entities_reduced()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.ReducedEntity
	for rows.Next() {
		entity := &model.ReducedEntity{}
		err := rows.Scan(&entity.ID, &entity.Name)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

// SearchEntities searches entities by name pattern with optional start year bounds
func (h *EntitiesDBHandler) SearchEntities(term string, fromYear *int, toYear *int, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_entities($1, $2, $3, $4)`,
		term,
		fromYear,
		toYear,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// CountEntities returns the number of stored entities
func (h *EntitiesDBHandler) CountEntities() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_entities()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// entityDateArgs flattens an entity into the argument order of the insert and
// update SQL functions. Unset date parts become NULL columns.
func entityDateArgs(entity *model.Entity) []any {
	args := []any{entity.Name, entity.Start.Year}
	args = append(args, datePartArgs(entity.Start)...)

	if entity.End != nil {
		args = append(args, entity.End.Year)
		args = append(args, datePartArgs(*entity.End)...)
	} else {
		args = append(args, nil, nil, nil)
	}

	return args
}

func datePartArgs(date model.Date) []any {
	var month, day any
	if date.Precision >= model.PrecisionMonth {
		month = date.Month
	}
	if date.Precision >= model.PrecisionDay {
		day = date.Day
	}
	return []any{month, day}
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntity reads one entity row and rebuilds its partial-precision dates
func scanEntity(row rowScanner, entity *model.Entity) error {
	var startYear int
	var startMonth, startDay, endYear, endMonth, endDay dbsql.NullInt32

	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&startYear,
		&startMonth,
		&startDay,
		&endYear,
		&endMonth,
		&endDay,
		&entity.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	start, err := model.NewDate(startYear, int(startMonth.Int32), int(startDay.Int32))
	if err != nil {
		return helper.NewError("start date", err)
	}
	entity.Start = start

	entity.End = nil
	if endYear.Valid {
		end, err := model.NewDate(int(endYear.Int32), int(endMonth.Int32), int(endDay.Int32))
		if err != nil {
			return helper.NewError("end date", err)
		}
		entity.End = &end
	}

	return nil
}

func collectEntities(rows *dbsql.Rows) ([]*model.Entity, error) {
	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		err := scanEntity(rows, entity)
		if err != nil {
			return nil, err
		}

		entities = append(entities, entity)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}
