// Package backup saves and loads the full database content as JSON files,
// one per collection, and imports hand-written YAML seed files.
package backup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/database"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
)

const (
	entitiesFile  = "entities.json"
	timelinesFile = "timelines.json"
)

// TimelineBackup is the serialized form of a timeline together with its tags,
// sub-timeline children and linked entities.
type TimelineBackup struct {
	model.Timeline
	Subtimelines []uuid.UUID `json:"subtimelines,omitempty"`
	Entities     []uuid.UUID `json:"entities,omitempty"`
}

// Manager reads and writes backups through the database handlers.
type Manager struct {
	entities  *database.EntitiesDBHandler
	tags      *database.TagsDBHandler
	timelines *database.TimelinesDBHandler
	links     *database.LinksDBHandler
	logger    *slog.Logger
}

// NewManager creates a new backup manager over the given handlers.
func NewManager(entities *database.EntitiesDBHandler, tags *database.TagsDBHandler, timelines *database.TimelinesDBHandler, links *database.LinksDBHandler, logger *slog.Logger) *Manager {
	return &Manager{
		entities:  entities,
		tags:      tags,
		timelines: timelines,
		links:     links,
		logger:    logger,
	}
}

// Backup writes entities.json and timelines.json into the given directory.
func (m *Manager) Backup(dir string) error {
	err := m.backupEntities(dir)
	if err != nil {
		return helper.NewError("backing up entities", err)
	}

	err = m.backupTimelines(dir)
	if err != nil {
		return helper.NewError("backing up timelines", err)
	}

	return nil
}

// Merge loads entities.json and timelines.json from the given directory into
// the database. Records whose id already exists replace the stored record;
// all others are inserted.
func (m *Manager) Merge(dir string) error {
	err := m.mergeEntities(dir)
	if err != nil {
		return helper.NewError("merging entities", err)
	}

	err = m.mergeTimelines(dir)
	if err != nil {
		return helper.NewError("merging timelines", err)
	}

	return nil
}

// Restore clears the database and then merges from the given directory.
func (m *Manager) Restore(dir string) error {
	err := m.links.ClearDatabase()
	if err != nil {
		return helper.NewError("clearing database", err)
	}

	return m.Merge(dir)
}

func (m *Manager) backupEntities(dir string) error {
	entities, err := m.entities.SelectAllEntities()
	if err != nil {
		return err
	}

	for _, entity := range entities {
		tags, err := m.tags.SelectEntityTags(entity.ID)
		if err != nil {
			return err
		}
		entity.Tags = tags
	}

	return writeJSON(filepath.Join(dir, entitiesFile), entities)
}

func (m *Manager) backupTimelines(dir string) error {
	timelines, err := m.timelines.SelectAllTimelines()
	if err != nil {
		return err
	}

	backups := make([]*TimelineBackup, 0, len(timelines))
	for _, timeline := range timelines {
		tags, err := m.tags.SelectTimelineTags(timeline.ID)
		if err != nil {
			return err
		}
		timeline.Tags = tags

		children, err := m.links.SelectSubtimelineChildren(timeline.ID)
		if err != nil {
			return err
		}

		linked, err := m.links.SelectTimelineEntityIDs(timeline.ID)
		if err != nil {
			return err
		}

		backups = append(backups, &TimelineBackup{
			Timeline:     *timeline,
			Subtimelines: children,
			Entities:     linked,
		})
	}

	return writeJSON(filepath.Join(dir, timelinesFile), backups)
}

func (m *Manager) mergeEntities(dir string) error {
	path := filepath.Join(dir, entitiesFile)

	var entities []*model.Entity
	err := readJSON(path, &entities)
	if err != nil {
		return err
	}

	for _, entity := range entities {
		if entity.ID == uuid.Nil {
			return fmt.Errorf("entity %q has no id", entity.Name)
		}

		err := m.entities.UpsertEntity(entity)
		if err != nil {
			return err
		}

		// Replace the stored tags with the incoming ones.
		err = m.tags.DeleteEntityTags(entity.ID)
		if err != nil {
			return err
		}
		for _, tag := range entity.Tags {
			err = m.tags.InsertEntityTag(entity.ID, tag)
			if err != nil {
				return err
			}
		}
	}

	m.logger.Info("Merged entities from backup", "path", path, "count", len(entities))

	return nil
}

func (m *Manager) mergeTimelines(dir string) error {
	path := filepath.Join(dir, timelinesFile)

	var backups []*TimelineBackup
	err := readJSON(path, &backups)
	if err != nil {
		return err
	}

	// Upsert all timelines first so every sub-timeline edge has its parent row.
	for _, backupTimeline := range backups {
		if backupTimeline.ID == uuid.Nil {
			return fmt.Errorf("timeline %q has no id", backupTimeline.Name)
		}

		err := m.timelines.UpsertTimeline(&backupTimeline.Timeline)
		if err != nil {
			return err
		}
	}

	for _, backupTimeline := range backups {
		err = m.tags.DeleteTimelineTags(backupTimeline.ID)
		if err != nil {
			return err
		}
		for _, tag := range backupTimeline.Tags {
			err = m.tags.InsertTimelineTag(backupTimeline.ID, tag)
			if err != nil {
				return err
			}
		}

		for _, childID := range backupTimeline.Subtimelines {
			err = m.links.InsertSubtimeline(backupTimeline.ID, childID)
			if err != nil {
				return err
			}
		}

		for _, entityID := range backupTimeline.Entities {
			err = m.links.InsertTimelineEntity(backupTimeline.ID, entityID)
			if err != nil {
				return err
			}
		}
	}

	m.logger.Info("Merged timelines from backup", "path", path, "count", len(backups))

	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return helper.NewError("marshal", err)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return helper.NewError("write file", err)
	}

	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return helper.NewError("read file", err)
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return helper.NewError("unmarshal", err)
	}

	return nil
}
