package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinksNewLinksDBHandler(t *testing.T) {
	database := initDB(t)
	initHandlers(t, database)

	t.Run("Invalid call NewLinksDBHandler with nil database", func(t *testing.T) {
		_, err := NewLinksDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating LinksDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestSubtimelines(t *testing.T) {
	database := initDB(t)
	_, _, timelinesDbHandler, linksDbHandler := initHandlers(t, database)

	parent := newTestTimeline(t, "Parent timeline", "")
	child := newTestTimeline(t, "Child timeline", "")
	require.NoError(t, timelinesDbHandler.InsertTimeline(parent))
	require.NoError(t, timelinesDbHandler.InsertTimeline(child))

	t.Run("Insert and select sub-timeline edges", func(t *testing.T) {
		require.NoError(t, linksDbHandler.InsertSubtimeline(parent.ID, child.ID))

		children, err := linksDbHandler.SelectSubtimelineChildren(parent.ID)
		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{child.ID}, children)
	})

	t.Run("Insert duplicate edge is a no-op", func(t *testing.T) {
		require.NoError(t, linksDbHandler.InsertSubtimeline(parent.ID, child.ID))

		children, err := linksDbHandler.SelectSubtimelineChildren(parent.ID)
		assert.NoError(t, err)
		assert.Len(t, children, 1)
	})

	t.Run("Cyclic edges are accepted at storage time", func(t *testing.T) {
		err := linksDbHandler.InsertSubtimeline(child.ID, parent.ID)
		assert.NoError(t, err, "Expected storage to accept an edge closing a cycle")

		// Cleanup
		linksDbHandler.DeleteSubtimeline(child.ID, parent.ID)
	})

	t.Run("Count sub-timeline edges", func(t *testing.T) {
		count, err := linksDbHandler.CountSubtimelines()
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Delete sub-timeline edge", func(t *testing.T) {
		require.NoError(t, linksDbHandler.DeleteSubtimeline(parent.ID, child.ID))

		children, err := linksDbHandler.SelectSubtimelineChildren(parent.ID)
		assert.NoError(t, err)
		assert.Empty(t, children)
	})

	t.Run("Child reference survives child deletion", func(t *testing.T) {
		require.NoError(t, linksDbHandler.InsertSubtimeline(parent.ID, child.ID))
		require.NoError(t, timelinesDbHandler.DeleteTimeline(child.ID))

		children, err := linksDbHandler.SelectSubtimelineChildren(parent.ID)
		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{child.ID}, children, "Expected a dangling child reference to remain")
	})

	// Cleanup
	timelinesDbHandler.DeleteTimeline(parent.ID)
}

func TestTimelineEntities(t *testing.T) {
	database := initDB(t)
	entitiesDbHandler, _, timelinesDbHandler, linksDbHandler := initHandlers(t, database)

	timeline := newTestTimeline(t, "Linking timeline", "")
	entity := newTestEntity(t, "Linked entity", 1914, 0, 0)
	require.NoError(t, timelinesDbHandler.InsertTimeline(timeline))
	require.NoError(t, entitiesDbHandler.InsertEntity(entity))

	t.Run("Insert and select entity links", func(t *testing.T) {
		require.NoError(t, linksDbHandler.InsertTimelineEntity(timeline.ID, entity.ID))

		ids, err := linksDbHandler.SelectTimelineEntityIDs(timeline.ID)
		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{entity.ID}, ids)
	})

	t.Run("Insert duplicate link is a no-op", func(t *testing.T) {
		require.NoError(t, linksDbHandler.InsertTimelineEntity(timeline.ID, entity.ID))

		ids, err := linksDbHandler.SelectTimelineEntityIDs(timeline.ID)
		assert.NoError(t, err)
		assert.Len(t, ids, 1)
	})

	t.Run("Count entity links", func(t *testing.T) {
		count, err := linksDbHandler.CountTimelineEntities()
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Delete entity link", func(t *testing.T) {
		require.NoError(t, linksDbHandler.DeleteTimelineEntity(timeline.ID, entity.ID))

		ids, err := linksDbHandler.SelectTimelineEntityIDs(timeline.ID)
		assert.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Links are removed with their timeline", func(t *testing.T) {
		require.NoError(t, linksDbHandler.InsertTimelineEntity(timeline.ID, entity.ID))
		require.NoError(t, timelinesDbHandler.DeleteTimeline(timeline.ID))

		ids, err := linksDbHandler.SelectTimelineEntityIDs(timeline.ID)
		assert.NoError(t, err)
		assert.Empty(t, ids, "Expected links to cascade on timeline deletion")
	})

	// Cleanup
	entitiesDbHandler.DeleteEntity(entity.ID)
}
