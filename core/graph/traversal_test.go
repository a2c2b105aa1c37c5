package graph

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGraph is a mock implementation of Graph for testing
type MockGraph struct {
	timelines map[string]*model.Timeline
	children  map[string][]uuid.UUID
}

func NewMockGraph() *MockGraph {
	return &MockGraph{
		timelines: make(map[string]*model.Timeline),
		children:  make(map[string][]uuid.UUID),
	}
}

func (m *MockGraph) AddTimeline(name string) uuid.UUID {
	id := uuid.New()
	m.timelines[id.String()] = &model.Timeline{ID: id, Name: name}
	return id
}

func (m *MockGraph) AddChild(parent uuid.UUID, child uuid.UUID) {
	m.children[parent.String()] = append(m.children[parent.String()], child)
}

func (m *MockGraph) GetTimeline(ctx context.Context, id string) (*model.Timeline, error) {
	timeline, ok := m.timelines[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return timeline, nil
}

func (m *MockGraph) ListSubtimelineChildren(ctx context.Context, id string) ([]uuid.UUID, error) {
	return m.children[id], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func timelineIDs(timelines []*model.Timeline) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(timelines))
	for _, timeline := range timelines {
		ids = append(ids, timeline.ID)
	}
	return ids
}

func TestContributing(t *testing.T) {
	t.Run("Timeline without children", func(t *testing.T) {
		mockGraph := NewMockGraph()
		idRoot := mockGraph.AddTimeline("Root")

		results, err := Contributing(context.Background(), mockGraph, idRoot, testLogger())

		assert.NoError(t, err, "Expected traversal to not return an error")
		require.Len(t, results, 1, "Expected only the root for a leaf timeline")
		assert.Equal(t, idRoot, results[0].ID, "Expected first result to be the root")
	})

	t.Run("Depth-first order with root first", func(t *testing.T) {
		// A -> B -> C
		// A -> D
		mockGraph := NewMockGraph()
		idA := mockGraph.AddTimeline("A")
		idB := mockGraph.AddTimeline("B")
		idC := mockGraph.AddTimeline("C")
		idD := mockGraph.AddTimeline("D")
		mockGraph.AddChild(idA, idB)
		mockGraph.AddChild(idA, idD)
		mockGraph.AddChild(idB, idC)

		results, err := Contributing(context.Background(), mockGraph, idA, testLogger())

		assert.NoError(t, err, "Expected traversal to not return an error")
		assert.Equal(t, []uuid.UUID{idA, idB, idC, idD}, timelineIDs(results), "Expected depth-first order")
	})

	t.Run("Diamond is visited once", func(t *testing.T) {
		// A -> B -> D
		// A -> C -> D
		mockGraph := NewMockGraph()
		idA := mockGraph.AddTimeline("A")
		idB := mockGraph.AddTimeline("B")
		idC := mockGraph.AddTimeline("C")
		idD := mockGraph.AddTimeline("D")
		mockGraph.AddChild(idA, idB)
		mockGraph.AddChild(idA, idC)
		mockGraph.AddChild(idB, idD)
		mockGraph.AddChild(idC, idD)

		results, err := Contributing(context.Background(), mockGraph, idA, testLogger())

		assert.NoError(t, err, "Expected a diamond to not be a cycle")
		assert.Equal(t, []uuid.UUID{idA, idB, idD, idC}, timelineIDs(results), "Expected shared child to appear once")
	})

	t.Run("Cycle is detected", func(t *testing.T) {
		// A -> B -> C -> A
		mockGraph := NewMockGraph()
		idA := mockGraph.AddTimeline("A")
		idB := mockGraph.AddTimeline("B")
		idC := mockGraph.AddTimeline("C")
		mockGraph.AddChild(idA, idB)
		mockGraph.AddChild(idB, idC)
		mockGraph.AddChild(idC, idA)

		results, err := Contributing(context.Background(), mockGraph, idA, testLogger())

		require.Error(t, err, "Expected a cycle error")
		assert.Nil(t, results)

		var cycleErr *CycleError
		require.ErrorAs(t, err, &cycleErr, "Expected a *CycleError")
		assert.Equal(t, []uuid.UUID{idA, idB, idC, idA}, cycleErr.Path, "Expected path ending with the repeated id")
	})

	t.Run("Self reference is a cycle", func(t *testing.T) {
		mockGraph := NewMockGraph()
		idA := mockGraph.AddTimeline("A")
		mockGraph.AddChild(idA, idA)

		_, err := Contributing(context.Background(), mockGraph, idA, testLogger())

		var cycleErr *CycleError
		require.ErrorAs(t, err, &cycleErr, "Expected a *CycleError")
		assert.Equal(t, []uuid.UUID{idA, idA}, cycleErr.Path)
	})

	t.Run("Dangling child reference is skipped", func(t *testing.T) {
		mockGraph := NewMockGraph()
		idA := mockGraph.AddTimeline("A")
		idB := mockGraph.AddTimeline("B")
		mockGraph.AddChild(idA, uuid.New())
		mockGraph.AddChild(idA, idB)

		results, err := Contributing(context.Background(), mockGraph, idA, testLogger())

		assert.NoError(t, err, "Expected dangling references to be skipped")
		assert.Equal(t, []uuid.UUID{idA, idB}, timelineIDs(results))
	})

	t.Run("Missing root is an error", func(t *testing.T) {
		mockGraph := NewMockGraph()

		results, err := Contributing(context.Background(), mockGraph, uuid.New(), testLogger())

		assert.ErrorIs(t, err, model.ErrNotFound, "Expected a missing root to be fatal")
		assert.Nil(t, results)
	})
}
