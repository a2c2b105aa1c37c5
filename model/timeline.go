package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Timeline is a named, curator-composed view. It contributes entities through
// explicit links, through a boolean tag expression, and through nested
// sub-timelines. An empty Expression means the timeline matches nothing by
// expression and relies on its links and sub-timelines only.
type Timeline struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Expression string    `json:"bool_expr,omitempty"`
	Tags       Tags      `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// NewTimeline creates a validated timeline. The name is trimmed and must not
// be empty. The expression is stored as-is; it is only parsed at resolution
// time.
func NewTimeline(name, expression string) (*Timeline, error) {
	timeline := &Timeline{
		Name:       strings.TrimSpace(name),
		Expression: strings.TrimSpace(expression),
	}
	if timeline.Name == "" {
		return nil, ErrEmptyName
	}
	return timeline, nil
}

// HasExpression reports whether the timeline carries a boolean tag expression.
func (t *Timeline) HasExpression() bool {
	return t.Expression != ""
}

// TimelineView holds a fully resolved timeline: its identity plus the final
// deduplicated, chronologically ordered entities contributed by the timeline
// itself and all of its sub-timelines.
type TimelineView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Entities []*Entity `json:"entities"`
}
