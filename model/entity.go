package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity represents a person, event or period with a partially precise start
// date and an optional end date. Entities are owned by the storage layer; the
// resolution engine treats them as immutable for the duration of one
// resolution call.
type Entity struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Start     Date      `json:"start"`
	End       *Date     `json:"end,omitempty"`
	Tags      Tags      `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// NewEntity creates a validated entity. The name is trimmed and must not be
// empty; the end date, if present, must not be before the start date.
func NewEntity(name string, start Date, end *Date, tags Tags) (*Entity, error) {
	entity := &Entity{
		Name:  strings.TrimSpace(name),
		Start: start,
		End:   end,
		Tags:  tags,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	return entity, nil
}

// Validate checks the entity invariants.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if e.End != nil && e.End.CompareAtSharedPrecision(e.Start) < 0 {
		return fmt.Errorf("entity %q end date %s before start date %s", e.Name, e.End, e.Start)
	}
	return nil
}

// rawEntity defers validation until all fields are decoded.
type rawEntity struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Start     Date            `json:"start"`
	End       json.RawMessage `json:"end"`
	Tags      Tags            `json:"tags"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalJSON decodes and validates an entity. An end of null, or one with
// all components null, means no end date.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw rawEntity
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var end *Date
	if len(raw.End) > 0 && string(raw.End) != "null" {
		var probe struct {
			Year  *int `json:"year"`
			Month *int `json:"month"`
			Day   *int `json:"day"`
		}
		if err := json.Unmarshal(raw.End, &probe); err != nil {
			return err
		}
		switch {
		case probe.Year == nil && probe.Month == nil && probe.Day == nil:
			// {"year":null,"month":null,"day":null} means no end date.
		case probe.Year == nil:
			return fmt.Errorf("entity %q end month or day set without a year", raw.Name)
		default:
			month, day := 0, 0
			if probe.Month != nil {
				month = *probe.Month
			}
			if probe.Day != nil {
				day = *probe.Day
			}
			date, err := NewDate(*probe.Year, month, day)
			if err != nil {
				return err
			}
			end = &date
		}
	}

	entity := Entity{
		ID:        raw.ID,
		Name:      strings.TrimSpace(raw.Name),
		Start:     raw.Start,
		End:       end,
		Tags:      raw.Tags,
		CreatedAt: raw.CreatedAt,
	}
	if err := entity.Validate(); err != nil {
		return err
	}
	*e = entity
	return nil
}
