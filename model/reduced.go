package model

import "github.com/google/uuid"

// ReducedEntity is the ID-and-name projection of an Entity, used for listings
// where the full record is not needed.
type ReducedEntity struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ReducedTimeline is the ID-and-name projection of a Timeline.
type ReducedTimeline struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TagCount holds a tag and the number of times it appears.
type TagCount struct {
	Tag   Tag   `json:"tag"`
	Count int64 `json:"count"`
}

// Stats holds the row counts of all tables.
type Stats struct {
	Entities         int64 `json:"entities"`
	EntityTags       int64 `json:"entity_tags"`
	Timelines        int64 `json:"timelines"`
	TimelineTags     int64 `json:"timeline_tags"`
	Subtimelines     int64 `json:"subtimelines"`
	TimelineEntities int64 `json:"timeline_entities"`
}
