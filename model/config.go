package model

import "errors"

// ErrEmptyName is returned when a trimmed entity or timeline name is empty.
var ErrEmptyName = errors.New("name cannot be empty")

// ErrNotFound is returned when a looked-up entity or timeline does not exist.
var ErrNotFound = errors.New("not found")

// ResolveConfig configures one resolution run.
type ResolveConfig struct {
	// Parallelism is the number of contributing timelines composed
	// concurrently. Values below 2 mean serial composition; the result is
	// identical either way.
	Parallelism int `json:"parallelism"`
}

// DefaultResolveConfig returns the default (serial) configuration.
func DefaultResolveConfig() ResolveConfig {
	return ResolveConfig{
		Parallelism: 1,
	}
}
