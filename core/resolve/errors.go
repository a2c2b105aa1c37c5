package resolve

import (
	"fmt"

	"github.com/google/uuid"
)

// ExpressionError is returned when a stored timeline expression fails to
// parse during resolution. It identifies the timeline carrying the bad
// expression and wraps the underlying parse error.
type ExpressionError struct {
	TimelineID uuid.UUID
	Err        error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("invalid expression on timeline %v: %v", e.TimelineID, e.Err)
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}
