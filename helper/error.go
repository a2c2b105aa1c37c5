package helper

import "fmt"

// NewError wraps an error with the action that failed, e.g.
// "error in insert entity: ...". The wrapped error stays reachable via
// errors.Is/errors.As.
func NewError(action string, err error) error {
	return fmt.Errorf("error in %v: %w", action, err)
}
