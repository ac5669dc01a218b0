package metadata

import (
	"fmt"
)

// MappingError describes a model/record disagreement with enough context to fix it.
// It unwraps to one of the pgbulk sentinels so callers can use errors.Is.
type MappingError struct {
	Entity   string // Entity or table the error concerns
	Property string // Property name if applicable
	Message  string // Primary error message
	Hint     string // Actionable suggestion for fixing
	Err      error  // Sentinel classifying the failure
}

// Error implements the error interface with rich formatting.
func (e *MappingError) Error() string {
	msg := fmt.Sprintf("mapping error in %s: %s", e.Entity, e.Message)
	if e.Property != "" {
		msg = fmt.Sprintf("mapping error in %s [property: %s]: %s", e.Entity, e.Property, e.Message)
	}

	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}

	return msg
}

func (e *MappingError) Unwrap() error {
	return e.Err
}
