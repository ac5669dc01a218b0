package pgbulk

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	n, err := bulk.Insert(ctx, inserter, conn, orders)
//	if errors.Is(err, pgbulk.ErrMappingNotFound) {
//	    // Register the type with the model first
//	}
var (
	// ErrNullArgument indicates a required argument (connection or record slice) was nil.
	ErrNullArgument = errors.New("required argument is nil")

	// ErrMappingNotFound indicates the model has no entity for the record type or table name.
	ErrMappingNotFound = errors.New("mapping not found")

	// ErrAccessorNotFound indicates a mapped property has no readable field on the record.
	ErrAccessorNotFound = errors.New("property accessor not found")

	// ErrChannelWrite indicates streaming rows into the COPY channel failed.
	// Nothing from the failed load is persisted.
	ErrChannelWrite = errors.New("bulk copy failed")

	// ErrNotReady indicates the connection could not be brought to the open state.
	ErrNotReady = errors.New("connection not ready")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnsupportedFormat indicates a records file has an extension no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported records format")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

var usageErrorPatterns = []string{
	"missing required argument",
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrUnsupportedFormat):
		return ExitConfigError
	case errors.Is(err, ErrMappingNotFound), errors.Is(err, ErrAccessorNotFound):
		return ExitMappingError
	case errors.Is(err, ErrConnectionFailed), errors.Is(err, ErrNotReady):
		return ExitConnectionError
	case errors.Is(err, ErrChannelWrite):
		return ExitCopyFailed
	}

	errStr := err.Error()
	for _, p := range usageErrorPatterns {
		if strings.HasPrefix(errStr, p) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
