package pgbulk

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Load completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration, model or records file
	ExitConnectionError = 11 // Failed to connect to database
	ExitMappingError    = 12 // Record type or table not described by the model
	ExitCopyFailed      = 13 // COPY stream failed; nothing was persisted
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultLoadTimeout bounds a CLI load when no timeout is configured.
	DefaultLoadTimeout = 5 * time.Minute

	// DefaultSchema is used by the CLI when neither a flag nor the config names a schema.
	DefaultSchema = "public"

	// CopyFlushThreshold is the buffered byte count after which encoded rows
	// are pushed to the server.
	CopyFlushThreshold = 64 * 1024
)
