package pgbulk

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// WireType is a PostgreSQL type OID. It selects the binary layout a value is
// encoded with on the COPY stream.
type WireType uint32

// BinaryImporter is an open COPY ... FROM STDIN BINARY channel.
//
// A row is opened with StartRow and receives exactly one write per column of
// the command the channel was opened for. Nothing becomes visible until
// Complete succeeds; Close on a channel that was not completed aborts the load.
type BinaryImporter interface {
	// StartRow begins a new tuple.
	StartRow() error

	// WriteNull writes an explicit NULL for the next column.
	WriteNull() error

	// Write encodes value using the binary format of the given wire type.
	Write(value any, wt WireType) error

	// WriteAs encodes value using the binary format of a declared SQL type name
	// such as "integer" or "character varying(40)".
	WriteAs(value any, dataTypeName string) error

	// Complete finishes the stream and returns the row count reported by the server.
	Complete() (int64, error)

	// Close releases the channel. Closing an uncompleted channel aborts the load.
	// Close is safe to call more than once.
	Close() error
}

// Connection is the handle bulk loads are streamed through.
// Implementations are not safe for concurrent bulk loads.
type Connection interface {
	// IsOpen reports whether the connection is established.
	IsOpen() bool

	// Open establishes the connection. Opening an already open connection is a no-op.
	Open(ctx context.Context) error

	// BeginBinaryImport starts a binary COPY for the given command text.
	BeginBinaryImport(ctx context.Context, command string) (BinaryImporter, error)
}

// Connector is a unified interface for establishing database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens, Cloud SQL dialers).
type Connector interface {
	// Connect establishes a single connection to the database.
	// The returned connection should be closed by the caller when done.
	Connect(ctx context.Context) (*pgx.Conn, error)
}
