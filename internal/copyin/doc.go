// Package copyin writes records through PostgreSQL's binary COPY protocol.
//
// BuildCommand produces the COPY statement, StreamWriter the byte stream,
// Importer carries the stream to the server over a pgconn connection, and
// Execute drives a whole load from a column list produced by package metadata.
package copyin
