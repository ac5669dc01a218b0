// Package records reads loosely typed records from files for the load command.
//
// Every record is a map[string]any keyed by property or column name. The
// format is chosen by file extension; a trailing .gz or .zst is decompressed
// first, so "customers.csv.zst" is read as zstd-compressed CSV.
package records
