// Package typemap resolves Go types to PostgreSQL wire types and normalizes
// declared SQL type names to the names pgx's type registry understands.
package typemap
