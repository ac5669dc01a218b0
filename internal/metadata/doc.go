// Package metadata turns model descriptions into the ordered column list a
// bulk load writes.
//
// # Overview
//
// A load needs, for each insertable column of the target table, the physical
// column name, a way to read the value off a record and the encoding the value
// is written with. Extraction runs once per load and performs no I/O.
//
// Two lookups are supported:
//
//   - ForType finds the entity mapped to the record's Go type. Field accessors
//     are bound once, statically; a property with no field is an error.
//   - ForTable finds the entity by table name. Records may be of any concrete
//     type, including map[string]any. Accessors are resolved per concrete type
//     on first use and cached; a property a type cannot supply reads as NULL.
//
// Primary-key properties are never written: the database assigns them.
//
// # Encodings
//
// Every column carries exactly one of
//
//   - a wire type (PostgreSQL OID) resolved from the property's Go type, or
//   - the declared SQL column type, used for enumerations, properties without
//     a Go type, and integers whose Go width differs from the column's.
package metadata
