package pgbulk

import "reflect"

// Model describes how record types correspond to tables and columns.
type Model interface {
	// FindEntityType returns the entity mapped to the Go type t.
	FindEntityType(t reflect.Type) (*EntityType, bool)

	// EntityTypes returns every mapped entity in registration order.
	EntityTypes() []*EntityType
}

// EntityType maps one record type to one table.
type EntityType struct {
	// Name is the logical entity name.
	Name string

	// GoType is the mapped struct type. It is nil for entities described
	// without a Go type (YAML models), which can only be loaded by table name.
	GoType reflect.Type

	Table  string
	Schema string

	Properties []*Property
}

// Property maps one record field to one column.
type Property struct {
	// Name is the logical property name, usually the Go field name.
	Name string

	// GoType is the field's type, nil when unknown.
	GoType reflect.Type

	// Column is the physical column name.
	Column string

	// ColumnType is the declared SQL type of the column, e.g. "varchar(40)".
	ColumnType string

	PrimaryKey bool
	Nullable   bool
}

// QualifiedTable returns "schema.table", or just the table when no schema is set.
func (e *EntityType) QualifiedTable() string {
	if e.Schema == "" {
		return e.Table
	}
	return e.Schema + "." + e.Table
}

// FindProperty returns the property with the given logical name.
func (e *EntityType) FindProperty(name string) (*Property, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}
