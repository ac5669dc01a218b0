package metadata

import (
	"fmt"
	"reflect"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Encoding selects how a column's values are written: with a resolved wire
// type, or with the column's declared SQL type.
type Encoding struct {
	wire     pgbulk.WireType
	hasWire  bool
	declared string
}

// Wire returns an encoding that writes values as the given wire type.
func Wire(wt pgbulk.WireType) Encoding {
	return Encoding{wire: wt, hasWire: true}
}

// Declared returns an encoding that writes values as the given SQL type.
func Declared(typeName string) Encoding {
	return Encoding{declared: typeName}
}

// WireType returns the wire type and true, or false for declared encodings.
func (e Encoding) WireType() (pgbulk.WireType, bool) {
	return e.wire, e.hasWire
}

// DeclaredType returns the SQL type name of a declared encoding.
func (e Encoding) DeclaredType() string {
	return e.declared
}

func (e Encoding) String() string {
	if e.hasWire {
		return fmt.Sprintf("oid:%d", e.wire)
	}
	return e.declared
}

// Column describes one written column. Columns are immutable once built.
type Column struct {
	// Name is the logical property name.
	Name string

	// ColumnName is the physical column name used in the COPY command.
	ColumnName string

	Encoding Encoding
	Nullable bool

	read func(record reflect.Value) (reflect.Value, bool)
}

// Value reads the column's value off record. It returns nil for NULL: nil
// pointers, slices, maps and interfaces, driver.Valuer values reporting nil,
// and properties the record's type cannot supply.
func (c *Column) Value(record any) (any, error) {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("column %s: record is nil: %w", c.ColumnName, pgbulk.ErrNullArgument)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, fmt.Errorf("column %s: record is nil: %w", c.ColumnName, pgbulk.ErrNullArgument)
	}

	fv, ok := c.read(rv)
	if !ok {
		return nil, nil
	}
	return normalize(fv)
}

// Table is the result of extraction: where to write and what.
type Table struct {
	Schema  string
	Name    string
	Columns []*Column

	// Entity is the model entity the table was extracted from.
	Entity *pgbulk.EntityType
}

// ColumnNames returns the physical column names in write order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.ColumnName
	}
	return names
}
