package metadata

import (
	"fmt"
	"reflect"

	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/internal/typemap"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Option configures extraction.
type Option func(*options)

type options struct {
	logger pgbulk.Logger
}

// WithLogger reports recovered accessor misses to logger.
func WithLogger(logger pgbulk.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ForType extracts the columns for records of recordType.
//
// The schema and table are taken from the entity mapped to recordType.
// Pointer types resolve to their element type.
func ForType(model pgbulk.Model, recordType reflect.Type, resolver *typemap.Resolver) (*Table, error) {
	if model == nil || recordType == nil {
		return nil, pgbulk.ErrNullArgument
	}
	for recordType.Kind() == reflect.Pointer {
		recordType = recordType.Elem()
	}

	entity, ok := model.FindEntityType(recordType)
	if !ok {
		return nil, &MappingError{
			Entity:  recordType.String(),
			Message: "no entity is mapped to this type",
			Hint:    "Register the type with the model before loading it.",
			Err:     pgbulk.ErrMappingNotFound,
		}
	}

	table := &Table{Schema: entity.Schema, Name: entity.Table, Entity: entity}
	for _, p := range entity.Properties {
		if p.PrimaryKey {
			continue
		}
		index, found := fieldIndex(recordType, p.Name, p.Column)
		if !found {
			return nil, &MappingError{
				Entity:   entity.Name,
				Property: p.Name,
				Message:  fmt.Sprintf("type %s has no field for column %q", recordType, p.Column),
				Hint:     "The model and the record type disagree; rebuild the model from the type.",
				Err:      pgbulk.ErrAccessorNotFound,
			}
		}

		col, err := newColumn(entity, p, resolver)
		if err != nil {
			return nil, err
		}
		col.read = staticReader(index)
		table.Columns = append(table.Columns, col)
	}

	return table, nil
}

// ForTable extracts the columns for the entity mapped to tableName.
//
// When several entities map to the same table name, the one whose schema
// equals schema wins, otherwise the first registered. The returned table is
// qualified by schema as given, not by the entity's schema.
func ForTable(model pgbulk.Model, tableName, schema string, resolver *typemap.Resolver, opts ...Option) (*Table, error) {
	if model == nil {
		return nil, pgbulk.ErrNullArgument
	}
	o := buildOptions(opts)

	entity := findByTable(model, tableName, schema)
	if entity == nil {
		return nil, &MappingError{
			Entity:  tableName,
			Message: "no entity is mapped to this table",
			Hint:    "Check the table name against the model; names are case-sensitive.",
			Err:     pgbulk.ErrMappingNotFound,
		}
	}

	accessors := newDynamicAccessors(entity.Table, o.logger)
	table := &Table{Schema: schema, Name: tableName, Entity: entity}
	for _, p := range entity.Properties {
		if p.PrimaryKey {
			continue
		}
		col, err := newColumn(entity, p, resolver)
		if err != nil {
			return nil, err
		}
		col.read = accessors.reader(p.Name, p.Column)
		table.Columns = append(table.Columns, col)
	}

	return table, nil
}

func findByTable(model pgbulk.Model, tableName, schema string) *pgbulk.EntityType {
	var first *pgbulk.EntityType
	for _, e := range model.EntityTypes() {
		if e.Table != tableName {
			continue
		}
		if e.Schema == schema {
			return e
		}
		if first == nil {
			first = e
		}
	}
	return first
}

func newColumn(entity *pgbulk.EntityType, p *pgbulk.Property, resolver *typemap.Resolver) (*Column, error) {
	enc, err := encodingFor(entity, p, resolver)
	if err != nil {
		return nil, err
	}
	return &Column{
		Name:       p.Name,
		ColumnName: p.Column,
		Encoding:   enc,
		Nullable:   p.Nullable,
	}, nil
}

func encodingFor(entity *pgbulk.EntityType, p *pgbulk.Property, resolver *typemap.Resolver) (Encoding, error) {
	if p.GoType != nil {
		// the server rejects binary payloads laid out for another type,
		// e.g. float8 bytes for a numeric column
		if wt, ok := resolver.Resolve(p.GoType); ok && resolver.Compatible(uint32(wt), p.ColumnType) {
			return Wire(wt), nil
		}
	}

	if p.ColumnType == "" {
		return Encoding{}, &MappingError{
			Entity:   entity.Name,
			Property: p.Name,
			Message:  "no wire type for the property and no declared column type",
			Hint:     "Declare the column type, e.g. `dbtype:\"integer\"` or `type: integer` in the model file.",
			Err:      pgbulk.ErrMappingNotFound,
		}
	}
	return Declared(p.ColumnType), nil
}
