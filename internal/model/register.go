package model

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/vvka-141/pgbulk/internal/typemap"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// EntityOption overrides what Register derives from the type.
type EntityOption func(*pgbulk.EntityType)

// Table sets the table name.
func Table(name string) EntityOption {
	return func(e *pgbulk.EntityType) { e.Table = name }
}

// Schema sets the schema.
func Schema(name string) EntityOption {
	return func(e *pgbulk.EntityType) { e.Schema = name }
}

// Named sets the logical entity name.
func Named(name string) EntityOption {
	return func(e *pgbulk.EntityType) { e.Name = name }
}

type tableNamer interface{ TableName() string }

type schemaNamer interface{ TableSchema() string }

var valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// Register maps the struct type of sample to a table.
//
// Fields are read from exported struct fields, embedded structs flattened:
//
//	type Order struct {
//	    ID       int64   `db:"id,pk"`
//	    Number   int32   `db:"number"`
//	    Note     *string `db:"note" dbtype:"varchar(200)"`
//	    Internal string  `db:"-"`
//	}
//
// The column defaults to the snake_case field name, the declared type to the
// Go type's natural column type. A field named ID is the primary key unless
// another field is tagged pk. The table name comes from the Table option, a
// TableName() method, or the pluralized snake_case type name.
func (m *Model) Register(sample any, opts ...EntityOption) error {
	if sample == nil {
		return pgbulk.ErrNullArgument
	}
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("cannot register %s: not a struct: %w", t, pgbulk.ErrInvalidConfig)
	}

	e := &pgbulk.EntityType{
		Name:   t.Name(),
		GoType: t,
		Table:  pluralize(SnakeCase(t.Name())),
	}
	zero := reflect.New(t).Interface()
	if n, ok := zero.(tableNamer); ok {
		e.Table = n.TableName()
	}
	if n, ok := zero.(schemaNamer); ok {
		e.Schema = n.TableSchema()
	}
	for _, opt := range opts {
		opt(e)
	}

	resolver := typemap.NewResolver()
	props, err := structProperties(t, resolver)
	if err != nil {
		return fmt.Errorf("cannot register %s: %w", t, err)
	}
	e.Properties = props
	markDefaultKey(e.Properties)

	return m.Add(e)
}

// MustRegister is Register that panics on error, for package-level models.
func (m *Model) MustRegister(sample any, opts ...EntityOption) *Model {
	if err := m.Register(sample, opts...); err != nil {
		panic(err)
	}
	return m
}

func structProperties(t reflect.Type, resolver *typemap.Resolver) ([]*pgbulk.Property, error) {
	var props []*pgbulk.Property
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}

		if f.Anonymous && tag == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				embedded, err := structProperties(ft, resolver)
				if err != nil {
					return nil, err
				}
				props = append(props, embedded...)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}

		p, err := fieldProperty(f, tag, resolver)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}

func fieldProperty(f reflect.StructField, tag string, resolver *typemap.Resolver) (*pgbulk.Property, error) {
	p := &pgbulk.Property{
		Name:     f.Name,
		GoType:   f.Type,
		Column:   SnakeCase(f.Name),
		Nullable: nullableByDefault(f.Type),
	}

	name, flags, _ := strings.Cut(tag, ",")
	if name != "" {
		p.Column = name
	}
	for _, flag := range strings.Split(flags, ",") {
		switch strings.TrimSpace(flag) {
		case "":
		case "pk":
			p.PrimaryKey = true
		case "null":
			p.Nullable = true
		case "notnull":
			p.Nullable = false
		default:
			return nil, fmt.Errorf("field %s: unknown db tag option %q: %w", f.Name, flag, pgbulk.ErrInvalidConfig)
		}
	}

	p.ColumnType = f.Tag.Get("dbtype")
	if p.ColumnType == "" {
		p.ColumnType = resolver.DefaultColumnType(f.Type)
	}
	if p.ColumnType == "" {
		if _, ok := resolver.Resolve(f.Type); !ok {
			return nil, fmt.Errorf("field %s: no column type for %s, add a dbtype tag: %w",
				f.Name, f.Type, pgbulk.ErrInvalidConfig)
		}
	}
	return p, nil
}

func markDefaultKey(props []*pgbulk.Property) {
	for _, p := range props {
		if p.PrimaryKey {
			return
		}
	}
	for _, p := range props {
		if p.Name == "ID" {
			p.PrimaryKey = true
			return
		}
	}
}

func nullableByDefault(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return t.Implements(valuerType) || reflect.PointerTo(t).Implements(valuerType)
}

// SnakeCase converts a Go identifier to snake_case: "OrderID" -> "order_id".
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pluralize(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	default:
		return s + "s"
	}
}
