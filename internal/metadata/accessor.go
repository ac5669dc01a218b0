package metadata

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// fieldIndex finds the struct field backing a property: by field name first,
// then by the column name in a `db` tag. Promoted fields of embedded structs
// are found too.
func fieldIndex(t reflect.Type, property, column string) ([]int, bool) {
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	if f, ok := t.FieldByName(property); ok && f.IsExported() {
		return f.Index, true
	}
	return taggedField(t, column, nil)
}

func taggedField(t reflect.Type, column string, prefix []int) ([]int, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && f.Tag.Get("db") == "" {
				if idx, ok := taggedField(ft, column, index); ok {
					return idx, true
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		if name != "" && name == column {
			return index, true
		}
	}
	return nil, false
}

// staticReader reads a field at a fixed index path.
func staticReader(index []int) func(reflect.Value) (reflect.Value, bool) {
	return func(rv reflect.Value) (reflect.Value, bool) {
		fv, err := rv.FieldByIndexErr(index)
		if err != nil {
			// nil embedded pointer: the promoted field has no value
			return reflect.Value{}, false
		}
		return fv, true
	}
}

// dynamicAccessors resolves property readers per concrete record type.
type dynamicAccessors struct {
	mu     sync.Mutex
	table  string
	logger pgbulk.Logger
	cache  map[reflect.Type]map[string][]int
}

func newDynamicAccessors(table string, logger pgbulk.Logger) *dynamicAccessors {
	return &dynamicAccessors{
		table:  table,
		logger: logger,
		cache:  make(map[reflect.Type]map[string][]int),
	}
}

// reader returns the read func for one property of the table.
func (d *dynamicAccessors) reader(property, column string) func(reflect.Value) (reflect.Value, bool) {
	return func(rv reflect.Value) (reflect.Value, bool) {
		if rv.Kind() == reflect.Map {
			return mapValue(rv, property, column)
		}

		index, ok := d.lookup(rv.Type(), property, column)
		if !ok {
			return reflect.Value{}, false
		}
		fv, err := rv.FieldByIndexErr(index)
		if err != nil {
			return reflect.Value{}, false
		}
		return fv, true
	}
}

func (d *dynamicAccessors) lookup(t reflect.Type, property, column string) ([]int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fields, ok := d.cache[t]
	if !ok {
		fields = make(map[string][]int)
		d.cache[t] = fields
	}
	if index, seen := fields[property]; seen {
		return index, index != nil
	}

	index, found := fieldIndex(t, property, column)
	fields[property] = index
	if !found {
		err := &MappingError{
			Entity:   d.table,
			Property: property,
			Message:  fmt.Sprintf("type %s has no field for column %q, writing NULL", t, column),
			Err:      pgbulk.ErrAccessorNotFound,
		}
		d.logger.Verbose("%v", err)
	}
	return index, found
}

func mapValue(rv reflect.Value, property, column string) (reflect.Value, bool) {
	if rv.Type().Key().Kind() != reflect.String {
		return reflect.Value{}, false
	}
	for _, key := range []string{property, column} {
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if v.IsValid() {
			return v, true
		}
	}
	return reflect.Value{}, false
}

// normalize turns a field value into the value handed to the encoder.
func normalize(fv reflect.Value) (any, error) {
	for fv.Kind() == reflect.Interface || fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil, nil
		}
		if fv.Kind() == reflect.Pointer && fv.Type().Implements(valuerType) {
			break
		}
		fv = fv.Elem()
	}

	switch fv.Kind() {
	case reflect.Slice, reflect.Map:
		if fv.IsNil() {
			return nil, nil
		}
	}

	if !fv.CanInterface() {
		return nil, fmt.Errorf("field of type %s is not exported: %w", fv.Type(), pgbulk.ErrAccessorNotFound)
	}
	v := fv.Interface()

	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		if err != nil {
			return nil, err
		}
		if dv == nil {
			return nil, nil
		}
	}
	return v, nil
}
