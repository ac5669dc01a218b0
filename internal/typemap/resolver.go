package typemap

import (
	"database/sql"
	"encoding/json"
	"math"
	"net/netip"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var knownTypes = map[reflect.Type]uint32{
	reflect.TypeOf(int16(0)):             pgtype.Int2OID,
	reflect.TypeOf(int32(0)):             pgtype.Int4OID,
	reflect.TypeOf(int64(0)):             pgtype.Int8OID,
	reflect.TypeOf(int(0)):               pgtype.Int8OID,
	reflect.TypeOf(int8(0)):              pgtype.Int2OID,
	reflect.TypeOf(uint8(0)):             pgtype.Int2OID,
	reflect.TypeOf(uint16(0)):            pgtype.Int4OID,
	reflect.TypeOf(uint32(0)):            pgtype.Int8OID,
	reflect.TypeOf(float32(0)):           pgtype.Float4OID,
	reflect.TypeOf(float64(0)):           pgtype.Float8OID,
	reflect.TypeOf(""):                   pgtype.TextOID,
	reflect.TypeOf(false):                pgtype.BoolOID,
	reflect.TypeOf([]byte(nil)):          pgtype.ByteaOID,
	reflect.TypeOf(time.Time{}):          pgtype.TimestamptzOID,
	reflect.TypeOf(time.Duration(0)):     pgtype.IntervalOID,
	reflect.TypeOf(uuid.UUID{}):          pgtype.UUIDOID,
	reflect.TypeOf([16]byte{}):           pgtype.UUIDOID,
	reflect.TypeOf(netip.Addr{}):         pgtype.InetOID,
	reflect.TypeOf(netip.Prefix{}):       pgtype.CIDROID,
	reflect.TypeOf(json.RawMessage{}):    pgtype.JSONBOID,
	reflect.TypeOf(pgtype.Numeric{}):     pgtype.NumericOID,
	reflect.TypeOf(pgtype.Date{}):        pgtype.DateOID,
	reflect.TypeOf(pgtype.Timestamp{}):   pgtype.TimestampOID,
	reflect.TypeOf(pgtype.Interval{}):    pgtype.IntervalOID,
	reflect.TypeOf(pgtype.Text{}):        pgtype.TextOID,
	reflect.TypeOf(pgtype.Int4{}):        pgtype.Int4OID,
	reflect.TypeOf(pgtype.Int8{}):        pgtype.Int8OID,
	reflect.TypeOf(pgtype.Bool{}):        pgtype.BoolOID,
	reflect.TypeOf(pgtype.Float8{}):      pgtype.Float8OID,
	reflect.TypeOf(pgtype.UUID{}):        pgtype.UUIDOID,
	reflect.TypeOf(pgtype.Timestamptz{}): pgtype.TimestamptzOID,
	reflect.TypeOf(sql.NullString{}):     pgtype.TextOID,
	reflect.TypeOf(sql.NullInt16{}):      pgtype.Int2OID,
	reflect.TypeOf(sql.NullInt32{}):      pgtype.Int4OID,
	reflect.TypeOf(sql.NullInt64{}):      pgtype.Int8OID,
	reflect.TypeOf(sql.NullFloat64{}):    pgtype.Float8OID,
	reflect.TypeOf(sql.NullBool{}):       pgtype.BoolOID,
	reflect.TypeOf(sql.NullTime{}):       pgtype.TimestamptzOID,
}

// Resolver maps Go types to PostgreSQL wire types.
//
// A Resolver is not safe for concurrent use; build one per load.
type Resolver struct {
	registry *pgtype.Map
	cache    map[reflect.Type]resolution
}

type resolution struct {
	oid uint32
	ok  bool
}

// NewResolver creates a Resolver backed by pgx's default type registry.
func NewResolver() *Resolver {
	return &Resolver{
		registry: pgtype.NewMap(),
		cache:    make(map[reflect.Type]resolution),
	}
}

// Resolve returns the wire type values of t should be encoded with.
// It reports false when no wire type applies and the column's declared type
// must be used instead, which is always the case for enumerations.
func (r *Resolver) Resolve(t reflect.Type) (pgbulk.WireType, bool) {
	if t == nil {
		return 0, false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if res, hit := r.cache[t]; hit {
		return pgbulk.WireType(res.oid), res.ok
	}

	res := r.resolve(t)
	r.cache[t] = res
	return pgbulk.WireType(res.oid), res.ok
}

func (r *Resolver) resolve(t reflect.Type) resolution {
	if oid, ok := knownTypes[t]; ok {
		return resolution{oid: oid, ok: true}
	}
	if IsEnum(t) {
		return resolution{}
	}
	if typ, ok := r.registry.TypeForValue(reflect.Zero(t).Interface()); ok {
		return resolution{oid: typ.OID, ok: true}
	}

	switch t.Kind() {
	case reflect.String:
		return resolution{oid: pgtype.TextOID, ok: true}
	case reflect.Bool:
		return resolution{oid: pgtype.BoolOID, ok: true}
	case reflect.Float32:
		return resolution{oid: pgtype.Float4OID, ok: true}
	case reflect.Float64:
		return resolution{oid: pgtype.Float8OID, ok: true}
	}
	return resolution{}
}

// IsEnum reports whether t is a named integer type declared in a package,
// the Go rendition of an enumeration. time.Duration and other types with a
// dedicated wire type are not enumerations.
func IsEnum(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if _, known := knownTypes[t]; known {
		return false
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// EnumValue converts an enumeration value to an int64, or to a uint64 when
// it does not fit, so the column codec range-checks it.
// Values of any other type are returned unchanged.
func EnumValue(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || !IsEnum(rv.Type()) {
		return v
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	default:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return u
		}
		return int64(u)
	}
}
