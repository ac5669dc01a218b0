package typemap

import (
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

var typeSynonyms = map[string]string{
	"integer":                     "int4",
	"int":                         "int4",
	"serial":                      "int4",
	"serial4":                     "int4",
	"smallint":                    "int2",
	"smallserial":                 "int2",
	"serial2":                     "int2",
	"bigint":                      "int8",
	"bigserial":                   "int8",
	"serial8":                     "int8",
	"real":                        "float4",
	"double precision":            "float8",
	"float":                       "float8",
	"decimal":                     "numeric",
	"character varying":           "varchar",
	"character":                   "bpchar",
	"char":                        "bpchar",
	"boolean":                     "bool",
	"timestamp with time zone":    "timestamptz",
	"timestamp without time zone": "timestamp",
	"time without time zone":      "time",
	"time with time zone":         "timetz",
}

// NormalizeTypeName maps an SQL type spelling to the name pgx registers the
// type under: "character varying(40)" becomes "varchar", "integer[]" becomes
// "_int4". Unknown names are returned lowercased and trimmed.
func NormalizeTypeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	array := false
	if strings.HasSuffix(name, "[]") {
		array = true
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
	}

	name = stripModifiers(name)
	if canonical, ok := typeSynonyms[name]; ok {
		name = canonical
	}

	if array {
		return "_" + name
	}
	return name
}

// stripModifiers removes length/precision modifiers: "numeric(10, 2)" -> "numeric",
// "timestamp(3) with time zone" -> "timestamp with time zone".
func stripModifiers(name string) string {
	for {
		open := strings.IndexByte(name, '(')
		if open < 0 {
			break
		}
		end := strings.IndexByte(name[open:], ')')
		if end < 0 {
			name = name[:open]
			break
		}
		name = name[:open] + name[open+end+1:]
	}
	return strings.Join(strings.Fields(name), " ")
}

var columnTypeNames = map[uint32]string{
	pgtype.Int2OID:        "smallint",
	pgtype.Int4OID:        "integer",
	pgtype.Int8OID:        "bigint",
	pgtype.Float4OID:      "real",
	pgtype.Float8OID:      "double precision",
	pgtype.TextOID:        "text",
	pgtype.VarcharOID:     "varchar",
	pgtype.BoolOID:        "boolean",
	pgtype.ByteaOID:       "bytea",
	pgtype.TimestamptzOID: "timestamp with time zone",
	pgtype.TimestampOID:   "timestamp",
	pgtype.DateOID:        "date",
	pgtype.IntervalOID:    "interval",
	pgtype.UUIDOID:        "uuid",
	pgtype.InetOID:        "inet",
	pgtype.CIDROID:        "cidr",
	pgtype.JSONOID:        "json",
	pgtype.JSONBOID:       "jsonb",
	pgtype.NumericOID:     "numeric",
}

// DefaultColumnType returns the SQL type a column holding values of t is
// declared with when the model does not say otherwise. Enumerations are
// stored as integers. It returns "" when no sensible default exists.
func (r *Resolver) DefaultColumnType(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if IsEnum(t) {
		return "integer"
	}
	oid, ok := r.Resolve(t)
	if !ok {
		return ""
	}
	if name, ok := columnTypeNames[uint32(oid)]; ok {
		return name
	}
	if typ, ok := r.registry.TypeForOID(uint32(oid)); ok {
		return typ.Name
	}
	return ""
}

// binaryFamilies groups wire types whose binary representations a server
// column of any member type accepts.
var binaryFamilies = map[uint32]string{
	pgtype.TextOID:        "text",
	pgtype.VarcharOID:     "text",
	pgtype.BPCharOID:      "text",
	pgtype.NameOID:        "text",
	pgtype.TimestamptzOID: "timestamp",
	pgtype.TimestampOID:   "timestamp",
}

// Compatible reports whether a value encoded as oid can be received by a
// column declared as columnType. Empty declarations and types the registry
// does not know are taken as compatible.
func (r *Resolver) Compatible(oid uint32, columnType string) bool {
	name := NormalizeTypeName(columnType)
	if name == "" {
		return true
	}
	typ, ok := r.registry.TypeForName(name)
	if !ok || typ.OID == oid {
		return true
	}
	family, ok := binaryFamilies[oid]
	return ok && family == binaryFamilies[typ.OID]
}
