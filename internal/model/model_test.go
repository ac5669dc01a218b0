package model

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

type shipmentState int

type audit struct {
	CreatedAt time.Time
	CreatedBy string `db:"created_by,notnull"`
}

type shipment struct {
	ID         int64
	TrackingNo string `db:"tracking_no" dbtype:"varchar(40)"`
	Weight     float64
	State      shipmentState
	Note       *string
	Signature  sql.NullString
	Secret     string `db:"-"`
	audit
}

type category struct {
	Key  string `db:"key,pk"`
	ID   int32
	Name string
}

func (category) TableName() string   { return "categories_v2" }
func (category) TableSchema() string { return "catalog" }

func TestRegister_DerivesEntityFromStruct(t *testing.T) {
	m := New()
	require.NoError(t, m.Register(shipment{}))

	e, ok := m.FindEntityType(reflect.TypeOf(shipment{}))
	require.True(t, ok)
	assert.Equal(t, "shipment", e.Name)
	assert.Equal(t, "shipments", e.Table)
	assert.Equal(t, "", e.Schema)

	var columns []string
	for _, p := range e.Properties {
		columns = append(columns, p.Column)
	}
	assert.Equal(t, []string{"id", "tracking_no", "weight", "state", "note", "signature", "created_at", "created_by"}, columns)

	id, _ := e.FindProperty("ID")
	assert.True(t, id.PrimaryKey)
	assert.Equal(t, "bigint", id.ColumnType)

	tracking, _ := e.FindProperty("TrackingNo")
	assert.Equal(t, "varchar(40)", tracking.ColumnType)
	assert.False(t, tracking.Nullable)

	state, _ := e.FindProperty("State")
	assert.Equal(t, "integer", state.ColumnType)

	note, _ := e.FindProperty("Note")
	assert.True(t, note.Nullable)

	sig, _ := e.FindProperty("Signature")
	assert.True(t, sig.Nullable)

	createdBy, _ := e.FindProperty("CreatedBy")
	assert.False(t, createdBy.Nullable)

	_, found := e.FindProperty("Secret")
	assert.False(t, found)
}

func TestRegister_TableNameMethodsAndExplicitKey(t *testing.T) {
	m := New()
	require.NoError(t, m.Register(&category{}))

	e, ok := m.FindEntityType(reflect.TypeOf(category{}))
	require.True(t, ok)
	assert.Equal(t, "categories_v2", e.Table)
	assert.Equal(t, "catalog", e.Schema)

	key, _ := e.FindProperty("Key")
	id, _ := e.FindProperty("ID")
	assert.True(t, key.PrimaryKey)
	assert.False(t, id.PrimaryKey, "ID is an ordinary column when another field is tagged pk")
}

func TestRegister_Options(t *testing.T) {
	m := New()
	require.NoError(t, m.Register(shipment{}, Table("parcels"), Schema("logistics"), Named("parcel")))

	e := m.EntityTypes()[0]
	assert.Equal(t, "parcel", e.Name)
	assert.Equal(t, "logistics.parcels", e.QualifiedTable())
}

func TestRegister_Errors(t *testing.T) {
	m := New()
	assert.ErrorIs(t, m.Register(nil), pgbulk.ErrNullArgument)
	assert.ErrorIs(t, m.Register(42), pgbulk.ErrInvalidConfig)

	type badTag struct {
		A int32 `db:"a,unique"`
	}
	assert.ErrorIs(t, m.Register(badTag{}), pgbulk.ErrInvalidConfig)

	type untyped struct {
		C chan int
	}
	assert.ErrorIs(t, m.Register(untyped{}), pgbulk.ErrInvalidConfig)

	require.NoError(t, m.Register(shipment{}))
	assert.ErrorIs(t, m.Register(shipment{}, Table("other")), pgbulk.ErrInvalidConfig, "same type twice")

	type parcel struct{ Weight float64 }
	assert.ErrorIs(t, m.Register(parcel{}, Table("shipments")), pgbulk.ErrInvalidConfig, "same table twice")
}

func TestMustRegister_Panics(t *testing.T) {
	assert.Panics(t, func() { New().MustRegister("not a struct") })
	assert.NotPanics(t, func() { New().MustRegister(shipment{}) })
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"ID":          "id",
		"OrderID":     "order_id",
		"HTTPServer":  "http_server",
		"CreatedAt":   "created_at",
		"Line2":       "line2",
		"already_low": "already_low",
	}
	for in, want := range tests {
		if got := SnakeCase(in); got != want {
			t.Errorf("SnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPluralize(t *testing.T) {
	tests := map[string]string{
		"order":    "orders",
		"category": "categories",
		"day":      "days",
		"box":      "boxes",
		"address":  "addresses",
	}
	for in, want := range tests {
		if got := pluralize(in); got != want {
			t.Errorf("pluralize(%q) = %q, want %q", in, got, want)
		}
	}
}

const modelYAML = `
entities:
  - name: order
    table: orders
    schema: sales
    properties:
      - { name: id, type: bigint, primary_key: true }
      - { name: number, column: order_number, type: integer, nullable: false }
      - { name: note, type: varchar(200) }
  - name: order_archive
    table: orders
    schema: archive
    properties:
      - { name: number, type: integer }
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(modelYAML))
	require.NoError(t, err)

	entities := m.EntityTypes()
	require.Len(t, entities, 2)

	order := entities[0]
	assert.Equal(t, "sales.orders", order.QualifiedTable())
	assert.Nil(t, order.GoType)
	require.Len(t, order.Properties, 3)

	id := order.Properties[0]
	assert.True(t, id.PrimaryKey)
	assert.False(t, id.Nullable)

	number := order.Properties[1]
	assert.Equal(t, "order_number", number.Column)
	assert.False(t, number.Nullable)

	note := order.Properties[2]
	assert.Equal(t, "note", note.Column)
	assert.True(t, note.Nullable)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", "entities: [unclosed"},
		{"no entities", "entities: []"},
		{"missing type", "entities:\n  - name: a\n    properties:\n      - { name: x }"},
		{"duplicate column", "entities:\n  - name: a\n    properties:\n      - { name: x, type: text }\n      - { name: y, column: x, type: text }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, pgbulk.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(modelYAML), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, m.EntityTypes(), 2)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
