package bulk_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgbulk/internal/model"
	"github.com/vvka-141/pgbulk/pkg/bulk"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var errTestWrite = errors.New("write failed")

type priority int16

const (
	priorityLow priority = iota + 1
	priorityHigh
)

type ticket struct {
	ID       int64    `db:"id"`
	Title    string   `db:"title"`
	Assignee *string  `db:"assignee"`
	Priority priority `db:"priority" dbtype:"smallint"`
}

type ticketDraft struct {
	Title string
}

func ticketModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New()
	require.NoError(t, m.Register(ticket{}, model.Schema("support")))
	return m
}

func TestInsert_CopiesEveryRecordAndCountsNils(t *testing.T) {
	conn := newRecordingConnection()
	in := bulk.New(ticketModel(t))
	alice := "alice"

	n, err := bulk.Insert(context.Background(), in, conn, []*ticket{
		{Title: "printer on fire", Assignee: &alice, Priority: priorityHigh},
		nil,
		{Title: "coffee machine", Priority: priorityLow},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, conn.opened)
	require.Len(t, conn.commands, 1)
	assert.Equal(t, `COPY "support"."tickets" ("title", "assignee", "priority") FROM STDIN BINARY;`, conn.commands[0])

	require.Len(t, conn.importer.rows, 2)
	assert.Equal(t, []any{"printer on fire", "alice", int64(2)}, conn.importer.rows[0])
	assert.Equal(t, []any{"coffee machine", nil, int64(1)}, conn.importer.rows[1])
	assert.True(t, conn.importer.completed)
	assert.True(t, conn.importer.closed)
}

func TestInsert_NullArguments(t *testing.T) {
	in := bulk.New(ticketModel(t))

	_, err := bulk.Insert[ticket](context.Background(), in, nil, []ticket{{}})
	assert.ErrorIs(t, err, pgbulk.ErrNullArgument)

	_, err = bulk.Insert[ticket](context.Background(), in, newRecordingConnection(), nil)
	assert.ErrorIs(t, err, pgbulk.ErrNullArgument)
}

func TestInsert_EmptyBatchTouchesNothing(t *testing.T) {
	conn := newRecordingConnection()
	n, err := bulk.Insert(context.Background(), bulk.New(model.New()), conn, []ticketDraft{})

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, conn.opened)
	assert.Empty(t, conn.commands)
}

func TestInsert_UnmappedTypeOpensNoChannel(t *testing.T) {
	conn := newRecordingConnection()
	_, err := bulk.Insert(context.Background(), bulk.New(ticketModel(t)), conn, []ticketDraft{{Title: "x"}})

	assert.ErrorIs(t, err, pgbulk.ErrMappingNotFound)
	assert.Zero(t, conn.opened)
	assert.Empty(t, conn.commands)
}

func TestInsert_WriteFailureNeverCompletes(t *testing.T) {
	conn := newRecordingConnection()
	conn.importer.failWrite = true

	_, err := bulk.Insert(context.Background(), bulk.New(ticketModel(t)), conn, []ticket{{Title: "x"}})

	assert.ErrorIs(t, err, pgbulk.ErrChannelWrite)
	assert.False(t, conn.importer.completed)
	assert.True(t, conn.importer.closed)
}

func TestInsertTable_MixedRecordsUseCallerSchema(t *testing.T) {
	conn := newRecordingConnection()
	in := bulk.New(ticketModel(t))

	records := []any{
		ticketDraft{Title: "from draft"},
		map[string]any{"title": "from map", "assignee": "bob"},
		nil,
	}
	n, err := bulk.InsertTable(context.Background(), in, conn, "tickets", records, "archive")

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, `COPY "archive"."tickets" ("title", "assignee", "priority") FROM STDIN BINARY;`, conn.commands[0])
	require.Len(t, conn.importer.rows, 2)
	assert.Equal(t, []any{"from draft", nil, nil}, conn.importer.rows[0])
	assert.Equal(t, []any{"from map", "bob", nil}, conn.importer.rows[1])
}

func TestInsertTable_UnknownTable(t *testing.T) {
	conn := newRecordingConnection()
	_, err := bulk.InsertTable(context.Background(), bulk.New(ticketModel(t)), conn, "invoices", []any{map[string]any{}}, "")

	assert.ErrorIs(t, err, pgbulk.ErrMappingNotFound)
	assert.Zero(t, conn.opened)
}
