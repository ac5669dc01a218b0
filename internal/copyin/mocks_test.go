package copyin

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// fakeImporter records every call made on the channel.
type fakeImporter struct {
	calls     []string
	rows      [][]any
	completed bool
	closed    bool
	failOn    string
}

var _ pgbulk.BinaryImporter = (*fakeImporter)(nil)

func (f *fakeImporter) record(call string) error {
	f.calls = append(f.calls, call)
	if f.failOn != "" && f.failOn == call {
		return errors.New("injected failure on " + call)
	}
	return nil
}

func (f *fakeImporter) StartRow() error {
	f.rows = append(f.rows, nil)
	return f.record("StartRow")
}

func (f *fakeImporter) WriteNull() error {
	f.appendField(nil)
	return f.record("WriteNull")
}

func (f *fakeImporter) Write(value any, wt pgbulk.WireType) error {
	f.appendField(value)
	return f.record(fmt.Sprintf("Write(%d)", wt))
}

func (f *fakeImporter) WriteAs(value any, dataTypeName string) error {
	f.appendField(value)
	return f.record("WriteAs(" + dataTypeName + ")")
}

func (f *fakeImporter) Complete() (int64, error) {
	if err := f.record("Complete"); err != nil {
		return 0, err
	}
	f.completed = true
	return int64(len(f.rows)), nil
}

func (f *fakeImporter) Close() error {
	f.closed = true
	return nil
}

func (f *fakeImporter) appendField(v any) {
	if len(f.rows) == 0 {
		return
	}
	f.rows[len(f.rows)-1] = append(f.rows[len(f.rows)-1], v)
}

func (f *fakeImporter) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

// fakeConnection hands out a fakeImporter and records the command text.
type fakeConnection struct {
	open       bool
	openErr    error
	openCalls  int
	begins     int
	commands   []string
	importer   *fakeImporter
	beginError error
}

var _ pgbulk.Connection = (*fakeConnection)(nil)

func newFakeConnection() *fakeConnection {
	return &fakeConnection{open: true, importer: &fakeImporter{}}
}

func (c *fakeConnection) IsOpen() bool { return c.open }

func (c *fakeConnection) Open(ctx context.Context) error {
	c.openCalls++
	if c.openErr != nil {
		return c.openErr
	}
	c.open = true
	return nil
}

func (c *fakeConnection) BeginBinaryImport(ctx context.Context, command string) (pgbulk.BinaryImporter, error) {
	c.begins++
	c.commands = append(c.commands, command)
	if c.beginError != nil {
		return nil, c.beginError
	}
	return c.importer, nil
}

// fakeModel is a minimal pgbulk.Model over a fixed entity list.
type fakeModel struct {
	entities []*pgbulk.EntityType
}

func (m *fakeModel) FindEntityType(t reflect.Type) (*pgbulk.EntityType, bool) {
	for _, e := range m.entities {
		if e.GoType == t {
			return e, true
		}
	}
	return nil, false
}

func (m *fakeModel) EntityTypes() []*pgbulk.EntityType {
	return m.entities
}
