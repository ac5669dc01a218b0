package bulk_test

import (
	"context"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

type recordingImporter struct {
	rows      [][]any
	completed bool
	closed    bool
	failWrite bool
}

func (r *recordingImporter) StartRow() error {
	r.rows = append(r.rows, []any{})
	return nil
}

func (r *recordingImporter) WriteNull() error { return r.add(nil) }

func (r *recordingImporter) Write(value any, _ pgbulk.WireType) error { return r.add(value) }

func (r *recordingImporter) WriteAs(value any, _ string) error { return r.add(value) }

func (r *recordingImporter) add(v any) error {
	if r.failWrite {
		return errTestWrite
	}
	r.rows[len(r.rows)-1] = append(r.rows[len(r.rows)-1], v)
	return nil
}

func (r *recordingImporter) Complete() (int64, error) {
	r.completed = true
	return int64(len(r.rows)), nil
}

func (r *recordingImporter) Close() error {
	r.closed = true
	return nil
}

type recordingConnection struct {
	open     bool
	opened   int
	commands []string
	importer *recordingImporter
}

func newRecordingConnection() *recordingConnection {
	return &recordingConnection{importer: &recordingImporter{}}
}

func (c *recordingConnection) IsOpen() bool { return c.open }

func (c *recordingConnection) Open(context.Context) error {
	c.opened++
	c.open = true
	return nil
}

func (c *recordingConnection) BeginBinaryImport(_ context.Context, command string) (pgbulk.BinaryImporter, error) {
	c.commands = append(c.commands, command)
	return c.importer, nil
}
