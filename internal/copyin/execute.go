package copyin

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/internal/metadata"
	"github.com/vvka-141/pgbulk/internal/typemap"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Execute streams records into table over conn and returns len(records).
//
// Nil records are skipped but still counted. A closed connection is opened
// first. The channel is completed only after every row was written; on any
// failure it is closed uncompleted and nothing is persisted.
func Execute[T any](ctx context.Context, conn pgbulk.Connection, records []T, table *metadata.Table, logger pgbulk.Logger) (int, error) {
	if conn == nil || records == nil {
		return 0, pgbulk.ErrNullArgument
	}
	if len(records) == 0 {
		return 0, nil
	}
	if table == nil || len(table.Columns) == 0 {
		return 0, fmt.Errorf("no insertable columns: %w", pgbulk.ErrMappingNotFound)
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	if err := ensureOpen(ctx, conn); err != nil {
		return 0, err
	}

	command := BuildCommand(table.Schema, table.Name, table.ColumnNames())
	logger.Verbose("%s", command)

	importer, err := conn.BeginBinaryImport(ctx, command)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", pgbulk.ErrChannelWrite, err)
	}
	defer importer.Close()

	skipped := 0
	for i, record := range records {
		if isNilRecord(record) {
			skipped++
			continue
		}
		if err := writeRow(importer, record, table.Columns); err != nil {
			return 0, fmt.Errorf("record %d: %w: %w", i, pgbulk.ErrChannelWrite, err)
		}
	}

	rows, err := importer.Complete()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", pgbulk.ErrChannelWrite, err)
	}

	logger.Verbose("copied %d rows into %s (%d nil records skipped)", rows, table.Name, skipped)
	return len(records), nil
}

func ensureOpen(ctx context.Context, conn pgbulk.Connection) error {
	if conn.IsOpen() {
		return nil
	}
	if err := conn.Open(ctx); err != nil {
		return fmt.Errorf("%w: %w", pgbulk.ErrNotReady, err)
	}
	if !conn.IsOpen() {
		return pgbulk.ErrNotReady
	}
	return nil
}

func writeRow(importer pgbulk.BinaryImporter, record any, columns []*metadata.Column) error {
	if err := importer.StartRow(); err != nil {
		return err
	}
	for _, col := range columns {
		value, err := col.Value(record)
		if err != nil {
			return err
		}
		if value == nil {
			if err := importer.WriteNull(); err != nil {
				return fmt.Errorf("column %s: %w", col.ColumnName, err)
			}
			continue
		}

		if wt, ok := col.Encoding.WireType(); ok {
			err = importer.Write(value, wt)
		} else {
			err = importer.WriteAs(typemap.EnumValue(value), col.Encoding.DeclaredType())
		}
		if err != nil {
			return fmt.Errorf("column %s: %w", col.ColumnName, err)
		}
	}
	return nil
}

func isNilRecord(record any) bool {
	if record == nil {
		return true
	}
	rv := reflect.ValueOf(record)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		return rv.IsNil()
	}
	return false
}
