// Package bulk loads collections of records into PostgreSQL tables through
// the binary COPY protocol, driven by a model describing tables and columns.
//
//	m := model.New()
//	if err := m.Register(Order{}); err != nil { ... }
//
//	in := bulk.New(m, bulk.WithLogger(logger))
//	n, err := bulk.Insert(ctx, in, conn, orders)
//
// A load is all-or-nothing: rows become visible only when the whole batch has
// been streamed and the server accepted it.
package bulk

import (
	"context"
	"reflect"

	"github.com/vvka-141/pgbulk/internal/copyin"
	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/internal/metadata"
	"github.com/vvka-141/pgbulk/internal/typemap"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Inserter runs bulk loads against a model. It is safe for concurrent use
// as long as each load uses its own connection.
type Inserter struct {
	model  pgbulk.Model
	logger pgbulk.Logger
}

// Option configures an Inserter.
type Option func(*Inserter)

// WithLogger sets the logger loads report to. The default discards output.
func WithLogger(logger pgbulk.Logger) Option {
	return func(in *Inserter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// New creates an Inserter for model.
func New(model pgbulk.Model, opts ...Option) *Inserter {
	in := &Inserter{
		model:  model,
		logger: logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Insert copies records into the table the model maps T to and returns
// len(records), nil records included.
//
// A closed conn is opened first and left open afterwards.
func Insert[T any](ctx context.Context, in *Inserter, conn pgbulk.Connection, records []T) (int, error) {
	if in == nil || conn == nil || records == nil {
		return 0, pgbulk.ErrNullArgument
	}
	if len(records) == 0 {
		return 0, nil
	}

	table, err := metadata.ForType(in.model, reflect.TypeFor[T](), typemap.NewResolver())
	if err != nil {
		return 0, err
	}
	in.logger.Verbose("loading %d %s records into %s", len(records), table.Entity.Name, table.Entity.QualifiedTable())

	return copyin.Execute(ctx, conn, records, table, in.logger)
}

// InsertTable copies records into tableName, qualified by schema, using the
// columns of the model entity mapped to that table. Records may be of any
// type; properties a record cannot supply are written as NULL.
func InsertTable[T any](ctx context.Context, in *Inserter, conn pgbulk.Connection, tableName string, records []T, schema string) (int, error) {
	if in == nil || conn == nil || records == nil {
		return 0, pgbulk.ErrNullArgument
	}
	if len(records) == 0 {
		return 0, nil
	}

	table, err := metadata.ForTable(in.model, tableName, schema, typemap.NewResolver(), metadata.WithLogger(in.logger))
	if err != nil {
		return 0, err
	}
	in.logger.Verbose("loading %d records into %s using entity %s", len(records), tableName, table.Entity.Name)

	return copyin.Execute(ctx, conn, records, table, in.logger)
}
