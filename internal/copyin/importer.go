package copyin

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var _ pgbulk.BinaryImporter = (*Importer)(nil)

var (
	errCopyAborted = errors.New("bulk copy aborted before completion")
	errClosed      = errors.New("bulk copy channel is closed")
)

type importerState int

const (
	stateOpen importerState = iota
	stateCompleted
	stateClosed
)

// Importer streams a binary COPY to the server through pgconn.
//
// Rows are buffered and pushed through a pipe that pgconn's CopyFrom reads
// from in its own goroutine. Closing the pipe with an error makes pgconn send
// CopyFail, so the server discards everything written so far.
type Importer struct {
	stream    *StreamWriter
	pw        *io.PipeWriter
	threshold int

	done   chan struct{}
	tag    pgconn.CommandTag
	result error

	state importerState
}

// Begin issues command on conn and returns an open channel for it.
// The channel must be completed or closed.
func Begin(ctx context.Context, conn *pgconn.PgConn, typeMap *pgtype.Map, command string) (*Importer, error) {
	if conn == nil || typeMap == nil {
		return nil, pgbulk.ErrNullArgument
	}
	if conn.IsClosed() {
		return nil, pgbulk.ErrNotReady
	}

	pr, pw := io.Pipe()
	imp := &Importer{
		stream:    NewStreamWriter(typeMap),
		pw:        pw,
		threshold: pgbulk.CopyFlushThreshold,
		done:      make(chan struct{}),
	}

	go func() {
		defer close(imp.done)
		imp.tag, imp.result = conn.CopyFrom(ctx, pr, command)
		if imp.result != nil {
			pr.CloseWithError(imp.result)
		} else {
			pr.CloseWithError(errClosed)
		}
	}()

	return imp, nil
}

// StartRow begins a new tuple, flushing buffered rows when enough have accumulated.
func (i *Importer) StartRow() error {
	if i.state != stateOpen {
		return errClosed
	}
	i.stream.EndRow()
	if i.stream.Len() >= i.threshold {
		if err := i.flush(); err != nil {
			return err
		}
	}
	return i.stream.StartRow()
}

func (i *Importer) WriteNull() error {
	if i.state != stateOpen {
		return errClosed
	}
	return i.stream.WriteNull()
}

func (i *Importer) Write(value any, wt pgbulk.WireType) error {
	if i.state != stateOpen {
		return errClosed
	}
	return i.stream.Write(value, uint32(wt))
}

func (i *Importer) WriteAs(value any, dataTypeName string) error {
	if i.state != stateOpen {
		return errClosed
	}
	return i.stream.WriteAs(value, dataTypeName)
}

// Complete sends the trailer and waits for the server to confirm the load.
func (i *Importer) Complete() (int64, error) {
	if i.state != stateOpen {
		return 0, errClosed
	}

	i.stream.Finish()
	if err := i.flush(); err != nil {
		return 0, err
	}

	i.pw.Close()
	<-i.done
	i.state = stateCompleted

	if i.result != nil {
		return 0, fmt.Errorf("server rejected copy: %w", i.result)
	}
	return i.tag.RowsAffected(), nil
}

// Close aborts the load unless Complete succeeded. It waits for pgconn to
// finish the exchange so the connection can be reused.
func (i *Importer) Close() error {
	if i.state != stateOpen {
		i.state = stateClosed
		return nil
	}
	i.pw.CloseWithError(errCopyAborted)
	<-i.done
	i.state = stateClosed
	return nil
}

func (i *Importer) flush() error {
	if i.stream.Len() == 0 {
		return nil
	}
	if _, err := i.pw.Write(i.stream.Bytes()); err != nil {
		return err
	}
	i.stream.Reset()
	return nil
}
