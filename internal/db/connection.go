package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pgbulk/internal/copyin"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var _ pgbulk.Connection = (*Connection)(nil)

// Connection is a pgbulk.Connection backed by a single pgx connection.
// It is opened lazily through its Connector on first use.
type Connection struct {
	mu        sync.Mutex
	connector pgbulk.Connector
	conn      *pgx.Conn
}

// NewConnection returns an unopened Connection that dials through connector.
func NewConnection(connector pgbulk.Connector) *Connection {
	return &Connection{connector: connector}
}

// Wrap adapts an already established pgx connection.
func Wrap(conn *pgx.Conn) *Connection {
	return &Connection{conn: conn}
}

func (c *Connection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.conn.IsClosed()
}

// Open dials the database. It is a no-op when the connection is already open.
func (c *Connection) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() {
		return nil
	}
	if c.connector == nil {
		return fmt.Errorf("connection is closed and has no connector: %w", pgbulk.ErrNotReady)
	}
	conn, err := c.connector.Connect(ctx)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// BeginBinaryImport starts COPY ... FROM STDIN BINARY on the open connection.
func (c *Connection) BeginBinaryImport(ctx context.Context, command string) (pgbulk.BinaryImporter, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil, pgbulk.ErrNotReady
	}
	return copyin.Begin(ctx, conn.PgConn(), conn.TypeMap(), command)
}

// Conn returns the underlying pgx connection, or nil when not open.
func (c *Connection) Conn() *pgx.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Close closes the pgx connection and releases connector resources such as
// the Cloud SQL dialer.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.conn != nil {
		errs = append(errs, c.conn.Close(ctx))
		c.conn = nil
	}
	if closer, ok := c.connector.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
