package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// GoogleCloudSQLConnector connects to Google Cloud SQL with IAM database
// authentication through the Cloud SQL Go Connector, which handles the
// token, TLS and instance addressing.
//
// Close must be called once the connection is closed to release the dialer.
type GoogleCloudSQLConnector struct {
	config *pgbulk.ConnectionConfig
	logger pgbulk.Logger
	dialer *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector creates a connector for config.GoogleInstance,
// the instance connection name in format project:region:instance.
func NewGoogleCloudSQLConnector(config *pgbulk.ConnectionConfig, logger pgbulk.Logger) *GoogleCloudSQLConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &GoogleCloudSQLConnector{config: config, logger: logger}
}

// Connect opens a single connection through the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", pgbulk.ErrConnectionFailed, err)
	}

	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable",
		c.config.GoogleInstance, c.config.Username, c.config.Database)
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, pgbulk.ErrInvalidConfig)
	}
	connConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, c.config.GoogleInstance)
	}
	configureConn(connConfig, c.logger)

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w: %w", c.config.GoogleInstance, pgbulk.ErrConnectionFailed, err)
	}

	c.dialer = dialer
	return conn, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		err := c.dialer.Close()
		c.dialer = nil
		return err
	}
	return nil
}
