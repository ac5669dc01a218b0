package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/internal/retry"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var (
	_ pgbulk.Connector = (*StandardConnector)(nil)
	_ pgbulk.Connector = (*TokenBasedConnector)(nil)
	_ pgbulk.Connector = (*GoogleCloudSQLConnector)(nil)
)

// StandardConnector connects with username/password authentication and
// retries transient failures.
type StandardConnector struct {
	config        *pgbulk.ConnectionConfig
	retryExecutor *retry.Executor
	logger        pgbulk.Logger
}

// NewStandardConnector creates a StandardConnector. Retry behavior uses the
// pgbulk defaults; retries are reported to logger.
func NewStandardConnector(config *pgbulk.ConnectionConfig, logger pgbulk.Logger) *StandardConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &StandardConnector{
		config:        config,
		retryExecutor: retry.NewDefaultExecutor(logger),
		logger:        logger,
	}
}

// Connect opens a single connection.
func (c *StandardConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	connConfig, err := pgx.ParseConfig(BuildConnectionString(c.config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, pgbulk.ErrInvalidConfig)
	}
	configureConn(connConfig, c.logger)

	return retry.Do(ctx, c.retryExecutor, func(ctx context.Context) (*pgx.Conn, error) {
		conn, err := pgx.ConnectConfig(ctx, connConfig)
		if err != nil {
			return nil, wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}
		return conn, nil
	})
}

// configureConn routes server notices to the logger.
func configureConn(connConfig *pgx.ConnConfig, logger pgbulk.Logger) {
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("server notice: %s", notice.Message)
	}
}

// NewConnector creates the Connector matching config.AuthMethod.
func NewConnector(config *pgbulk.ConnectionConfig, logger pgbulk.Logger) (pgbulk.Connector, error) {
	if config == nil {
		return nil, pgbulk.ErrNullArgument
	}
	switch config.AuthMethod {
	case pgbulk.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case pgbulk.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case pgbulk.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case pgbulk.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, pgbulk.ErrUnsupportedAuthMethod)
	}
}

func newAWSConnector(config *pgbulk.ConnectionConfig, logger pgbulk.Logger) (pgbulk.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)
	provider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, err
	}
	return NewTokenBasedConnector(config, provider, "AWS IAM", logger), nil
}

func newGoogleConnector(config *pgbulk.ConnectionConfig, logger pgbulk.Logger) (pgbulk.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", pgbulk.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", pgbulk.ErrInvalidConfig)
	}
	return NewGoogleCloudSQLConnector(config, logger), nil
}

// newAzureConnector uses Service Principal auth when tenant, client and
// secret are all known, otherwise the DefaultAzureCredential chain.
func newAzureConnector(config *pgbulk.ConnectionConfig, logger pgbulk.Logger) (pgbulk.Connector, error) {
	var provider TokenProvider
	var err error
	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		provider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	} else {
		provider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, err
	}
	return NewTokenBasedConnector(config, provider, "Azure", logger), nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection`, addr, host, port)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		hint = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, host)

	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username
  - Expired cloud IAM token`, database)

	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf(`database "%s" does not exist

pgbulk loads into existing tables only. Create the database and schema first.`, database)

	case strings.Contains(errStr, "too many connections"):
		hint = fmt.Sprintf(`too many connections to database "%s"

The server's max_connections limit was reached. Retry later or free idle sessions.`, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)`

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", pgbulk.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%s\n\nOriginal error: %w: %w", hint, pgbulk.ErrConnectionFailed, err)
}
