package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/internal/retry"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// tokenExpiryWarning is how close to expiry a freshly acquired token may be
// before a warning is logged; a long load can outlive it.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector authenticates with short-lived tokens (AWS IAM,
// Azure Entra ID) used as the PostgreSQL password. A fresh token is acquired
// on every attempt.
type TokenBasedConnector struct {
	config        *pgbulk.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        pgbulk.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error and warning messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *pgbulk.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger pgbulk.Logger) *TokenBasedConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: retry.NewDefaultExecutor(logger),
		providerName:  providerName,
		logger:        logger,
	}
}

// Connect acquires a token and opens a single connection with it.
func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	return retry.Do(ctx, c.retryExecutor, func(ctx context.Context) (*pgx.Conn, error) {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}
		c.logger.Verbose("acquired token from %s", c.tokenProvider)

		withToken := *c.config
		withToken.Password = token

		connConfig, err := pgx.ParseConfig(BuildConnectionString(&withToken))
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, pgbulk.ErrInvalidConfig)
		}
		configureConn(connConfig, c.logger)

		conn, err := pgx.ConnectConfig(ctx, connConfig)
		if err != nil {
			return nil, wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}
		return conn, nil
	})
}
