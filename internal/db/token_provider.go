package db

import (
	"context"
	"time"
)

// TokenProvider acquires short-lived credentials that stand in for the
// PostgreSQL password.
type TokenProvider interface {
	// GetToken returns a token and the time it stops being accepted.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for log output. It must not contain secrets.
	String() string
}

// AzurePostgreSQLScope is the Entra ID scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"
