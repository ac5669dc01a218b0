package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// ConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is deliberately not a flag: use $PGPASSWORD, ~/.pgpass
// or a connection string.
type ConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string

	AuthMethod     string
	AWSRegion      string
	GoogleInstance string
	AzureTenantID  string
	AzureClientID  string
}

// hasServerParams reports whether any flag naming the server was given.
// Database is excluded: it may refine a connection string.
func (f *ConnFlags) hasServerParams() bool {
	return f.Host != "" || f.Port != 0 || f.Username != "" || f.SSLMode != ""
}

// EnvVars represents PostgreSQL and cloud provider environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams resolves connection parameters with
// PostgreSQL-standard precedence:
//
//  1. --connection flag, parsed as is
//  2. DATABASE_URL, when no server flags were given
//  3. per parameter: flag > PG* environment variable > pgbulk.yaml > default
//
// A --database flag overrides the database of a connection string. The
// authentication method and its cloud parameters are resolved the same way,
// flag > environment > pgbulk.yaml.
func ResolveConnectionParams(
	connStringFlag string,
	flags *ConnFlags,
	env *EnvVars,
	projectConfig *config.ProjectConfig,
) (*pgbulk.ConnectionConfig, error) {
	if flags == nil {
		flags = &ConnFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && flags.hasServerParams() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/app\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U loader -d app\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=loader: %w",
			pgbulk.ErrInvalidConfig)
	}

	var cfg *pgbulk.ConnectionConfig
	var err error
	switch {
	case connStringFlag != "":
		cfg, err = ParseConnectionString(connStringFlag)
	case !flags.hasServerParams() && env.DATABASE_URL != "":
		cfg, err = ParseConnectionString(env.DATABASE_URL)
	default:
		cfg, err = resolveFromGranularParams(flags, env, pc)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid connection parameters: %w", err)
	}

	if flags.Database != "" {
		cfg.Database = flags.Database
	}
	if err := applyAuth(cfg, flags, env, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromGranularParams(flags *ConnFlags, env *EnvVars, pc config.ConnectionConfig) (*pgbulk.ConnectionConfig, error) {
	cfg := &pgbulk.ConnectionConfig{
		AuthMethod:       pgbulk.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, pc.Host, "localhost")
	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = env.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, pc.SSLMode, "prefer")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPORT, pgbulk.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	if cfg.Database == "" {
		return nil, fmt.Errorf("no database given (use -d, $PGDATABASE or %s): %w", config.ConfigFileName, pgbulk.ErrInvalidConfig)
	}
	return cfg, nil
}

// applyAuth selects the authentication method. Azure credentials in the
// environment imply Azure Entra ID when no method is named explicitly.
func applyAuth(cfg *pgbulk.ConnectionConfig, flags *ConnFlags, env *EnvVars, pc config.ConnectionConfig) error {
	method, err := pgbulk.ParseAuthMethod(firstNonEmpty(flags.AuthMethod, pc.AuthMethod))
	if err != nil {
		return err
	}

	cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
	cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET

	if method == pgbulk.AuthMethodStandard && flags.AuthMethod == "" && pc.AuthMethod == "" &&
		(cfg.AzureTenantID != "" || cfg.AzureClientID != "") {
		method = pgbulk.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
