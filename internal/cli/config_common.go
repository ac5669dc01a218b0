package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/internal/db"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	auth           string
	awsRegion      string
	googleInstance string
	azureTenantID  string
	azureClientID  string
}

func addConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format)\n"+
			"Mutually exclusive with --host, --port, --username\n"+
			"Alternative: DATABASE_URL environment variable")
	cmd.Flags().StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > pgbulk.yaml > localhost")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > pgbulk.yaml > 5432")
	cmd.Flags().StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	cmd.Flags().StringVarP(&f.database, "database", "d", "",
		"Target database (overrides the database of --connection)")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")
	cmd.Flags().StringVar(&f.auth, "auth", "",
		"Authentication method: standard|aws|google|azure (default: standard)")
	cmd.Flags().StringVar(&f.awsRegion, "aws-region", "",
		"AWS region for RDS IAM authentication (overrides $AWS_REGION)")
	cmd.Flags().StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")
	cmd.Flags().StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")

	_ = cmd.RegisterFlagCompletionFunc("sslmode", completeFrom(sslModes))
	_ = cmd.RegisterFlagCompletionFunc("auth", completeFrom(authMethods))
}

// resolveConnectionFromFlags resolves connection configuration from flags,
// the environment and project config.
func resolveConnectionFromFlags(f connectionFlags, projectCfg *config.ProjectConfig) (*pgbulk.ConnectionConfig, error) {
	flags := &db.ConnFlags{
		Host:           f.host,
		Port:           f.port,
		Username:       f.username,
		Database:       f.database,
		SSLMode:        f.sslMode,
		AuthMethod:     f.auth,
		AWSRegion:      f.awsRegion,
		GoogleInstance: f.googleInstance,
		AzureTenantID:  f.azureTenantID,
		AzureClientID:  f.azureClientID,
	}
	return db.ResolveConnectionParams(f.connection, flags, db.LoadFromEnvironment(), projectCfg)
}

// resolveEffectiveTimeout returns the effective timeout, preferring pgbulk.yaml if flag wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, projectCfg *config.ProjectConfig, flagTimeout time.Duration) (time.Duration, error) {
	if cmd.Flags().Changed("timeout") {
		return flagTimeout, nil
	}
	return projectCfg.TimeoutOrDefault(flagTimeout)
}

// loadProjectConfig loads .env and pgbulk.yaml from dir.
// Returns nil config if pgbulk.yaml does not exist (not an error).
func loadProjectConfig(dir string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(connConfig *pgbulk.ConnectionConfig) {
	fmt.Fprintf(os.Stderr, "[VERBOSE] Connection resolved:\n")
	fmt.Fprintf(os.Stderr, "  Host: %s\n", connConfig.Host)
	fmt.Fprintf(os.Stderr, "  Port: %d\n", connConfig.Port)
	fmt.Fprintf(os.Stderr, "  User: %s\n", connConfig.Username)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", connConfig.Database)
	fmt.Fprintf(os.Stderr, "  SSL Mode: %s\n", connConfig.SSLMode)
	fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", connConfig.AuthMethod)
}
