package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgbulk/internal/copyin"
	"github.com/vvka-141/pgbulk/internal/db"
	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/internal/metadata"
	"github.com/vvka-141/pgbulk/internal/model"
	"github.com/vvka-141/pgbulk/internal/records"
	"github.com/vvka-141/pgbulk/internal/tui"
	"github.com/vvka-141/pgbulk/internal/typemap"
	"github.com/vvka-141/pgbulk/pkg/bulk"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var loadCmd = &cobra.Command{
	Use:   "load <records_file>",
	Short: "Load a records file into a table",
	Long: `Load reads records from a file and copies them into a PostgreSQL table in a
single binary COPY stream.

The table must be described by the model: each model property names a column
and its declared type. Properties missing from a record are written as NULL.
Null entries in the records file are skipped but still counted.

Supported record files:
  .json, .yaml, .yml   a list of mappings, or a mapping with a "records" list
  .csv                 header row with property names, empty cells are NULL
  .xlsx                first sheet, header row with property names
  any of the above with a trailing .gz or .zst is decompressed first

Password Authentication:
  Password is NOT accepted as a CLI flag. Use $PGPASSWORD, ~/.pgpass or a
  connection string.

Examples:
  # Load a CSV file into public.orders
  pgbulk load orders.csv --table orders --model model.yaml -d shop

  # Load compressed JSON into a schema-qualified table
  pgbulk load events.json.zst --table events --schema audit -d shop

  # Show the COPY command and column encodings without connecting
  pgbulk load orders.csv --table orders --model model.yaml --dry-run`,
	Args:              RequireRecordsFile,
	ValidArgsFunction: completeRecordFiles,
	RunE:              runLoad,
}

type loadFlagValues struct {
	conn    connectionFlags
	table   string
	schema  string
	model   string
	dryRun  bool
	timeout time.Duration
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)

	addConnectionFlags(loadCmd, &loadFlags.conn)

	loadCmd.Flags().StringVarP(&loadFlags.table, "table", "t", "",
		"Target table, matched against the table names of the model")
	loadCmd.Flags().StringVarP(&loadFlags.schema, "schema", "s", "",
		"Schema qualifying the target table (default: pgbulk.yaml load.schema, or public)")
	loadCmd.Flags().StringVarP(&loadFlags.model, "model", "m", "",
		"YAML model file (default: pgbulk.yaml load.model)")
	loadCmd.Flags().BoolVar(&loadFlags.dryRun, "dry-run", false,
		"Print the COPY command and column encodings without connecting")
	loadCmd.Flags().DurationVar(&loadFlags.timeout, "timeout", pgbulk.DefaultLoadTimeout,
		"Timeout for the whole load, connection included\n"+
			"Examples: 30s, 5m, 1h30m")

	_ = loadCmd.MarkFlagRequired("table")
	_ = loadCmd.RegisterFlagCompletionFunc("model", completeModelFiles)
}

// buildLoadConfig builds a LoadConfig from CLI flags, pgbulk.yaml and the environment.
func buildLoadConfig(cmd *cobra.Command, recordsPath string, verbose bool) (pgbulk.LoadConfig, error) {
	projectCfg, err := loadProjectConfig(".")
	if err != nil {
		return pgbulk.LoadConfig{}, err
	}

	cfg := pgbulk.LoadConfig{
		RecordsPath: recordsPath,
		ModelPath:   loadFlags.model,
		Table:       loadFlags.table,
		Schema:      loadFlags.schema,
		DryRun:      loadFlags.dryRun,
		Verbose:     verbose,
	}
	if projectCfg != nil {
		if cfg.ModelPath == "" {
			cfg.ModelPath = projectCfg.Load.Model
		}
		if cfg.Schema == "" {
			cfg.Schema = projectCfg.Load.Schema
		}
	}
	if cfg.Schema == "" {
		cfg.Schema = pgbulk.DefaultSchema
	}

	cfg.Timeout, err = resolveEffectiveTimeout(cmd, projectCfg, loadFlags.timeout)
	if err != nil {
		return pgbulk.LoadConfig{}, err
	}

	if !cfg.DryRun {
		cfg.Connection, err = resolveConnectionFromFlags(loadFlags.conn, projectCfg)
		if err != nil {
			return pgbulk.LoadConfig{}, err
		}
		if verbose {
			logConnectionVerbose(cfg.Connection)
		}
	}

	if err := cfg.Validate(); err != nil {
		return pgbulk.LoadConfig{}, err
	}
	return cfg, nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := buildLoadConfig(cmd, args[0], verbose)
	if err != nil {
		return err
	}
	logger := logging.NewConsoleLogger(verbose)

	m, err := model.LoadFile(cfg.ModelPath)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		return printPlan(m, cfg, logger)
	}

	recs, err := records.ReadFile(cfg.RecordsPath)
	if err != nil {
		return err
	}
	logger.Verbose("read %d records from %s", len(recs), cfg.RecordsPath)

	connector, err := db.NewConnector(cfg.Connection, logger)
	if err != nil {
		return err
	}
	conn := db.NewConnection(connector)
	defer conn.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, aborting load...")
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	in := bulk.New(m, bulk.WithLogger(logger))
	n, err := bulk.InsertTable(ctx, in, conn, cfg.Table, recs, cfg.Schema)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	summary := tui.LoadSummary{
		Records:  n,
		Table:    cfg.Schema + "." + cfg.Table,
		Source:   cfg.RecordsPath,
		Duration: time.Since(start),
	}
	if tui.IsStyled(os.Stdout) {
		fmt.Println(summary.Render())
	} else {
		fmt.Println(summary.PlainLine())
	}
	return nil
}

// printPlan resolves the table against the model and prints what a load would send.
func printPlan(m *model.Model, cfg pgbulk.LoadConfig, logger pgbulk.Logger) error {
	table, err := metadata.ForTable(m, cfg.Table, cfg.Schema, typemap.NewResolver(), metadata.WithLogger(logger))
	if err != nil {
		return err
	}

	columns := make([][2]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = [2]string{c.ColumnName, c.Encoding.String()}
	}
	command := copyin.BuildCommand(table.Schema, table.Name, table.ColumnNames())
	fmt.Print(tui.RenderPlan(command, columns, tui.IsStyled(os.Stdout)))
	return nil
}
