package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireRecordsFile validates that exactly one records file argument is provided.
func RequireRecordsFile(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <records_file>

Usage: %s

Example:
  %s orders.csv --table orders --model model.yaml -d shop`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
