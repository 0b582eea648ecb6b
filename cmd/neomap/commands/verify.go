package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check connectivity to the configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		executor, err := openExecutor(ctx)
		if err != nil {
			return fmt.Errorf("could not connect to %s: %w", loaded.URI, err)
		}
		defer executor.Close(ctx)

		fmt.Fprintf(cmd.OutOrStdout(), "Connection to database '%s' was successful!\n", loaded.Database)
		return nil
	},
}
