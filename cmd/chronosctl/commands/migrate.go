package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema on the configured store",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	s, err := config.Load()
	if err != nil {
		return err
	}
	config.Init(s.LogLevel)

	st, err := store.Open(cmd.Context(), s)
	if err != nil {
		return fmt.Errorf("migrate %s store: %w", s.StoreBackend, err)
	}
	defer st.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date on the %s backend\n", green("✓"), bold(s.StoreBackend))
	return nil
}
