package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "chronosctl",
	Short: "Operate the Chronos goals service",
	Long: `chronosctl migrates the goals store, scores key result drafts offline
and runs the HTTP API locally.

Settings come from the same environment variables as the API
(STORE_BACKEND, DATABASE_DSN, SQLITE_PATH, ...) or the YAML file named by
CHRONOS_CONFIG.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command and prints failures in red.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
	}
	return err
}
