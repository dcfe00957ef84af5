// Package cli handles the command-line interface logic using the Cobra
// library.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"bandsync/internal/transform"
)

// NewRootCmd creates and configures the main "root" command and attaches
// all sub-commands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bandsync",
		Short: "bandsync - sync Jawbone UP activity data into MongoDB",
		Long: `bandsync polls the paginated Jawbone UP API on an interval, reshapes each
page of activity data (` + strings.Join(transform.RegisteredTypes(), ", ") + `) into flat
normalized records and upserts them into MongoDB, persisting pagination
progress so an interrupted sync resumes where it left off.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newCountCmd())
	rootCmd.AddCommand(newNextCmd())

	return rootCmd
}
