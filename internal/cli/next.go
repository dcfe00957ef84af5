package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bandsync/internal/sync"
)

func newNextCmd() *cobra.Command {
	var cursorFile string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Report the stored next fetch URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := sync.NewCursorStore(cursorFile)
			cursor, ok, err := store.Load()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No next fetch URL stored")
				return nil
			}
			fmt.Printf("Next fetch URL is %s\n", cursor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cursorFile, "cursor-file", "c", "next.json", "Path to the cursor file")

	return cmd
}
