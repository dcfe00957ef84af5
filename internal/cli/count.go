package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bandsync/internal/config"
	"bandsync/internal/store"
	"bandsync/internal/transform"
	"bandsync/pkg/database"
)

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection>",
		Short: "Count uploaded records in a particular collection",
		Long: "Count reports how many documents a destination collection holds, from: " +
			strings.Join(transform.Collections(), ", ") + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd.Context(), args[0])
		},
	}
}

func runCount(ctx context.Context, collection string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	mongoClient, err := database.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	n, err := store.Count(ctx, mongoClient.Database(cfg.Database), collection)
	if err != nil {
		return err
	}
	fmt.Printf("%d items in collection <%s>\n", n, collection)
	return nil
}
