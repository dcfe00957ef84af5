package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bandsync/internal/config"
	"bandsync/internal/jawbone"
	"bandsync/internal/store"
	"bandsync/internal/sync"
	"bandsync/internal/transform"
	"bandsync/pkg/database"
	"bandsync/pkg/logger"
)

type fetchOptions struct {
	Interval time.Duration
	Limit    int
}

func newFetchCmd() *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch <type>",
		Short: "Fetch Jawbone UP data of a particular type",
		Long: "Fetch runs the recurring sync cycle for one record type from: " +
			strings.Join(transform.RegisteredTypes(), ", ") + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().DurationVarP(&opts.Interval, "interval", "i", 20*time.Second, "Interval between top-level fetches")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "Stop after this many top-level fetches (0 = until pagination is exhausted)")

	return cmd
}

func runFetch(ctx context.Context, recordType string, opts *fetchOptions) error {
	// Unknown record types are a configuration error, caught before any
	// network or database work starts.
	entry, err := transform.Lookup(recordType)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.InitFile(cfg.LogFile); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logger.Close()

	mongoClient, err := database.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	engine := sync.NewEngine(
		recordType,
		entry,
		jawbone.NewClient(cfg.Token),
		store.NewWriter(mongoClient.Database(cfg.Database)),
		sync.NewCursorStore(cfg.CursorFile),
	)
	scheduler := &sync.Scheduler{Engine: engine, Interval: opts.Interval, Limit: opts.Limit}

	logger.Info("Starting %s sync (interval %s, limit %d)", recordType, opts.Interval, opts.Limit)
	if err := scheduler.Run(ctx); err != nil {
		logger.Error("Sync aborted: %v", err)
		return err
	}
	logger.Info("Sync finished")
	return nil
}
