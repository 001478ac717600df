// Command recordkeeper runs the record-management API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msurti/recordkeeper/internal/api"
	"github.com/msurti/recordkeeper/internal/config"
	"github.com/msurti/recordkeeper/internal/ingest"
	"github.com/msurti/recordkeeper/internal/repository"
	"github.com/msurti/recordkeeper/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "recordkeeper: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "recordkeeper",
		Short:        "Record-management API with attachment ingestion",
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
			slog.SetDefault(logger)

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			client, err := repository.Connect(ctx, cfg.MongoURL)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())
			repo := repository.NewRecordRepository(client, cfg.Database)

			store, err := storage.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}

			svc := ingest.New(repo, store)
			return api.New(cfg, svc).Run(ctx)
		},
	}
}
