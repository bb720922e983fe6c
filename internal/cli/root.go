// Package cli implements the catalog command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/catalog/internal/app"
	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	"github.com/abgdnv/catalog/pkg/config/configloader"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configFile string
	dbURL      string
}

// overrides turns the flags that were set into configuration overrides.
func (o *rootOptions) overrides() map[string]any {
	if o.dbURL == "" {
		return nil
	}
	return map[string]any{"database.url": o.dbURL}
}

// NewRootCmd builds the catalog command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Product catalog service and tools",
		Long:          "Catalog stores products and serves them over HTTP and gRPC.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "config.yaml", "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.dbURL, "db", "", "database URL (postgres://, sqlite://<path> or memory://), overrides the configuration")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newAddCmd(opts),
		newImportCmd(opts),
		newSetQtyCmd(opts),
		newMigrateCmd(opts),
		newHealthCmd(),
	)
	return rootCmd
}

// Execute runs the CLI
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// loadServiceConfig loads the full service configuration.
func loadServiceConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := configloader.LoadWith[*config.Config](app.ServiceName, configloader.Options{
		File:      opts.configFile,
		Defaults:  config.Defaults(),
		Overrides: opts.overrides(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// loadStorageConfig loads only the sections the product commands need.
func loadStorageConfig(opts *rootOptions) (*config.StorageOnly, error) {
	cfg, err := configloader.LoadWith[*config.StorageOnly](app.ServiceName, configloader.Options{
		File: opts.configFile,
		Defaults: map[string]any{
			"database.url":     "memory://",
			"database.timeout": 10 * time.Second,
			"log.level":        "warn",
		},
		Overrides: opts.overrides(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// withService opens the configured store, runs fn with a catalog service on top of it and closes the store.
func withService(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, svc *catalog.Service) error) error {
	cfg, err := loadStorageConfig(opts)
	if err != nil {
		return err
	}
	logger := bootstrap.NewLoggerTo(cmd.ErrOrStderr(), cfg.Log.Level)

	st, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
	}()
	return fn(cmd.Context(), catalog.NewService(st, logger))
}

func openStore(ctx context.Context, cfg *config.StorageOnly, logger *slog.Logger) (store.Store, error) {
	st, err := store.Open(ctx, store.Options{
		URL:            cfg.Database.URL,
		ConnectTimeout: cfg.Database.Timeout,
		Migrate:        cfg.Database.Migrate,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}
