package cli

import (
	"fmt"
	"strings"

	"github.com/abgdnv/catalog/internal/store"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations",
		Long:  "Applies the embedded migrations to a PostgreSQL database. SQLite tables are created when the store is opened.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadStorageConfig(opts)
			if err != nil {
				return err
			}
			url := cfg.Database.URL
			if !strings.HasPrefix(url, "postgres://") && !strings.HasPrefix(url, "postgresql://") {
				return fmt.Errorf("migrate needs a postgres database URL")
			}
			if err := store.Migrate(url); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
