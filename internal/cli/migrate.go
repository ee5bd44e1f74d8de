package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/restaurant_pos/internal/config"
	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/migration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	withMigrator := func(fn func(cmd *cobra.Command, m *migration.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
			m, err := migration.Open(cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}
			defer m.Close()
			return fn(cmd, m)
		}
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator) error {
			if err := m.Up(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		}),
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator) error {
			steps, _ := cmd.Flags().GetInt("steps")
			all, _ := cmd.Flags().GetBool("all")
			if err := m.Down(cmd.Context(), steps, all); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
			return nil
		}),
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	downCmd.Flags().Bool("all", false, "Roll back every applied migration")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator) error {
			return m.Status(cmd.Context())
		}),
	}

	cmd.AddCommand(upCmd, downCmd, statusCmd)
	return cmd
}
