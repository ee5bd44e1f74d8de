package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/restaurant_pos/internal/config"
	"github.com/Skotchmaster/restaurant_pos/internal/db"
	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/seeder"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and sample tables and menu",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

			openCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			gdb, err := db.Open(openCtx, cfg.DatabaseURL, db.DefaultPool())
			cancel()
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			s := &seeder.Seeder{DB: gdb, Index: openSearch(cmd.Context(), cfg, logger), Logger: logger}
			if err := s.Run(cmd.Context(), seeder.Admin{Email: cfg.AdminEmail, Password: cfg.AdminPassword}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed data applied (admin: %s)\n", cfg.AdminEmail)
			return nil
		},
	}
}
