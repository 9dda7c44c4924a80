package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/funnytourism/tourism-api/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, database, err := open(ctx)
			if err != nil {
				return err
			}
			if cfg.DB.AutoMigrate {
				if err := server.Migrate(database); err != nil {
					return err
				}
				logrus.Info("database migrated")
			}

			srv, err := server.New(ctx, cfg, database)
			if err != nil {
				return fmt.Errorf("build server: %w", err)
			}
			return srv.Run(ctx)
		},
	}
}
