// Package commands holds the tourism-api command line.
package commands

import (
	"context"

	"github.com/funnytourism/tourism-api/internal/config"
	"github.com/funnytourism/tourism-api/internal/logging"
	"github.com/funnytourism/tourism-api/internal/utils/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tourism-api",
		Short:         "Tourism booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
		CreateAdminCmd(),
		CreateAgentCmd(),
	)
	return root
}

// open loads the configuration, sets up logging and connects to the
// database.
func open(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.Log)
	database, err := db.GetDB(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}

// password returns the flag value, or a generated one that is printed so
// the operator can hand it over.
func password(cmd *cobra.Command, flag string) (string, error) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v, nil
	}
	return generatePassword(cmd)
}
