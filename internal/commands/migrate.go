package commands

import (
	"fmt"

	"github.com/funnytourism/tourism-api/internal/server"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := open(cmd.Context())
			if err != nil {
				return err
			}
			if err := server.Migrate(database); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migrated.")
			return nil
		},
	}
}
