package cli

import (
	"github.com/spf13/cobra"

	"github.com/shenikar/disaster_resource_system/pkg/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(current.cfg, current.log)
		},
	}
}
