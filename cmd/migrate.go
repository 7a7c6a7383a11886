package cmd

import (
	"github.com/spf13/cobra"

	"github.com/theleeeo/pgjobq/migrations"
)

func migrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c.log.Info("running migrations")
			version, err := migrations.Up(c.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			c.log.Info("migrations complete", "version", version)
			return nil
		},
	}
}
