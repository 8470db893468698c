package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := openDB(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			switch direction {
			case "up":
				applied, err := applyMigrations(db)
				if err != nil {
					return err
				}
				log.Info("migrations applied", zap.Bool("changed", applied))
			case "down":
				if err := rollbackMigrations(db); err != nil {
					return err
				}
				log.Info("migrations reverted")
			default:
				return fmt.Errorf("unknown direction %q", direction)
			}
			return nil
		},
	}
}
