package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			db, closeDB, err := openDatabase(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repositories.Migrate(db); err != nil {
				return err
			}
			color.Green("Schema is up to date (%s)", cfg.Database.Driver)
			return nil
		},
	}
}
