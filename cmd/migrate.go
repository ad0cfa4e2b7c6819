package cmd

import (
	"fmt"

	"github.com/ellavondegurechaff/packforge/packforge"
	"github.com/ellavondegurechaff/packforge/packforge/database"
	"github.com/ellavondegurechaff/packforge/packforge/database/repositories"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
	"github.com/ellavondegurechaff/packforge/packforge/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and seed default pull rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DB.Driver == packforge.DriverMemory {
			return fmt.Errorf("migrate needs the postgres driver")
		}

		ctx := cmd.Context()
		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			logger.LogError("Failed to connect to database", err)
			return err
		}
		defer db.Close()

		if err := db.InitializeSchema(ctx); err != nil {
			return err
		}

		store := repositories.NewStore(db.BunDB(), repositories.StandardTransactionOptions())
		rates, err := odds.NewTable(store, cfg.Odds)
		if err != nil {
			return err
		}
		if err := rates.SeedDefaults(ctx); err != nil {
			return err
		}

		logger.LogSystem("Migration completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
