package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"moodbot/database"
	"moodbot/environment"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create PostgreSQL tables for users and responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations()
		},
	}
}

func runMigrations() error {
	pg := environment.GetPostgreSQLEnvironment()
	mainEnv, err := environment.GetMainEnvironment()
	if err != nil {
		return err
	}

	db, err := database.InitPostgreSQL(pg.Host, pg.User, pg.Password, pg.Database, pg.Port, pg.SSLMode, mainEnv.Timezone)
	if err != nil {
		return err
	}
	defer database.ClosePostgreSQL(db)

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	log.Info().Msg("Migrations applied")
	return nil
}
