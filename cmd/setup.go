package main

import (
	"context"

	"github.com/desertthunder/nowplayd/internal/shared"
	"github.com/urfave/cli/v3"
)

// setupCommand creates the config file and database so the other commands
// have something to work with.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and initialize the history database",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if err := shared.CreateConfigFile(path); err != nil {
				return err
			}
			r.logger.Infof("created configuration file at %s", path)

			config, err := shared.LoadConfig(path)
			if err != nil {
				return err
			}

			db, err := shared.NewDatabase(config.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

			if err := shared.RunMigrations(db); err != nil {
				return err
			}
			r.logger.Infof("initialized history database at %s", config.Database.Path)

			return r.writePlainln("Setup complete. Add your Spotify credentials to %s and run `nowplayd login`.", path)
		},
	}
}
