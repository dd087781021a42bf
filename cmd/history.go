package main

import (
	"context"

	"github.com/desertthunder/nowplayd/internal/repositories"
	"github.com/desertthunder/nowplayd/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyCommand lists recorded plays, newest first.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recently recorded plays",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of entries to show",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Only show plays by this artist",
			},
			&cli.StringFlag{
				Name:  "album",
				Usage: "Only show plays from this album",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.init(cmd); err != nil {
				return err
			}

			db, err := shared.NewDatabase(r.config.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
			if err := shared.RunMigrations(db); err != nil {
				return err
			}

			plays, err := repositories.NewPlayRepository(db).List(map[string]any{
				"limit":  int(cmd.Int("limit")),
				"artist": cmd.String("artist"),
				"album":  cmd.String("album"),
			})
			if err != nil {
				return err
			}

			if len(plays) == 0 {
				return r.writePlainln("No plays recorded yet.")
			}

			for _, play := range plays {
				if err := r.writePlainln("%s  %s - %s (%s)",
					play.PlayedAt.Format("2006-01-02 15:04"), play.Title, play.Artist, play.Album); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
