package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/desertthunder/nowplayd/internal/models"
	"github.com/desertthunder/nowplayd/internal/repositories"
	"github.com/desertthunder/nowplayd/internal/shared"
	"github.com/desertthunder/nowplayd/internal/source"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// watchCommand drives the selected source on a fixed interval until
// interrupted, printing track changes and appending them to the history.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll playback state continuously and record track changes",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Skip writing track changes to the history database",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.init(cmd); err != nil {
				return err
			}

			active := source.Selected()
			if active == nil || !r.client.LoggedIn() {
				return shared.ErrNotAuthenticated
			}

			var plays *repositories.PlayRepository
			if !cmd.Bool("no-history") {
				db, err := shared.NewDatabase(r.config.Database.Path)
				if err != nil {
					return err
				}
				defer db.Close()
				shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
				if err := shared.RunMigrations(db); err != nil {
					return err
				}
				plays = repositories.NewPlayRepository(db)
			}

			watchCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r.logger.Infof("watching %s every %s", active.Name(), r.config.Player.PollInterval())
			return r.watch(watchCtx, active, plays)
		},
	}
}

// watch runs the poll loop. Each tick triggers at most one cycle; the source
// never sleeps or retries on its own, so a slow or failing API only ever
// costs the cycle it happens in.
func (r *Runner) watch(ctx context.Context, active source.Source, plays *repositories.PlayRepository) error {
	ticker := rate.NewLimiter(rate.Every(r.config.Player.PollInterval()), 1)

	var last models.PlaybackRecord
	for {
		if err := ticker.Wait(ctx); err != nil {
			r.logger.Info("stopping watch")
			return nil
		}

		if err := active.Poll(ctx); err != nil {
			r.logger.Warnf("poll cycle failed: %v", err)
			continue
		}

		rec := active.Record()
		if rec.Empty() || rec.SameTrack(&last) {
			continue
		}
		last = rec

		if err := r.writePlainln("%s", formatRecord(&rec)); err != nil {
			return err
		}

		if plays != nil {
			if err := plays.Create(models.NewPlay(&rec)); err != nil {
				r.logger.Errorf("couldn't record play: %v", err)
			}
		}
	}
}

// statusCommand runs a single poll cycle and prints the resulting snapshot.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Poll once and show the current playback state",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.init(cmd); err != nil {
				return err
			}

			active := source.Selected()
			if active == nil || !r.client.LoggedIn() {
				return shared.ErrNotAuthenticated
			}

			if err := active.Poll(ctx); err != nil {
				return err
			}

			rec := active.Record()
			if rec.Empty() {
				return r.writePlainln("Nothing playing (%s).", r.client.State())
			}

			if err := r.writePlainln("%s", formatRecord(&rec)); err != nil {
				return err
			}
			return r.writePlainln("  %s / %s  [%s]",
				formatDuration(rec.ProgressMS), formatDuration(rec.DurationMS), rec.Status)
		},
	}
}

// formatRecord renders a one-line track summary.
func formatRecord(rec *models.PlaybackRecord) string {
	line := rec.Title
	if len(rec.Artists) > 0 {
		line += " - " + strings.Join(rec.Artists, ", ")
	}
	if rec.Album != "" {
		line += " (" + rec.Album + ")"
	}
	if rec.PlaylistName != "" {
		line += " [" + rec.PlaylistName + "]"
	}
	return line
}
