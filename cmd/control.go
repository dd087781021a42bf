package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/nowplayd/internal/shared"
	"github.com/desertthunder/nowplayd/internal/source"
	"github.com/urfave/cli/v3"
)

// controlCommand dispatches a single remote-control action to the selected
// source. Acceptance is all the CLI can report; the request itself runs on a
// detached goroutine and its outcome only shows up in the logs.
func controlCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "control",
		Usage:     "Send a playback command (next, previous, play-pause, stop, volume-up, volume-down, mute)",
		ArgsUsage: "<action>",
		Flags:     []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return fmt.Errorf("%w: no action given", shared.ErrInvalidInput)
			}

			capability, ok := source.ParseCapability(name)
			if !ok {
				return fmt.Errorf("%w: %q", shared.ErrUnknownCapability, name)
			}

			if err := r.init(cmd); err != nil {
				return err
			}

			active := source.Selected()
			if active == nil || !r.client.LoggedIn() {
				return shared.ErrNotAuthenticated
			}

			if !active.Execute(capability) {
				return r.writePlainln("Command %q was not accepted by %s.", name, active.Name())
			}
			return r.writePlainln("Sent %q to %s.", name, active.Name())
		},
	}
}
