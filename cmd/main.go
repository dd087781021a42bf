package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/nowplayd/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "nowplayd",
		Usage:    "Poll Spotify playback state and control it from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not logged in, run `nowplayd login` first")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
