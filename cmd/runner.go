package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplayd/internal/shared"
	"github.com/desertthunder/nowplayd/internal/source"
	"github.com/desertthunder/nowplayd/internal/spotify"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *spotify.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Client *spotify.Client
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		client: opts.Client,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, watchCommand, statusCommand, controlCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// init loads configuration, builds the playback client, and registers it
// with the source registry. Idempotent across command invocations.
func (r *Runner) init(cmd *cli.Command) error {
	if r.client != nil {
		return nil
	}

	r.configPath = cmd.String("config")
	if r.config == nil {
		config := shared.DefaultConfig()
		if _, err := os.Stat(r.configPath); err == nil {
			loaded, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return err
			}
			config = loaded
		}
		r.config = config
	}

	client := spotify.New(r.clientConfig(), r.logger, r.persistTokens)
	client.SetTokens(spotify.TokenState{
		AccessToken:  r.config.Tokens.AccessToken,
		RefreshToken: r.config.Tokens.RefreshToken,
		AuthCode:     r.config.Tokens.AuthCode,
		ExpiresAt:    r.config.Tokens.ExpiresAt,
		LoggedIn:     r.config.Tokens.LoggedIn,
	})

	r.client = client
	source.Register(client)
	return nil
}

// clientConfig maps the TOML configuration onto the client's construction parameters.
func (r *Runner) clientConfig() spotify.Config {
	return spotify.Config{
		ClientID:        r.config.Credentials.Spotify.ClientID,
		ClientSecret:    r.config.Credentials.Spotify.ClientSecret,
		RedirectURI:     r.config.Credentials.Spotify.RedirectURI,
		RequestTimeout:  r.config.Player.RequestTimeout(),
		ResumeFromStart: r.config.Player.ResumeFromStart,
	}
}

// persistTokens is the persistence callback handed to the client. It writes
// the full configuration back after every token mutation.
func (r *Runner) persistTokens(t spotify.TokenState) error {
	r.config.Tokens = shared.TokenConfig{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		AuthCode:     t.AuthCode,
		ExpiresAt:    t.ExpiresAt,
		LoggedIn:     t.LoggedIn,
	}
	if r.configPath == "" {
		return nil
	}
	return r.config.SaveConfig(r.configPath)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}

// formatDuration renders a millisecond duration as m:ss for display.
func formatDuration(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// configFlag is shared by every command.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}
