package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/nowplayd/internal/server"
	"github.com/desertthunder/nowplayd/internal/shared"
	"github.com/desertthunder/nowplayd/internal/spotify"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// loginTimeout bounds how long the login flow waits for the browser redirect.
const loginTimeout = 2 * time.Minute

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			loginCommand(r),
			logoutCommand(r),
			authStatusCommand(r),
		},
	}
}

// loginCommand runs the authorization-code flow: open the consent page,
// capture the redirect on a local server, then exchange the code for tokens.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authorize with Spotify via the browser",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.init(cmd); err != nil {
				return err
			}

			state := uuid.NewString()
			authURL := r.client.AuthURL(state)

			handler := server.NewCallbackHandler(state)
			serverCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			serverErr := make(chan error, 1)
			go func() {
				wrapped := server.Apply(handler, server.LogRequests(r.logger))
				serverErr <- server.Run(serverCtx, r.config.Player.CallbackPort, wrapped)
			}()

			if err := shared.OpenBrowser(authURL); err != nil {
				r.logger.Warnf("couldn't open browser: %v", err)
				if err := r.writePlainln("Open this URL to authorize:\n\n  %s", authURL); err != nil {
					return err
				}
			} else {
				r.logger.Info("opened browser for authorization")
			}

			var code string
			select {
			case result := <-handler.Result():
				if err := result.Error(); err != nil {
					return err
				}
				code = result.Code
			case err := <-serverErr:
				return err
			case <-time.After(loginTimeout):
				return fmt.Errorf("timed out waiting for authorization")
			}
			cancel()

			r.client.SetAuthCode(code)
			if _, err := r.client.ExchangeAuthCode(ctx); err != nil {
				return err
			}

			return r.writePlainln("Logged in to Spotify.")
		},
	}
}

// logoutCommand clears the stored token state.
func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Discard the stored Spotify tokens",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.init(cmd); err != nil {
				return err
			}

			r.client.SetTokens(spotify.TokenState{})
			if err := r.persistTokens(spotify.TokenState{}); err != nil {
				return err
			}

			return r.writePlainln("Logged out.")
		},
	}
}

// authStatusCommand reports whether a usable session is stored.
func authStatusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the stored session state",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.init(cmd); err != nil {
				return err
			}

			token := r.client.TokenSnapshot()
			if !token.LoggedIn {
				return r.writePlainln("Not logged in.")
			}

			expiry := time.Unix(token.ExpiresAt, 0)
			if r.client.TokenExpired() {
				return r.writePlainln("Logged in, access token expired at %s (will refresh on next poll).", expiry.Format(time.RFC1123))
			}
			return r.writePlainln("Logged in, access token valid until %s.", expiry.Format(time.RFC1123))
		},
	}
}
