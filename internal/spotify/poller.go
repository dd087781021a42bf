package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/nowplayd/internal/models"
	"github.com/desertthunder/nowplayd/internal/shared"
)

// PollState is the state reached by the most recent poll cycle.
type PollState int

const (
	StateIdle PollState = iota
	StateCoolingDown
	StatePolling
	StateHasTrack
	StateNoSession
)

// String returns a human-readable state name.
func (s PollState) String() string {
	switch s {
	case StateCoolingDown:
		return "cooling_down"
	case StatePolling:
		return "polling"
	case StateHasTrack:
		return "has_track"
	case StateNoSession:
		return "no_session"
	default:
		return "idle"
	}
}

// Poll runs one refresh cycle against the player endpoint. The external
// driver calls it on a fixed interval; at most one playback request is in
// flight per cycle and the client never schedules its own retries.
//
// Errors are local to the cycle. On anything except an explicit
// no-active-session response the previous record is retained so consumers
// see stale-but-known state rather than a flash to empty.
func (c *Client) Poll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.token.LoggedIn {
		c.state = StateIdle
		c.logger.Debug("skipping poll, not logged in")
		return nil
	}

	if c.tokenExpiredLocked() {
		c.logger.Info("access token expired, refreshing")
		// A failed refresh doesn't block the cycle; the stale token will
		// draw an auth error from the API instead.
		if _, err := c.refreshTokenLocked(ctx); err != nil {
			c.logger.Errorf("token refresh failed: %v", err)
		}
	}

	if c.backoff.ShouldSkip(time.Now()) {
		c.state = StateCoolingDown
		c.logger.Debug("waiting for API cooldown")
		return nil
	}

	c.state = StatePolling
	resp, err := c.execute(ctx, http.MethodGet, c.apiURL, c.token.AccessToken, "")
	if err != nil {
		c.state = StateIdle
		return fmt.Errorf("playback poll failed: %w", err)
	}

	switch resp.Status {
	case http.StatusOK:
		return c.handlePlayback(ctx, resp.Body)
	case http.StatusNoContent:
		// No session running
		c.record = models.PlaybackRecord{}
		c.state = StateNoSession
		return nil
	case http.StatusTooManyRequests:
		if secs := extractRetryAfter(resp.Header); secs > 0 {
			c.logger.Warnf("API rate limit hit, waiting %d seconds", secs)
			c.backoff.SetCooldown(time.Duration(secs)*time.Second, time.Now())
			c.state = StateCoolingDown
		} else {
			c.state = StateIdle
		}
		return fmt.Errorf("%w: status %d", shared.ErrRateLimited, resp.Status)
	case http.StatusUnauthorized, http.StatusForbidden:
		c.state = StateIdle
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.Status)
	default:
		// Keep the current record; the API should give a proper response
		// again on a later cycle.
		c.state = StateIdle
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.Status)
	}
}

// handlePlayback routes a 200 payload into parsing or state retention.
func (c *Client) handlePlayback(ctx context.Context, body []byte) error {
	var payload playbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.state = StateIdle
		c.logger.Errorf("couldn't decode playback payload: %v: %s", err, body)
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	// An ad means playback is effectively paused; there is no track data to
	// read and progress stays where it was.
	if payload.CurrentlyPlayingType == "ad" {
		c.record.Status = models.StatusPaused
		c.state = StateHasTrack
		return nil
	}

	if payload.Device == nil || payload.IsPlaying == nil {
		c.state = StateIdle
		c.logger.Errorf("couldn't fetch song data from playback payload: %s", body)
		return fmt.Errorf("%w: missing device or playback state", shared.ErrMalformedResponse)
	}

	if payload.Device.IsPrivate {
		// Privacy prevents reading track data; keep whatever we had.
		c.state = StateIdle
		c.logger.Error("session is private, can't read track")
		return shared.ErrPrivateSession
	}

	c.parseTrack(ctx, &payload)
	if *payload.IsPlaying {
		c.record.Status = models.StatusPlaying
	} else {
		c.record.Status = models.StatusPaused
	}
	c.record.ProgressMS = payload.ProgressMS
	c.state = StateHasTrack
	return nil
}
