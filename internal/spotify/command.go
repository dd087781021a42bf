package spotify

import (
	"context"
	"net/http"

	"github.com/desertthunder/nowplayd/internal/models"
	"github.com/desertthunder/nowplayd/internal/source"
)

// Execute dispatches a capability invocation. The request runs on a
// detached goroutine so the caller never stalls on network latency; the
// return value is acceptance of the request, not confirmation of execution.
// Outcomes are only ever logged.
//
// A token-bucket limiter bounds how fast detached commands can be spawned;
// invocations past the burst are rejected rather than queued.
func (c *Client) Execute(cap source.Capability) bool {
	if !c.caps.Has(cap) {
		c.logger.Errorf("capability %#x is not supported", uint32(cap))
		return false
	}

	if !c.limiter.Allow() {
		c.logger.Warn("command dropped, too many in flight")
		return false
	}

	// Copy what the request needs; the goroutine must not share mutable
	// state with the poll cycle.
	c.mu.Lock()
	token := c.token.AccessToken
	status := c.record.Status
	resume := c.cfg.ResumeFromStart
	c.mu.Unlock()

	go c.runCommand(cap, token, status, resume)
	return true
}

// runCommand issues the control request for one accepted invocation.
func (c *Client) runCommand(cap source.Capability, token string, status models.PlaybackStatus, resume bool) {
	var method, url, body string

	switch cap {
	case source.CapPlayPause:
		if status == models.StatusPlaying {
			method, url = http.MethodPut, c.apiURL+pausePath
		} else {
			method, url = http.MethodPut, c.apiURL+playPath
			if resume {
				// Restarts the track when resuming from pause.
				body = `{"position_ms": 0}`
			} else {
				body = "{}"
			}
		}
	case source.CapStopSong:
		method, url = http.MethodPut, c.apiURL+pausePath
	case source.CapNextSong:
		method, url = http.MethodPost, c.apiURL+nextPath
	case source.CapPrevSong:
		method, url = http.MethodPost, c.apiURL+prevPath
	case source.CapVolumeUp, source.CapVolumeDown:
		c.logger.Debug("volume control is not implemented")
		return
	default:
		return
	}

	if body == "" && method != http.MethodGet {
		body = "{}"
	}

	resp, err := c.execute(context.Background(), method, url, token, body)
	if err != nil {
		c.logger.Warnf("couldn't send %s command: %v", method, err)
		return
	}

	if resp.Status != http.StatusNoContent {
		c.logger.Infof("couldn't run spotify command, HTTP code: %d", resp.Status)
		c.logger.Info("spotify controls only work for premium users")
		c.logger.Infof("response: %s", resp.Body)
	}
}
