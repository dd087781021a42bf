package spotify

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/nowplayd/internal/models"
	"github.com/desertthunder/nowplayd/internal/source"
)

// commandRequest captures a control request issued by a detached goroutine.
type commandRequest struct {
	method string
	path   string
	body   string
}

// commandClient wires a test client to a server that relays every control
// request over a channel.
func commandClient(t *testing.T) (*Client, <-chan commandRequest) {
	t.Helper()

	requests := make(chan commandRequest, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		requests <- commandRequest{method: r.Method, path: r.URL.Path, body: string(raw)}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, nil)
	c.apiURL = srv.URL
	c.SetTokens(loggedInTokens())
	return c, requests
}

// waitForRequest receives a relayed request or fails the test.
func waitForRequest(t *testing.T, requests <-chan commandRequest) commandRequest {
	t.Helper()
	select {
	case req := <-requests:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for command request")
		return commandRequest{}
	}
}

func TestExecute(t *testing.T) {
	t.Run("unsupported capability is rejected", func(t *testing.T) {
		c, _ := commandClient(t)
		if c.Execute(source.CapVolumeMute) {
			t.Error("mute is not in the capability set and must be rejected")
		}
	})

	t.Run("skip and previous hit their endpoints", func(t *testing.T) {
		tests := []struct {
			cap    source.Capability
			method string
			path   string
		}{
			{source.CapNextSong, http.MethodPost, "/next"},
			{source.CapPrevSong, http.MethodPost, "/previous"},
			{source.CapStopSong, http.MethodPut, "/pause"},
		}
		for _, tt := range tests {
			c, requests := commandClient(t)
			if !c.Execute(tt.cap) {
				t.Fatalf("Execute(%#x) not accepted", uint32(tt.cap))
			}
			req := waitForRequest(t, requests)
			if req.method != tt.method || req.path != tt.path {
				t.Errorf("request = %s %s, want %s %s", req.method, req.path, tt.method, tt.path)
			}
		}
	})

	t.Run("toggle pauses while playing", func(t *testing.T) {
		c, requests := commandClient(t)
		c.record.Status = models.StatusPlaying

		if !c.Execute(source.CapPlayPause) {
			t.Fatal("Execute not accepted")
		}
		req := waitForRequest(t, requests)
		if req.method != http.MethodPut || req.path != "/pause" {
			t.Errorf("request = %s %s, want PUT /pause", req.method, req.path)
		}
	})

	t.Run("toggle resumes from the start while paused", func(t *testing.T) {
		c, requests := commandClient(t)
		c.record.Status = models.StatusPaused

		if !c.Execute(source.CapPlayPause) {
			t.Fatal("Execute not accepted")
		}
		req := waitForRequest(t, requests)
		if req.method != http.MethodPut || req.path != "/play" {
			t.Errorf("request = %s %s, want PUT /play", req.method, req.path)
		}
		if req.body != `{"position_ms": 0}` {
			t.Errorf("body = %q, want position reset", req.body)
		}
	})

	t.Run("toggle resumes in place when configured", func(t *testing.T) {
		c, requests := commandClient(t)
		c.cfg.ResumeFromStart = false
		c.record.Status = models.StatusPaused

		if !c.Execute(source.CapPlayPause) {
			t.Fatal("Execute not accepted")
		}
		req := waitForRequest(t, requests)
		if req.body != "{}" {
			t.Errorf("body = %q, want empty object", req.body)
		}
	})

	t.Run("volume capabilities are accepted but issue no request", func(t *testing.T) {
		c, requests := commandClient(t)
		if !c.Execute(source.CapVolumeUp) {
			t.Fatal("Execute not accepted")
		}
		select {
		case req := <-requests:
			t.Errorf("unexpected request: %s %s", req.method, req.path)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("invocations past the burst are dropped", func(t *testing.T) {
		c, _ := commandClient(t)

		accepted := 0
		for i := 0; i < 10; i++ {
			if c.Execute(source.CapNextSong) {
				accepted++
			}
		}
		if accepted >= 10 {
			t.Error("expected the limiter to drop some of a rapid burst")
		}
		if accepted == 0 {
			t.Error("expected the limiter to accept at least the initial burst")
		}
	})
}
