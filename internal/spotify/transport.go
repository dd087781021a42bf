package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/nowplayd/internal/shared"
)

// apiResponse is the result of one authenticated request against the player
// API: status code, raw body, and the response headers rendered as text for
// Retry-After extraction.
type apiResponse struct {
	Status int
	Body   []byte
	Header string
}

// execute performs a single bearer-authenticated request. It consults the
// backoff controller before sending and feeds transport outcomes back into
// it: a connection or timeout failure schedules the next cooldown, while any
// response whose body parses as JSON (or is empty) resets the attempt
// multiplier regardless of HTTP status.
//
// The caller passes the token explicitly so detached command goroutines can
// run without holding the client lock.
func (c *Client) execute(ctx context.Context, method, url, token, body string) (*apiResponse, error) {
	if c.backoff.ShouldSkip(time.Now()) {
		c.logger.Debug("waiting for request cooldown to elapse")
		return nil, shared.ErrCoolingDown
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		wait := c.backoff.RecordFailure(time.Now())
		c.logger.Warnf("request to %s failed: %v, waiting %s before trying again", url, err, wait)
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		wait := c.backoff.RecordFailure(time.Now())
		c.logger.Warnf("failed to read response from %s: %v, waiting %s before trying again", url, err, wait)
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}

	if len(raw) == 0 || json.Valid(raw) {
		c.backoff.RecordSuccess()
	} else {
		c.logger.Errorf("failed to parse json response: %s", raw)
	}

	return &apiResponse{
		Status: resp.StatusCode,
		Body:   raw,
		Header: headerText(resp.Header),
	}, nil
}

// headerText renders response headers as "Key: value" lines, mirroring the
// raw header block the Retry-After scanner consumes.
func headerText(h http.Header) string {
	var b strings.Builder
	for key, values := range h {
		for _, v := range values {
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
	return b.String()
}
