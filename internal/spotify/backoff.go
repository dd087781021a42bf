package spotify

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// transport failures schedule cooldowns in multiples of this base.
const backoffBase = 5 * time.Second

// BackoffState tracks the cooldown window that suppresses outbound requests
// after transport failures or an explicit Retry-After signal.
//
// It has its own lock so detached command goroutines and the poll cycle can
// consult it concurrently. The attempt multiplier resets whenever a response
// body parses as JSON, even when that JSON is an API-level error object.
type BackoffState struct {
	mu       sync.Mutex
	start    time.Time
	length   time.Duration
	attempts int
}

// NewBackoffState returns a BackoffState with the attempt multiplier at 1.
func NewBackoffState() *BackoffState {
	return &BackoffState{attempts: 1}
}

// ShouldSkip reports whether a request must be suppressed at the given time.
// Once the window has elapsed the state clears itself and exactly one
// request is allowed through.
func (b *BackoffState) ShouldSkip(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.length == 0 {
		return false
	}
	if now.Sub(b.start) >= b.length {
		b.start = time.Time{}
		b.length = 0
		return false
	}
	return true
}

// SetCooldown arms an API-declared cooldown window. Callers must not pass a
// zero duration; the absence of a Retry-After header means no cooldown.
func (b *BackoffState) SetCooldown(d time.Duration, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = now
	b.length = d
}

// RecordFailure schedules the next cooldown after a transport-level failure
// and increments the attempt multiplier. Returns the scheduled wait.
func (b *BackoffState) RecordFailure(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = now
	b.length = backoffBase * time.Duration(b.attempts)
	b.attempts++
	return b.length
}

// RecordSuccess resets the attempt multiplier and clears any pending window.
func (b *BackoffState) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = time.Time{}
	b.length = 0
	b.attempts = 1
}

// Cooldown returns the currently scheduled window length, zero when inactive.
func (b *BackoffState) Cooldown() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// extractRetryAfter pulls the integer seconds value out of raw response
// header text. The value is consumed as plain text: everything between the
// header token and the next line break. Absence yields zero.
func extractRetryAfter(header string) int {
	const what = "Retry-After: "

	pos := strings.Index(header, what)
	if pos < 0 {
		return 0
	}

	rest := header[pos+len(what):]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}

	secs, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0
	}
	return secs
}
