// package source defines the registry the playback clients plug into
package source

import (
	"context"
	"strings"
	"sync"

	"github.com/desertthunder/nowplayd/internal/models"
)

// Capability is a discrete remote-control action a source can issue.
// Capabilities combine into a bitmask declared once at construction.
type Capability uint32

const (
	CapNextSong   Capability = 1 << iota // Skip to next song
	CapPrevSong                          // Go to previous song
	CapPlayPause                         // Toggle play/pause
	CapStopSong                          // Stop playback
	CapVolumeUp                          // Increase volume
	CapVolumeDown                        // Decrease volume
	CapVolumeMute                        // Toggle mute
)

var capabilityNames = map[string]Capability{
	"next":        CapNextSong,
	"previous":    CapPrevSong,
	"play-pause":  CapPlayPause,
	"stop":        CapStopSong,
	"volume-up":   CapVolumeUp,
	"volume-down": CapVolumeDown,
	"mute":        CapVolumeMute,
}

// ParseCapability resolves a capability name used on the CLI surface.
func ParseCapability(name string) (Capability, bool) {
	c, ok := capabilityNames[strings.ToLower(name)]
	return c, ok
}

// Has reports whether the set contains the given capability.
func (c Capability) Has(want Capability) bool {
	return c&want != 0
}

// Source is a playback metadata provider that the periodic driver refreshes
// and the presentation layer reads from.
type Source interface {
	// ID returns the stable identifier used for registry selection.
	ID() string

	// Name returns the human-readable source name.
	Name() string

	// Capabilities returns the fixed set of remote actions this source supports.
	Capabilities() Capability

	// Poll runs one refresh cycle. Implementations must not retry or sleep
	// internally; the caller drives cycles on a fixed interval.
	Poll(ctx context.Context) error

	// Execute dispatches a capability invocation off the polling path.
	// The return value is acceptance of the request, not its outcome.
	Execute(c Capability) bool

	// Record returns a copy of the current normalized playback snapshot.
	Record() models.PlaybackRecord
}

var (
	mu       sync.Mutex
	sources  []Source
	selected Source
)

// Register adds a source to the registry. The first registered source
// becomes the selected one until Select is called.
func Register(s Source) {
	mu.Lock()
	defer mu.Unlock()
	sources = append(sources, s)
	if selected == nil {
		selected = s
	}
}

// Select makes the source with the given id the active one.
// Returns false if no source matches.
func Select(id string) bool {
	mu.Lock()
	defer mu.Unlock()
	for _, s := range sources {
		if s.ID() == id {
			selected = s
			return true
		}
	}
	return false
}

// Selected returns the active source, or nil when none is registered.
func Selected() Source {
	mu.Lock()
	defer mu.Unlock()
	return selected
}

// Reset clears the registry. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	sources = nil
	selected = nil
}
