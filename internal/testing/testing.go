// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/desertthunder/nowplayd/internal/models"
	"github.com/desertthunder/nowplayd/internal/source"
)

// FakeSource is a test double for [source.Source]
type FakeSource struct {
	mu        sync.Mutex
	Identity  string
	Caps      source.Capability
	Rec       models.PlaybackRecord
	PollErr   error
	PollCount int
	Executed  []source.Capability
}

func (f *FakeSource) ID() string {
	if f.Identity == "" {
		return "fake"
	}
	return f.Identity
}

func (f *FakeSource) Name() string { return "Fake" }

func (f *FakeSource) Capabilities() source.Capability { return f.Caps }

func (f *FakeSource) Poll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PollCount++
	return f.PollErr
}

func (f *FakeSource) Execute(c source.Capability) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Caps.Has(c) {
		return false
	}
	f.Executed = append(f.Executed, c)
	return true
}

func (f *FakeSource) Record() models.PlaybackRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Rec
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	MaxWrites int
	written   int
	Target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.MaxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.Target.Write(p)
}
