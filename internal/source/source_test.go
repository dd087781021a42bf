package source_test

import (
	"testing"

	"github.com/desertthunder/nowplayd/internal/source"
	apptest "github.com/desertthunder/nowplayd/internal/testing"
)

func TestParseCapability(t *testing.T) {
	tests := []struct {
		name string
		want source.Capability
		ok   bool
	}{
		{"next", source.CapNextSong, true},
		{"previous", source.CapPrevSong, true},
		{"play-pause", source.CapPlayPause, true},
		{"stop", source.CapStopSong, true},
		{"volume-up", source.CapVolumeUp, true},
		{"volume-down", source.CapVolumeDown, true},
		{"mute", source.CapVolumeMute, true},
		{"NEXT", source.CapNextSong, true},
		{"rewind", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := source.ParseCapability(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseCapability(%q) = %#x, %v; want %#x, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCapabilityHas(t *testing.T) {
	set := source.CapNextSong | source.CapPlayPause

	if !set.Has(source.CapNextSong) || !set.Has(source.CapPlayPause) {
		t.Error("set should contain its members")
	}
	if set.Has(source.CapVolumeMute) {
		t.Error("set should not contain mute")
	}
}

func TestRegistry(t *testing.T) {
	t.Cleanup(source.Reset)

	t.Run("empty registry has no selection", func(t *testing.T) {
		source.Reset()
		if source.Selected() != nil {
			t.Error("expected nil selection from an empty registry")
		}
		if source.Select("spotify") {
			t.Error("Select should fail on an empty registry")
		}
	})

	t.Run("first registration becomes the selection", func(t *testing.T) {
		source.Reset()
		first := &apptest.FakeSource{Identity: "first"}
		second := &apptest.FakeSource{Identity: "second"}
		source.Register(first)
		source.Register(second)

		if got := source.Selected(); got == nil || got.ID() != "first" {
			t.Errorf("selected = %v, want the first registration", got)
		}
	})

	t.Run("select switches by id", func(t *testing.T) {
		source.Reset()
		first := &apptest.FakeSource{Identity: "first"}
		second := &apptest.FakeSource{Identity: "second"}
		source.Register(first)
		source.Register(second)

		if !source.Select("second") {
			t.Fatal("Select(second) failed")
		}
		if got := source.Selected(); got.ID() != "second" {
			t.Errorf("selected = %s, want second", got.ID())
		}
		if source.Select("missing") {
			t.Error("Select should fail for an unknown id")
		}
	})
}
