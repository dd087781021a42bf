package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models in the playback client.
// Implementations include Play.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// PlaybackStatus is the playback state of the active remote session.
type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusPlaying
	StatusPaused
)

// String returns a human-readable status name.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// PlaybackRecord is the normalized now-playing snapshot produced by the
// poller. It is rebuilt from scratch on every successful poll that carries
// track data and cleared entirely when no session is active. Consumers only
// ever read copies of it.
type PlaybackRecord struct {
	Title       string
	Artists     []string
	Album       string
	CoverURL    string
	TrackURL    string
	DurationMS  int
	ProgressMS  int
	Status      PlaybackStatus
	DiscNumber  int
	TrackNumber int
	Explicit    bool

	// Release dates may be partial: a bare year, year+month, or a full date.
	// Zero means the component was absent.
	ReleaseYear  int
	ReleaseMonth int
	ReleaseDay   int

	ContextType  string
	ContextURI   string
	ContextURL   string
	PlaylistName string
}

// Empty reports whether the record carries no track data.
func (r *PlaybackRecord) Empty() bool {
	return r.Title == "" && len(r.Artists) == 0 && r.Album == ""
}

// SameTrack reports whether two records describe the same track.
// Used by the watch loop to decide when to append a history entry.
func (r *PlaybackRecord) SameTrack(other *PlaybackRecord) bool {
	return r.Title == other.Title &&
		r.Album == other.Album &&
		strings.Join(r.Artists, ",") == strings.Join(other.Artists, ",")
}

// Play is a playback-history entry persisted whenever the observed track changes.
type Play struct {
	id         string
	Sequence   int
	Title      string
	Artist     string
	Album      string
	TrackURL   string
	DurationMS int
	PlayedAt   time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewPlay builds a history entry from a playback record.
func NewPlay(rec *PlaybackRecord) *Play {
	now := time.Now()
	return &Play{
		Title:      rec.Title,
		Artist:     strings.Join(rec.Artists, ", "),
		Album:      rec.Album,
		TrackURL:   rec.TrackURL,
		DurationMS: rec.DurationMS,
		PlayedAt:   now,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (p *Play) ID() string           { return p.id }
func (p *Play) CreatedAt() time.Time { return p.createdAt }
func (p *Play) UpdatedAt() time.Time { return p.updatedAt }

// SetID assigns the generated identifier. Called by the repository on create.
func (p *Play) SetID(id string) { p.id = id }

// SetTimestamps assigns creation and update times. Used when hydrating from the database.
func (p *Play) SetTimestamps(created, updated time.Time) {
	p.createdAt = created
	p.updatedAt = updated
}

// Validate checks that the entry carries enough data to be worth persisting.
func (p *Play) Validate() error {
	if p.id == "" {
		return fmt.Errorf("play entry has no ID")
	}
	if p.Title == "" {
		return fmt.Errorf("play entry has no title")
	}
	return nil
}
