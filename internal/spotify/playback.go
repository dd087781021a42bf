package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/nowplayd/internal/models"
)

// playbackPayload is the player endpoint's currently-playing response, per
// https://developer.spotify.com/documentation/web-api/reference/. Pointer
// fields distinguish absent objects from zero values so the poller can
// reject malformed payloads.
type playbackPayload struct {
	Device               *playbackDevice  `json:"device"`
	IsPlaying            *bool            `json:"is_playing"`
	CurrentlyPlayingType string           `json:"currently_playing_type"`
	ProgressMS           int              `json:"progress_ms"`
	Item                 *playbackItem    `json:"item"`
	Context              *playbackContext `json:"context"`
}

// playbackDevice describes the device owning the active session.
type playbackDevice struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private_session"`
}

// playbackItem is the track object within a playback payload.
type playbackItem struct {
	Name         string            `json:"name"`
	DurationMS   int               `json:"duration_ms"`
	Explicit     bool              `json:"explicit"`
	DiscNumber   int               `json:"disc_number"`
	TrackNumber  int               `json:"track_number"`
	Artists      []playbackArtist  `json:"artists"`
	Album        playbackAlbum     `json:"album"`
	ExternalURLs map[string]string `json:"external_urls"`
}

// playbackArtist carries the artist name within a track object.
type playbackArtist struct {
	Name string `json:"name"`
}

// playbackAlbum carries album metadata within a track object.
type playbackAlbum struct {
	Name        string          `json:"name"`
	Images      []playbackImage `json:"images"`
	ReleaseDate string          `json:"release_date"`
}

// playbackImage represents an image resource.
type playbackImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// playbackContext describes what the track is playing from (album,
// playlist, artist radio).
type playbackContext struct {
	Type         string            `json:"type"`
	URI          string            `json:"uri"`
	Href         string            `json:"href"`
	ExternalURLs map[string]string `json:"external_urls"`
}

// parseTrack rebuilds the playback record from a payload. The record is
// cleared first so no field leaks across tracks. When the context exposes a
// navigable href, one secondary request resolves a human-readable playlist
// name; any failure there leaves the name unset.
//
// Callers must hold the client lock.
func (c *Client) parseTrack(ctx context.Context, p *playbackPayload) {
	c.record = models.PlaybackRecord{}

	if p.Context != nil {
		c.record.ContextType = p.Context.Type
		c.record.ContextURI = p.Context.URI
		if url, ok := p.Context.ExternalURLs["spotify"]; ok {
			c.record.ContextURL = url
		}
		if p.Context.Href != "" {
			c.record.PlaylistName = c.resolvePlaylistName(ctx, p.Context.Href)
		}
	}

	if p.Item == nil {
		return
	}
	item := p.Item

	for _, artist := range item.Artists {
		c.record.Artists = append(c.record.Artists, artist.Name)
	}

	if len(item.Album.Images) > 0 && item.Album.Images[0].URL != "" {
		c.record.CoverURL = item.Album.Images[0].URL
	}

	if url, ok := item.ExternalURLs["spotify"]; ok && url != "" {
		c.record.TrackURL = url
	}

	c.record.Title = item.Name
	c.record.DurationMS = item.DurationMS
	c.record.Album = item.Album.Name
	c.record.Explicit = item.Explicit
	c.record.DiscNumber = item.DiscNumber
	c.record.TrackNumber = item.TrackNumber

	year, month, day := splitReleaseDate(item.Album.ReleaseDate)
	c.record.ReleaseYear = year
	c.record.ReleaseMonth = month
	c.record.ReleaseDay = day
}

// resolvePlaylistName issues the secondary context lookup. Non-200 results
// and malformed bodies are non-fatal and simply yield an empty name.
func (c *Client) resolvePlaylistName(ctx context.Context, href string) string {
	resp, err := c.execute(ctx, http.MethodGet, href, c.token.AccessToken, "")
	if err != nil || resp.Status != http.StatusOK {
		return ""
	}

	var playlist struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Body, &playlist); err != nil {
		return ""
	}
	return playlist.Name
}

// splitReleaseDate splits a release date on "-". Partial dates are valid:
// three parts yield day, month, and year, two parts month and year, one part
// the year alone. An empty input yields all zeroes.
func splitReleaseDate(date string) (year, month, day int) {
	if date == "" {
		return 0, 0, 0
	}

	parts := strings.Split(date, "-")
	switch len(parts) {
	case 3:
		day, _ = strconv.Atoi(parts[2])
		fallthrough
	case 2:
		month, _ = strconv.Atoi(parts[1])
		fallthrough
	case 1:
		year, _ = strconv.Atoi(parts[0])
	}
	return year, month, day
}
