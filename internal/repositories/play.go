package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/nowplayd/internal/models"
	"github.com/desertthunder/nowplayd/internal/shared"
)

// PlayRepository implements models.Repository[*models.Play] for playback history.
//
// Handles history CRUD operations with soft delete support and
// recency-ordered listing for the CLI history view.
type PlayRepository struct {
	db *sql.DB
}

// NewPlayRepository creates a new PlayRepository with the given database connection
func NewPlayRepository(db *sql.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// Create inserts a new history entry into the database with generated ID and sequence
func (r *PlayRepository) Create(play *models.Play) error {
	sequence, err := NextSequence(r.db, "plays")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	play.SetID(shared.GenerateID())
	play.Sequence = sequence

	if err := play.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO plays (
			id, sequence, title, artist, album, track_url,
			duration_ms, played_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		play.ID(), play.Sequence, play.Title, play.Artist, play.Album,
		play.TrackURL, play.DurationMS, play.PlayedAt, play.CreatedAt(), play.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play: %w", err)
	}

	return nil
}

// Get retrieves a history entry by its ID, excluding soft-deleted records
func (r *PlayRepository) Get(id string) (*models.Play, error) {
	query := `
		SELECT id, sequence, title, artist, album, track_url,
		       duration_ms, played_at, created_at, updated_at
		FROM plays
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.scanPlay(r.db.QueryRow(query, id))
}

// Update modifies an existing history entry
func (r *PlayRepository) Update(play *models.Play) error {
	if err := play.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE plays
		SET title = ?, artist = ?, album = ?, track_url = ?,
		    duration_ms = ?, played_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query,
		play.Title, play.Artist, play.Album, play.TrackURL,
		play.DurationMS, play.PlayedAt, time.Now(), play.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update play: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("play %s not found", play.ID())
	}

	return nil
}

// Delete soft-deletes a history entry by setting its deleted_at timestamp
func (r *PlayRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE plays SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete play: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("play %s not found", id)
	}

	return nil
}

// List retrieves history entries matching the given criteria, newest first.
//
// Supported criteria: "limit" (int), "artist" (string), "album" (string).
func (r *PlayRepository) List(criteria map[string]any) ([]*models.Play, error) {
	query := `
		SELECT id, sequence, title, artist, album, track_url,
		       duration_ms, played_at, created_at, updated_at
		FROM plays
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}
	if album, ok := criteria["album"].(string); ok && album != "" {
		query += " AND album = ?"
		args = append(args, album)
	}

	query += " ORDER BY played_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}
	defer rows.Close()

	var plays []*models.Play
	for rows.Next() {
		play, err := r.scanPlay(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, play)
	}

	return plays, rows.Err()
}

// Latest returns the most recent history entry, or nil when the history is empty.
func (r *PlayRepository) Latest() (*models.Play, error) {
	plays, err := r.List(map[string]any{"limit": 1})
	if err != nil {
		return nil, err
	}
	if len(plays) == 0 {
		return nil, nil
	}
	return plays[0], nil
}

// scanner abstracts sql.Row and sql.Rows for scanPlay.
type scanner interface {
	Scan(dest ...any) error
}

func (r *PlayRepository) scanPlay(row scanner) (*models.Play, error) {
	var play models.Play
	var id string
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&id, &play.Sequence, &play.Title, &play.Artist, &play.Album,
		&play.TrackURL, &play.DurationMS, &play.PlayedAt, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("play not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan play: %w", err)
	}

	play.SetID(id)
	play.SetTimestamps(createdAt, updatedAt)
	return &play, nil
}
