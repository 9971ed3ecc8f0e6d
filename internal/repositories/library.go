package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/trackdown/internal/models"
	"github.com/desertthunder/trackdown/internal/shared"
)

// LibraryRepository persists scanned library tracks keyed by file path.
type LibraryRepository struct {
	db     *sql.DB
	logger *log.Logger
}

// NewLibraryRepository creates a repository backed by db. A nil logger
// gets a default stderr logger.
func NewLibraryRepository(db *sql.DB, logger *log.Logger) *LibraryRepository {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LibraryRepository{db: db, logger: logger}
}

// Replace clears the cache and stores the given scan results in a single
// transaction, so readers never observe a half-written cache. File
// modification times from the scan are recorded so stale entries are
// visible against a later walk.
func (r *LibraryRepository) Replace(tracks []models.Track) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM local_tracks"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO local_tracks (id, path, title, artist, album, fallback, mod_time, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, t := range tracks {
		fallback := t.Artist == ""
		var modTime any
		if !t.ModTime.IsZero() {
			modTime = t.ModTime.UTC()
		}
		if _, err := stmt.Exec(shared.GenerateID(), t.Path, t.Title, t.Artist, t.Album, fallback, modTime, now); err != nil {
			return fmt.Errorf("failed to insert track %s: %w", t.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scan cache: %w", err)
	}

	r.logger.Info("replaced scan cache", "tracks", len(tracks))
	return nil
}

// All returns every cached track ordered by path, matching the order a
// fresh filesystem walk would produce.
func (r *LibraryRepository) All() ([]models.LocalTrack, error) {
	rows, err := r.db.Query(`
		SELECT id, path, title, artist, album, fallback, mod_time, scanned_at
		FROM local_tracks ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	defer rows.Close()

	var tracks []models.LocalTrack
	for rows.Next() {
		var t models.LocalTrack
		var album sql.NullString
		var modTime sql.NullTime
		if err := rows.Scan(&t.ID, &t.Path, &t.Title, &t.Artist, &album, &t.Fallback, &modTime, &t.ScannedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		t.Album = album.String
		t.ModTime = modTime.Time
		tracks = append(tracks, t)
	}

	return tracks, rows.Err()
}

// Scan returns the cached tracks in the shared track shape. It satisfies
// the same contract as a filesystem scanner, letting the reconciliation
// engine run against the cache.
func (r *LibraryRepository) Scan(ctx context.Context) ([]models.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cached, err := r.All()
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(cached))
	for _, c := range cached {
		tracks = append(tracks, c.AsTrack())
	}
	return tracks, nil
}

// Count returns the number of cached tracks.
func (r *LibraryRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM local_tracks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cache: %w", err)
	}
	return count, nil
}

// Clear removes every cached track.
func (r *LibraryRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM local_tracks"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
