package models

import "time"

// Playlist represents a Spotify playlist's metadata.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// PlaylistExport represents a playlist with its full track listing.
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}

// Track represents a music track from either the remote catalog or the
// local library. Remote tracks carry ID/URI/ISRC; local tracks carry Path.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int       // Duration in seconds
	ISRC     string    // International Standard Recording Code
	URI      string    // Spotify URI (remote tracks only)
	Path     string    // Absolute file path (local tracks only)
	ModTime  time.Time // File modification time (local tracks only)
}

// LocalTrack is a scanned library entry persisted in the scan cache.
type LocalTrack struct {
	ID        string
	Path      string
	Title     string
	Artist    string
	Album     string
	Fallback  bool // true when tags were unreadable and the filename was used
	ModTime   time.Time
	ScannedAt time.Time
}

// AsTrack converts a cached entry back into the shared track shape.
func (l LocalTrack) AsTrack() Track {
	return Track{
		Title:   l.Title,
		Artist:  l.Artist,
		Album:   l.Album,
		Path:    l.Path,
		ModTime: l.ModTime,
	}
}
