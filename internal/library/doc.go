// Package library walks a local music collection and extracts track
// metadata from audio tags, falling back to the filename when a file's
// tags are unreadable. The scanner is the local-catalog counterpart to
// the Spotify client: both produce [models.Track] sequences for the
// reconciliation engine.
package library
