package match

import (
	"fmt"

	"github.com/desertthunder/trackdown/internal/models"
)

// UnknownArtist is the sentinel used when a source provides no artist.
const UnknownArtist = "Unknown"

// Canonical builds the comparison key for an artist/title pair. The key
// stays human-readable (no case folding or punctuation stripping) so it
// can be logged and fed back into search queries as-is; the similarity
// scorer owns normalization.
//
// An empty title yields an empty key, which callers must drop before
// reconciliation.
func Canonical(artist, title string) string {
	if title == "" {
		return ""
	}
	if artist == "" {
		artist = UnknownArtist
	}
	return fmt.Sprintf("%s - %s", artist, title)
}

// CanonicalKeys converts a track sequence into canonical keys, preserving
// order. Tracks without a usable title are dropped.
func CanonicalKeys(tracks []models.Track) []string {
	keys := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if key := Canonical(t.Artist, t.Title); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
