package library

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/desertthunder/trackdown/internal/models"
)

// TagResult carries the metadata read from one audio file. FallbackUsed
// reports that the tags were absent or unreadable and the title was
// derived from the filename instead; it is never an error condition.
type TagResult struct {
	Track        models.Track
	FallbackUsed bool
}

// ReadTags extracts title and artist metadata from the audio file at
// path. MP3 files are read via ID3v2 frames and FLAC files via the
// vorbis comment block; every other extension, and any file whose tags
// cannot be parsed or lack a title, falls back to the filename stem.
func ReadTags(path string) TagResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return readMP3(path)
	case ".flac":
		return readFLAC(path)
	default:
		return fallback(path)
	}
}

func readMP3(path string) TagResult {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fallback(path)
	}
	defer tag.Close()

	title := strings.TrimSpace(tag.Title())
	if title == "" {
		return fallback(path)
	}

	return TagResult{Track: models.Track{
		Title:  title,
		Artist: strings.TrimSpace(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
		Path:   path,
	}}
}

func readFLAC(path string) TagResult {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fallback(path)
	}

	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			continue
		}

		titles, err := cmts.Get(flacvorbis.FIELD_TITLE)
		if err != nil || len(titles) == 0 || strings.TrimSpace(titles[0]) == "" {
			continue
		}

		track := models.Track{Title: strings.TrimSpace(titles[0]), Path: path}
		if artists, err := cmts.Get(flacvorbis.FIELD_ARTIST); err == nil && len(artists) > 0 {
			track.Artist = strings.TrimSpace(artists[0])
		}
		if albums, err := cmts.Get(flacvorbis.FIELD_ALBUM); err == nil && len(albums) > 0 {
			track.Album = strings.TrimSpace(albums[0])
		}
		return TagResult{Track: track}
	}

	return fallback(path)
}

// fallback derives the title from the filename stem. The artist is left
// empty so key construction applies the Unknown sentinel.
func fallback(path string) TagResult {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return TagResult{
		Track:        models.Track{Title: stem, Path: path},
		FallbackUsed: true,
	}
}
