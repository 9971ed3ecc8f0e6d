package library

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/trackdown/internal/models"
	"github.com/desertthunder/trackdown/internal/shared"
)

// DefaultExtensions are the audio file extensions scanned when the
// configuration does not override them.
var DefaultExtensions = []string{".mp3", ".flac", ".wav"}

// Scanner walks a directory tree and extracts track metadata from every
// audio file it finds.
type Scanner struct {
	root       string
	extensions map[string]bool
	logger     *log.Logger
}

// NewScanner creates a Scanner rooted at root. An empty extensions slice
// selects [DefaultExtensions]; a nil logger gets a default stderr logger.
func NewScanner(root string, extensions []string, logger *log.Logger) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}

	return &Scanner{root: root, extensions: exts, logger: logger}
}

// Root returns the directory the scanner walks.
func (s *Scanner) Root() string {
	return s.root
}

// Scan walks the library root and returns one track per matching audio
// file, in lexical path order. Files with unreadable metadata are kept
// with a filename-derived title rather than skipped; only a failure to
// walk the tree itself is an error.
func (s *Scanner) Scan(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	fallbacks := 0

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		result := ReadTags(path)
		if result.FallbackUsed {
			fallbacks++
			s.logger.Debug("unreadable tags, using filename", "path", path)
		}
		if info, infoErr := d.Info(); infoErr == nil {
			result.Track.ModTime = info.ModTime()
		}
		tracks = append(tracks, result.Track)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLibraryUnreadable, err)
	}

	s.logger.Info("scanned library", "root", s.root, "tracks", len(tracks), "fallbacks", fallbacks)
	return tracks, nil
}
