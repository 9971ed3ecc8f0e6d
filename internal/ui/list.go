package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/trackdown/internal/match"
	"github.com/desertthunder/trackdown/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = resultItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// resultItem wraps [match.Result] to implement [list.Item].
type resultItem struct {
	result match.Result
}

func (i resultItem) FilterValue() string { return i.result.Query }
func (i resultItem) Title() string       { return i.result.Query }
func (i resultItem) Description() string {
	if i.result.Status == match.Matched {
		return fmt.Sprintf("✓ matched (%d) • %s", i.result.Score, i.result.Candidate)
	}
	if i.result.Candidate == "" {
		return "✗ missing"
	}
	return fmt.Sprintf("✗ missing • closest (%d): %s", i.result.Score, i.result.Candidate)
}
