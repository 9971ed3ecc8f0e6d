package ui

import (
	"github.com/desertthunder/trackdown/internal/models"
	"github.com/desertthunder/trackdown/internal/tasks"
)

// playlistsFetchedMsg carries the user's playlists after the initial fetch.
type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

// compareCompleteMsg carries the classification once the compare phase finishes.
type compareCompleteMsg struct {
	compare *tasks.CompareResult
	err     error
}

// progressUpdateMsg forwards one engine progress update into the Update loop.
type progressUpdateMsg tasks.ProgressUpdate

// runCompleteMsg carries the final result once resolution finishes.
type runCompleteMsg struct {
	result *tasks.RunResult
	err    error
}
