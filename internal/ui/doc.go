// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist reconciliation:
//  1. [PlaylistListView] : Browse and select Spotify playlists
//  2. [CompareView] : Monitor the fetch/scan/compare phases
//  3. [ResultListView] : Review each track's matched/missing classification
//  4. [ConfirmView] : Confirm resolution of missing tracks
//  5. [ResolveView] : Monitor real-time search progress
//  6. [SummaryView] : Display counts, staged additions, and the created playlist
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ReconcileEngine, providing non-blocking status reporting during long phases.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
