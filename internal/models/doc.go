// Package models defines the shared value types passed between the Spotify
// client, the library scanner, the reconciliation engine, and the CLI.
//
//   - [Playlist] : Basic playlist metadata from the Spotify API
//   - [PlaylistExport] : Playlist with complete track listing
//   - [Track] : Song metadata from either catalog (remote or local)
//   - [LocalTrack] : Scan-cache row persisted by the repositories package
//
// All types are plain values; none carry behavior beyond simple conversions.
package models
