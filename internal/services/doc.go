// Package services defines the [Service] interface for the remote music
// catalog and implements it for Spotify.
//
// # Service Interface
//
// The reconciliation pipeline consumes the remote catalog through this
// narrow contract: fetch a playlist's tracks, search for a track by
// canonical key, create a playlist, and add tracks to it. The pipeline
// never sees provider-specific response shapes.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token
// refresh. The [oauth2.Config] client refreshes expired tokens using the
// refresh token; a refresh callback lets callers persist new tokens back
// to configuration.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrPlaylistNotFound] : Playlist ID not found
//   - [shared.ErrTrackNotFound] : Search returned no candidates
package services
