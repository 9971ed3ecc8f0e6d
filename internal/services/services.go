package services

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/desertthunder/trackdown/internal/models"
)

// Service defines the remote-catalog operations the reconciliation
// pipeline depends on.
type Service interface {
	// Authenticate performs OAuth or token-based authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ExportPlaylist exports a playlist with its complete track listing,
	// paginating internally as needed.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// SearchTrack performs a single best-effort lookup for the query and
	// returns the closest candidate, or [shared.ErrTrackNotFound] when
	// the search yields nothing.
	SearchTrack(ctx context.Context, query string) (*models.Track, error)

	// CreatePlaylist creates a new playlist owned by the authenticated user.
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error)

	// AddTracks appends tracks to an existing playlist.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// Name returns the provider name (e.g. "Spotify").
	Name() string
}

// OAuthService extends Service for providers authenticated through a
// browser-based authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 configuration for the
	// callback server.
	GetOAuthConfig() *oauth2.Config

	// ExchangeCode trades an authorization code for a token.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// SetTokenRefreshCallback registers a hook invoked whenever the
	// underlying token changes, so callers can persist it.
	SetTokenRefreshCallback(callback func(*oauth2.Token))
}
