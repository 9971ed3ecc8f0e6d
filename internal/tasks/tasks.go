package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/trackdown/internal/match"
	"github.com/desertthunder/trackdown/internal/models"
	"github.com/desertthunder/trackdown/internal/services"
	"github.com/desertthunder/trackdown/internal/shared"
)

// DefaultPlaylistName is the name given to the created playlist when the
// caller does not override it.
const DefaultPlaylistName = "Missing Songs"

// DefaultSearchRate is the resolution lookup rate in requests per second.
const DefaultSearchRate = 5.0

// LibraryScanner supplies the local catalog. Implemented by the
// filesystem scanner and by the scan-cache repository.
type LibraryScanner interface {
	Scan(ctx context.Context) ([]models.Track, error)
}

// RunOpts configures a reconciliation run.
type RunOpts struct {
	PlaylistID   string  // Playlist ID or name to reconcile
	Threshold    int     // Similarity threshold in [0, 100]
	DryRun       bool    // Stop after classification; no lookups, no playlist
	PlaylistName string  // Name for the created playlist (DefaultPlaylistName if empty)
	SearchRate   float64 // Lookups per second (DefaultSearchRate if zero)
}

// CompareResult holds the classification of one playlist against the
// local library.
type CompareResult struct {
	Playlist     *models.PlaylistExport // Remote playlist with tracks
	LocalCount   int                    // Local tracks scanned
	Results      []match.Result         // One per playlist track, order preserved
	MatchedCount int
	MissingCount int
}

// RunResult contains all data from a full reconciliation run.
type RunResult struct {
	Compare   *CompareResult
	Additions []ResolvedAddition // One per missing track, order preserved
	Created   *models.Playlist   // Created playlist, nil when skipped
	Staged    int                // Missing tracks resolved to a concrete ID
	Unmatched int                // Missing tracks the lookup could not resolve
}

// Engine defines the reconciliation operations.
type Engine interface {
	// Compare classifies a playlist's tracks against the local library.
	Compare(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, threshold int) (*CompareResult, error)

	// Run performs a full reconciliation: compare, resolve missing tracks
	// via search, and create a playlist holding the resolved tracks.
	Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*RunResult, error)

	// Resolve finishes a reconciliation from an existing classification.
	Resolve(ctx context.Context, progress chan<- ProgressUpdate, compare *CompareResult, opts RunOpts) (*RunResult, error)
}

// ReconcileEngine implements Engine against a Spotify service and a
// local library scanner.
type ReconcileEngine struct {
	spotify services.Service
	library LibraryScanner
	logger  *log.Logger
}

// NewReconcileEngine creates an engine with the provided collaborators.
// A nil logger gets a default stderr logger.
func NewReconcileEngine(spotify services.Service, library LibraryScanner, logger *log.Logger) *ReconcileEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "task", "reconcile")
	return &ReconcileEngine{spotify: spotify, library: library, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReconcileEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// resolvePlaylist exports the playlist by ID, falling back to a
// name lookup across the user's playlists when the ID fetch fails.
func (e *ReconcileEngine) resolvePlaylist(ctx context.Context, idOrName string) (*models.PlaylistExport, error) {
	export, err := e.spotify.ExportPlaylist(ctx, idOrName)
	if err == nil {
		return export, nil
	}
	if errors.Is(err, shared.ErrTokenExpired) || errors.Is(err, shared.ErrNotAuthenticated) {
		return nil, err
	}

	playlists, listErr := e.spotify.GetPlaylists(ctx)
	if listErr != nil {
		return nil, fmt.Errorf("%w: failed to list playlists: %v", shared.ErrAPIRequest, listErr)
	}

	for _, pl := range playlists {
		if pl.Name == idOrName {
			return e.spotify.ExportPlaylist(ctx, pl.ID)
		}
	}

	return nil, fmt.Errorf("%w: no playlist with ID or name '%s'", shared.ErrPlaylistNotFound, idOrName)
}

// Compare fetches the playlist, scans the library, and classifies every
// playlist track as matched or missing.
func (e *ReconcileEngine) Compare(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, threshold int) (*CompareResult, error) {
	if e.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if e.library == nil {
		return nil, fmt.Errorf("%w: library scanner not initialized", shared.ErrServiceUnavailable)
	}
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: threshold must be in [0, 100], got %d", shared.ErrInvalidArgument, threshold)
	}

	e.sendProgress(progress, fetchPlaylistUpdate(1, 3))
	export, err := e.resolvePlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, foundPlaylistUpdate(1, 3, export))

	e.sendProgress(progress, scanLibraryUpdate(2, 3))
	local, err := e.library.Scan(ctx)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, scannedLibraryUpdate(2, 3, len(local)))

	e.sendProgress(progress, compareUpdate(3, 3))
	remoteKeys := match.CanonicalKeys(export.Tracks)
	localKeys := match.CanonicalKeys(local)
	results := match.Reconcile(remoteKeys, localKeys, threshold)

	compare := &CompareResult{
		Playlist:   export,
		LocalCount: len(local),
		Results:    results,
	}
	for _, r := range results {
		if r.Status == match.Matched {
			compare.MatchedCount++
		} else {
			compare.MissingCount++
		}
	}

	e.logger.Info("reconciled playlist",
		"playlist", export.Playlist.Name,
		"remote", len(remoteKeys),
		"local", len(localKeys),
		"matched", compare.MatchedCount,
		"missing", compare.MissingCount)

	return compare, nil
}

// Run performs a full reconciliation. Missing tracks are looked up via
// rate-limited search; the ones that resolve are staged into a new
// private playlist. A dry run stops after classification, and an empty
// staged set skips playlist creation.
func (e *ReconcileEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*RunResult, error) {
	compare, err := e.Compare(ctx, progress, opts.PlaylistID, opts.Threshold)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		e.logger.Info("dry run, skipping resolution", "missing", compare.MissingCount)
		return &RunResult{Compare: compare}, nil
	}

	return e.Resolve(ctx, progress, compare, opts)
}

// Resolve performs the second half of a reconciliation from an existing
// classification: look up each missing track and stage the resolved ones
// into a new private playlist. An empty staged set skips creation.
func (e *ReconcileEngine) Resolve(ctx context.Context, progress chan<- ProgressUpdate, compare *CompareResult, opts RunOpts) (*RunResult, error) {
	result := &RunResult{Compare: compare}

	if compare.MissingCount == 0 {
		e.logger.Info("no missing tracks, skipping playlist creation")
		return result, nil
	}

	searchRate := opts.SearchRate
	if searchRate <= 0 {
		searchRate = DefaultSearchRate
	}
	limiter := rate.NewLimiter(rate.Limit(searchRate), 1)

	lookup := func(ctx context.Context, key string) (string, error) {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
		track, err := e.spotify.SearchTrack(ctx, key)
		if err != nil {
			return "", err
		}
		return track.ID, nil
	}

	additions, err := e.ResolveMissing(ctx, progress, compare.Results, lookup)
	if err != nil {
		return result, err
	}
	result.Additions = additions

	var trackIDs []string
	for _, a := range additions {
		if a.TrackID != "" {
			trackIDs = append(trackIDs, a.TrackID)
			result.Staged++
		} else {
			result.Unmatched++
		}
	}

	if len(trackIDs) == 0 {
		e.logger.Info("no missing tracks could be resolved, skipping playlist creation")
		return result, nil
	}

	name := opts.PlaylistName
	if name == "" {
		name = DefaultPlaylistName
	}

	e.sendProgress(progress, createPlaylistUpdate(1, 1, nil))
	description := fmt.Sprintf("Tracks from %s not found in the local library", compare.Playlist.Playlist.Name)
	created, err := e.spotify.CreatePlaylist(ctx, name, description, false)
	if err != nil {
		return result, fmt.Errorf("%w: failed to create playlist: %v", shared.ErrAPIRequest, err)
	}

	if err := e.spotify.AddTracks(ctx, created.ID, trackIDs); err != nil {
		return result, fmt.Errorf("%w: failed to add tracks: %v", shared.ErrAPIRequest, err)
	}

	result.Created = created
	e.sendProgress(progress, createPlaylistUpdate(1, 1, created))
	e.logger.Info("created playlist", "name", created.Name, "id", created.ID, "tracks", len(trackIDs))

	return result, nil
}
