package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/trackdown/internal/match"
	"github.com/desertthunder/trackdown/internal/models"
	"github.com/desertthunder/trackdown/internal/shared"
	mocks "github.com/desertthunder/trackdown/internal/testing"
)

func playlistExport(name string, tracks ...models.Track) *models.PlaylistExport {
	return &models.PlaylistExport{
		Playlist: models.Playlist{ID: "p1", Name: name, TrackCount: len(tracks)},
		Tracks:   tracks,
	}
}

func TestCompare(t *testing.T) {
	logger := shared.NewLogger(nil)

	t.Run("Classifies Remote Tracks", func(t *testing.T) {
		spotify := &mocks.MockService{
			ExportPlaylistFunc: func(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
				return playlistExport("Mix",
					models.Track{Title: "Let It Be", Artist: "The Beatles"},
					models.Track{Title: "Bohemian Rhapsody", Artist: "Queen"},
				), nil
			},
		}
		library := &mocks.MockScanner{Tracks: []models.Track{
			{Title: "Let It Be (Remastered)", Artist: "Beatles", Path: "/music/a.mp3"},
		}}

		engine := NewReconcileEngine(spotify, library, logger)
		compare, err := engine.Compare(context.Background(), nil, "p1", 80)
		if err != nil {
			t.Fatalf("failed to compare: %v", err)
		}

		if len(compare.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(compare.Results))
		}
		if compare.Results[0].Status != match.Matched {
			t.Errorf("expected remastered variant to match, score %d", compare.Results[0].Score)
		}
		if compare.Results[1].Status != match.Missing {
			t.Error("expected Queen track to be missing")
		}
		if compare.MatchedCount != 1 || compare.MissingCount != 1 {
			t.Errorf("unexpected counts: %d matched, %d missing", compare.MatchedCount, compare.MissingCount)
		}
		if compare.LocalCount != 1 {
			t.Errorf("expected 1 local track, got %d", compare.LocalCount)
		}
	})

	t.Run("Falls Back To Playlist Name", func(t *testing.T) {
		spotify := &mocks.MockService{
			ExportPlaylistFunc: func(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
				if playlistID != "p1" {
					return nil, shared.ErrPlaylistNotFound
				}
				return playlistExport("Road Trip"), nil
			},
			GetPlaylistsFunc: func(ctx context.Context) ([]models.Playlist, error) {
				return []models.Playlist{{ID: "p1", Name: "Road Trip"}}, nil
			},
		}

		engine := NewReconcileEngine(spotify, &mocks.MockScanner{}, logger)
		compare, err := engine.Compare(context.Background(), nil, "Road Trip", 80)
		if err != nil {
			t.Fatalf("failed to compare by name: %v", err)
		}

		if compare.Playlist.Playlist.Name != "Road Trip" {
			t.Errorf("unexpected playlist %s", compare.Playlist.Playlist.Name)
		}
	})

	t.Run("Unknown Playlist", func(t *testing.T) {
		engine := NewReconcileEngine(&mocks.MockService{}, &mocks.MockScanner{}, logger)

		if _, err := engine.Compare(context.Background(), nil, "nope", 80); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Invalid Threshold", func(t *testing.T) {
		engine := NewReconcileEngine(&mocks.MockService{}, &mocks.MockScanner{}, logger)

		if _, err := engine.Compare(context.Background(), nil, "p1", 101); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Missing Collaborators", func(t *testing.T) {
		engine := NewReconcileEngine(nil, nil, logger)

		if _, err := engine.Compare(context.Background(), nil, "p1", 80); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Progress Updates Never Block", func(t *testing.T) {
		spotify := &mocks.MockService{
			ExportPlaylistFunc: func(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
				return playlistExport("Mix", models.Track{Title: "Song", Artist: "Artist"}), nil
			},
		}

		engine := NewReconcileEngine(spotify, &mocks.MockScanner{}, logger)

		// Unbuffered channel with no reader: sends must be skipped, not block.
		progress := make(chan ProgressUpdate)
		if _, err := engine.Compare(context.Background(), progress, "p1", 80); err != nil {
			t.Fatalf("failed to compare with blocked channel: %v", err)
		}
	})
}

func TestResolveMissing(t *testing.T) {
	logger := shared.NewLogger(nil)

	results := []match.Result{
		{Query: "A - B", Status: match.Matched, Score: 100},
		{Query: "C - D", Status: match.Missing},
		{Query: "E - F", Status: match.Missing},
	}

	t.Run("Preserves Order And Null Outcomes", func(t *testing.T) {
		engine := NewReconcileEngine(&mocks.MockService{}, &mocks.MockScanner{}, logger)

		lookup := func(ctx context.Context, key string) (string, error) {
			if key == "C - D" {
				return "id-cd", nil
			}
			return "", shared.ErrTrackNotFound
		}

		additions, err := engine.ResolveMissing(context.Background(), nil, results, lookup)
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}

		if len(additions) != 2 {
			t.Fatalf("expected one addition per missing result, got %d", len(additions))
		}
		if additions[0].SourceKey != "C - D" || additions[0].TrackID != "id-cd" {
			t.Errorf("unexpected first addition: %+v", additions[0])
		}
		if additions[1].SourceKey != "E - F" || additions[1].TrackID != "" {
			t.Errorf("expected null outcome for E - F, got %+v", additions[1])
		}
	})

	t.Run("No Missing Results", func(t *testing.T) {
		engine := NewReconcileEngine(&mocks.MockService{}, &mocks.MockScanner{}, logger)

		additions, err := engine.ResolveMissing(context.Background(), nil, results[:1], func(ctx context.Context, key string) (string, error) {
			t.Error("lookup should not be called")
			return "", nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(additions) != 0 {
			t.Errorf("expected no additions, got %d", len(additions))
		}
	})

	t.Run("Auth Failure Aborts", func(t *testing.T) {
		engine := NewReconcileEngine(&mocks.MockService{}, &mocks.MockScanner{}, logger)

		_, err := engine.ResolveMissing(context.Background(), nil, results, func(ctx context.Context, key string) (string, error) {
			return "", shared.ErrTokenExpired
		})
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestRun(t *testing.T) {
	logger := shared.NewLogger(nil)

	newSpotify := func() *mocks.MockService {
		return &mocks.MockService{
			ExportPlaylistFunc: func(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
				return playlistExport("Mix",
					models.Track{Title: "Let It Be", Artist: "The Beatles"},
					models.Track{Title: "Bohemian Rhapsody", Artist: "Queen"},
					models.Track{Title: "Obscure B-Side", Artist: "Nobody"},
				), nil
			},
			SearchTrackFunc: func(ctx context.Context, query string) (*models.Track, error) {
				if query == "Queen - Bohemian Rhapsody" {
					return &models.Track{ID: "sp-queen", Title: "Bohemian Rhapsody", Artist: "Queen"}, nil
				}
				return nil, shared.ErrTrackNotFound
			},
		}
	}
	library := &mocks.MockScanner{Tracks: []models.Track{
		{Title: "Let It Be (Remastered)", Artist: "Beatles", Path: "/music/a.mp3"},
	}}

	t.Run("Full Run Creates Playlist", func(t *testing.T) {
		spotify := newSpotify()
		engine := NewReconcileEngine(spotify, library, logger)

		result, err := engine.Run(context.Background(), nil, RunOpts{
			PlaylistID: "p1",
			Threshold:  80,
			SearchRate: 1000, // keep the test fast
		})
		if err != nil {
			t.Fatalf("failed to run: %v", err)
		}

		if result.Compare.MissingCount != 2 {
			t.Fatalf("expected 2 missing tracks, got %d", result.Compare.MissingCount)
		}
		if result.Staged != 1 || result.Unmatched != 1 {
			t.Errorf("expected 1 staged and 1 unmatched, got %d/%d", result.Staged, result.Unmatched)
		}

		if result.Created == nil {
			t.Fatal("expected playlist to be created")
		}
		if result.Created.Name != DefaultPlaylistName {
			t.Errorf("expected default playlist name, got %s", result.Created.Name)
		}
		if result.Created.Public {
			t.Error("expected private playlist")
		}

		if len(spotify.Added) != 1 || len(spotify.Added[0]) != 1 || spotify.Added[0][0] != "sp-queen" {
			t.Errorf("unexpected staged tracks: %v", spotify.Added)
		}
	})

	t.Run("Dry Run Skips Resolution", func(t *testing.T) {
		spotify := newSpotify()
		engine := NewReconcileEngine(spotify, library, logger)

		result, err := engine.Run(context.Background(), nil, RunOpts{
			PlaylistID: "p1",
			Threshold:  80,
			DryRun:     true,
		})
		if err != nil {
			t.Fatalf("failed to run: %v", err)
		}

		if result.Created != nil {
			t.Error("expected no playlist on dry run")
		}
		if len(spotify.SearchQueries) != 0 {
			t.Errorf("expected no lookups on dry run, got %v", spotify.SearchQueries)
		}
	})

	t.Run("No Missing Tracks Skips Creation", func(t *testing.T) {
		spotify := newSpotify()
		fullLibrary := &mocks.MockScanner{Tracks: []models.Track{
			{Title: "Let It Be", Artist: "The Beatles"},
			{Title: "Bohemian Rhapsody", Artist: "Queen"},
			{Title: "Obscure B-Side", Artist: "Nobody"},
		}}

		engine := NewReconcileEngine(spotify, fullLibrary, logger)
		result, err := engine.Run(context.Background(), nil, RunOpts{PlaylistID: "p1", Threshold: 80})
		if err != nil {
			t.Fatalf("failed to run: %v", err)
		}

		if result.Compare.MissingCount != 0 {
			t.Fatalf("expected nothing missing, got %d", result.Compare.MissingCount)
		}
		if result.Created != nil {
			t.Error("expected no playlist when nothing is missing")
		}
	})

	t.Run("Nothing Resolvable Skips Creation", func(t *testing.T) {
		spotify := newSpotify()
		spotify.SearchTrackFunc = func(ctx context.Context, query string) (*models.Track, error) {
			return nil, shared.ErrTrackNotFound
		}

		engine := NewReconcileEngine(spotify, library, logger)
		result, err := engine.Run(context.Background(), nil, RunOpts{
			PlaylistID: "p1",
			Threshold:  80,
			SearchRate: 1000,
		})
		if err != nil {
			t.Fatalf("failed to run: %v", err)
		}

		if result.Created != nil {
			t.Error("expected no playlist when nothing resolves")
		}
		if result.Unmatched != 2 {
			t.Errorf("expected 2 unmatched, got %d", result.Unmatched)
		}
	})

	t.Run("Custom Playlist Name", func(t *testing.T) {
		spotify := newSpotify()
		var createdName string
		spotify.CreatePlaylistFunc = func(ctx context.Context, name, description string, public bool) (*models.Playlist, error) {
			createdName = name
			return &models.Playlist{ID: "new1", Name: name}, nil
		}

		engine := NewReconcileEngine(spotify, library, logger)
		if _, err := engine.Run(context.Background(), nil, RunOpts{
			PlaylistID:   "p1",
			Threshold:    80,
			PlaylistName: "Wantlist",
			SearchRate:   1000,
		}); err != nil {
			t.Fatalf("failed to run: %v", err)
		}

		if createdName != "Wantlist" {
			t.Errorf("expected custom playlist name, got %s", createdName)
		}
	})

	t.Run("Lookups Query Canonical Keys", func(t *testing.T) {
		spotify := newSpotify()
		engine := NewReconcileEngine(spotify, library, logger)

		if _, err := engine.Run(context.Background(), nil, RunOpts{
			PlaylistID: "p1",
			Threshold:  80,
			SearchRate: 1000,
		}); err != nil {
			t.Fatalf("failed to run: %v", err)
		}

		want := []string{"Queen - Bohemian Rhapsody", "Nobody - Obscure B-Side"}
		if fmt.Sprint(spotify.SearchQueries) != fmt.Sprint(want) {
			t.Errorf("unexpected lookup queries: %v", spotify.SearchQueries)
		}
	})
}
