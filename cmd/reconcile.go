package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdown/internal/formatter"
	"github.com/desertthunder/trackdown/internal/match"
	"github.com/desertthunder/trackdown/internal/shared"
	"github.com/desertthunder/trackdown/internal/tasks"
)

// Reconcile classifies a playlist's tracks against the local library and,
// unless --dry-run is set, resolves the missing ones into a new playlist.
func (r *Runner) Reconcile(ctx context.Context, cmd *cli.Command) error {
	playlist := cmd.String("playlist")
	threshold := cmd.Int("threshold")
	dryRun := cmd.Bool("dry-run")
	cached := cmd.Bool("cached")
	name := cmd.String("name")
	output := cmd.String("output")
	format := cmd.String("format")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	if threshold < 0 {
		threshold = r.config.Matching.Threshold
	}
	if err := r.validateThreshold(threshold); err != nil {
		return err
	}

	scanner, closer, err := r.libraryScanner(cached, cmd.String("root"))
	if err != nil {
		return err
	}
	defer closer()

	engine := tasks.NewReconcileEngine(r.spotify, scanner, r.logger)
	opts := tasks.RunOpts{
		PlaylistID:   playlist,
		Threshold:    threshold,
		DryRun:       dryRun,
		PlaylistName: name,
		SearchRate:   r.config.Matching.SearchRateLimit,
	}

	r.logger.Infof("reconciling playlist %v with threshold %v", playlist, threshold)

	result, err := engine.Run(ctx, nil, opts)
	if err != nil {
		if reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd); reauthed {
			if authErr != nil {
				return authErr
			}
			if result, err = engine.Run(ctx, nil, opts); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	compare := result.Compare

	r.writePlainHeader(fmt.Sprintf("Reconciliation: %s", compare.Playlist.Playlist.Name))
	r.writePlain("Playlist tracks: %d\n", len(compare.Results))
	r.writePlain("Local tracks: %d\n", compare.LocalCount)
	r.writePlain("Matched: %d\n", compare.MatchedCount)
	r.writePlain("Missing: %d\n", compare.MissingCount)

	if compare.MissingCount > 0 {
		r.writePlainln("Missing tracks:")
		for _, res := range compare.Results {
			if res.Status != match.Missing {
				continue
			}
			if res.Candidate != "" {
				r.writePlain("  ✗ %s (closest: %s, score %d)\n", res.Query, res.Candidate, res.Score)
			} else {
				r.writePlain("  ✗ %s\n", res.Query)
			}
		}
	}

	if dryRun {
		r.writePlainln("Dry run: no lookups performed, no playlist created.")
	} else if result.Staged > 0 {
		r.writePlainln("Resolved %d of %d missing tracks.", result.Staged, compare.MissingCount)
		if result.Created != nil {
			r.writePlain("✓ Created playlist '%s' (ID: %s)\n", result.Created.Name, result.Created.ID)
		}
		if result.Unmatched > 0 {
			r.writePlain("⚠ %d tracks had no search candidate\n", result.Unmatched)
		}
	} else if compare.MissingCount > 0 {
		r.writePlainln("⚠ None of the missing tracks could be resolved; no playlist created.")
	}

	if output != "" {
		written, err := formatter.WriteReport(result, output, format)
		if err != nil {
			return err
		}
		r.writePlain("✓ Report written to %s\n", written)
	}

	return nil
}
