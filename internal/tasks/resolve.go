package tasks

import (
	"context"
	"errors"

	"github.com/desertthunder/trackdown/internal/match"
	"github.com/desertthunder/trackdown/internal/shared"
)

// LookupFunc maps a canonical key to a concrete remote track ID. A
// best-effort contract: one attempt, no retry.
type LookupFunc func(ctx context.Context, key string) (string, error)

// ResolvedAddition records the lookup outcome for one missing track. An
// empty TrackID means the search found nothing, which is a valid
// terminal state rather than an error.
type ResolvedAddition struct {
	SourceKey string `json:"source_key"`
	TrackID   string `json:"track_id,omitempty"`
}

// ResolveMissing invokes lookup for every Missing result, in input
// order. Lookups that find nothing are recorded with an empty TrackID
// and the pipeline continues; only cancellation and authentication
// failures abort.
func (e *ReconcileEngine) ResolveMissing(ctx context.Context, progress chan<- ProgressUpdate, results []match.Result, lookup LookupFunc) ([]ResolvedAddition, error) {
	missing := match.MissingKeys(results)
	if len(missing) == 0 {
		return nil, nil
	}

	e.sendProgress(progress, resolveUpdate(0, len(missing), ""))

	additions := make([]ResolvedAddition, 0, len(missing))
	for i, key := range missing {
		e.sendProgress(progress, resolveUpdate(i+1, len(missing), key))

		id, err := lookup(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return additions, ctx.Err()
			}
			if errors.Is(err, shared.ErrTokenExpired) || errors.Is(err, shared.ErrNotAuthenticated) {
				return additions, err
			}
			e.logger.Debug("lookup found no candidate", "key", key, "err", err)
			id = ""
		}

		additions = append(additions, ResolvedAddition{SourceKey: key, TrackID: id})
	}

	return additions, nil
}
