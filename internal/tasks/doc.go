// Package tasks orchestrates the reconciliation pipeline with real-time
// progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines the pipeline operations:
//
//  1. [Engine.Compare] : Classify a playlist against the local library
//     - Fetches the playlist's tracks from Spotify
//     - Scans the local collection (filesystem or scan cache)
//     - Builds canonical keys and runs the similarity classification
//     - Returns one result per playlist track, order preserved
//
//  2. [Engine.Resolve] : Finish a reconciliation from a classification
//     - Looks up each missing track via rate-limited Spotify search
//     - Creates a playlist holding the tracks that could be resolved;
//       an empty missing or resolved set skips creation
//
//  3. [Engine.Run] : Compare then Resolve
//     - A dry run stops after classification
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates. The
// [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with
// default to prevent blocking.
//
// # Failure Semantics
//
// A single track's failed lookup never aborts the run; it is recorded as
// a null outcome in [ResolvedAddition] and reported in the summary. Only
// authentication failures and collaborator errors abort.
package tasks
