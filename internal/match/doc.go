// Package match implements the reconciliation core: canonical key
// construction, token-order-insensitive similarity scoring, and
// threshold-based classification of remote tracks against a local
// collection.
//
//   - [Canonical] : builds the "Artist - Title" comparison key
//   - [Similarity] : scores two keys on an integer 0-100 scale
//   - [Reconcile] : classifies each remote key as Matched or Missing
//
// The package is pure computation. It performs no I/O, takes no
// context, and owns no mutable state; callers supply ordered key
// sequences and receive a fresh result sequence.
package match
