// Package repositories implements SQLite persistence for the library
// scan cache.
//
// Scanning a large collection re-reads every file's tags, which is the
// slowest part of a reconciliation run. [LibraryRepository] stores the
// result of a scan so later runs can reuse it with --cached instead of
// walking the tree again.
package repositories
