package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdown/internal/library"
	"github.com/desertthunder/trackdown/internal/repositories"
	"github.com/desertthunder/trackdown/internal/shared"
	"github.com/desertthunder/trackdown/internal/tasks"
)

// libraryScanner builds the local-catalog source for a command: the scan
// cache repository when cached is set, otherwise a filesystem scanner. The
// returned closer releases the database handle when one was opened.
func (r *Runner) libraryScanner(cached bool, root string) (tasks.LibraryScanner, func(), error) {
	if cached {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open scan cache: %w", err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		repo := repositories.NewLibraryRepository(db, r.logger)
		return repo, func() { db.Close() }, nil
	}

	if root == "" {
		root = r.config.Library.Root
	}

	// Validate the effective root up front so a bad path fails before
	// any playlist is fetched.
	cfg := *r.config
	cfg.Library.Root = root
	if err := cfg.ValidateLibrary(); err != nil {
		return nil, nil, err
	}

	return library.NewScanner(root, r.config.Library.Extensions, r.logger), func() {}, nil
}

// Scan walks the configured library root, reads tags from each audio file,
// and optionally stores the results in the scan cache.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	root := cmd.String("root")
	cache := cmd.Bool("cache")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	scanner, closer, err := r.libraryScanner(false, root)
	if err != nil {
		return err
	}
	defer closer()

	if root == "" {
		root = r.config.Library.Root
	}
	r.logger.Infof("scanning library at %v", root)

	tracks, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}

	if cache {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open scan cache: %w", err)
		}
		defer db.Close()
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

		repo := repositories.NewLibraryRepository(db, r.logger)
		if err := repo.Replace(tracks); err != nil {
			return fmt.Errorf("failed to cache scan results: %w", err)
		}
	}

	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	r.writePlain("✓ Scanned %d tracks from %s\n", len(tracks), root)
	if cache {
		r.writePlain("✓ Scan cache updated (%s)\n", r.config.Database.Path)
	}

	return nil
}
