package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdown/internal/shared"
	"github.com/desertthunder/trackdown/internal/tasks"
	"github.com/desertthunder/trackdown/internal/ui"
)

// TUI launches the interactive terminal UI for playlist reconciliation.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	threshold := cmd.Int("threshold")
	if threshold < 0 {
		threshold = r.config.Matching.Threshold
	}
	if err := r.validateThreshold(threshold); err != nil {
		return err
	}

	scanner, closer, err := r.libraryScanner(cmd.Bool("cached"), "")
	if err != nil {
		return err
	}
	defer closer()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/trackdown-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := tasks.NewReconcileEngine(r.spotify, scanner, fileLogger)
	opts := tasks.RunOpts{
		Threshold:    threshold,
		PlaylistName: cmd.String("name"),
		SearchRate:   r.config.Matching.SearchRateLimit,
	}

	model := ui.NewModel(ctx, r.spotify, engine, opts)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
