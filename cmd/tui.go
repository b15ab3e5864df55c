package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dmchugh/medlib/internal/shared"
	"github.com/dmchugh/medlib/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing the library.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.browser == nil {
		return fmt.Errorf("%w: library browser not initialized", shared.ErrServiceUnavailable)
	}

	r.restoreSession(ctx)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/medlib-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	// Honor the server palette from the user's preferences when available.
	if prefs, err := r.session.Preferences(ctx); err == nil && prefs != nil {
		ui.ApplyPalette(prefs.ColorPalette)
	}

	model := ui.NewModel(ctx, r.browser)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive library browser",
		Action:  r.TUI,
	}
}
