package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// New builds the application. With a preset stream the dashboard opens
// directly; otherwise the stream picker comes first.
func New(ctx context.Context, runner Runner, opts Options) *App {
	s := newSession(ctx, runner, opts)
	streams := newStreamsPage(s)
	commits := newCommitsPage(s)
	dash := newDashboardPage(s)
	if opts.StreamName != "" {
		return NewApp(dash, streams, commits)
	}
	return NewApp(streams, dash, commits)
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, runner Runner, opts Options) error {
	p := tea.NewProgram(New(ctx, runner, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
