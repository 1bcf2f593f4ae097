package tui

import (
	"context"
	"errors"

	"tunnelctl/internal/state"

	tea "github.com/charmbracelet/bubbletea"
)

// NewProgram creates the dashboard program for store. The returned function
// releases the store subscriptions and must be called once the program ends.
func NewProgram(store *state.Store, opts Options) (*tea.Program, func()) {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	m := InitialModel(store, opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(opts.Context),
	)
	return p, m.close
}

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, store *state.Store, opts Options) error {
	opts.Context = ctx
	p, release := NewProgram(store, opts)
	defer release()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
