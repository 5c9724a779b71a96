package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/masmgr/histwalk/internal/state"
	"github.com/masmgr/histwalk/internal/watcher"
)

// Run starts the browser on the terminal and blocks until it quits. With a
// non-empty gitDir, ref changes reload the displayed history. On exit the
// browser state is saved to store when it is not nil.
func Run(opts Options, store state.Store, gitDir string) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())

	if gitDir != "" {
		w, err := watcher.New(gitDir, watcher.DefaultDebounce, func(watcher.Event) {
			p.Send(RefsChangedMsg{})
		}, logger)
		if err != nil {
			logger.Warn("ref watching disabled", "error", err)
		} else {
			defer w.Close()
			if err := w.Start(); err != nil {
				logger.Warn("ref watching disabled", "error", err)
			}
		}
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run browser: %w", err)
	}

	m, ok := final.(Model)
	if !ok || store == nil {
		return nil
	}
	if err := store.Save(context.Background(), m.State()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	logger.Debug("state saved", "selection", m.State().Selection)
	return nil
}
