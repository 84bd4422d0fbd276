package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// classify runs one turn off the UI goroutine.
func (m Model) classify(id, message string) tea.Cmd {
	classifier, timeout := m.classifier, m.config.Timeout
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		resp, err := classifier.Handle(ctx, id, message)
		if err != nil {
			return errorMsg{err: err}
		}
		return responseMsg{resp: resp}
	}
}

// clear forgets the current session.
func (m Model) clear(id string) tea.Cmd {
	classifier, timeout := m.classifier, m.config.Timeout
	parent := m.ctx
	return func() tea.Msg {
		if id == "" {
			return clearedMsg{}
		}
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return clearedMsg{err: classifier.Clear(ctx, id)}
	}
}
