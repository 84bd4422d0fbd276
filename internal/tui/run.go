package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the chat and blocks until the user quits. It returns the id
// of the last active session so the caller can point at it.
func Run(ctx context.Context, classifier Classifier, opts ...Option) (string, error) {
	if classifier == nil {
		return "", fmt.Errorf("classifier is required")
	}

	program := tea.NewProgram(New(ctx, classifier, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return "", fmt.Errorf("chat failed: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.SessionID(), nil
	}
	return "", nil
}
