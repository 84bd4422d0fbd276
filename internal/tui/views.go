package tui

import (
	"strings"

	"github.com/Veraticus/hts-classify/internal/cli"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// View renders the chat.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	footer := m.input.View()
	if m.busy {
		footer = m.spinner.View() + " Classifying..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.theme.Box.Width(max(m.width-2, 1)).Render(m.viewport.View()),
		footer,
		m.help.View(m.keymap),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("HTS Classifier")
	session := "new session"
	if m.sessionID != "" {
		session = "session " + m.sessionID
	}
	parts := []string{title, m.theme.Subtitle.Render(session)}
	if m.status != "" {
		parts = append(parts, m.theme.Status.Render(statusLabel(m.status)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTranscript() string {
	blocks := make([]string, 0, len(m.transcript))
	for _, l := range m.transcript {
		switch l.speaker {
		case speakerUser:
			blocks = append(blocks, m.theme.User.Render("You: "+l.text))
		case speakerError:
			blocks = append(blocks, m.theme.Error.Render("Error: "+l.text))
		default:
			blocks = append(blocks, m.theme.Assistant.Render(l.text))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func renderResponse(resp model.Response) string {
	out := cli.RenderResponse(resp)
	if out == "" {
		return string(resp.Status)
	}
	return out
}

func statusLabel(s model.SessionStatus) string {
	switch s {
	case model.SessionAwaitingClarification:
		return "answer the question"
	case model.SessionAwaitingSelection:
		return "pick an option"
	case model.SessionComplete:
		return "complete"
	default:
		return string(s)
	}
}
