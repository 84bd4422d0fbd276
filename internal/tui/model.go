// Package tui implements an interactive classification chat with bubbletea.
package tui

import (
	"context"

	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Classifier runs and clears persisted classification sessions.
type Classifier interface {
	Handle(ctx context.Context, id, message string) (model.Response, error)
	Clear(ctx context.Context, id string) error
}

type speaker int

const (
	speakerUser speaker = iota
	speakerAssistant
	speakerError
)

type line struct {
	text    string
	speaker speaker
}

// chrome is the number of rows taken by everything but the transcript.
const chrome = 6

// Model holds the chat state.
type Model struct {
	ctx        context.Context
	classifier Classifier
	theme      Theme
	keymap     KeyMap
	help       help.Model
	input      textinput.Model
	spinner    spinner.Model
	viewport   viewport.Model
	sessionID  string
	status     model.SessionStatus
	transcript []line
	config     Config
	width      int
	height     int
	busy       bool
	quitting   bool
}

// New creates a chat model.
func New(ctx context.Context, classifier Classifier, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	input := textinput.New()
	input.Placeholder = "Describe the product to classify"
	input.Prompt = "› "
	input.CharLimit = 500
	input.Focus()

	m := Model{
		ctx:        ctx,
		classifier: classifier,
		config:     cfg,
		theme:      cfg.Theme,
		keymap:     DefaultKeyMap(),
		help:       help.New(),
		input:      input,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport:   viewport.New(cfg.Width, max(cfg.Height-chrome, 1)),
		sessionID:  cfg.SessionID,
		width:      cfg.Width,
		height:     cfg.Height,
	}
	m.say(speakerAssistant, "Describe a product and I will find its tariff classification.")
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SessionID returns the current session id.
func (m Model) SessionID() string {
	return m.sessionID
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case responseMsg:
		m.busy = false
		if msg.resp.Session != nil {
			m.sessionID = msg.resp.Session.ID
		}
		m.status = msg.resp.Status
		m.say(speakerAssistant, renderResponse(msg.resp))
		return m, nil

	case errorMsg:
		m.busy = false
		m.say(speakerError, msg.err.Error())
		return m, nil

	case clearedMsg:
		m.busy = false
		if msg.err != nil {
			m.say(speakerError, msg.err.Error())
			return m, nil
		}
		m.sessionID = ""
		m.status = ""
		m.say(speakerAssistant, "Started a new classification.")
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.ScrollUp), key.Matches(msg, m.keymap.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keymap.NewSession):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.clear(m.sessionID), m.spinner.Tick)

	case key.Matches(msg, m.keymap.Submit):
		text := m.input.Value()
		if m.busy || text == "" {
			return m, nil
		}
		m.input.Reset()
		m.busy = true
		m.say(speakerUser, text)
		return m, tea.Batch(m.classify(m.sessionID, text), m.spinner.Tick)
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-4, 10)
	m.help.Width = width
	m.viewport.Width = width
	m.viewport.Height = max(height-chrome, 1)
	m.refresh()
}

func (m *Model) say(s speaker, text string) {
	m.transcript = append(m.transcript, line{speaker: s, text: text})
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
