package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
)

// Handler runs one classification turn for a session.
type Handler interface {
	Handle(ctx context.Context, id, message string) (model.Response, error)
}

// Conversation drives an interactive classification over a line-oriented
// terminal.
type Conversation struct {
	handler   Handler
	reader    *LineReader
	out       io.Writer
	onSession func(id string)
	sessionID string
}

// NewConversation creates a conversation that resumes sessionID when it is
// not empty.
func NewConversation(handler Handler, in io.Reader, out io.Writer, sessionID string) *Conversation {
	return &Conversation{
		handler:   handler,
		reader:    NewLineReader(in),
		out:       out,
		sessionID: sessionID,
	}
}

// OnSession registers a callback invoked whenever the session id changes.
func (c *Conversation) OnSession(fn func(id string)) {
	c.onSession = fn
}

// SessionID returns the current session id.
func (c *Conversation) SessionID() string {
	return c.sessionID
}

// Run reads replies until the input ends, the user types quit, or ctx is
// canceled. A non-empty first message is sent before any input is read.
func (c *Conversation) Run(ctx context.Context, first string) error {
	status := model.SessionGathering
	message := strings.TrimSpace(first)

	for {
		if message == "" {
			c.printf("%s", FormatPrompt(promptFor(status)))
			line, err := c.reader.ReadLine(ctx)
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInputCancelled) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			message = line
		}

		switch strings.ToLower(message) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		}

		resp, err := c.handler.Handle(ctx, c.sessionID, message)
		message = ""
		if err != nil {
			if errors.Is(err, common.ErrInvalidInput) {
				c.printf("%s\n", FormatError(err.Error()))
				continue
			}
			return err
		}

		if resp.Session != nil && resp.Session.ID != c.sessionID {
			c.sessionID = resp.Session.ID
			if c.onSession != nil {
				c.onSession(c.sessionID)
			}
		}
		status = resp.Status
		c.printf("%s\n\n", RenderResponse(resp))
	}
}

func (c *Conversation) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func promptFor(status model.SessionStatus) string {
	switch status {
	case model.SessionAwaitingClarification:
		return "Answer"
	case model.SessionAwaitingSelection:
		return "Select"
	case model.SessionComplete:
		return "Describe another product"
	default:
		return "Describe your product"
	}
}
