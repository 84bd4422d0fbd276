package model

import "time"

// SessionStatus is the externally visible state of a classification session.
type SessionStatus string

// Session status constants.
const (
	SessionGathering             SessionStatus = "gathering"
	SessionAwaitingClarification SessionStatus = "awaiting_clarification"
	SessionAwaitingSelection     SessionStatus = "awaiting_selection"
	SessionComplete              SessionStatus = "complete"
)

// Utterance is one user message tagged with the turn it arrived in.
type Utterance struct {
	Text string `json:"text"`
	Turn int    `json:"turn"`
}

// ClassificationSession is the conversational state of one classification.
// It is owned by the caller and passed back verbatim on the next turn.
type ClassificationSession struct {
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	FinalResult      *MatchCandidate  `json:"final_result,omitempty"`
	ID               string           `json:"id"`
	ConfirmedProduct string           `json:"confirmed_product"`
	Status           SessionStatus    `json:"status"`
	History          []Utterance      `json:"history"`
	Candidates       []MatchCandidate `json:"candidates,omitempty"`
	PendingOptions   []MatchCandidate `json:"pending_options,omitempty"`
	PendingQuestions []string         `json:"pending_questions,omitempty"`
	TurnNumber       int              `json:"turn_number"`
}

// Clone returns a deep copy so callers can mutate sessions independently.
func (s *ClassificationSession) Clone() *ClassificationSession {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]Utterance(nil), s.History...)
	c.Candidates = append([]MatchCandidate(nil), s.Candidates...)
	c.PendingOptions = append([]MatchCandidate(nil), s.PendingOptions...)
	c.PendingQuestions = append([]string(nil), s.PendingQuestions...)
	if s.FinalResult != nil {
		fr := *s.FinalResult
		c.FinalResult = &fr
	}
	return &c
}

// Response is what a single classification step returns to the caller.
type Response struct {
	Session          *ClassificationSession `json:"session"`
	FinalResult      *MatchCandidate        `json:"final_result,omitempty"`
	Status           SessionStatus          `json:"status"`
	ConfirmedProduct string                 `json:"confirmed_product,omitempty"`
	Question         string                 `json:"question,omitempty"`
	Message          string                 `json:"message,omitempty"`
	Questions        []string               `json:"questions,omitempty"`
	Options          []MatchCandidate       `json:"options,omitempty"`
	InvalidSelection bool                   `json:"invalid_selection,omitempty"`
	NoResults        bool                   `json:"no_results,omitempty"`
}
