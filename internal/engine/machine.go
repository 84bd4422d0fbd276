// Package engine implements the classification state machine that turns a
// product description into a tariff code over one or more conversation turns.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
)

// Response messages.
const (
	MsgHighConfidence = "I found high-confidence tariff classification options. Please select the one that best matches your product:"
	MsgForcedOptions  = "After %d questions, here are the best tariff classification options. Please select one:"
	MsgSingle         = "Best available classification for your product."
	MsgSelected       = "Classification complete."
	MsgNoResults      = "No tariff classifications found. Try being more specific."
	MsgInvalid        = "Please select a valid option (1-%d) or provide the tariff code:"
)

// Config holds the thresholds of the state machine.
type Config struct {
	HighConfidence float64
	MaxTurns       int
	MaxOptions     int
	ForcedOptions  int
	QuestionCount  int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		HighConfidence: 85,
		MaxTurns:       3,
		MaxOptions:     5,
		ForcedOptions:  3,
		QuestionCount:  3,
	}
}

// Machine drives classification sessions. It keeps no per-session state;
// the caller owns the session and must not run two steps of the same
// session concurrently.
type Machine struct {
	searcher Searcher
	oracle   Oracle
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
	cfg      Config
}

// Option configures a Machine.
type Option func(*Machine)

// WithConfig overrides the default thresholds.
func WithConfig(cfg Config) Option {
	return func(m *Machine) { m.cfg = cfg }
}

// WithRecorder attaches a measurement sink.
func WithRecorder(r Recorder) Option {
	return func(m *Machine) { m.recorder = r }
}

// WithLogger sets the machine logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// New creates a machine. A nil oracle selects the local fallbacks everywhere.
func New(searcher Searcher, oracle Oracle, opts ...Option) *Machine {
	m := &Machine{
		searcher: searcher,
		oracle:   oracle,
		cfg:      DefaultConfig(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the machine thresholds.
func (m *Machine) Config() Config {
	return m.cfg
}

// step is the working state of one Classify call.
type step struct {
	session *model.ClassificationSession
	resp    model.Response
	message string
}

// Classify advances a session by one user message. A nil or completed
// session starts a new classification. The returned response carries the
// updated session, which the caller passes back on the next turn.
func (m *Machine) Classify(ctx context.Context, session *model.ClassificationSession, message string) (model.Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return model.Response{}, fmt.Errorf("%w: empty message", common.ErrInvalidInput)
	}

	st := &step{session: session.Clone(), message: message}
	state := m.entryState(st)

	for {
		facts := m.run(ctx, state, st)
		next, effect := Transition(state, facts)
		m.logger.Debug("Classification transition",
			"session", st.session.ID,
			"from", state,
			"to", next,
			"turn", st.session.TurnNumber)
		state = next
		if effect != EffectContinue {
			break
		}
	}

	st.session.UpdatedAt = m.now()
	st.resp.Session = st.session
	st.resp.Status = st.session.Status
	st.resp.ConfirmedProduct = st.session.ConfirmedProduct
	if m.recorder != nil {
		m.recorder.ObserveTurn(st.resp.Status)
	}
	return st.resp, nil
}

func (m *Machine) entryState(st *step) State {
	s := st.session
	switch {
	case s != nil && s.Status == model.SessionAwaitingClarification:
		return StateAwaitingClarification
	case s != nil && s.Status == model.SessionAwaitingSelection && len(s.PendingOptions) > 0:
		return StateAwaitingSelection
	}

	fresh := &model.ClassificationSession{
		TurnNumber: 1,
		Status:     model.SessionGathering,
		CreatedAt:  m.now(),
	}
	if s != nil {
		fresh.ID = s.ID
		m.logger.Info("Starting a new classification in an existing session", "session", s.ID, "previous_status", s.Status)
	}
	st.session = fresh
	return StateConfirming
}

func (m *Machine) run(ctx context.Context, state State, st *step) Facts {
	s := st.session
	facts := Facts{Turn: s.TurnNumber, MaxTurns: m.cfg.MaxTurns}

	switch state {
	case StateConfirming:
		s.History = append(s.History, model.Utterance{Turn: s.TurnNumber, Text: st.message})
		s.ConfirmedProduct = m.confirm(ctx, st.message)

	case StateAwaitingClarification:
		s.History = append(s.History, model.Utterance{Turn: s.TurnNumber, Text: st.message})
		s.TurnNumber++
		s.PendingQuestions = nil

	case StateSearching:
		s.Candidates = m.search(ctx, s)
		facts.HighConfidence = len(HighConfidence(s.Candidates, m.cfg.HighConfidence))

	case StateQuestioning:
		if !facts.QuestionsAllowed() {
			m.logger.Info("Turn limit reached, finalizing", "session", s.ID, "turn", s.TurnNumber)
			break
		}
		questions := m.questions(ctx, s)
		s.PendingQuestions = questions
		s.Status = model.SessionAwaitingClarification
		st.resp.Questions = questions
		if len(questions) > 0 {
			st.resp.Question = questions[0]
		}
		if len(s.Candidates) == 0 {
			st.resp.NoResults = true
			st.resp.Message = MsgNoResults
		}

	case StateFinalizing:
		decision := Finalize(s.Candidates, s.TurnNumber, m.cfg)
		facts.Outcome = decision.Outcome
		m.apply(st, decision)

	case StateAwaitingSelection:
		idx, ok := m.matchSelection(ctx, st.message, s.PendingOptions)
		facts.Selected = ok
		if ok {
			// Only a reply that picks an option is recorded.
			s.History = append(s.History, model.Utterance{Turn: s.TurnNumber, Text: st.message})
			chosen := s.PendingOptions[idx]
			s.FinalResult = &chosen
			s.Status = model.SessionComplete
			st.resp.FinalResult = &chosen
			st.resp.Message = MsgSelected
			break
		}
		st.resp.InvalidSelection = true
		st.resp.Options = append([]model.MatchCandidate(nil), s.PendingOptions...)
		st.resp.Message = fmt.Sprintf(MsgInvalid, len(s.PendingOptions))
	}

	return facts
}

func (m *Machine) apply(st *step, d Decision) {
	s := st.session
	switch d.Outcome {
	case OutcomeHighConfidenceOptions, OutcomeForcedOptions:
		s.PendingOptions = d.Options
		s.Status = model.SessionAwaitingSelection
		st.resp.Options = append([]model.MatchCandidate(nil), d.Options...)
		st.resp.Message = MsgHighConfidence
		if d.Outcome == OutcomeForcedOptions {
			st.resp.Message = fmt.Sprintf(MsgForcedOptions, m.cfg.MaxTurns)
		}
	case OutcomeSingle:
		s.FinalResult = d.Final
		s.Status = model.SessionComplete
		st.resp.FinalResult = d.Final
		st.resp.Message = MsgSingle
	default:
		s.Status = model.SessionComplete
		st.resp.NoResults = true
		st.resp.Message = MsgNoResults
	}
}

// SearchText is the query for the current turn: the confirmed product on
// the first turn, followed by every later answer afterwards. The first
// utterance is the raw text the product was confirmed from.
func SearchText(s *model.ClassificationSession) string {
	if s.TurnNumber <= 1 || len(s.History) <= 1 {
		return s.ConfirmedProduct
	}
	parts := []string{s.ConfirmedProduct}
	for _, u := range s.History[1:] {
		parts = append(parts, u.Text)
	}
	return strings.Join(parts, " ")
}

func (m *Machine) search(ctx context.Context, s *model.ClassificationSession) []model.MatchCandidate {
	query := SearchText(s)
	candidates, err := m.searcher.Search(ctx, query)
	if err != nil {
		m.logger.Warn("Search failed, treating as no results", "session", s.ID, "query", query, "error", err)
		return nil
	}
	return candidates
}

func (m *Machine) confirm(ctx context.Context, raw string) string {
	if m.oracle == nil {
		return raw
	}
	confirmed, err := m.oracle.Confirm(ctx, raw)
	confirmed = strings.TrimSpace(confirmed)
	if err != nil || confirmed == "" {
		m.fallback("confirm", err)
		return raw
	}
	return confirmed
}

func (m *Machine) questions(ctx context.Context, s *model.ClassificationSession) []string {
	count := m.cfg.QuestionCount
	if m.oracle == nil {
		return CompleteQuestions(nil, s.TurnNumber, count)
	}

	generated, err := m.oracle.GenerateQuestions(ctx, QuestionRequest{
		Product:    s.ConfirmedProduct,
		Focus:      QuestionFocus(s.TurnNumber),
		Candidates: head(s.Candidates, m.cfg.MaxOptions),
		History:    append([]model.Utterance(nil), s.History...),
		Turn:       s.TurnNumber,
		Count:      count,
	})
	if err != nil {
		m.fallback("questions", err)
		generated = nil
	}
	return CompleteQuestions(generated, s.TurnNumber, count)
}

func (m *Machine) matchSelection(ctx context.Context, reply string, options []model.MatchCandidate) (int, bool) {
	if idx, ok := MatchByIndex(reply, len(options)); ok {
		return idx, true
	}
	if idx, ok := MatchByCode(reply, options); ok {
		return idx, true
	}
	if m.oracle == nil {
		return 0, false
	}

	idx, ok, err := m.oracle.MatchSelection(ctx, reply, options)
	if err != nil {
		m.fallback("selection", err)
		return 0, false
	}
	if !ok || idx < 0 || idx >= len(options) {
		return 0, false
	}
	return idx, true
}

func (m *Machine) fallback(operation string, err error) {
	m.logger.Warn("Oracle unavailable, using local fallback", "operation", operation, "error", err)
	if m.recorder != nil {
		m.recorder.ObserveFallback(operation)
	}
}
