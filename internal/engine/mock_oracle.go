package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/hts-classify/internal/model"
)

// MockOracle is a scripted Oracle for tests and offline demos.
// Zero values make every call fail over to the local fallbacks.
type MockOracle struct {
	ConfirmErr     error
	QuestionsErr   error
	SelectionErr   error
	ConfirmResult  string
	Questions      []string
	calls          []MockOracleCall
	Selection      int
	SelectionFound bool
	mu             sync.Mutex
}

// MockOracleCall records one oracle invocation.
type MockOracleCall struct {
	Operation string
	Input     string
	Turn      int
}

// NewMockOracle creates an empty mock oracle.
func NewMockOracle() *MockOracle {
	return &MockOracle{calls: make([]MockOracleCall, 0)}
}

// Confirm returns ConfirmResult or ConfirmErr.
func (m *MockOracle) Confirm(_ context.Context, raw string) (string, error) {
	m.record(MockOracleCall{Operation: "confirm", Input: raw})
	if m.ConfirmErr != nil {
		return "", m.ConfirmErr
	}
	return m.ConfirmResult, nil
}

// GenerateQuestions returns Questions or QuestionsErr.
func (m *MockOracle) GenerateQuestions(_ context.Context, req QuestionRequest) ([]string, error) {
	m.record(MockOracleCall{Operation: "questions", Input: req.Product, Turn: req.Turn})
	if m.QuestionsErr != nil {
		return nil, m.QuestionsErr
	}
	return append([]string(nil), m.Questions...), nil
}

// MatchSelection returns Selection and SelectionFound or SelectionErr.
func (m *MockOracle) MatchSelection(_ context.Context, reply string, _ []model.MatchCandidate) (int, bool, error) {
	m.record(MockOracleCall{Operation: "selection", Input: reply})
	if m.SelectionErr != nil {
		return 0, false, m.SelectionErr
	}
	return m.Selection, m.SelectionFound, nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockOracle) Calls() []MockOracleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockOracleCall(nil), m.calls...)
}

func (m *MockOracle) record(c MockOracleCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}
