package engine

import (
	"context"

	"github.com/Veraticus/hts-classify/internal/model"
)

// Searcher ranks tariff codes against free text.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.MatchCandidate, error)
}

// QuestionRequest carries the context for generating clarifying questions.
type QuestionRequest struct {
	Product    string
	Focus      string
	Candidates []model.MatchCandidate
	History    []model.Utterance
	Turn       int
	Count      int
}

// Oracle is the external decision maker consulted at the three judgment
// points of a classification. Every call has a local fallback, so an
// Oracle may fail freely.
type Oracle interface {
	// Confirm normalizes a raw product description.
	Confirm(ctx context.Context, raw string) (string, error)
	// GenerateQuestions proposes clarifying questions for the current turn.
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]string, error)
	// MatchSelection maps a free-text reply to an option index. The boolean
	// is false when the reply matches none of the options.
	MatchSelection(ctx context.Context, reply string, options []model.MatchCandidate) (int, bool, error)
}

// Recorder receives classification measurements.
type Recorder interface {
	ObserveTurn(status model.SessionStatus)
	ObserveFallback(operation string)
}
