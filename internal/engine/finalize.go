package engine

import (
	"sort"

	"github.com/Veraticus/hts-classify/internal/model"
)

// Outcome is the kind of result finalization produced.
type Outcome int

// Finalization outcomes.
const (
	OutcomeNone Outcome = iota
	OutcomeHighConfidenceOptions
	OutcomeForcedOptions
	OutcomeSingle
	OutcomeNoResults
)

// NeedsSelection reports whether the user must pick among options.
func (o Outcome) NeedsSelection() bool {
	return o == OutcomeHighConfidenceOptions || o == OutcomeForcedOptions
}

// Decision is the result of finalizing a set of candidates.
type Decision struct {
	Final   *model.MatchCandidate
	Options []model.MatchCandidate
	Outcome Outcome
}

// Finalize decides what to present given the candidates of the last search.
func Finalize(candidates []model.MatchCandidate, turn int, cfg Config) Decision {
	ranked := append([]model.MatchCandidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ConfidenceScore > ranked[j].ConfidenceScore
	})

	high := HighConfidence(ranked, cfg.HighConfidence)
	switch {
	case len(high) > 0:
		return Decision{Outcome: OutcomeHighConfidenceOptions, Options: head(high, cfg.MaxOptions)}
	case len(ranked) == 0:
		return Decision{Outcome: OutcomeNoResults}
	case turn > cfg.MaxTurns:
		return Decision{Outcome: OutcomeForcedOptions, Options: head(ranked, cfg.ForcedOptions)}
	default:
		best := ranked[0]
		return Decision{Outcome: OutcomeSingle, Final: &best}
	}
}

// HighConfidence returns the candidates at or above threshold.
func HighConfidence(candidates []model.MatchCandidate, threshold float64) []model.MatchCandidate {
	var out []model.MatchCandidate
	for _, c := range candidates {
		if c.ConfidenceScore >= threshold {
			out = append(out, c)
		}
	}
	return out
}

func head(c []model.MatchCandidate, n int) []model.MatchCandidate {
	if n > 0 && len(c) > n {
		c = c[:n]
	}
	return append([]model.MatchCandidate(nil), c...)
}
