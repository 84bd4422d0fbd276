package model

import "fmt"

// MatchType identifies the search stage that produced a candidate.
type MatchType string

// Match type constants, in stage order.
const (
	MatchExact           MatchType = "exact"
	MatchFuzzy           MatchType = "fuzzy"
	MatchSemantic        MatchType = "semantic"
	MatchChapterFallback MatchType = "chapter_fallback"
)

// LookupURL is the public schedule search page for a code.
const LookupURL = "https://hts.usitc.gov/search?query=%s"

// MatchCandidate is one ranked classification result.
type MatchCandidate struct {
	Code            string         `json:"code"`
	Description     string         `json:"description"`
	MatchType       MatchType      `json:"match_type"`
	Chapter         string         `json:"chapter"`
	Unit            string         `json:"unit,omitempty"`
	SpecialRate     string         `json:"special_rate,omitempty"`
	Duty            DutyResolution `json:"duty"`
	ConfidenceScore float64        `json:"confidence_score"`
	IndentLevel     int            `json:"indent_level"`
}

// URL returns the schedule lookup link for the candidate.
func (c MatchCandidate) URL() string {
	return fmt.Sprintf(LookupURL, c.Code)
}
