package search

import "strings"

// Relevance scoring weights.
const (
	ExactTermWeight     = 60.0
	PartialMatchWeight  = 10.0
	MaxPartialBonus     = 25.0
	minPartialTokenSize = 3
)

// Relevance is the term-level comparison of a query with a description.
type Relevance struct {
	Overlap  int
	Partial  int
	Synonym  bool
	Material bool
	Score    float64
}

// Relevant reports whether any of the acceptance rules fired.
func (r Relevance) Relevant() bool {
	return r.Overlap > 0 || r.Partial > 0 || r.Synonym || r.Material
}

// Compare scores description against query.
func Compare(query, description string) Relevance {
	return compareTokens(Tokenize(query), tokenSet(Tokenize(description)))
}

// Relevant is the hard gate applied to exact and fuzzy matches.
func Relevant(query, description string) bool {
	return Compare(query, description).Relevant()
}

func compareTokens(query []string, desc map[string]struct{}) Relevance {
	var r Relevance
	if len(query) == 0 {
		return r
	}

	for _, q := range query {
		if _, ok := desc[q]; ok {
			r.Overlap++
		} else if len(q) > minPartialTokenSize && partialHit(q, desc) {
			r.Partial++
		}
		if !r.Synonym && anyPrefixed(desc, Synonyms[q]) {
			r.Synonym = true
		}
		if !r.Material && anyPrefixed(desc, Materials[q]) {
			r.Material = true
		}
	}

	bonus := float64(r.Partial) * PartialMatchWeight
	if bonus > MaxPartialBonus {
		bonus = MaxPartialBonus
	}
	r.Score = float64(r.Overlap)/float64(len(query))*ExactTermWeight + bonus
	return r
}

// partialHit reports a substring relation between q and any description token.
func partialHit(q string, desc map[string]struct{}) bool {
	for d := range desc {
		if strings.Contains(d, q) {
			return true
		}
		if len(d) > minPartialTokenSize && strings.Contains(q, d) {
			return true
		}
	}
	return false
}

func anyPrefixed(desc map[string]struct{}, terms []string) bool {
	for _, term := range terms {
		for d := range desc {
			if strings.HasPrefix(d, term) {
				return true
			}
		}
	}
	return false
}
