package search

import (
	"context"
	"sort"
	"unicode"

	"github.com/agext/levenshtein"

	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/tariff"
)

// Hit is one scored entry from a ranker, score in 0..100.
type Hit struct {
	Entry model.TariffEntry
	Score float64
}

// Ranker scores schedule entries against a query. Implementations may be
// string similarity, embeddings with vector search, or anything else that
// returns a scored list.
type Ranker interface {
	Rank(ctx context.Context, query string, limit int) ([]Hit, error)
}

// Similarity scores two strings in 0..100.
type Similarity func(a, b string) float64

// PartialRatio scores the best alignment of the shorter string against
// word-aligned windows of the longer one.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}

	short := string(ra)
	if len(ra) == len(rb) {
		return 100 * levenshtein.Similarity(short, string(rb), nil)
	}

	best := 0.0
	try := func(start int) {
		end := start + len(ra)
		if end > len(rb) {
			start, end = len(rb)-len(ra), len(rb)
		}
		if s := levenshtein.Similarity(short, string(rb[start:end]), nil); s > best {
			best = s
		}
	}

	for i := range rb {
		if i == 0 || !isWordRune(rb[i-1]) && isWordRune(rb[i]) {
			try(i)
			if best == 1 {
				break
			}
		}
	}
	try(len(rb) - len(ra))

	return 100 * best
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// FuzzyRanker ranks classifiable entries by string similarity of their
// descriptions. Identical descriptions are scored once.
type FuzzyRanker struct {
	similarity Similarity
	filter     func(query []string, d *document) bool
	corpus     *corpus
}

// NewFuzzyRanker builds a ranker over the classifiable entries of ix.
// A nil similarity selects PartialRatio.
func NewFuzzyRanker(ix *tariff.Index, similarity Similarity) *FuzzyRanker {
	return newFuzzyRanker(newCorpus(ix), similarity)
}

func newFuzzyRanker(c *corpus, similarity Similarity) *FuzzyRanker {
	if similarity == nil {
		similarity = PartialRatio
	}
	return &FuzzyRanker{
		similarity: similarity,
		corpus:     c,
		filter: func(query []string, d *document) bool {
			return compareTokens(query, d.tokens).Relevant()
		},
	}
}

// Rank returns every entry whose description is among the limit best
// scoring distinct descriptions.
func (f *FuzzyRanker) Rank(ctx context.Context, query string, limit int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := Normalize(query)
	qTokens := Tokenize(q)

	type scored struct {
		lower string
		score float64
	}
	scores := make(map[string]float64)
	var ranked []scored
	for i := range f.corpus.docs {
		d := &f.corpus.docs[i]
		if _, done := scores[d.lower]; done {
			continue
		}
		s := 0.0
		if f.filter == nil || f.filter(qTokens, d) {
			s = f.similarity(q, d.lower)
		}
		scores[d.lower] = s
		if s > 0 {
			ranked = append(ranked, scored{lower: d.lower, score: s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	keep := make(map[string]float64, len(ranked))
	for _, r := range ranked {
		keep[r.lower] = r.score
	}

	var hits []Hit
	for i := range f.corpus.docs {
		d := &f.corpus.docs[i]
		if s, ok := keep[d.lower]; ok {
			hits = append(hits, Hit{Entry: d.entry, Score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits, nil
}

// document is a classifiable entry with its description pre-processed.
type document struct {
	tokens map[string]struct{}
	lower  string
	entry  model.TariffEntry
}

// corpus holds the classifiable entries of an index, read-only after build.
type corpus struct {
	index *tariff.Index
	docs  []document
}

func newCorpus(ix *tariff.Index) *corpus {
	c := &corpus{index: ix}
	ix.Each(func(e model.TariffEntry) bool {
		if tariff.IsDetail(e) {
			c.docs = append(c.docs, newDocument(e))
		}
		return true
	})
	return c
}

func newDocument(e model.TariffEntry) document {
	return document{
		entry:  e,
		lower:  Normalize(e.Description),
		tokens: tokenSet(Tokenize(e.Description)),
	}
}
