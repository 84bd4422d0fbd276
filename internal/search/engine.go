package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/tariff"
)

// Stage confidences.
const (
	ExactConfidence           = 95.0
	FuzzyMinConfidence        = 50.0
	FuzzyMaxConfidence        = 90.0
	SemanticMaxConfidence     = 85.0
	ChapterFallbackConfidence = 70.0
)

// Options tunes the search cascade.
type Options struct {
	MaxExact           int
	FuzzyLimit         int
	MinFuzzyScore      float64
	SemanticKeywords   int
	SemanticPerKeyword int
	SemanticMinScore   float64
	SemanticTrigger    int
	FallbackTrigger    int
	FallbackChapters   int
	FallbackPerChapter int
	EnhancedCap        int
	MaxResults         int
}

// DefaultOptions returns the standard cascade limits.
func DefaultOptions() Options {
	return Options{
		MaxExact:           25,
		FuzzyLimit:         20,
		MinFuzzyScore:      50,
		SemanticKeywords:   3,
		SemanticPerKeyword: 10,
		SemanticMinScore:   40,
		SemanticTrigger:    3,
		FallbackTrigger:    2,
		FallbackChapters:   2,
		FallbackPerChapter: 3,
		EnhancedCap:        5,
		MaxResults:         15,
	}
}

// Recorder receives per-search measurements.
type Recorder interface {
	ObserveStage(stage model.MatchType, kept int)
	ObserveSearch(elapsed time.Duration, results int)
}

// Engine runs the match cascade over an index. It is immutable after
// construction and safe for concurrent use.
type Engine struct {
	ranker   Ranker
	recorder Recorder
	logger   *slog.Logger
	resolver *tariff.Resolver
	corpus   *corpus
	opts     Options
}

// Option configures an Engine.
type Option func(*Engine)

// WithRanker replaces the fuzzy-stage ranker.
func WithRanker(r Ranker) Option {
	return func(e *Engine) { e.ranker = r }
}

// WithOptions replaces the cascade limits.
func WithOptions(o Options) Option {
	return func(e *Engine) { e.opts = o }
}

// WithRecorder attaches a measurement sink.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a search engine over the resolver's index.
func NewEngine(resolver *tariff.Resolver, opts ...Option) *Engine {
	e := &Engine{
		resolver: resolver,
		corpus:   newCorpus(resolver.Index()),
		opts:     DefaultOptions(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ranker == nil {
		e.ranker = newFuzzyRanker(e.corpus, nil)
	}
	return e
}

type match struct {
	entry      model.TariffEntry
	matchType  model.MatchType
	confidence float64
}

// searchRun carries the state of one Search call.
type searchRun struct {
	seen    map[string]struct{}
	query   string
	tokens  []string
	results []match
}

func (r *searchRun) add(e model.TariffEntry, t model.MatchType, confidence float64) bool {
	key := tariff.Digits(e.Code)
	if _, dup := r.seen[key]; dup {
		return false
	}
	r.seen[key] = struct{}{}
	r.results = append(r.results, match{entry: e, matchType: t, confidence: confidence})
	return true
}

func (r *searchRun) has(e model.TariffEntry) bool {
	_, ok := r.seen[tariff.Digits(e.Code)]
	return ok
}

// Search ranks classifiable entries against query. The result is sorted by
// confidence, holds no repeated code and is capped at Options.MaxResults.
// An empty result is a valid outcome.
func (e *Engine) Search(ctx context.Context, query string) ([]model.MatchCandidate, error) {
	q := Normalize(query)
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", common.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	run := &searchRun{
		query:  q,
		tokens: Tokenize(q),
		seen:   make(map[string]struct{}),
	}

	exact := e.exactStage(run)
	fuzzy := e.fuzzyStage(ctx, run)
	e.observe(model.MatchExact, exact)
	e.observe(model.MatchFuzzy, fuzzy)

	if exact+fuzzy < e.opts.SemanticTrigger {
		e.enhancedStages(run)
	}

	sort.SliceStable(run.results, func(i, j int) bool {
		return run.results[i].confidence > run.results[j].confidence
	})
	if len(run.results) > e.opts.MaxResults {
		run.results = run.results[:e.opts.MaxResults]
	}

	candidates := make([]model.MatchCandidate, 0, len(run.results))
	for _, m := range run.results {
		candidates = append(candidates, e.candidate(m))
	}

	if e.recorder != nil {
		e.recorder.ObserveSearch(time.Since(start), len(candidates))
	}
	e.logger.Debug("Search complete",
		"query", q,
		"exact", exact,
		"fuzzy", fuzzy,
		"results", len(candidates),
		"elapsed", time.Since(start))

	return candidates, nil
}

// exactStage keeps entries whose description contains the whole query.
func (e *Engine) exactStage(run *searchRun) int {
	kept := 0
	for i := range e.corpus.docs {
		d := &e.corpus.docs[i]
		if !strings.Contains(d.lower, run.query) {
			continue
		}
		if !compareTokens(run.tokens, d.tokens).Relevant() {
			continue
		}
		if run.add(d.entry, model.MatchExact, ExactConfidence) {
			kept++
			if kept == e.opts.MaxExact {
				break
			}
		}
	}
	return kept
}

// fuzzyStage keeps ranker hits above the minimum similarity. A failing
// ranker contributes nothing.
func (e *Engine) fuzzyStage(ctx context.Context, run *searchRun) int {
	hits, err := e.ranker.Rank(ctx, run.query, e.opts.FuzzyLimit)
	if err != nil {
		e.logger.Warn("Fuzzy ranking failed, continuing without it", "error", err)
		return 0
	}

	kept := 0
	for _, h := range hits {
		if h.Score < e.opts.MinFuzzyScore || !tariff.IsDetail(h.Entry) {
			continue
		}
		if !Relevant(run.query, h.Entry.Description) {
			continue
		}
		if run.add(h.Entry, model.MatchFuzzy, clamp(h.Score, FuzzyMinConfidence, FuzzyMaxConfidence)) {
			kept++
		}
	}
	return kept
}

// enhancedStages runs keyword search and, when that is thin, chapter
// fallback. Together they contribute at most Options.EnhancedCap results.
func (e *Engine) enhancedStages(run *searchRun) {
	var enhanced []match
	pending := make(map[string]struct{})
	take := func(entry model.TariffEntry, t model.MatchType, confidence float64) {
		key := tariff.Digits(entry.Code)
		if _, dup := pending[key]; dup || run.has(entry) {
			return
		}
		pending[key] = struct{}{}
		enhanced = append(enhanced, match{entry: entry, matchType: t, confidence: confidence})
	}

	semantic := 0
	for _, kw := range Keywords(run.query, e.opts.SemanticKeywords) {
		found := 0
		for i := range e.corpus.docs {
			d := &e.corpus.docs[i]
			if !strings.Contains(d.lower, kw) {
				continue
			}
			found++
			rel := compareTokens(run.tokens, d.tokens)
			if rel.Score > e.opts.SemanticMinScore {
				before := len(enhanced)
				take(d.entry, model.MatchSemantic, min(rel.Score, SemanticMaxConfidence))
				semantic += len(enhanced) - before
			}
			if found == e.opts.SemanticPerKeyword {
				break
			}
		}
	}
	e.observe(model.MatchSemantic, semantic)

	if semantic < e.opts.FallbackTrigger {
		fallback := 0
		for _, ch := range TargetChapters(run.tokens, e.opts.FallbackChapters) {
			picked := 0
			for _, entry := range e.corpus.index.Chapter(ch) {
				if !tariff.IsDetail(entry) {
					continue
				}
				before := len(enhanced)
				take(entry, model.MatchChapterFallback, ChapterFallbackConfidence)
				if len(enhanced) > before {
					picked++
					fallback++
				}
				if picked == e.opts.FallbackPerChapter {
					break
				}
			}
		}
		e.observe(model.MatchChapterFallback, fallback)
	}

	sort.SliceStable(enhanced, func(i, j int) bool {
		return enhanced[i].confidence > enhanced[j].confidence
	})
	if len(enhanced) > e.opts.EnhancedCap {
		enhanced = enhanced[:e.opts.EnhancedCap]
	}
	for _, m := range enhanced {
		run.add(m.entry, m.matchType, m.confidence)
	}
}

func (e *Engine) candidate(m match) model.MatchCandidate {
	duty, err := e.resolver.Resolve(m.entry.Code)
	if err != nil {
		duty = model.DutyResolution{Code: m.entry.Code, EffectiveRate: model.RateUnknown, Source: model.SourceUnresolved}
	}
	return model.MatchCandidate{
		Code:            m.entry.Code,
		Description:     m.entry.Description,
		ConfidenceScore: m.confidence,
		MatchType:       m.matchType,
		Chapter:         tariff.Chapter(m.entry.Code),
		IndentLevel:     m.entry.IndentLevel,
		Unit:            m.entry.Unit,
		SpecialRate:     m.entry.SpecialRate,
		Duty:            duty,
	}
}

func (e *Engine) observe(stage model.MatchType, kept int) {
	if e.recorder != nil {
		e.recorder.ObserveStage(stage, kept)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
