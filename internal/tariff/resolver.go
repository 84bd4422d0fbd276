package tariff

import (
	"fmt"
	"strings"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
)

// Cross-reference candidate limits.
const (
	MaxReferenceIndent = 2
	MaxReferenceCodes  = 10
	partsSubheading    = "90"
)

// Resolver computes effective duty rates over an Index. It holds no mutable
// state and may be shared between goroutines.
type Resolver struct {
	index *Index
}

// NewResolver creates a resolver over ix.
func NewResolver(ix *Index) *Resolver {
	return &Resolver{index: ix}
}

// Index returns the schedule the resolver reads.
func (r *Resolver) Index() *Index {
	return r.index
}

// Resolve returns the duty rate that applies to code. A code with no stored
// rate inherits from its nearest ancestor; an unresolved result is not an error.
func (r *Resolver) Resolve(code string) (model.DutyResolution, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.DutyResolution{}, fmt.Errorf("%w: empty code", common.ErrInvalidInput)
	}

	entry, ok := r.index.Lookup(code)
	if !ok {
		return model.DutyResolution{}, fmt.Errorf("code %s: %w", code, common.ErrNotFound)
	}

	if strings.TrimSpace(entry.GeneralRate) != "" {
		return r.fromRate(entry, entry, model.SourceDirect), nil
	}

	for _, digits := range AncestorDigits(Digits(entry.Code)) {
		ancestor, found := r.index.lookupDigits(digits)
		if !found || strings.TrimSpace(ancestor.GeneralRate) == "" {
			continue
		}
		return r.fromRate(entry, ancestor, model.SourceInherited), nil
	}

	return model.DutyResolution{
		Code:          entry.Code,
		EffectiveRate: model.RateUnknown,
		Source:        model.SourceUnresolved,
	}, nil
}

// ResolveForMainArticle resolves a parts code whose rate refers to the
// article it belongs to. The main article is resolved and its rate is
// reported as the effective rate of the part. Codes whose rate is not a
// cross-reference are returned as Resolve would return them.
func (r *Resolver) ResolveForMainArticle(partsCode, mainArticleCode string) (model.DutyResolution, error) {
	parts, err := r.Resolve(partsCode)
	if err != nil {
		return model.DutyResolution{}, err
	}
	if parts.Source != model.SourceCrossReference {
		return parts, nil
	}

	if Digits(mainArticleCode) == Digits(partsCode) {
		return model.DutyResolution{}, fmt.Errorf("%w: main article must differ from the part", common.ErrInvalidInput)
	}

	main, err := r.Resolve(mainArticleCode)
	if err != nil {
		return model.DutyResolution{}, fmt.Errorf("main article: %w", err)
	}

	parts.MainArticleCode = main.Code
	switch main.Source {
	case model.SourceDirect, model.SourceInherited:
		parts.EffectiveRate = main.EffectiveRate
		parts.SourceCode = main.SourceCode
		parts.AdValorem = main.AdValorem
	default:
		// A main article that itself refers elsewhere is not followed further.
		parts.EffectiveRate = model.RateUnknown
	}
	return parts, nil
}

// Details returns an entry together with its resolved duty.
func (r *Resolver) Details(code string) (model.EntryDetails, error) {
	duty, err := r.Resolve(code)
	if err != nil {
		return model.EntryDetails{}, err
	}
	entry, _ := r.index.Lookup(code)
	return model.EntryDetails{
		Entry:   entry,
		Chapter: Chapter(entry.Code),
		Heading: Heading(entry.Code),
		Duty:    duty,
	}, nil
}

func (r *Resolver) fromRate(entry, source model.TariffEntry, kind model.RateSource) model.DutyResolution {
	res := model.DutyResolution{
		Code:       entry.Code,
		RateText:   source.GeneralRate,
		SourceCode: source.Code,
		Source:     kind,
	}

	if IsCrossReference(source.GeneralRate) {
		res.Source = model.SourceCrossReference
		res.EffectiveRate = model.RateDependsOnMainArticle
		res.CandidateReferenceCodes = r.referenceCandidates(entry.Code)
		return res
	}

	res.EffectiveRate = strings.TrimSpace(source.GeneralRate)
	if rate := ParseRate(res.EffectiveRate); rate.Kind == RateFree || rate.Kind == RateAdValorem {
		pct := rate.Percent
		res.AdValorem = &pct
	}
	return res
}

// referenceCandidates lists the main articles a part under the same heading
// could belong to: entries of the heading outside its parts branch, no
// deeper than MaxReferenceIndent.
func (r *Resolver) referenceCandidates(code string) []string {
	digits := Digits(code)
	heading := Heading(digits)
	if heading == "" {
		return nil
	}

	excluded := []string{heading + partsSubheading}
	if len(digits) >= 6 {
		excluded = append(excluded, digits[:6])
	}

	siblings := r.index.WithPrefix(heading)
	for _, e := range siblings {
		if isPartsBranch(e) {
			excluded = append(excluded, Digits(e.Code))
		}
	}

	var out []string
	for _, e := range siblings {
		d := Digits(e.Code)
		if len(d) <= HeadingDigits || e.IndentLevel > MaxReferenceIndent {
			continue
		}
		if hasAnyPrefix(d, excluded) {
			continue
		}
		out = append(out, e.Code)
		if len(out) == MaxReferenceCodes {
			break
		}
	}
	return out
}

func isPartsBranch(e model.TariffEntry) bool {
	desc := strings.ToLower(strings.TrimSpace(e.Description))
	return len(Digits(e.Code)) == 6 && strings.HasPrefix(desc, "parts")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
