package tariff

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/hts-classify/internal/model"
)

// MinDetailIndent is the shallowest indent an entry may have and still be
// returned as a classification result. Shallower entries are chapter and
// heading headers; they stay in the index as rate ancestors.
const MinDetailIndent = 2

// Index is an immutable view of the tariff schedule. It is built once and
// is safe for concurrent readers without locking.
type Index struct {
	byCode   map[string]int
	byDigits map[string]int
	chapters map[string][]int
	entries  []model.TariffEntry
	sorted   []string
}

// NewIndex builds an index from entries in schedule order.
// Entries without a code are dropped and the first occurrence of a code wins.
func NewIndex(entries []model.TariffEntry) *Index {
	ix := &Index{
		byCode:   make(map[string]int, len(entries)),
		byDigits: make(map[string]int, len(entries)),
		chapters: make(map[string][]int),
		entries:  make([]model.TariffEntry, 0, len(entries)),
	}

	skipped := 0
	for _, e := range entries {
		e.Code = strings.TrimSpace(e.Code)
		digits := Digits(e.Code)
		if digits == "" {
			skipped++
			continue
		}
		if _, dup := ix.byDigits[digits]; dup {
			skipped++
			continue
		}

		pos := len(ix.entries)
		ix.entries = append(ix.entries, e)
		ix.byCode[e.Code] = pos
		ix.byDigits[digits] = pos
		ix.sorted = append(ix.sorted, digits)
		if ch := Chapter(digits); ch != "" {
			ix.chapters[ch] = append(ix.chapters[ch], pos)
		}
	}
	sort.Strings(ix.sorted)

	if skipped > 0 {
		slog.Debug("Skipped tariff rows while indexing", "skipped", skipped, "kept", len(ix.entries))
	}

	return ix
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Lookup finds an entry by its exact code or, failing that, by its digits,
// so 9017.90.0136 and 9017.90.01.36 address the same entry.
func (ix *Index) Lookup(code string) (model.TariffEntry, bool) {
	code = strings.TrimSpace(code)
	if pos, ok := ix.byCode[code]; ok {
		return ix.entries[pos], true
	}
	return ix.lookupDigits(Digits(code))
}

func (ix *Index) lookupDigits(digits string) (model.TariffEntry, bool) {
	if digits == "" {
		return model.TariffEntry{}, false
	}
	pos, ok := ix.byDigits[digits]
	if !ok {
		return model.TariffEntry{}, false
	}
	return ix.entries[pos], true
}

// Each calls fn for every entry in schedule order until fn returns false.
func (ix *Index) Each(fn func(model.TariffEntry) bool) {
	for _, e := range ix.entries {
		if !fn(e) {
			return
		}
	}
}

// WithPrefix returns the entries whose digits start with prefix, in code order.
func (ix *Index) WithPrefix(prefix string) []model.TariffEntry {
	prefix = Digits(prefix)
	start := sort.SearchStrings(ix.sorted, prefix)

	var out []model.TariffEntry
	for i := start; i < len(ix.sorted) && strings.HasPrefix(ix.sorted[i], prefix); i++ {
		out = append(out, ix.entries[ix.byDigits[ix.sorted[i]]])
	}
	return out
}

// Chapter returns the entries of a two-digit chapter in schedule order.
func (ix *Index) Chapter(chapter string) []model.TariffEntry {
	positions := ix.chapters[Digits(chapter)]
	out := make([]model.TariffEntry, 0, len(positions))
	for _, pos := range positions {
		out = append(out, ix.entries[pos])
	}
	return out
}

// Ancestors returns the existing ancestors of a code, nearest first.
func (ix *Index) Ancestors(code string) []model.TariffEntry {
	var out []model.TariffEntry
	for _, d := range AncestorDigits(Digits(code)) {
		if e, ok := ix.lookupDigits(d); ok {
			out = append(out, e)
		}
	}
	return out
}

// IsDetail reports whether an entry can be returned as a classification result.
func IsDetail(e model.TariffEntry) bool {
	return e.IndentLevel >= MinDetailIndent && IsComplete(e.Code)
}
