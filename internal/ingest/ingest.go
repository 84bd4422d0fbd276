// Package ingest reads the USITC tariff schedule exports into tariff entries.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
)

// Result is a cleaned schedule plus counts of what was dropped.
type Result struct {
	Entries []model.TariffEntry
	// Skipped counts rows without a tariff code (descriptive grouping lines).
	Skipped int
}

// ReadFile loads a schedule export, choosing the format by extension.
func ReadFile(path string) (Result, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Result{}, fmt.Errorf("failed to open schedule: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv", "":
		return ReadCSV(f)
	default:
		return Result{}, fmt.Errorf("%w: unsupported schedule format %q", common.ErrInvalidInput, filepath.Ext(path))
	}
}

func (r *Result) add(e model.TariffEntry) {
	e.Code = strings.TrimSpace(e.Code)
	if e.Code == "" {
		r.Skipped++
		return
	}
	e.Description = strings.TrimSpace(e.Description)
	e.GeneralRate = strings.TrimSpace(e.GeneralRate)
	e.SpecialRate = strings.TrimSpace(e.SpecialRate)
	e.Column2Rate = strings.TrimSpace(e.Column2Rate)
	e.Unit = cleanUnit(e.Unit)
	r.Entries = append(r.Entries, e)
}

// cleanUnit flattens the list notation the CSV export uses for units,
// e.g. `["kg","No."]` becomes "kg, No.".
func cleanUnit(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}
	return data, nil
}
