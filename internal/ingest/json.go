package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
)

// jsonRecord is one element of the USITC JSON export.
type jsonRecord struct {
	Indent      indentValue `json:"indent"`
	Code        string      `json:"htsno"`
	Description string      `json:"description"`
	General     string      `json:"general"`
	Special     string      `json:"special"`
	Other       string      `json:"other"`
	Units       []string    `json:"units"`
}

// indentValue accepts the indent as either a string or a number.
type indentValue int

func (v *indentValue) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid indent %s", b)
	}
	*v = indentValue(n)
	return nil
}

// ReadJSON parses the USITC JSON export.
func ReadJSON(r io.Reader) (Result, error) {
	data, err := readAll(r)
	if err != nil {
		return Result{}, err
	}

	var records []jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return Result{}, fmt.Errorf("%w: malformed schedule JSON: %w", common.ErrInvalidInput, err)
	}

	var result Result
	for _, rec := range records {
		if rec.Indent < 0 {
			return Result{}, fmt.Errorf("%w: %s has negative indent", common.ErrInvalidInput, rec.Code)
		}
		result.add(model.TariffEntry{
			Code:        rec.Code,
			Description: rec.Description,
			GeneralRate: rec.General,
			SpecialRate: rec.Special,
			Column2Rate: rec.Other,
			Unit:        strings.Join(rec.Units, ","),
			IndentLevel: int(rec.Indent),
		})
	}
	return result, nil
}
