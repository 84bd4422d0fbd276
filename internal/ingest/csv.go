package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/model"
)

// Column headers of the USITC CSV export.
const (
	ColumnCode        = "hts number"
	ColumnIndent      = "indent"
	ColumnDescription = "description"
	ColumnUnit        = "unit of quantity"
	ColumnGeneral     = "general rate of duty"
	ColumnSpecial     = "special rate of duty"
	ColumnColumn2     = "column 2 rate of duty"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses the USITC CSV export. Columns are located by header name;
// only the code and description columns are required.
func ReadCSV(r io.Reader) (Result, error) {
	data, err := readAll(r)
	if err != nil {
		return Result{}, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("%w: schedule CSV is empty", common.ErrInvalidInput)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{ColumnCode, ColumnDescription} {
		if _, ok := cols[required]; !ok {
			return Result{}, fmt.Errorf("%w: schedule CSV has no %q column", common.ErrInvalidInput, required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var result Result
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		indent, err := parseIndent(field(record, ColumnIndent))
		if err != nil {
			return Result{}, fmt.Errorf("%w: line %d: %w", common.ErrInvalidInput, line, err)
		}

		result.add(model.TariffEntry{
			Code:        field(record, ColumnCode),
			Description: field(record, ColumnDescription),
			GeneralRate: field(record, ColumnGeneral),
			SpecialRate: field(record, ColumnSpecial),
			Column2Rate: field(record, ColumnColumn2),
			Unit:        field(record, ColumnUnit),
			IndentLevel: indent,
		})
	}
	return result, nil
}

func parseIndent(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid indent %q", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative indent %d", n)
	}
	return n, nil
}
