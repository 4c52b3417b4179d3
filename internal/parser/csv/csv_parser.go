// Package csv parses delimited source files into records. Inputs come from
// government open-data portals and are mostly well-formed, but real downloads
// still carry a UTF-8 BOM, padded header cells, and the occasional short row,
// so parsing is soft-fail: malformed rows are skipped and counted rather than
// aborting the run.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/pkg/records"
)

// Options configures the CSV parser. All fields are optional; zero values get
// sensible defaults.
type Options struct {
	// HasHeader indicates the first row contains column names.
	HasHeader bool

	// Columns supplies an explicit ordered list of column names for sources
	// without a header row (the Land Registry price-paid file ships without
	// one). Ignored when HasHeader is true.
	Columns []string

	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from every field value.
	TrimSpace bool

	// ExpectedFields, when > 0, enforces a fixed field count per record.
	// Rows with a different width are skipped and counted.
	ExpectedFields int

	// HeaderMap renames source header cells to canonical keys. Applies only
	// when HasHeader is true; unmapped headers pass through trimmed.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. A Parser may be reused across
// inputs but is not safe for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header or data cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps per-row skip diagnostics so a badly broken file cannot
// flood the log; the final count is still accurate.
const skipLogLimit = 50

// Parse reads all rows from r and returns the parsed records plus the number
// of rows skipped due to parse errors or field-count mismatches. Empty cells
// become nil values so downstream fill policies can distinguish "missing"
// from "empty string".
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Width is enforced here, not by encoding/csv, so that short rows are
	// soft-skipped instead of failing the whole file.
	cr.FieldsPerRecord = -1

	headers, err := p.resolveHeaders(cr)
	if err != nil {
		return nil, 0, err
	}

	var out []records.Record
	var skipped int

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if line == 1 && len(row) > 0 {
			row[0] = strings.TrimPrefix(row[0], utf8BOM)
		}
		if len(headers) > 0 && len(row) != len(headers) {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: field count %d, want %d", line, len(row), len(headers))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			key := keyFor(i, headers)
			if val == "" {
				rec[key] = nil
			} else {
				rec[key] = val
			}
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

// resolveHeaders determines the canonical column names: from the header row,
// from Options.Columns, or synthesized from ExpectedFields.
func (p *Parser) resolveHeaders(cr *csv.Reader) ([]string, error) {
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, fmt.Errorf("csv: read header: %w", err)
		}
		return normalizeHeaders(h, p.opt.HeaderMap), nil
	}
	if len(p.opt.Columns) > 0 {
		return p.opt.Columns, nil
	}
	if p.opt.ExpectedFields > 0 {
		headers := make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
		return headers, nil
	}
	return nil, nil
}

// normalizeHeaders trims whitespace and the BOM from header cells and applies
// the optional HeaderMap rename.
func normalizeHeaders(h []string, m map[string]string) []string {
	out := make([]string, len(h))
	for i, name := range h {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if mapped, ok := m[name]; ok {
			name = mapped
		}
		out[i] = name
	}
	return out
}

// keyFor returns the canonical key for column index i.
func keyFor(i int, headers []string) string {
	if i < len(headers) {
		return headers[i]
	}
	return fmt.Sprintf("col_%d", i)
}
