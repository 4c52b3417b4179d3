// Package writer serializes tables to the output formats the stages produce:
// delimited text and styled spreadsheet workbooks.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

// WriteCSV serializes t to path: a header row followed by one row per table
// row, in the table's column order, with no index column.
func WriteCSV(t *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writer: create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteCSVTo(t, f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writer: close %s: %w", path, err)
	}
	return nil
}

// WriteCSVTo writes t as CSV to w.
func WriteCSVTo(t *table.Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("writer: header: %w", err)
	}
	cols := t.Columns()
	row := make([]string, len(cols))
	for r := 0; r < t.Len(); r++ {
		for i, name := range cols {
			v, err := t.Value(r, name)
			if err != nil {
				return err
			}
			row[i] = formatCell(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writer: row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatCell renders one cell for delimited output. Missing cells render
// empty; dates render as calendar dates.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format("2006-01-02")
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
