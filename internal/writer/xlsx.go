package writer

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

// maxColWidth bounds auto-sized spreadsheet columns.
const maxColWidth = 50

// highlightColor is the fill applied to maximum cells.
const highlightColor = "FFFF00"

// Highlight pairs a value column with the boolean flag column that marks
// which of its cells get the highlight fill.
type Highlight struct {
	Col  string
	Flag string
}

// Sheet is one workbook sheet: a table plus its presentation hints.
type Sheet struct {
	Name  string
	Table *table.Table

	// Highlights style the Col cell (bold + fill) on every row where the
	// paired Flag column is true.
	Highlights []Highlight

	// Hidden lists columns hidden from view but retained in the data, so
	// the flag columns stay inspectable without cluttering the sheet.
	Hidden []string
}

// WriteWorkbook writes the sheets to an XLSX workbook at path. Presentation
// problems degrade: a failed style leaves the affected cells unstyled, and a
// failed workbook save falls back to writing each sheet as a plain CSV next
// to path, so a styling library problem never costs the data itself.
func WriteWorkbook(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("writer: workbook %s: no sheets", path)
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		if i == 0 {
			// Reuse the default sheet rather than leaving an empty Sheet1.
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return fmt.Errorf("writer: sheet %s: %w", sh.Name, err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return fmt.Errorf("writer: sheet %s: %w", sh.Name, err)
		}
		if err := fillSheet(f, sh); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		log.Printf("writer: xlsx save failed (%v); falling back to plain CSV", err)
		return fallbackCSV(path, sheets)
	}
	return nil
}

// fillSheet writes one table into a sheet and applies its styling.
func fillSheet(f *excelize.File, sh Sheet) error {
	t := sh.Table
	cols := t.Columns()

	for c, name := range cols {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return fmt.Errorf("writer: sheet %s: %w", sh.Name, err)
		}
		if err := f.SetCellValue(sh.Name, cell, name); err != nil {
			return fmt.Errorf("writer: sheet %s header: %w", sh.Name, err)
		}
	}
	for r := 0; r < t.Len(); r++ {
		for c, name := range cols {
			v, err := t.Value(r, name)
			if err != nil {
				return err
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("writer: sheet %s: %w", sh.Name, err)
			}
			if err := f.SetCellValue(sh.Name, cell, cellValue(v)); err != nil {
				return fmt.Errorf("writer: sheet %s row %d: %w", sh.Name, r, err)
			}
		}
	}

	// Styling below is best-effort: log and continue on failure.
	styleSheet(f, sh, cols)
	return nil
}

// styleSheet applies bold header, maxima highlights, hidden flag columns, and
// bounded auto-width. Failures are logged, never fatal.
func styleSheet(f *excelize.File, sh Sheet, cols []string) {
	t := sh.Table

	boldID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		log.Printf("writer: sheet %s: header style unavailable: %v", sh.Name, err)
		return
	}
	highlightID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{highlightColor}, Pattern: 1},
	})
	if err != nil {
		log.Printf("writer: sheet %s: highlight style unavailable: %v", sh.Name, err)
		highlightID = boldID
	}

	// Bold header row.
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(sh.Name, first, last, boldID); err != nil {
		log.Printf("writer: sheet %s: header style: %v", sh.Name, err)
	}

	// Highlight value cells whose flag column is true.
	colIdx := make(map[string]int, len(cols))
	for i, name := range cols {
		colIdx[name] = i
	}
	for _, h := range sh.Highlights {
		vi, okV := colIdx[h.Col]
		_, okF := colIdx[h.Flag]
		if !okV || !okF {
			log.Printf("writer: sheet %s: highlight %s/%s: column missing", sh.Name, h.Col, h.Flag)
			continue
		}
		for r := 0; r < t.Len(); r++ {
			flag, err := t.Value(r, h.Flag)
			if err != nil || flag != true {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(vi+1, r+2)
			if err := f.SetCellStyle(sh.Name, cell, cell, highlightID); err != nil {
				log.Printf("writer: sheet %s: highlight %s: %v", sh.Name, cell, err)
			}
		}
	}

	// Auto-size columns from the longest rendered cell, bounded.
	for c, name := range cols {
		width := len(name)
		for r := 0; r < t.Len(); r++ {
			v, _ := t.Value(r, name)
			if n := len(formatCell(v)); n > width {
				width = n
			}
		}
		w := float64(width + 2)
		if w > maxColWidth {
			w = maxColWidth
		}
		letter, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			continue
		}
		if err := f.SetColWidth(sh.Name, letter, letter, w); err != nil {
			log.Printf("writer: sheet %s: width %s: %v", sh.Name, letter, err)
		}
	}

	// Hide flag columns; the data stays in the file.
	for _, name := range sh.Hidden {
		i, ok := colIdx[name]
		if !ok {
			continue
		}
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		if err := f.SetColVisible(sh.Name, letter, false); err != nil {
			log.Printf("writer: sheet %s: hide %s: %v", sh.Name, name, err)
		}
	}
}

// cellValue converts a table cell to the value handed to the spreadsheet
// library. Dates become date-only strings so the sheet shows calendar dates
// without a time component.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return x
	}
}

// fallbackCSV writes each sheet as <path without ext>_<sheet>.csv.
func fallbackCSV(path string, sheets []Sheet) error {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	var firstErr error
	for _, sh := range sheets {
		name := sanitizeName(sh.Name)
		out := fmt.Sprintf("%s_%s.csv", base, name)
		if err := WriteCSV(sh.Table, out); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Printf("writer: wrote %s in place of styled sheet %q", out, sh.Name)
	}
	return firstErr
}

// sanitizeName makes a sheet name safe for a filename.
func sanitizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
