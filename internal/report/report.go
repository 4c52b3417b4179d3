// Package report prints end-of-stage summaries to the console. Row counts are
// grouped with thousands separators so the figures for national-scale inputs
// stay readable.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

// Reporter formats stage summaries. The zero value is not usable; call New.
type Reporter struct {
	p *message.Printer
	w io.Writer
}

// New returns a Reporter writing to stdout.
func New() *Reporter { return NewTo(os.Stdout) }

// NewTo returns a Reporter writing to w.
func NewTo(w io.Writer) *Reporter {
	return &Reporter{p: message.NewPrinter(language.English), w: w}
}

// Counts prints a one-line stage summary, e.g.
// "sales: rows=1,234,567 skipped=12 kept=1,234,555".
func (r *Reporter) Counts(stage string, pairs ...Count) {
	parts := make([]string, len(pairs))
	for i, c := range pairs {
		parts[i] = c.Label + "=" + number(c.N)
	}
	fmt.Fprintf(r.w, "%s: %s\n", stage, strings.Join(parts, " "))
}

// Count is one labelled figure in a Counts line.
type Count struct {
	Label string
	N     int
}

// Table prints the first n rows of t in aligned columns, the way a quick
// head-of-frame check reads during a run.
func (r *Reporter) Table(title string, t *table.Table, n int) {
	if n > t.Len() {
		n = t.Len()
	}
	fmt.Fprintf(r.w, "%s (%s of %s rows)\n", title, number(n), number(t.Len()))

	cols := t.Columns()
	widths := make([]int, len(cols))
	cells := make([][]string, n)
	for i, name := range cols {
		widths[i] = len(name)
	}
	for row := 0; row < n; row++ {
		cells[row] = make([]string, len(cols))
		for i, name := range cols {
			v, err := t.Value(row, name)
			if err != nil {
				continue
			}
			s := cellString(r.p, v)
			cells[row][i] = s
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	head := make([]string, len(cols))
	for i, name := range cols {
		head[i] = pad(name, widths[i])
	}
	fmt.Fprintln(r.w, "  "+strings.Join(head, "  "))
	for row := 0; row < n; row++ {
		for i := range cells[row] {
			cells[row][i] = pad(cells[row][i], widths[i])
		}
		fmt.Fprintln(r.w, "  "+strings.Join(cells[row], "  "))
	}
}

// Unmatched prints join keys that found no partner, each with an associated
// count (rows or transactions, whatever the stage tracks per key). Keys print
// sorted so runs diff cleanly.
func (r *Reporter) Unmatched(stage string, keys map[string]int) {
	if len(keys) == 0 {
		return
	}
	total := 0
	names := make([]string, 0, len(keys))
	for k, n := range keys {
		names = append(names, k)
		total += n
	}
	sort.Strings(names)
	fmt.Fprintf(r.w, "%s: %d unmatched keys (%s associated rows):\n",
		stage, len(names), number(total))
	for _, k := range names {
		fmt.Fprintf(r.w, "  %-40s %s\n", k, number(keys[k]))
	}
}

// Maxima prints which row holds the maximum for each flagged column.
func (r *Reporter) Maxima(stage string, rows map[string]string) {
	names := make([]string, 0, len(rows))
	for col := range rows {
		names = append(names, col)
	}
	sort.Strings(names)
	for _, col := range names {
		fmt.Fprintf(r.w, "%s: highest %s: %s\n", stage, col, rows[col])
	}
}

var num = message.NewPrinter(language.English)

// number renders n with thousands separators.
func number(n int) string { return num.Sprintf("%d", n) }

func cellString(p *message.Printer, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return p.Sprintf("%d", x)
	case float64:
		return p.Sprintf("%.2f", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
