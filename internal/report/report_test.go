package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

func TestCountsGrouping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewTo(&buf).Counts("sales",
		Count{Label: "rows", N: 1234567},
		Count{Label: "skipped", N: 12},
	)
	got := buf.String()
	want := "sales: rows=1,234,567 skipped=12\n"
	if got != want {
		t.Fatalf("output=%q, want %q", got, want)
	}
}

func TestUnmatchedSortedWithTotals(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewTo(&buf).Unmatched("sales", map[string]int{
		"ZEBRA DISTRICT": 2,
		"ALPHA DISTRICT": 3,
	})
	out := buf.String()
	if !strings.Contains(out, "sales: 2 unmatched keys (5 associated rows):") {
		t.Fatalf("missing header in %q", out)
	}
	if strings.Index(out, "ALPHA") > strings.Index(out, "ZEBRA") {
		t.Fatalf("keys not sorted in %q", out)
	}
}

func TestUnmatchedEmptyPrintsNothing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewTo(&buf).Unmatched("sales", nil)
	if buf.Len() != 0 {
		t.Fatalf("output=%q, want empty", buf.String())
	}
}

func TestTableHead(t *testing.T) {
	t.Parallel()

	tbl, err := table.New(
		table.Field{Name: "Region_Name", Kind: table.String},
		table.Field{Name: "Total_Sales", Kind: table.Int},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tbl.AppendRow("London", int64(25000)); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := tbl.AppendRow("North East", int64(4000)); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	var buf bytes.Buffer
	NewTo(&buf).Table("regional summary", tbl, 10)
	out := buf.String()
	if !strings.Contains(out, "regional summary (2 of 2 rows)") {
		t.Fatalf("missing title in %q", out)
	}
	if !strings.Contains(out, "25,000") {
		t.Fatalf("missing grouped number in %q", out)
	}
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Fatalf("lines=%d, want title+header+2 rows in %q", lines, out)
	}
}
