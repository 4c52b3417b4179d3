package table

import (
	"strings"
	"testing"
	"time"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/pkg/records"
)

func mustNew(t *testing.T, fields ...Field) *Table {
	t.Helper()
	tbl, err := New(fields...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

func mustAppend(t *testing.T, tbl *Table, vals ...any) {
	t.Helper()
	if err := tbl.AppendRow(vals...); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
}

func cell(t *testing.T, tbl *Table, row int, col string) any {
	t.Helper()
	v, err := tbl.Value(row, col)
	if err != nil {
		t.Fatalf("Value(%d, %q): %v", row, col, err)
	}
	return v
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	t.Parallel()

	_, err := New(Field{Name: "a"}, Field{Name: "a"})
	if err == nil {
		t.Fatal("expected error for duplicate column")
	}
}

func TestFromRecords(t *testing.T) {
	t.Parallel()

	schema := Schema{
		{Name: "code", Kind: String, Required: true},
		{Name: "count", Kind: Int, Required: true},
		{Name: "when", Kind: Date},
	}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	recs := []records.Record{
		{"code": "E01", "count": int64(3), "when": day},
		{"code": "E02", "count": int64(5)},
	}
	tbl, err := FromRecords(schema, recs)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("len=%d, want 2", tbl.Len())
	}
	if v := cell(t, tbl, 0, "count"); v != int64(3) {
		t.Errorf("count=%v, want 3", v)
	}
	if v := cell(t, tbl, 1, "when"); v != nil {
		t.Errorf("when=%v, want nil", v)
	}
}

func TestFromRecordsFailsFast(t *testing.T) {
	t.Parallel()

	schema := Schema{
		{Name: "code", Kind: String, Required: true},
		{Name: "count", Kind: Int, Required: true},
	}

	t.Run("missing_required", func(t *testing.T) {
		t.Parallel()
		_, err := FromRecords(schema, []records.Record{{"code": "E01"}})
		if err == nil || !strings.Contains(err.Error(), "count") {
			t.Fatalf("err=%v, want missing-field error naming count", err)
		}
	})

	t.Run("mistyped", func(t *testing.T) {
		t.Parallel()
		// A count that failed coercion is still a string; construction must
		// report it, not let it flow downstream.
		_, err := FromRecords(schema, []records.Record{{"code": "E01", "count": "not-a-number"}})
		if err == nil || !strings.Contains(err.Error(), "count") {
			t.Fatalf("err=%v, want type error naming count", err)
		}
	})
}

func TestFromRecordsPromotesIntToFloat(t *testing.T) {
	t.Parallel()

	schema := Schema{{Name: "rate", Kind: Float}}
	tbl, err := FromRecords(schema, []records.Record{{"rate": int64(7)}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if v := cell(t, tbl, 0, "rate"); v != float64(7) {
		t.Fatalf("rate=%v (%T), want float64 7", v, v)
	}
}

func TestSelectAndRename(t *testing.T) {
	t.Parallel()

	tbl := mustNew(t,
		Field{Name: "a", Kind: String},
		Field{Name: "b", Kind: Int},
		Field{Name: "c", Kind: Int},
	)
	mustAppend(t, tbl, "x", int64(1), int64(2))

	sel, err := tbl.Select("c", "a")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := sel.Columns(); len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Fatalf("columns=%v, want [c a]", got)
	}

	if err := sel.Rename("c", "count"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if v := cell(t, sel, 0, "count"); v != int64(2) {
		t.Fatalf("count=%v, want 2", v)
	}
	if err := sel.Rename("missing", "x"); err == nil {
		t.Fatal("expected error renaming missing column")
	}
}

func TestSetNames(t *testing.T) {
	t.Parallel()

	tbl := mustNew(t, Field{Name: "long category label", Kind: Int}, Field{Name: "other", Kind: Int})
	mustAppend(t, tbl, int64(1), int64(2))

	if err := tbl.SetNames("first"); err == nil {
		t.Fatal("expected arity error")
	}
	if err := tbl.SetNames("first", "second"); err != nil {
		t.Fatalf("SetNames: %v", err)
	}
	if v := cell(t, tbl, 0, "second"); v != int64(2) {
		t.Fatalf("second=%v, want 2", v)
	}
}

func TestAddSumColumn(t *testing.T) {
	t.Parallel()

	tbl := mustNew(t,
		Field{Name: "a", Kind: Int},
		Field{Name: "b", Kind: Int},
	)
	mustAppend(t, tbl, int64(3), int64(5))
	mustAppend(t, tbl, int64(1), nil)

	if err := tbl.AddSumColumn("total", "a", "b"); err != nil {
		t.Fatalf("AddSumColumn: %v", err)
	}
	if v := cell(t, tbl, 0, "total"); v != int64(8) {
		t.Errorf("total[0]=%v, want 8", v)
	}
	// Missing cells count as zero.
	if v := cell(t, tbl, 1, "total"); v != int64(1) {
		t.Errorf("total[1]=%v, want 1", v)
	}
}
