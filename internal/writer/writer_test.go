package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Field{Name: "Region_Code", Kind: table.String},
		table.Field{Name: "Total_Sales", Kind: table.Int},
		table.Field{Name: "Sales_Rate", Kind: table.Float},
		table.Field{Name: "Max_Sales_Rate", Kind: table.Bool},
		table.Field{Name: "As_Of", Kind: table.Date},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	day := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	if err := tbl.AppendRow("E12000001", int64(1200), 1.25, false, day); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := tbl.AppendRow("E12000002", int64(3400), 2.5, true, day); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	return tbl
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(sampleTable(t), path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "Region_Code,Total_Sales,Sales_Rate,Max_Sales_Rate,As_Of" {
		t.Errorf("header=%q", lines[0])
	}
	if lines[2] != "E12000002,3400,2.5,true,2024-03-31" {
		t.Errorf("row=%q", lines[2])
	}
}

func TestWriteCSVNilCellsEmpty(t *testing.T) {
	t.Parallel()

	tbl, err := table.New(
		table.Field{Name: "a", Kind: table.String},
		table.Field{Name: "b", Kind: table.Int},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tbl.AppendRow("x", nil); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(tbl, path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	b, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if lines[1] != "x," {
		t.Errorf("row=%q, want %q", lines[1], "x,")
	}
}

func TestWriteWorkbook(t *testing.T) {
	t.Parallel()

	tbl := sampleTable(t)
	path := filepath.Join(t.TempDir(), "analysis.xlsx")
	err := WriteWorkbook(path, Sheet{
		Name:       "Regional Analysis",
		Table:      tbl,
		Highlights: []Highlight{{Col: "Sales_Rate", Flag: "Max_Sales_Rate"}},
		Hidden:     []string{"Max_Sales_Rate"},
	})
	if err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Regional Analysis")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want 3", len(rows))
	}
	if rows[0][0] != "Region_Code" {
		t.Errorf("header cell=%q", rows[0][0])
	}
	// Hidden column keeps its data.
	if rows[2][3] != "TRUE" && rows[2][3] != "true" {
		t.Errorf("flag cell=%q, want a true value", rows[2][3])
	}
	visible, err := f.GetColVisible("Regional Analysis", "D")
	if err != nil {
		t.Fatalf("GetColVisible: %v", err)
	}
	if visible {
		t.Error("flag column still visible, want hidden")
	}
}

func TestWriteWorkbookMultipleSheets(t *testing.T) {
	t.Parallel()

	tbl := sampleTable(t)
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	err := WriteWorkbook(path,
		Sheet{Name: "District_Pivot", Table: tbl},
		Sheet{Name: "Regional_Summary", Table: tbl},
	)
	if err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) != 2 {
		t.Fatalf("sheets=%v, want 2", names)
	}
	if names[0] != "District_Pivot" || names[1] != "Regional_Summary" {
		t.Errorf("sheets=%v", names)
	}
}

func TestWriteWorkbookNoSheets(t *testing.T) {
	t.Parallel()

	if err := WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx")); err == nil {
		t.Fatal("expected error for empty workbook")
	}
}
