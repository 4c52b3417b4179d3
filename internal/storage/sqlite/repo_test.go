package sqlite

import (
	"testing"
	"time"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := storage.TableDef{
		Name: "regional_summary",
		Columns: []storage.ColumnDef{
			{Name: "Region_Code", Kind: table.String},
			{Name: "Total Sales", Kind: table.Int},
			{Name: "Sales_Rate", Kind: table.Float},
		},
	}
	got := CreateTableSQL(def)
	want := `CREATE TABLE IF NOT EXISTS "regional_summary" ("Region_Code" TEXT, "Total Sales" INTEGER, "Sales_Rate" REAL)`
	if got != want {
		t.Fatalf("sql=%q, want %q", got, want)
	}
}

func TestNormalizeRowDates(t *testing.T) {
	t.Parallel()

	d := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
	got := normalizeRow([]any{"E12000001", int64(5), d, nil})
	if got[2] != "2023-06-30" {
		t.Fatalf("date=%v, want 2023-06-30", got[2])
	}
	if got[0] != "E12000001" || got[1] != int64(5) || got[3] != nil {
		t.Fatalf("row=%v, other values should pass through", got)
	}
}
