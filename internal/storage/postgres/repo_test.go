package postgres

import (
	"testing"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := storage.TableDef{
		Name: "sales_matched",
		Columns: []storage.ColumnDef{
			{Name: "District", Kind: table.String},
			{Name: "Date_of_Transfer", Kind: table.Date},
			{Name: "Price", Kind: table.Int},
			{Name: "Sales_Rate", Kind: table.Float},
			{Name: "Is_New_Build", Kind: table.Bool},
		},
	}
	got := CreateTableSQL(def)
	want := `CREATE TABLE IF NOT EXISTS "sales_matched" ("District" TEXT, "Date_of_Transfer" DATE, "Price" BIGINT, "Sales_Rate" DOUBLE PRECISION, "Is_New_Build" BOOLEAN)`
	if got != want {
		t.Fatalf("sql=%q, want %q", got, want)
	}
}
