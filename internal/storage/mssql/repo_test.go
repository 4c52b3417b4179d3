package mssql

import (
	"testing"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := storage.TableDef{
		Name: "census_prepared",
		Columns: []storage.ColumnDef{
			{Name: "LAD_Code", Kind: table.String},
			{Name: "Total_Dwellings", Kind: table.Int},
		},
	}
	got := CreateTableSQL(def)
	want := "IF OBJECT_ID(N'census_prepared', N'U') IS NULL CREATE TABLE [census_prepared] ([LAD_Code] NVARCHAR(400), [Total_Dwellings] BIGINT)"
	if got != want {
		t.Fatalf("sql=%q, want %q", got, want)
	}
}

func TestIdentEscaping(t *testing.T) {
	t.Parallel()

	if got := msIdent("odd]name"); got != "[odd]]name]" {
		t.Fatalf("ident=%q", got)
	}
}
