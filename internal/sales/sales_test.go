package sales

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/report"
)

// Rows span two months; only 2024-06 should survive the latest-month filter.
// TX5 is a deleted record, TX6 an "Other" property type, TX4 appears twice
// (a re-issued row), and MADEUPTOWN has no lookup entry.
const salesCSV = `"TX1","250000","2024-06-03 00:00","AB1 2CD","D","N","F","1","","HIGH ST","","HARTLEPOOL","HARTLEPOOL","HARTLEPOOL","A","A"
"TX2","180000","2024-06-10 00:00","AB2 3EF","S","N","F","2","","LOW ST","","HARTLEPOOL","HARTLEPOOL","HARTLEPOOL","A","A"
"TX3","320000","2024-06-21 00:00","EC1 1AA","F","N","L","3","","BANK ST","","LONDON","CITY OF LONDON","GREATER LONDON","A","A"
"TX4","410000","2024-06-28 00:00","EC1 2BB","T","N","F","4","","WALL ST","","LONDON","CITY OF LONDON","GREATER LONDON","A","A"
"TX5","500000","2024-06-15 00:00","AB3 4GH","D","N","F","5","","OLD RD","","HARTLEPOOL","HARTLEPOOL","HARTLEPOOL","A","D"
"TX6","900000","2024-06-18 00:00","EC2 5JJ","O","N","F","6","","ODD LN","","LONDON","CITY OF LONDON","GREATER LONDON","A","A"
"TX4","410000","2024-06-28 00:00","EC1 2BB","T","N","F","4","","WALL ST","","LONDON","CITY OF LONDON","GREATER LONDON","A","A"
"TX8","150000","2024-05-30 00:00","AB4 5IJ","D","N","F","7","","PAST AVE","","HARTLEPOOL","HARTLEPOOL","HARTLEPOOL","A","A"
"TX9","275000","2024-06-09 00:00","ZZ1 1ZZ","D","N","F","8","","FAKE ST","","MADEUPTOWN","MADEUPTOWN","NOWHERE","A","A"
`

const lookupCSV = `LAD_Code,LAD_Name,Region_Code,Region_Name,Unshared_Dwellings,Shared_Dwellings,Shared_Two_Spaces,Shared_Three_Plus_Spaces,Total_Dwellings
E06000001,Hartlepool,E12000001,North East,100,7,5,2,107
E09000001,City of London,E12000007,London,50,4,3,1,54
`

func writeInputs(t *testing.T, withLookup bool) (Config, string) {
	t.Helper()

	dir := t.TempDir()
	salesPath := filepath.Join(dir, "pp-monthly-update.csv")
	if err := os.WriteFile(salesPath, []byte(salesCSV), 0o644); err != nil {
		t.Fatalf("write sales: %v", err)
	}
	lookupPath := filepath.Join(dir, "census_dwelling_data_prepared.csv")
	if withLookup {
		if err := os.WriteFile(lookupPath, []byte(lookupCSV), 0o644); err != nil {
			t.Fatalf("write lookup: %v", err)
		}
	}
	return Config{
		SalesPath:    salesPath,
		LookupPath:   lookupPath,
		PivotPath:    filepath.Join(dir, "district_property_counts.csv"),
		MatchedPath:  filepath.Join(dir, "district_property_counts_matched.csv"),
		RegionalPath: filepath.Join(dir, "regional_property_summary.csv"),
		WorkbookPath: filepath.Join(dir, "property_analysis.xlsx"),
	}, dir
}

func runStage(t *testing.T, withLookup bool) (*Result, string) {
	t.Helper()

	prev := log.Default().Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(prev) })

	cfg, dir := writeInputs(t, withLookup)
	res, err := Run(cfg, report.NewTo(io.Discard))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res, dir
}

func pivotRow(t *testing.T, res *Result, district string) map[string]int64 {
	t.Helper()
	for r := 0; r < res.Pivot.Len(); r++ {
		v, err := res.Pivot.Value(r, "District")
		if err != nil {
			t.Fatalf("Value: %v", err)
		}
		if v != district {
			continue
		}
		out := map[string]int64{}
		for _, c := range []string{"D", "F", "S", "T", "Total"} {
			cv, err := res.Pivot.Value(r, c)
			if err != nil {
				t.Fatalf("Value: %v", err)
			}
			out[c] = cv.(int64)
		}
		return out
	}
	t.Fatalf("district %s missing from pivot", district)
	return nil
}

func TestRunFiltersAndCounts(t *testing.T) {
	res, _ := runStage(t, true)

	// TX5 (status D), TX6 (type O), the duplicate TX4, and TX8 (previous
	// month) are all excluded or collapsed.
	h := pivotRow(t, res, "HARTLEPOOL")
	if h["D"] != 1 || h["S"] != 1 || h["F"] != 0 || h["T"] != 0 || h["Total"] != 2 {
		t.Errorf("HARTLEPOOL counts=%v, want D:1 S:1 F:0 T:0 Total:2", h)
	}
	c := pivotRow(t, res, "CITY OF LONDON")
	if c["F"] != 1 || c["T"] != 1 || c["Total"] != 2 {
		t.Errorf("CITY OF LONDON counts=%v, want F:1 T:1 Total:2", c)
	}
}

func TestRunMatchingIsCaseInsensitive(t *testing.T) {
	res, _ := runStage(t, true)

	// Lookup names are mixed case; districts arrive uppercased. Both lookup
	// districts match, MADEUPTOWN does not.
	if res.Matched.Len() != 2 {
		t.Fatalf("matched rows=%d, want 2", res.Matched.Len())
	}
	for r := 0; r < res.Matched.Len(); r++ {
		v, err := res.Matched.Value(r, "Region_Name")
		if err != nil {
			t.Fatalf("Value: %v", err)
		}
		if v != "North East" && v != "London" {
			t.Errorf("unexpected Region_Name %v", v)
		}
	}
}

func TestRunRegionalSummarySums(t *testing.T) {
	res, _ := runStage(t, true)

	if res.Regional.Len() != 2 {
		t.Fatalf("regional rows=%d, want 2", res.Regional.Len())
	}
	var total int64
	for r := 0; r < res.Regional.Len(); r++ {
		v, err := res.Regional.Value(r, "Total")
		if err != nil {
			t.Fatalf("Value: %v", err)
		}
		total += v.(int64)
	}
	// The unmatched MADEUPTOWN sale is excluded from the regional totals.
	if total != 4 {
		t.Errorf("regional Total sum=%d, want 4", total)
	}
}

func TestRunMissingLookupWritesPivotOnly(t *testing.T) {
	res, dir := runStage(t, false)

	if res.Matched != nil || res.Regional != nil {
		t.Fatal("matched/regional should be nil without the lookup file")
	}
	if _, err := os.Stat(filepath.Join(dir, "district_property_counts.csv")); err != nil {
		t.Fatalf("pivot output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "property_analysis.xlsx")); !os.IsNotExist(err) {
		t.Fatal("workbook should not be written without the lookup file")
	}
}

func TestRunOutputs(t *testing.T) {
	_, dir := runStage(t, true)

	data, err := os.ReadFile(filepath.Join(dir, "district_property_counts.csv"))
	if err != nil {
		t.Fatalf("read pivot: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "District,D,F,S,T,Total" {
		t.Fatalf("pivot header=%q", lines[0])
	}
	for _, name := range []string{
		"district_property_counts_matched.csv",
		"regional_property_summary.csv",
		"property_analysis.xlsx",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}
