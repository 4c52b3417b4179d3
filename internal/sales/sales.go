// Package sales implements the second pipeline stage: it counts the latest
// month's land-registry price-paid transactions per district and property
// type, matches districts against the prepared census file, and aggregates
// the matched counts per region.
package sales

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/parser/csv"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/report"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/transformer"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/transformer/builtin"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/writer"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/pkg/records"
)

// priceColumns is the published column layout of the price-paid monthly
// update, which ships without a header row.
var priceColumns = []string{
	"Transaction_ID",
	"Price",
	"Date",
	"Postcode",
	"Property_Type",
	"Old_New",
	"Duration",
	"PAON",
	"SAON",
	"Street",
	"Locality",
	"Town_City",
	"District",
	"County",
	"PPD_Category",
	"Record_Status",
}

// dateLayouts covers the date renderings seen across monthly extracts.
var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// propertyTypes is the fixed category set counted per district; "O" (other)
// is deliberately excluded.
var propertyTypes = []string{"D", "F", "S", "T"}

// salesSchema validates the cleaned transaction records before counting.
var salesSchema = table.Schema{
	{Name: "Transaction_ID", Kind: table.String, Required: true},
	{Name: "Price", Kind: table.Int},
	{Name: "Date", Kind: table.Date, Required: true},
	{Name: "Property_Type", Kind: table.String, Required: true},
	{Name: "Town_City", Kind: table.String},
	{Name: "District", Kind: table.String, Required: true},
	{Name: "County", Kind: table.String},
	{Name: "Record_Status", Kind: table.String, Required: true},
}

// lookupSchema reads the census stage's prepared file; only fully regioned
// rows are usable as match targets.
var lookupSchema = table.Schema{
	{Name: "LAD_Name", Kind: table.String, Required: true},
	{Name: "Region_Code", Kind: table.String, Required: true},
	{Name: "Region_Name", Kind: table.String, Required: true},
}

// matchedColumns is the layout of the matched-districts output.
var matchedColumns = []string{
	"District", "LAD_Name", "Region_Code", "Region_Name",
	"D", "F", "S", "T", "Total",
}

// Config carries the stage's file paths.
type Config struct {
	// SalesPath is the headerless price-paid monthly update.
	SalesPath string

	// LookupPath is the census stage's prepared file. It may be absent;
	// the stage then produces the district pivot only.
	LookupPath string

	// PivotPath receives the per-district property-type counts.
	PivotPath string

	// MatchedPath receives the counts for districts matched to a region.
	MatchedPath string

	// RegionalPath receives the per-region sales summary.
	RegionalPath string

	// WorkbookPath receives the three-sheet spreadsheet.
	WorkbookPath string
}

// Result exposes the stage's tables. Matched and Regional are nil when the
// census lookup file was missing.
type Result struct {
	Pivot    *table.Table
	Matched  *table.Table
	Regional *table.Table
}

// Run executes the sales counting stage.
func Run(cfg Config, rep *report.Reporter) (*Result, error) {
	sales, skipped, err := loadSales(cfg.SalesPath)
	if err != nil {
		return nil, err
	}
	rep.Counts("sales",
		report.Count{Label: "rows", N: sales.Len()},
		report.Count{Label: "skipped", N: skipped})

	pivot, err := table.Crosstab(sales, "District", "Property_Type", propertyTypes, "Total")
	if err != nil {
		return nil, fmt.Errorf("sales: crosstab: %w", err)
	}
	if err := writer.WriteCSV(pivot, cfg.PivotPath); err != nil {
		return nil, fmt.Errorf("sales: %w", err)
	}
	res := &Result{Pivot: pivot}

	lookup, err := loadLookup(cfg.LookupPath)
	if os.IsNotExist(err) {
		// The census stage has not run yet. The district pivot stands on its
		// own; only the region matching depends on the lookup.
		log.Printf("sales: %s missing; writing district pivot only", cfg.LookupPath)
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	matched, unmatched, err := table.Join(pivot, lookup, table.JoinOptions{
		LeftKeys:      []string{"District"},
		RightKeys:     []string{"LAD_Name"},
		Take:          []string{"LAD_Name", "Region_Code", "Region_Name"},
		Mode:          table.Left,
		NormalizeKeys: true,
		DropUnmatched: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sales: district match: %w", err)
	}
	if len(unmatched) > 0 {
		keys := make(map[string]int, len(unmatched))
		for _, u := range unmatched {
			n, _ := u.Row["Total"].(int64)
			keys[u.Key] = int(n)
		}
		rep.Unmatched("sales", keys)
	}

	res.Matched, err = matched.Select(matchedColumns...)
	if err != nil {
		return nil, fmt.Errorf("sales: %w", err)
	}
	res.Regional, err = table.GroupSum(res.Matched,
		[]string{"Region_Code", "Region_Name"},
		[]string{"D", "F", "S", "T", "Total"})
	if err != nil {
		return nil, fmt.Errorf("sales: regional summary: %w", err)
	}

	if err := save(cfg, res, rep); err != nil {
		return nil, err
	}
	return res, nil
}

// loadSales parses, cleans, dedupes, and filters the monthly extract down to
// the latest month's completed sales of the counted property types.
func loadSales(path string) (*table.Table, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("sales: open %s: %w", path, err)
	}
	defer f.Close()

	p := csv.NewParser(csv.Options{Columns: priceColumns, TrimSpace: true})
	recs, skipped, err := p.Parse(f)
	if err != nil {
		return nil, 0, fmt.Errorf("sales: parse %s: %w", path, err)
	}

	recs = transformer.Chain{
		builtin.Normalize{},
		builtin.Coerce{
			Types:       map[string]string{"Price": "int", "Date": "date"},
			DateLayouts: dateLayouts,
		},
		builtin.Require{Fields: []string{"Transaction_ID", "Date", "Property_Type", "District", "Record_Status"}},
		builtin.DeDup{Keys: []string{"Transaction_ID"}, Policy: "keep-last"},
	}.Apply(recs)

	recs = filterLatestMonth(recs)

	recs = transformer.Chain{
		builtin.Keep{Field: "Record_Status", In: []string{"A"}},
		builtin.Keep{Field: "Property_Type", In: propertyTypes},
	}.Apply(recs)

	t, err := table.FromRecords(salesSchema, recs)
	if err != nil {
		return nil, 0, fmt.Errorf("sales: %w", err)
	}
	return t, skipped, nil
}

// filterLatestMonth keeps only transactions dated in the most recent calendar
// month present in the extract. The last month is assumed complete; the
// detected month and its transaction count are logged so an implausibly small
// (truncated) month is visible to the operator.
func filterLatestMonth(recs []records.Record) []records.Record {
	var latest time.Time
	for _, r := range recs {
		if d, ok := r["Date"].(time.Time); ok && d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return recs
	}
	year, month := latest.Year(), latest.Month()

	out := recs[:0]
	for _, r := range recs {
		d, ok := r["Date"].(time.Time)
		if ok && d.Year() == year && d.Month() == month {
			out = append(out, r)
		}
	}
	log.Printf("sales: latest month %04d-%02d: %d transaction(s)", year, month, len(out))
	return out
}

// loadLookup reads the census stage's prepared file. The not-exist error is
// passed through unwrapped-compatible so the caller can treat it as the
// recoverable "census stage not run yet" condition.
func loadLookup(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("sales: open %s: %w", path, err)
	}
	defer f.Close()

	p := csv.NewParser(csv.Options{HasHeader: true, TrimSpace: true})
	recs, _, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("sales: parse %s: %w", path, err)
	}
	recs = transformer.Chain{
		builtin.Normalize{},
		builtin.Require{Fields: []string{"LAD_Name", "Region_Code", "Region_Name"}},
	}.Apply(recs)

	t, err := table.FromRecords(lookupSchema, recs)
	if err != nil {
		return nil, fmt.Errorf("sales: lookup: %w", err)
	}
	return t, nil
}

// save writes the matched outputs and the three-sheet workbook.
func save(cfg Config, res *Result, rep *report.Reporter) error {
	if err := writer.WriteCSV(res.Matched, cfg.MatchedPath); err != nil {
		return fmt.Errorf("sales: %w", err)
	}
	if err := writer.WriteCSV(res.Regional, cfg.RegionalPath); err != nil {
		return fmt.Errorf("sales: %w", err)
	}
	if err := writer.WriteWorkbook(cfg.WorkbookPath,
		writer.Sheet{Name: "District_Pivot", Table: res.Pivot},
		writer.Sheet{Name: "District_Matched", Table: res.Matched},
		writer.Sheet{Name: "Regional_Summary", Table: res.Regional},
	); err != nil {
		return fmt.Errorf("sales: %w", err)
	}

	rep.Table("sales: regional property summary", res.Regional, res.Regional.Len())
	rep.Counts("sales",
		report.Count{Label: "districts", N: res.Pivot.Len()},
		report.Count{Label: "matched", N: res.Matched.Len()},
		report.Count{Label: "regions", N: res.Regional.Len()})
	return nil
}
