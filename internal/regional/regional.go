// Package regional implements the final pipeline stage: it joins the two
// per-region summaries produced upstream, derives the property-type sale
// percentages and the sales rate against the dwelling stock, flags the
// regional maxima, and writes the styled analysis workbook.
package regional

import (
	"fmt"
	"log"
	"os"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/parser/csv"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/report"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/transformer"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/transformer/builtin"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/writer"
)

// Sentinel key values of the synthetic national row.
const (
	NationalCode = "NATIONAL"
	NationalName = "England & Wales"
)

// dwellingsSchema reads the census stage's regional summary.
var dwellingsSchema = table.Schema{
	{Name: "Region_Code", Kind: table.String, Required: true},
	{Name: "Region_Name", Kind: table.String, Required: true},
	{Name: "Unshared_Dwellings", Kind: table.Int, Required: true},
	{Name: "Shared_Dwellings", Kind: table.Int, Required: true},
	{Name: "Total_Dwellings", Kind: table.Int, Required: true},
}

// salesSchema reads the sales stage's regional summary.
var salesSchema = table.Schema{
	{Name: "Region_Code", Kind: table.String, Required: true},
	{Name: "Region_Name", Kind: table.String, Required: true},
	{Name: "D", Kind: table.Int, Required: true},
	{Name: "F", Kind: table.Int, Required: true},
	{Name: "S", Kind: table.Int, Required: true},
	{Name: "T", Kind: table.Int, Required: true},
	{Name: "Total", Kind: table.Int, Required: true},
}

// salesNames renames the single-letter property-type columns once the two
// summaries are joined.
var salesNames = map[string]string{
	"D":     "Sales_Detached",
	"F":     "Sales_Flats",
	"S":     "Sales_Semi",
	"T":     "Sales_Terraced",
	"Total": "Total_Sales",
}

// percentSpecs derives the analysis percentages. Total_Sales splits by
// property type; Sales_Rate measures sales against the dwelling stock.
var percentSpecs = []table.PercentSpec{
	{Name: "Pct_Detached", Numerator: "Sales_Detached", Denominator: "Total_Sales"},
	{Name: "Pct_Flats", Numerator: "Sales_Flats", Denominator: "Total_Sales"},
	{Name: "Pct_Semi", Numerator: "Sales_Semi", Denominator: "Total_Sales"},
	{Name: "Pct_Terraced", Numerator: "Sales_Terraced", Denominator: "Total_Sales"},
	{Name: "Sales_Rate", Numerator: "Total_Sales", Denominator: "Total_Dwellings"},
}

// maximaSpecs pairs each percentage with its flag column.
var maximaSpecs = []table.MaximaSpec{
	{Col: "Pct_Detached", Flag: "Max_Detached"},
	{Col: "Pct_Flats", Flag: "Max_Flats"},
	{Col: "Pct_Semi", Flag: "Max_Semi"},
	{Col: "Pct_Terraced", Flag: "Max_Terraced"},
	{Col: "Sales_Rate", Flag: "Max_Sales_Rate"},
}

// summaryColumns is the published layout of the analysis table.
var summaryColumns = []string{
	"Region_Code", "Region_Name", "Total_Dwellings",
	"Sales_Detached", "Sales_Flats", "Sales_Semi", "Sales_Terraced", "Total_Sales",
	"Pct_Detached", "Pct_Flats", "Pct_Semi", "Pct_Terraced", "Sales_Rate",
	"Max_Detached", "Max_Flats", "Max_Semi", "Max_Terraced", "Max_Sales_Rate",
}

// grandTotalSums lists the count columns summed into the national row.
var grandTotalSums = []string{
	"Unshared_Dwellings", "Shared_Dwellings", "Total_Dwellings",
	"Sales_Detached", "Sales_Flats", "Sales_Semi", "Sales_Terraced", "Total_Sales",
}

// Config carries the stage's file paths.
type Config struct {
	// DwellingsPath is the census stage's regional summary.
	DwellingsPath string

	// SalesPath is the sales stage's regional summary.
	SalesPath string

	// CSVPath receives the complete analysis table.
	CSVPath string

	// WorkbookPath receives the styled single-sheet workbook.
	WorkbookPath string
}

// Result exposes the final analysis table.
type Result struct {
	Analysis *table.Table
}

// Run executes the regional analysis stage.
func Run(cfg Config, rep *report.Reporter) (*Result, error) {
	dwellings, err := loadSummary(cfg.DwellingsPath, dwellingsSchema)
	if err != nil {
		return nil, err
	}
	sales, err := loadSummary(cfg.SalesPath, salesSchema)
	if err != nil {
		return nil, err
	}
	rep.Counts("regional",
		report.Count{Label: "dwelling_regions", N: dwellings.Len()},
		report.Count{Label: "sales_regions", N: sales.Len()})

	// Outer join: a region present on only one side is real (no recorded
	// sales, or sales in an area with no census coverage), so the missing
	// numerics become zero rather than null.
	merged, _, err := table.Join(dwellings, sales, table.JoinOptions{
		LeftKeys: []string{"Region_Code", "Region_Name"},
		Mode:     table.Outer,
		Fill:     table.FillZero,
	})
	if err != nil {
		return nil, fmt.Errorf("regional: merge: %w", err)
	}
	for old, name := range salesNames {
		if err := merged.Rename(old, name); err != nil {
			return nil, fmt.Errorf("regional: %w", err)
		}
	}

	if err := merged.AppendGrandTotal(map[string]string{
		"Region_Code": NationalCode,
		"Region_Name": NationalName,
	}, grandTotalSums); err != nil {
		return nil, fmt.Errorf("regional: national row: %w", err)
	}

	// Percentages are derived after the national row exists, so the same
	// formula produces the national figures in one pass.
	if err := merged.DerivePercent(percentSpecs...); err != nil {
		return nil, fmt.Errorf("regional: percentages: %w", err)
	}
	isNational := func(row int) bool {
		v, err := merged.Value(row, "Region_Code")
		return err == nil && v == NationalCode
	}
	if err := merged.FlagMaxima(maximaSpecs, isNational); err != nil {
		return nil, fmt.Errorf("regional: maxima: %w", err)
	}

	analysis, err := merged.Select(summaryColumns...)
	if err != nil {
		return nil, fmt.Errorf("regional: %w", err)
	}
	res := &Result{Analysis: analysis}
	if err := save(cfg, res, rep); err != nil {
		return nil, err
	}
	return res, nil
}

// loadSummary reads one upstream regional summary. A missing file is treated
// as an empty summary: the outer join then zero-fills that side, so the stage
// still produces an analysis from whatever upstream output exists.
func loadSummary(path string, schema table.Schema) (*table.Table, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Printf("regional: %s missing; treating as empty summary", path)
		return table.New(schema...)
	}
	if err != nil {
		return nil, fmt.Errorf("regional: open %s: %w", path, err)
	}
	defer f.Close()

	p := csv.NewParser(csv.Options{HasHeader: true, TrimSpace: true})
	recs, _, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("regional: parse %s: %w", path, err)
	}

	types := make(map[string]string, len(schema))
	required := make([]string, 0, len(schema))
	for _, fld := range schema {
		if fld.Kind == table.Int {
			types[fld.Name] = "int"
		}
		required = append(required, fld.Name)
	}
	recs = transformer.Chain{
		builtin.Normalize{},
		builtin.Coerce{Types: types},
		builtin.Require{Fields: required},
	}.Apply(recs)

	t, err := table.FromRecords(schema, recs)
	if err != nil {
		return nil, fmt.Errorf("regional: %s: %w", path, err)
	}
	return t, nil
}

// save writes the analysis CSV and the styled workbook, then prints the
// national summary and the regional maxima.
func save(cfg Config, res *Result, rep *report.Reporter) error {
	t := res.Analysis
	if err := writer.WriteCSV(t, cfg.CSVPath); err != nil {
		return fmt.Errorf("regional: %w", err)
	}

	highlights := make([]writer.Highlight, len(maximaSpecs))
	hidden := make([]string, len(maximaSpecs))
	for i, spec := range maximaSpecs {
		highlights[i] = writer.Highlight{Col: spec.Col, Flag: spec.Flag}
		hidden[i] = spec.Flag
	}
	if err := writer.WriteWorkbook(cfg.WorkbookPath, writer.Sheet{
		Name:       "Regional Analysis",
		Table:      t,
		Highlights: highlights,
		Hidden:     hidden,
	}); err != nil {
		return fmt.Errorf("regional: %w", err)
	}

	rep.Table("regional: analysis", t, t.Len())
	rep.Maxima("regional", maximaRegions(t))
	return nil
}

// maximaRegions names, per flagged column, the non-national regions holding
// the maximum.
func maximaRegions(t *table.Table) map[string]string {
	out := make(map[string]string, len(maximaSpecs))
	for _, spec := range maximaSpecs {
		for r := 0; r < t.Len(); r++ {
			code, err := t.Value(r, "Region_Code")
			if err != nil || code == NationalCode {
				continue
			}
			flag, err := t.Value(r, spec.Flag)
			if err != nil || flag != true {
				continue
			}
			name, err := t.Value(r, "Region_Name")
			if err != nil {
				continue
			}
			val, _ := t.Value(r, spec.Col)
			out[spec.Col] = fmt.Sprintf("%v (%v%%)", name, val)
			break
		}
	}
	return out
}
