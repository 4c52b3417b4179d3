// Package census implements the first pipeline stage: it pivots the 2021
// census shared-dwelling counts from long to wide, attaches region codes from
// the local-authority lookup, and writes the prepared file the sales stage
// matches districts against, plus a per-region summary.
package census

import (
	"fmt"
	"os"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/parser/csv"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/report"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/transformer"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/transformer/builtin"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/writer"
)

// Source column labels as published. The census extract pads header cells
// with spaces, which the parser trims before these names are matched.
const (
	colLADCode     = "Lower tier local authorities Code"
	colLADName     = "Lower tier local authorities"
	colCategory    = "Number of household spaces in shared dwellings (3 categories)"
	colObservation = "Observation"
)

// censusSchema validates the cleaned census records before pivoting.
var censusSchema = table.Schema{
	{Name: colLADCode, Kind: table.String, Required: true},
	{Name: colLADName, Kind: table.String, Required: true},
	{Name: colCategory, Kind: table.String, Required: true},
	{Name: colObservation, Kind: table.Int, Required: true},
}

// lookupSchema validates the LAD-to-region lookup rows. Only the three
// columns the join needs are read; the lookup file carries several more.
var lookupSchema = table.Schema{
	{Name: "LAD23CD", Kind: table.String, Required: true},
	{Name: "RGN23CD", Kind: table.String, Required: true},
	{Name: "RGN23NM", Kind: table.String, Required: true},
}

// categoryNames maps the published category labels to the wide-format column
// names. Renaming by label rather than by position means a reordered or
// renamed census category fails loudly instead of silently swapping columns.
var categoryNames = map[string]string{
	"Shared dwelling: Two household spaces":           "Shared_Two_Spaces",
	"Shared dwelling: Three or more household spaces": "Shared_Three_Plus_Spaces",
	"Unshared dwelling":                               "Unshared_Dwelling",
}

// finalColumns is the prepared-file layout the sales stage reads.
var finalColumns = []string{
	"LAD_Code",
	"LAD_Name",
	"Region_Code",
	"Region_Name",
	"Unshared_Dwellings",
	"Shared_Dwellings",
	"Shared_Two_Spaces",
	"Shared_Three_Plus_Spaces",
	"Total_Dwellings",
}

// Config carries the stage's file paths.
type Config struct {
	// CensusPath is the long-format census extract (RM205).
	CensusPath string

	// LookupPath is the LAD-to-region December 2023 lookup.
	LookupPath string

	// PreparedPath receives the wide per-LAD table.
	PreparedPath string

	// RegionalPath receives the per-region dwelling summary.
	RegionalPath string
}

// Result exposes the stage's final tables so the caller can display them or
// load them into a database.
type Result struct {
	Prepared *table.Table
	Regional *table.Table
}

// Run executes the census preparation stage.
func Run(cfg Config, rep *report.Reporter) (*Result, error) {
	long, skipped, err := loadCensus(cfg.CensusPath)
	if err != nil {
		return nil, err
	}
	rep.Counts("census", report.Count{Label: "rows", N: long.Len()},
		report.Count{Label: "skipped", N: skipped})

	wide, err := table.Pivot(long, []string{colLADCode, colLADName}, colCategory, colObservation)
	if err != nil {
		return nil, fmt.Errorf("census: pivot: %w", err)
	}
	if err := wide.Rename(colLADCode, "LAD_Code"); err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	if err := wide.Rename(colLADName, "LAD_Name"); err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	for label, name := range categoryNames {
		if err := wide.Rename(label, name); err != nil {
			return nil, fmt.Errorf("census: unexpected category set: %w", err)
		}
	}
	if err := wide.AddSumColumn("Total_Dwellings",
		"Shared_Two_Spaces", "Shared_Three_Plus_Spaces", "Unshared_Dwelling"); err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	if err := wide.AddSumColumn("Shared_Dwellings",
		"Shared_Two_Spaces", "Shared_Three_Plus_Spaces"); err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}

	lookup, err := loadLookup(cfg.LookupPath)
	if err != nil {
		return nil, err
	}

	// Left join: a LAD missing from the lookup keeps its dwelling counts and
	// carries empty region columns, surfaced below.
	joined, unmatched, err := table.Join(wide, lookup, table.JoinOptions{
		LeftKeys:  []string{"LAD_Code"},
		RightKeys: []string{"LAD23CD"},
		Take:      []string{"RGN23CD", "RGN23NM"},
		Mode:      table.Left,
		Fill:      table.FillNull,
	})
	if err != nil {
		return nil, fmt.Errorf("census: region join: %w", err)
	}
	if len(unmatched) > 0 {
		keys := make(map[string]int, len(unmatched))
		for _, u := range unmatched {
			keys[u.Key]++
		}
		rep.Unmatched("census", keys)
	}

	if err := joined.Rename("RGN23CD", "Region_Code"); err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	if err := joined.Rename("RGN23NM", "Region_Name"); err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	if err := joined.Rename("Unshared_Dwelling", "Unshared_Dwellings"); err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	prepared, err := joined.Select(finalColumns...)
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}

	regional, err := table.GroupSum(prepared,
		[]string{"Region_Code", "Region_Name"},
		[]string{"Unshared_Dwellings", "Shared_Dwellings", "Total_Dwellings"})
	if err != nil {
		return nil, fmt.Errorf("census: regional summary: %w", err)
	}

	res := &Result{Prepared: prepared, Regional: regional}
	if err := save(cfg, res, rep); err != nil {
		return nil, err
	}
	return res, nil
}

// loadCensus parses and cleans the long-format census extract.
func loadCensus(path string) (*table.Table, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("census: open %s: %w", path, err)
	}
	defer f.Close()

	p := csv.NewParser(csv.Options{HasHeader: true, TrimSpace: true})
	recs, skipped, err := p.Parse(f)
	if err != nil {
		return nil, 0, fmt.Errorf("census: parse %s: %w", path, err)
	}

	clean := transformer.Chain{
		builtin.Normalize{},
		builtin.Coerce{Types: map[string]string{colObservation: "int"}},
		builtin.Require{Fields: []string{colLADCode, colLADName, colCategory, colObservation}},
	}
	recs = clean.Apply(recs)

	t, err := table.FromRecords(censusSchema, recs)
	if err != nil {
		return nil, 0, fmt.Errorf("census: %w", err)
	}
	return t, skipped, nil
}

// loadLookup parses the region lookup, keeping only complete rows so the join
// never attaches a half-filled region.
func loadLookup(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("census: open %s: %w", path, err)
	}
	defer f.Close()

	p := csv.NewParser(csv.Options{HasHeader: true, TrimSpace: true})
	recs, _, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("census: parse %s: %w", path, err)
	}
	recs = transformer.Chain{
		builtin.Normalize{},
		builtin.Require{Fields: []string{"LAD23CD", "RGN23CD", "RGN23NM"}},
	}.Apply(recs)

	t, err := table.FromRecords(lookupSchema, recs)
	if err != nil {
		return nil, fmt.Errorf("census: lookup: %w", err)
	}
	return t, nil
}

// save writes the stage outputs and prints the run summary.
func save(cfg Config, res *Result, rep *report.Reporter) error {
	if err := writer.WriteCSV(res.Prepared, cfg.PreparedPath); err != nil {
		return fmt.Errorf("census: %w", err)
	}
	if err := writer.WriteCSV(res.Regional, cfg.RegionalPath); err != nil {
		return fmt.Errorf("census: %w", err)
	}
	rep.Table("census: regional dwelling summary", res.Regional, res.Regional.Len())
	rep.Counts("census",
		report.Count{Label: "prepared_rows", N: res.Prepared.Len()},
		report.Count{Label: "regions", N: res.Regional.Len()})
	return nil
}
