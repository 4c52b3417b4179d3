// Command sales runs the price-paid counting stage: count the latest month's
// transactions per district and property type, match districts to regions via
// the prepared census file, and write the pivot, matched, regional, and
// workbook outputs.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/report"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/sales"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"

	// register all storage backends with the factory.
	_ "github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage/all"
)

func main() {
	var cfg sales.Config
	flag.StringVar(&cfg.SalesPath, "sales", envOr("PRICE_PAID_FILE", "pp-monthly-update-new-version.csv"),
		"headerless price-paid monthly update")
	flag.StringVar(&cfg.LookupPath, "lookup", envOr("CENSUS_PREPARED_FILE", "census_dwelling_data_prepared.csv"),
		"prepared census file from the census stage")
	flag.StringVar(&cfg.PivotPath, "pivot_out", envOr("DISTRICT_PIVOT_FILE", "district_property_counts.csv"),
		"per-district counts output path")
	flag.StringVar(&cfg.MatchedPath, "matched_out", envOr("DISTRICT_MATCHED_FILE", "district_property_counts_matched.csv"),
		"region-matched counts output path")
	flag.StringVar(&cfg.RegionalPath, "regional_out", envOr("SALES_REGIONAL_FILE", "regional_property_summary.csv"),
		"regional summary output path")
	flag.StringVar(&cfg.WorkbookPath, "workbook_out", envOr("SALES_WORKBOOK_FILE", "property_analysis.xlsx"),
		"workbook output path")

	var store storage.Config
	flag.StringVar(&store.Kind, "store_kind", envOr("STORE_KIND", ""),
		"storage backend for the matched table (empty disables)")
	flag.StringVar(&store.DSN, "store_dsn", envOr("STORE_DSN", ""), "storage DSN")
	flag.StringVar(&store.Table, "store_table", envOr("STORE_TABLE", "district_property_counts"),
		"destination table name")
	flag.Parse()

	res, err := sales.Run(cfg, report.New())
	if err != nil {
		log.Fatalf("sales: %v", err)
	}
	// The matched table is the richer sink target; fall back to the pivot
	// when the census stage has not run yet.
	t := res.Matched
	if t == nil {
		t = res.Pivot
	}
	if err := loadStore(context.Background(), store, t); err != nil {
		log.Fatalf("sales: %v", err)
	}
}

// envOr resolves a default: environment variable, then fallback.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadStore pushes the table into the configured backend, if any.
func loadStore(ctx context.Context, cfg storage.Config, t *table.Table) error {
	if cfg.Kind == "" {
		return nil
	}
	repo, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()
	n, err := storage.LoadTable(ctx, repo, cfg, t)
	if err != nil {
		return err
	}
	log.Printf("stored %d row(s) in %s table %s", n, cfg.Kind, cfg.Table)
	return nil
}
